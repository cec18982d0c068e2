package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cafe-dashboard/internal/config"
	"cafe-dashboard/internal/refresh"
	"cafe-dashboard/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.PrimaryURL = ""
	cfg.SpreadsheetID = ""
	cfg.RefreshLimit = 2
	return cfg
}

func TestBuildStrategies(t *testing.T) {
	cfg := testConfig()
	strategies, db := buildStrategies(cfg)
	assert.Empty(t, strategies)
	assert.Nil(t, db)

	cfg = config.Defaults()
	strategies, _ = buildStrategies(cfg)
	require.Len(t, strategies, 2)
	assert.Equal(t, source.TierPrimary, strategies[0].Name())
	assert.Equal(t, source.TierSheets, strategies[1].Name())
}

func TestNewApp(t *testing.T) {
	cfg := testConfig()
	scheduler := refresh.New(source.NewChain(0, nil), cfg.RefreshInterval)
	defer scheduler.Stop()
	_, err := scheduler.Refresh(context.Background())
	require.NoError(t, err)

	app := newApp(cfg, scheduler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "cafe_acquisition_cycles_total")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewApp_RefreshIsRateLimited(t *testing.T) {
	cfg := testConfig()
	scheduler := refresh.New(source.NewChain(0, nil), cfg.RefreshInterval)
	defer scheduler.Stop()
	app := newApp(cfg, scheduler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
