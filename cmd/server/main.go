package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-dashboard/internal/config"
	"cafe-dashboard/internal/dashboard"
	"cafe-dashboard/internal/database"
	"cafe-dashboard/internal/refresh"
	"cafe-dashboard/internal/source"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strategies, db := buildStrategies(cfg)
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
	}

	chain := source.NewChain(cfg.TierTimeout, strategies)
	scheduler := refresh.New(chain, cfg.RefreshInterval)
	if err := scheduler.Start(ctx); err != nil {
		slog.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	slog.Info("acquisition chain ready", "tiers", chain.Tiers(), "tier_timeout", cfg.TierTimeout.String())

	app := newApp(cfg, scheduler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "port", cfg.HTTPPort)
		return app.Listen(":" + cfg.HTTPPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

// buildStrategies assembles the enabled tiers in fallback order:
// webhook, sheets export, warehouse.
func buildStrategies(cfg *config.Config) ([]source.Strategy, *gorm.DB) {
	client := &http.Client{}
	var strategies []source.Strategy

	if cfg.PrimaryURL != "" {
		strategies = append(strategies, source.NewWebhook(cfg.PrimaryURL, client))
	}
	if cfg.SheetsEnabled() {
		strategies = append(strategies, source.NewSheets(cfg.SheetsBaseURL, cfg.SpreadsheetID, source.Tabs{
			Sales:      cfg.SalesGID,
			Inventory:  cfg.InventoryGID,
			Attendance: cfg.AttendanceGID,
			Feedback:   cfg.FeedbackGID,
		}, client))
	}

	var db *gorm.DB
	if cfg.WarehouseEnabled() {
		var err error
		if db, err = database.Open(cfg); err != nil {
			slog.Warn("warehouse tier disabled", "error", err)
		} else {
			strategies = append(strategies, source.NewWarehouse(db))
		}
	}
	return strategies, db
}

func newApp(cfg *config.Config, scheduler *refresh.Scheduler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			slog.Error("unexpected error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	h := dashboard.NewHandlers(scheduler, cfg.Location())
	api := app.Group("/api")

	api.Get("/health", h.HealthHandler())
	api.Get("/status", h.StatusHandler())
	api.Post("/refresh", limiter.New(limiter.Config{
		Max:        cfg.RefreshLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many refresh requests, try again shortly")
		},
	}), h.RefreshHandler())
	api.Get("/snapshot", h.SnapshotHandler())

	// Dashboard view-model
	dash := api.Group("/dashboard")
	dash.Get("/", h.DashboardHandler())
	dash.Get("/summary", h.SummaryHandler())
	dash.Get("/sales-trend", h.SalesTrendHandler())
	dash.Get("/sales/latest", h.LatestSalesHandler())
	dash.Get("/inventory", h.InventoryHandler())
	dash.Get("/attendance", h.AttendanceHandler())
	dash.Get("/feedback", h.FeedbackHandler())
	dash.Get("/export.xlsx", h.ExportHandler())

	return app
}
