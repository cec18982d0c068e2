package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcquirer struct {
	calls    atomic.Int32
	started  chan struct{}
	release  chan struct{}
	advisory string
}

func newFakeAcquirer(blocking bool) *fakeAcquirer {
	f := &fakeAcquirer{started: make(chan struct{}, 64)}
	if blocking {
		f.release = make(chan struct{})
	}
	return f
}

func (f *fakeAcquirer) Acquire(ctx context.Context) source.Cycle {
	n := f.calls.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	return source.Cycle{
		ID:       fmt.Sprintf("cycle-%d", n),
		Advisory: f.advisory,
		Data: models.DashboardData{
			Source:      "fake",
			LastUpdated: time.Unix(1000*int64(n), 0),
		},
	}
}

func waitStarted(t *testing.T, f *fakeAcquirer) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not start")
	}
}

func TestScheduler_StatusBeforeFirstCycle(t *testing.T) {
	s := New(newFakeAcquirer(false), time.Minute)

	st := s.Status()
	assert.True(t, st.Loading)
	assert.Nil(t, st.LastUpdated)
	assert.Equal(t, 60, st.IntervalSeconds)
	assert.Equal(t, 60, st.NextRefreshIn)
	assert.Empty(t, s.Snapshot().Source)
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	f := newFakeAcquirer(false)
	s := New(f, time.Hour)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Snapshot().Source == "fake" }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.False(t, s.Status().Loading)
}

func TestScheduler_PeriodicCycles(t *testing.T) {
	f := newFakeAcquirer(false)
	s := New(f, 20*time.Millisecond)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return f.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StartTwice(t *testing.T) {
	s := New(newFakeAcquirer(false), time.Hour)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyRunning)

	s.Stop()
	assert.ErrorIs(t, s.Start(context.Background()), ErrStopped)
}

func TestScheduler_RefreshCoalesces(t *testing.T) {
	f := newFakeAcquirer(true)
	s := New(f, time.Hour)
	defer s.Stop()

	var wg sync.WaitGroup
	results := make([]source.Cycle, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = s.Refresh(context.Background())
	}()
	waitStarted(t, f)
	assert.True(t, s.Status().Loading)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = s.Refresh(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, results[0].ID, results[1].ID)
}

func TestScheduler_CallerContextBoundsWaitOnly(t *testing.T) {
	f := newFakeAcquirer(true)
	s := New(f, time.Hour)
	defer s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(f.release)
	assert.Eventually(t, func() bool { return s.Snapshot().Source == "fake" }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopDiscardsInterruptedCycle(t *testing.T) {
	f := newFakeAcquirer(true)
	s := New(f, time.Hour)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		errc <- err
	}()
	waitStarted(t, f)

	s.Stop()

	assert.ErrorIs(t, <-errc, ErrStopped)
	assert.Empty(t, s.Snapshot().Source)

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestScheduler_ParentContextEndsSchedule(t *testing.T) {
	s := New(newFakeAcquirer(false), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()

	assert.Eventually(t, func() bool {
		_, err := s.Refresh(context.Background())
		return err == ErrStopped
	}, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_StatusAfterCycle(t *testing.T) {
	f := newFakeAcquirer(false)
	f.advisory = "live sources unavailable"
	now := time.Unix(1000, 0).Add(15 * time.Second)
	s := New(f, time.Minute, WithClock(func() time.Time { return now }))
	defer s.Stop()

	cycle, err := s.Refresh(context.Background())
	require.NoError(t, err)

	st := s.Status()
	assert.False(t, st.Loading)
	require.NotNil(t, st.LastUpdated)
	assert.Equal(t, time.Unix(1000, 0), *st.LastUpdated)
	assert.Equal(t, "fake", st.Source)
	assert.Equal(t, "live sources unavailable", st.Error)
	assert.Equal(t, cycle.ID, st.CycleID)
	assert.Equal(t, 45, st.NextRefreshIn)
}

func TestNextRefreshIn(t *testing.T) {
	last := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"just updated", last, time.Minute},
		{"midway", last.Add(20 * time.Second), 40 * time.Second},
		{"due", last.Add(time.Minute), 0},
		{"overdue", last.Add(5 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextRefreshIn(time.Minute, last, tt.now))
		})
	}
}

func TestScheduler_ManualRefreshResetsTimer(t *testing.T) {
	const interval = 300 * time.Millisecond
	f := newFakeAcquirer(false)
	s := New(f, interval)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	manualAt := time.Now()
	require.Equal(t, int32(2), f.calls.Load())

	// The original tick would have fired 300ms after start; the manual cycle
	// pushed it to 300ms after its own completion.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), f.calls.Load(), "periodic cycle ran before the interval elapsed since the manual refresh")

	require.Eventually(t, func() bool { return f.calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(manualAt), interval-20*time.Millisecond)
}
