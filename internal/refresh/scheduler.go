// Package refresh owns the acquisition schedule and the current snapshot.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/source"

	"golang.org/x/sync/singleflight"
)

const DefaultInterval = 60 * time.Second

var (
	ErrStopped        = errors.New("scheduler stopped")
	ErrAlreadyRunning = errors.New("scheduler is already running")
)

// Acquirer runs one acquisition cycle. *source.Chain satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context) source.Cycle
}

// Status is the scheduler state shown next to the dashboard.
type Status struct {
	Loading         bool       `json:"loading"`
	LastUpdated     *time.Time `json:"lastUpdated"`
	Source          string     `json:"source,omitempty"`
	Error           string     `json:"error,omitempty"`
	CycleID         string     `json:"cycleId,omitempty"`
	IntervalSeconds int        `json:"refreshIntervalSeconds"`
	NextRefreshIn   int        `json:"nextRefreshInSeconds"`
}

type Option func(*Scheduler)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler runs a cycle on Start, then every interval, and on demand.
// Overlapping requests share one cycle, so at most one runs at a time. After
// every completed cycle the periodic timer restarts from zero.
type Scheduler struct {
	acquirer Acquirer
	interval time.Duration
	now      func() time.Time

	group    singleflight.Group
	current  atomic.Pointer[source.Cycle]
	inflight atomic.Bool
	reset    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopped bool
}

func New(acquirer Acquirer, interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		acquirer: acquirer,
		interval: interval,
		now:      time.Now,
		reset:    make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the first cycle in the background and begins the periodic
// schedule. Cancelling ctx ends the schedule the same way Stop does.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	slog.Info("refresh scheduler starting", "interval", s.interval.String())

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop ends the schedule and waits for the loop to exit. An in-flight cycle is
// cancelled and does not replace the snapshot. Stop is idempotent.
func (s *Scheduler) Stop() {
	if s.shutdown() {
		slog.Info("refresh scheduler stopped")
	}
	s.wg.Wait()
}

func (s *Scheduler) shutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.stopped = true
	close(s.done)
	s.cancel()
	return true
}

// Refresh runs a cycle now, or joins the one already running, and returns its
// result. ctx bounds only the wait: the cycle itself carries on if the caller
// gives up.
func (s *Scheduler) Refresh(ctx context.Context) (source.Cycle, error) {
	if s.isStopped() {
		return source.Cycle{}, ErrStopped
	}

	ch := s.group.DoChan("cycle", func() (any, error) {
		return s.cycle()
	})
	select {
	case <-ctx.Done():
		return source.Cycle{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return source.Cycle{}, res.Err
		}
		return res.Val.(source.Cycle), nil
	}
}

// Snapshot returns the latest published snapshot. Before the first cycle
// completes it is empty; Status reports Loading until then.
func (s *Scheduler) Snapshot() models.DashboardData {
	if c := s.current.Load(); c != nil {
		return c.Data
	}
	return models.DashboardData{}
}

func (s *Scheduler) Status() Status {
	st := Status{
		Loading:         s.inflight.Load(),
		IntervalSeconds: int(s.interval / time.Second),
		NextRefreshIn:   seconds(s.interval),
	}
	c := s.current.Load()
	if c == nil {
		st.Loading = true
		return st
	}
	updated := c.Data.LastUpdated
	st.LastUpdated = &updated
	st.Source = c.Data.Source
	st.Error = c.Advisory
	st.CycleID = c.ID
	st.NextRefreshIn = seconds(NextRefreshIn(s.interval, updated, s.now()))
	return st
}

// NextRefreshIn is the countdown to the next periodic cycle.
func NextRefreshIn(interval time.Duration, lastUpdated, now time.Time) time.Duration {
	return max(0, interval-now.Sub(lastUpdated))
}

func seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.wg.Add(1)
	go s.trigger()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			s.shutdown()
			return
		case <-s.reset:
			ticker.Reset(s.interval)
		case <-ticker.C:
			s.wg.Add(1)
			go s.trigger()
		}
	}
}

func (s *Scheduler) trigger() {
	defer s.wg.Done()
	if _, err := s.Refresh(s.ctx); err != nil && !errors.Is(err, ErrStopped) && !errors.Is(err, context.Canceled) {
		slog.Error("scheduled refresh failed", "error", err)
	}
}

// cycle runs one acquisition under the scheduler context and publishes it.
func (s *Scheduler) cycle() (source.Cycle, error) {
	s.inflight.Store(true)
	defer s.inflight.Store(false)

	c := s.acquirer.Acquire(s.ctx)
	if s.ctx.Err() != nil {
		return source.Cycle{}, ErrStopped
	}
	s.current.Store(&c)

	select {
	case s.reset <- struct{}{}:
	default:
	}
	return c, nil
}

func (s *Scheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
