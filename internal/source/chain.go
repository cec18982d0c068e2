package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cafe-dashboard/internal/models"
	"cafe-dashboard/internal/sample"

	"github.com/google/uuid"
)

const DefaultTierTimeout = 2 * time.Second

// Cycle is the outcome of one acquisition cycle. Data is always usable;
// Advisory is a display-only note, empty when a live tier succeeded.
type Cycle struct {
	ID       string
	Data     models.DashboardData
	Advisory string
	Duration time.Duration
}

// Chain tries its strategies left to right. The first success wins and its
// absent sections are filled from the sample dataset; if none succeeds the
// sample dataset is returned verbatim.
type Chain struct {
	strategies []Strategy
	timeout    time.Duration
	sample     func() models.Sections
	now        func() time.Time
}

type ChainOption func(*Chain)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ChainOption {
	return func(c *Chain) { c.now = now }
}

// WithSample replaces the embedded sample dataset.
func WithSample(fn func() models.Sections) ChainOption {
	return func(c *Chain) { c.sample = fn }
}

func NewChain(timeout time.Duration, strategies []Strategy, opts ...ChainOption) *Chain {
	if timeout <= 0 {
		timeout = DefaultTierTimeout
	}
	c := &Chain{
		strategies: strategies,
		timeout:    timeout,
		sample:     sample.Sections,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tiers lists the strategy names in order, followed by the sample tier.
func (c *Chain) Tiers() []string {
	names := make([]string, 0, len(c.strategies)+1)
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return append(names, TierSample)
}

// Acquire runs one cycle. It never fails.
func (c *Chain) Acquire(ctx context.Context) Cycle {
	start := c.now()
	id := uuid.NewString()
	log := slog.With("cycle_id", id)

	var failures []string
	for _, s := range c.strategies {
		res := c.attempt(ctx, s)
		tierAttempts.WithLabelValues(s.Name(), string(res.Outcome)).Inc()

		if res.Outcome == OutcomeSuccess {
			cycle := c.finish(id, start, s.Name(), FillMissing(res.Sections, c.sample()), "")
			log.Info("acquisition cycle completed", "tier", s.Name(), "partial", !res.Sections.Complete(),
				"sales", len(cycle.Data.SalesLog), "duration", cycle.Duration)
			return cycle
		}

		log.Warn("acquisition tier unavailable", "tier", s.Name(), "error", res.Reason)
		failures = append(failures, fmt.Sprintf("%s: %v", s.Name(), res.Reason))
	}

	advisory := "no live source configured, showing sample data"
	if len(failures) > 0 {
		advisory = "live sources unavailable, showing sample data (" + strings.Join(failures, "; ") + ")"
	}
	tierAttempts.WithLabelValues(TierSample, string(OutcomeSuccess)).Inc()
	cycle := c.finish(id, start, TierSample, c.sample(), advisory)
	log.Warn("acquisition cycle fell back to sample data", "duration", cycle.Duration)
	return cycle
}

// attempt runs one strategy under its own timeout.
func (c *Chain) attempt(ctx context.Context, s Strategy) Result {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := s.Acquire(tctx)
	if res.Outcome != OutcomeSuccess && res.Reason == nil {
		res.Reason = fmt.Errorf("%s tier unavailable", s.Name())
	}
	return res
}

func (c *Chain) finish(id string, start time.Time, tier string, sections models.Sections, advisory string) Cycle {
	end := c.now()
	d := end.Sub(start)
	cyclesTotal.WithLabelValues(tier).Inc()
	cycleDuration.Observe(d.Seconds())
	return Cycle{
		ID: id,
		Data: models.DashboardData{
			Sections:    sections,
			Source:      tier,
			LastUpdated: end,
		},
		Advisory: advisory,
		Duration: d,
	}
}
