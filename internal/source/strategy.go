// Package source acquires dashboard snapshots through an ordered chain of
// tiers, falling back to the sample dataset.
package source

import (
	"context"
	"errors"

	"cafe-dashboard/internal/models"
)

// Tier names, also used as the snapshot's Source.
const (
	TierPrimary   = "primary"
	TierSheets    = "sheets"
	TierWarehouse = "warehouse"
	TierSample    = "sample"
)

var ErrMalformedPayload = errors.New("malformed payload")

type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeUnavailable Outcome = "unavailable"
)

// Result is what one tier reports. On success Sections may be partial: a nil
// section means the tier did not supply it.
type Result struct {
	Outcome  Outcome
	Sections models.Sections
	Reason   error
}

func Success(s models.Sections) Result {
	return Result{Outcome: OutcomeSuccess, Sections: s}
}

func Unavailable(reason error) Result {
	return Result{Outcome: OutcomeUnavailable, Reason: reason}
}

// Strategy is one acquisition tier. Acquire must honour ctx and must not panic;
// every failure is reported as Unavailable.
type Strategy interface {
	Name() string
	Acquire(ctx context.Context) Result
}
