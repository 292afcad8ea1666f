package decision

import (
	"time"

	"github.com/JaimeStill/intake/internal/loan"
)

// Aggregator evaluates decisions against the current date.
type Aggregator struct {
	minimumAge int
	now        func() time.Time
}

// NewAggregator returns an Aggregator requiring minimumAge. A nil now uses
// time.Now.
func NewAggregator(minimumAge int, now func() time.Time) *Aggregator {
	if minimumAge <= 0 {
		minimumAge = DefaultMinimumAge
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{minimumAge: minimumAge, now: now}
}

// Decide evaluates the gates as of the aggregator's current time.
func (a *Aggregator) Decide(
	app loan.ApplicationData,
	docs []loan.DocumentRecord,
	validations []loan.ValidationRecord,
	cv loan.CrossValidationResult,
	degraded []string,
) loan.FinalDecision {
	return Decide(Input{
		Application:     app,
		Documents:       docs,
		Validations:     validations,
		CrossValidation: cv,
		Degraded:        degraded,
		AsOf:            a.now(),
		MinimumAge:      a.minimumAge,
	})
}
