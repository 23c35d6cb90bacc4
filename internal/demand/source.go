// Package demand defines the Source abstraction (spec §6.2) the driver
// drains once per cycle for newly-arrived trip requests, plus a
// weighted-OD Poisson generator grounded on the original simulator's
// demand_generator.
package demand

import (
	"context"

	"modabm/internal/model"
)

// Source emits requests up to a target simulated time. Implementations
// must return requests with RequestTimeMs <= targetMs that have not been
// returned before, in ascending request-time order; successive calls must
// use monotonically non-decreasing targetMs (spec §6.2).
type Source interface {
	DrainUntil(ctx context.Context, targetMs int64) ([]model.Request, error)
}
