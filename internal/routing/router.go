// Package routing defines the Router abstraction (spec §6.1) the
// dispatcher and kinematics use to turn an origin/destination pair into a
// Route, plus two implementations: an HTTP client for an OSRM-compatible
// routing service, and a dependency-free haversine stand-in for tests and
// offline runs.
package routing

import (
	"context"
	"errors"

	"modabm/internal/model"
)

// Mode selects how much geometry a Route call must populate.
type Mode int

const (
	// TimeOnly guarantees Route.DistanceM/DurationMs are populated but legs
	// may be empty. Used by the dispatcher while searching (spec §4.3).
	TimeOnly Mode = iota
	// FullRoute guarantees legs/steps/poses with >=2 poses per step.
	FullRoute
)

// ErrInfeasible is returned for a router Empty/Error response. The core
// treats both identically: the candidate insertion is infeasible (spec
// §6.1, §7).
var ErrInfeasible = errors.New("routing: no route available")

// Router turns an origin/destination pair into a Route. Implementations
// must be safe for concurrent use — the dispatcher calls Route from
// multiple goroutines during the parallel per-vehicle search (spec §5).
type Router interface {
	Route(ctx context.Context, origin, destination model.Position, mode Mode) (model.Route, error)
}
