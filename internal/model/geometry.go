// Package model defines the simulator's core data types: the route geometry
// hierarchy (Position/Step/Leg/Route), the per-vehicle waypoint plan, and the
// Vehicle/Trip/Request records the driver and dispatcher operate on.
package model

import "fmt"

// Position is a (lon, lat) point in decimal degrees.
type Position struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Valid reports whether p lies within the legal coordinate range.
func (p Position) Valid() bool {
	return p.Lon >= -180 && p.Lon < 180 && p.Lat >= -90 && p.Lat <= 90
}

// MarshalYAML formats the position to 6 decimal places, matching the
// datalog's persisted-state format.
func (p Position) MarshalYAML() (interface{}, error) {
	return struct {
		Lon float64 `yaml:"lon"`
		Lat float64 `yaml:"lat"`
	}{
		Lon: round6(p.Lon),
		Lat: round6(p.Lat),
	}, nil
}

func round6(v float64) float64 {
	const scale = 1e6
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return float64(int64(v*scale-0.5)) / scale
}

// ManhattanDistance returns the Manhattan (L1) distance between two
// positions, the surrogate arc-length measure truncation uses in place of
// the router's geodesic distance.
func ManhattanDistance(a, b Position) float64 {
	return absf(a.Lon-b.Lon) + absf(a.Lat-b.Lat)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Step is a contiguous polyline of at least two poses with a total distance
// (meters) and duration (seconds, held as milliseconds — see DurationMs).
type Step struct {
	Poses      []Position `json:"poses" yaml:"poses"`
	DistanceM  float64    `json:"distance_m" yaml:"distance_m"`
	DurationMs int64      `json:"duration_ms" yaml:"duration_ms"`
}

// Leg is an ordered, non-empty sequence of steps.
type Leg struct {
	Steps      []Step  `json:"steps" yaml:"steps"`
	DistanceM  float64 `json:"distance_m" yaml:"distance_m"`
	DurationMs int64   `json:"duration_ms" yaml:"duration_ms"`
}

// Route is an ordered, non-empty sequence of legs. A time-only route has
// populated totals but an empty Legs slice.
type Route struct {
	Legs       []Leg   `json:"legs" yaml:"legs"`
	DistanceM  float64 `json:"distance_m" yaml:"distance_m"`
	DurationMs int64   `json:"duration_ms" yaml:"duration_ms"`
}

// TimeOnly reports whether the route was returned in time-only mode (no leg
// geometry).
func (r Route) TimeOnly() bool {
	return len(r.Legs) == 0
}

func (l Leg) recompute() Leg {
	l.DistanceM = 0
	l.DurationMs = 0
	for _, s := range l.Steps {
		l.DistanceM += s.DistanceM
		l.DurationMs += s.DurationMs
	}
	return l
}

func (r Route) recompute() Route {
	r.DistanceM = 0
	r.DurationMs = 0
	for _, l := range r.Legs {
		r.DistanceM += l.DistanceM
		r.DurationMs += l.DurationMs
	}
	return r
}

// Validate checks the well-formedness invariants in spec §3/§4.1:
// >=1 leg, >=1 step per leg, >=2 poses per step, positive totals — unless
// the route is a degenerate time-only route.
func (r Route) Validate() error {
	if r.TimeOnly() {
		if r.DurationMs <= 0 {
			return fmt.Errorf("model: time-only route has non-positive duration %dms", r.DurationMs)
		}
		return nil
	}
	if len(r.Legs) == 0 {
		return fmt.Errorf("model: route has no legs")
	}
	for li, leg := range r.Legs {
		if len(leg.Steps) == 0 {
			return fmt.Errorf("model: leg %d has no steps", li)
		}
		for si, step := range leg.Steps {
			if len(step.Poses) < 2 {
				return fmt.Errorf("model: leg %d step %d has %d poses, want >=2", li, si, len(step.Poses))
			}
			if step.DistanceM <= 0 || step.DurationMs <= 0 {
				return fmt.Errorf("model: leg %d step %d has non-positive distance/duration", li, si)
			}
		}
	}
	if r.DurationMs <= 0 {
		return fmt.Errorf("model: route has non-positive duration %dms", r.DurationMs)
	}
	return nil
}

// HeadPose returns the first pose of the route's first step, the position
// the route begins at.
func (r Route) HeadPose() (Position, bool) {
	if len(r.Legs) == 0 || len(r.Legs[0].Steps) == 0 {
		return Position{}, false
	}
	return r.Legs[0].Steps[0].Poses[0], true
}
