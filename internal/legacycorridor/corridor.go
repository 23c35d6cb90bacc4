// Package legacycorridor adapts the original bus-corridor demand model —
// a directionally-biased, spatially-gradiented passenger generator — into
// an alternate demand.Source over a rectangular service area instead of a
// fixed stop sequence. Kept as a documented second demand shape alongside
// the default demand.PoissonGenerator; see SPEC_FULL.md §6.2 and
// DESIGN.md.
package legacycorridor

import (
	"context"
	"math"
	"math/rand"

	"modabm/internal/model"
)

// Config shapes the corridor-style demand: a favored direction carries
// more trips, and within that direction a spatial gradient concentrates
// origins near one end of the area.
type Config struct {
	AreaLonMin, AreaLonMax float64
	AreaLatMin, AreaLatMax float64
	// FavoredOutbound/FavoredInbound bias which travel direction
	// (increasing-lon vs decreasing-lon) generates more demand.
	FavoredOutbound bool
	FavoredInbound  bool
	// SpatialGradient in [0,1]: strength of concentration near the
	// favored direction's origin end. 0 disables the gradient.
	SpatialGradient float64
	// BaselineDemand in [0,1]: floor weight applied even far from the
	// favored end, so the whole area still generates some demand.
	BaselineDemand float64
	// DirBias > 1 favors FavoredOutbound/FavoredInbound over the other
	// direction; 1 means no bias.
	DirBias float64
	// TripsPerHour is the aggregate Poisson rate across the whole area.
	TripsPerHour float64
}

// Generator produces requests via exponential interarrival, choosing a
// direction by DirBias and an origin/destination pair by a gradient-biased
// position along the area's longitude span — adapted from the corridor
// bus-stop gradient weighting (legacycorridor replaces "stop index" with
// "normalized position along the area span").
type Generator struct {
	cfg  Config
	rng  *rand.Rand
	next *model.Request
}

// NewGenerator builds a corridor-style generator over the given area.
func NewGenerator(cfg Config, seed int64) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// DrainUntil implements demand.Source.
func (g *Generator) DrainUntil(_ context.Context, targetMs int64) ([]model.Request, error) {
	var out []model.Request
	if g.next == nil {
		g.next = g.sampleNext(0)
	}
	for g.next != nil && g.next.RequestTimeMs <= targetMs {
		r := *g.next
		out = append(out, r)
		g.next = g.sampleNext(r.RequestTimeMs)
	}
	return out, nil
}

func (g *Generator) sampleNext(afterMs int64) *model.Request {
	rate := g.cfg.TripsPerHour
	if rate <= 0 {
		rate = 1
	}
	u := g.rng.Float64()
	for u >= 1 {
		u = g.rng.Float64()
	}
	interarrivalS := -math.Log(1-u) / rate * 3600.0
	requestMs := afterMs + int64(interarrivalS*1000)

	outbound := g.pickDirection()
	origin, dest := g.pickOD(outbound)
	return &model.Request{Origin: origin, Destination: dest, RequestTimeMs: requestMs}
}

func (g *Generator) pickDirection() bool {
	bias := g.cfg.DirBias
	if bias <= 0 {
		bias = 1
	}
	pOutbound := 0.5
	switch {
	case g.cfg.FavoredOutbound:
		pOutbound = bias / (bias + 1.0)
	case g.cfg.FavoredInbound:
		pOutbound = 1.0 / (bias + 1.0)
	}
	return g.rng.Float64() < pOutbound
}

// pickOD draws an origin and destination along the longitude span of the
// area, applying the spatial gradient in the favored direction's sense.
func (g *Generator) pickOD(outbound bool) (model.Position, model.Position) {
	lonMin, lonMax := g.cfg.AreaLonMin, g.cfg.AreaLonMax
	latMin, latMax := g.cfg.AreaLatMin, g.cfg.AreaLatMax

	originNorm := g.gradientSample(outbound)
	var destNorm float64
	if outbound {
		destNorm = originNorm + g.rng.Float64()*(1-originNorm)
	} else {
		destNorm = originNorm * g.rng.Float64()
	}

	originLon := lonMin + originNorm*(lonMax-lonMin)
	destLon := lonMin + destNorm*(lonMax-lonMin)
	lat := latMin + g.rng.Float64()*(latMax-latMin)

	return model.Position{Lon: originLon, Lat: lat}, model.Position{Lon: destLon, Lat: lat}
}

// gradientSample draws a normalized [0,1] position along the area span,
// concentrated near the direction's origin end (0 for outbound, 1 for
// inbound) when the gradient favors this direction.
func (g *Generator) gradientSample(outbound bool) float64 {
	favored := (outbound && g.cfg.FavoredOutbound) || (!outbound && g.cfg.FavoredInbound)
	if g.cfg.SpatialGradient <= 0 || !favored {
		return g.rng.Float64()
	}
	baseline := clamp01(g.cfg.BaselineDemand)
	gradient := clamp01(g.cfg.SpatialGradient)
	// Rejection-sample against a linearly decaying density so mass
	// concentrates near 0 by `gradient`, with `baseline` as the floor;
	// inbound mirrors the sample so it concentrates near 1.
	for {
		x := g.rng.Float64()
		density := baseline + gradient*(1-x)
		if g.rng.Float64() <= density {
			if !outbound {
				return 1 - x
			}
			return x
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

