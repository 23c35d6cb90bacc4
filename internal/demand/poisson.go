package demand

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"modabm/internal/model"
)

// ODPair is one origin/destination entry in a demand configuration file,
// weighted by its own arrival rate.
type ODPair struct {
	Origin        model.Position `yaml:"origin"`
	Destination   model.Position `yaml:"destination"`
	TripsPerHour  float64        `yaml:"trips_per_hour"`
	cumulativeProb float64
}

// PoissonGenerator reproduces the original simulator's demand_generator:
// an aggregate Poisson process (rate = sum of each OD pair's trips_per_hour)
// whose interarrival times are exponential, with each arrival's OD pair
// drawn from a cumulative-probability table weighted by trips_per_hour.
//
// A generated-but-not-yet-due request is held in next and carried across
// calls to DrainUntil, matching the original's last_request_ field.
type PoissonGenerator struct {
	pairs        []ODPair
	totalPerHour float64
	rng          *rand.Rand
	next         *model.Request
}

// NewPoissonGenerator builds a generator over the given weighted OD pairs.
// Pairs with non-positive TripsPerHour are rejected: every configured pair
// must actually contribute demand.
func NewPoissonGenerator(pairs []ODPair, seed int64) (*PoissonGenerator, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("demand: no OD pairs configured")
	}
	total := 0.0
	cum := make([]ODPair, len(pairs))
	copy(cum, pairs)
	for i, p := range cum {
		if p.TripsPerHour <= 0 {
			return nil, fmt.Errorf("demand: OD pair %d has non-positive trips_per_hour %f", i, p.TripsPerHour)
		}
		total += p.TripsPerHour
		cum[i].cumulativeProb = total
	}
	for i := range cum {
		cum[i].cumulativeProb /= total
	}
	return &PoissonGenerator{
		pairs:        cum,
		totalPerHour: total,
		rng:          rand.New(rand.NewSource(seed)),
	}, nil
}

// DrainUntil implements demand.Source. It draws requests one at a time via
// exponential interarrival until the next would-be arrival exceeds
// targetMs, holding that one over for the following call.
func (g *PoissonGenerator) DrainUntil(_ context.Context, targetMs int64) ([]model.Request, error) {
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

func (g *PoissonGenerator) sampleNext(afterMs int64) *model.Request {
	u := g.rng.Float64()
	for u >= 1 {
		u = g.rng.Float64()
	}
	interarrivalS := -math.Log(1-u) / g.totalPerHour * 3600.0
	requestMs := afterMs + int64(interarrivalS*1000)

	pick := g.rng.Float64()
	idx := len(g.pairs) - 1
	for i, p := range g.pairs {
		if pick <= p.cumulativeProb {
			idx = i
			break
		}
	}
	pair := g.pairs[idx]
	return &model.Request{
		Origin:        pair.Origin,
		Destination:   pair.Destination,
		RequestTimeMs: requestMs,
	}
}
