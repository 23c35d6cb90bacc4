package demand_test

import (
	"context"
	"testing"

	"modabm/internal/demand"
	"modabm/internal/model"
)

func TestPoissonGeneratorRejectsNonPositiveRate(t *testing.T) {
	_, err := demand.NewPoissonGenerator([]demand.ODPair{
		{Origin: model.Position{}, Destination: model.Position{Lon: 1}, TripsPerHour: 0},
	}, 1)
	if err == nil {
		t.Fatalf("expected error for non-positive trips_per_hour")
	}
}

func TestPoissonGeneratorDrainUntilIsMonotonicAndOrdered(t *testing.T) {
	pairs := []demand.ODPair{
		{Origin: model.Position{Lon: 0}, Destination: model.Position{Lon: 1}, TripsPerHour: 120},
		{Origin: model.Position{Lon: 2}, Destination: model.Position{Lon: 3}, TripsPerHour: 60},
	}
	g, err := demand.NewPoissonGenerator(pairs, 42)
	if err != nil {
		t.Fatalf("NewPoissonGenerator: %v", err)
	}

	var all []model.Request
	for _, target := range []int64{10_000, 60_000, 300_000} {
		reqs, err := g.DrainUntil(context.Background(), target)
		if err != nil {
			t.Fatalf("DrainUntil: %v", err)
		}
		for _, r := range reqs {
			if r.RequestTimeMs > target {
				t.Fatalf("request time %d exceeds target %d", r.RequestTimeMs, target)
			}
		}
		all = append(all, reqs...)
	}
	for i := 1; i < len(all); i++ {
		if all[i].RequestTimeMs < all[i-1].RequestTimeMs {
			t.Fatalf("requests not in ascending order at index %d", i)
		}
	}
}
