package model

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestTruncateIdentity(t *testing.T) {
	route := sampleRoute()
	before := route
	if err := Truncate(&route, 0); err != nil {
		t.Fatalf("Truncate(0) returned error: %v", err)
	}
	if route.DistanceM != before.DistanceM || route.DurationMs != before.DurationMs {
		t.Fatalf("truncate(route, 0) must be a no-op, got distance=%f duration=%d", route.DistanceM, route.DurationMs)
	}
}

func TestTruncateMidStep(t *testing.T) {
	// Scenario 5: poses [(0,0),(0,5),(5,5)], Manhattan length 10, duration 2000ms.
	step := Step{
		Poses:      []Position{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 5}, {Lon: 5, Lat: 5}},
		DistanceM:  10,
		DurationMs: 2000,
	}
	leg := Leg{Steps: []Step{step}}
	leg = leg.recompute()
	route := Route{Legs: []Leg{leg}}
	route = route.recompute()

	if err := Truncate(&route, 500); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	gotStep := route.Legs[0].Steps[0]
	wantPoses := []Position{{Lon: 0, Lat: 2.5}, {Lon: 0, Lat: 5}, {Lon: 5, Lat: 5}}
	if len(gotStep.Poses) != len(wantPoses) {
		t.Fatalf("got %d poses, want %d", len(gotStep.Poses), len(wantPoses))
	}
	for i, p := range wantPoses {
		if !approxEqual(gotStep.Poses[i].Lon, p.Lon, 1e-9) || !approxEqual(gotStep.Poses[i].Lat, p.Lat, 1e-9) {
			t.Fatalf("pose %d = %+v, want %+v", i, gotStep.Poses[i], p)
		}
	}
	if !approxEqual(gotStep.DistanceM, 7.5, 1e-9) {
		t.Fatalf("distance = %f, want 7.5", gotStep.DistanceM)
	}
	if gotStep.DurationMs != 1500 {
		t.Fatalf("duration = %d, want 1500", gotStep.DurationMs)
	}
}

func TestTruncateAdditivity(t *testing.T) {
	r1 := sampleRoute()
	r2 := sampleRoute()

	d1, d2 := int64(400), int64(300)
	if err := Truncate(&r1, d1); err != nil {
		t.Fatalf("first truncate: %v", err)
	}
	if err := Truncate(&r1, d2); err != nil {
		t.Fatalf("second truncate: %v", err)
	}
	if err := Truncate(&r2, d1+d2); err != nil {
		t.Fatalf("combined truncate: %v", err)
	}
	if !approxEqual(r1.DistanceM, r2.DistanceM, 1e-6) {
		t.Fatalf("distances diverge: sequential=%f combined=%f", r1.DistanceM, r2.DistanceM)
	}
	if absI64(r1.DurationMs-r2.DurationMs) > 1 {
		t.Fatalf("durations diverge: sequential=%d combined=%d", r1.DurationMs, r2.DurationMs)
	}
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestTruncateRejectsOutOfRangeDt(t *testing.T) {
	route := sampleRoute()
	if err := Truncate(&route, route.DurationMs); err == nil {
		t.Fatalf("expected error truncating by full duration")
	}
	if err := Truncate(&route, -1); err == nil {
		t.Fatalf("expected error truncating by negative dt")
	}
}

func sampleRoute() Route {
	step := Step{
		Poses:      []Position{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}},
		DistanceM:  1000,
		DurationMs: 1000,
	}
	leg := Leg{Steps: []Step{step, step}}
	leg = leg.recompute()
	route := Route{Legs: []Leg{leg, leg}}
	return route.recompute()
}
