package model_test

import (
	"testing"

	"gopkg.in/yaml.v3"

	"modabm/internal/model"
)

func TestPositionMarshalYAMLRoundsToSixDecimals(t *testing.T) {
	p := model.Position{Lon: 1.0000005, Lat: -2.1234567}
	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back model.Position
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Lon != 1.000001 {
		t.Fatalf("Lon = %f, want 1.000001", back.Lon)
	}
	if back.Lat != -2.123457 {
		t.Fatalf("Lat = %f, want -2.123457", back.Lat)
	}
}

func TestRouteValidateRejectsEmptyLegs(t *testing.T) {
	r := model.Route{Legs: []model.Leg{{}}, DurationMs: 1000}
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for a route whose leg has no steps")
	}
}

func TestRouteValidateAcceptsTimeOnly(t *testing.T) {
	r := model.Route{DurationMs: 500}
	if err := r.Validate(); err != nil {
		t.Fatalf("time-only route should validate: %v", err)
	}
}

func TestRouteValidateRejectsSinglePoseStep(t *testing.T) {
	r := model.Route{
		Legs: []model.Leg{{
			Steps:      []model.Step{{Poses: []model.Position{{Lon: 0, Lat: 0}}, DistanceM: 1, DurationMs: 1}},
			DistanceM:  1,
			DurationMs: 1,
		}},
		DistanceM:  1,
		DurationMs: 1,
	}
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for a step with fewer than 2 poses")
	}
}

func TestHeadPoseOfEmptyRoute(t *testing.T) {
	var r model.Route
	if _, ok := r.HeadPose(); ok {
		t.Fatalf("expected no head pose for an empty route")
	}
}
