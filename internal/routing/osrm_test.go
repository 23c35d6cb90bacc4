package routing_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"modabm/internal/model"
	"modabm/internal/routing"
)

const osrmFullRouteBody = `{
  "code": "Ok",
  "routes": [{
    "distance": 1000,
    "duration": 120,
    "legs": [{
      "distance": 1000,
      "duration": 120,
      "steps": [{
        "distance": 1000,
        "duration": 120,
        "geometry": {"coordinates": [[0,0],[0.01,0.01]]}
      }]
    }]
  }]
}`

func TestOSRMRouterParsesFullRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(osrmFullRouteBody))
	}))
	defer srv.Close()

	rt := routing.NewOSRMRouter(srv.URL, nil)
	route, err := rt.Route(context.Background(), model.Position{Lon: 0, Lat: 0}, model.Position{Lon: 0.01, Lat: 0.01}, routing.FullRoute)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if err := route.Validate(); err != nil {
		t.Fatalf("parsed route should be well-formed: %v", err)
	}
	if route.DurationMs != 120_000 {
		t.Fatalf("DurationMs = %d, want 120000", route.DurationMs)
	}
}

func TestOSRMRouterTreatsNoRouteAsInfeasible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer srv.Close()

	rt := routing.NewOSRMRouter(srv.URL, nil)
	_, err := rt.Route(context.Background(), model.Position{Lon: 0, Lat: 0}, model.Position{Lon: 1, Lat: 1}, routing.TimeOnly)
	if err != routing.ErrInfeasible {
		t.Fatalf("err = %v, want ErrInfeasible", err)
	}
}
