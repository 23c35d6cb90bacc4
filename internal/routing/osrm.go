package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"modabm/internal/model"
)

// OSRMRouter calls an OSRM-compatible HTTP routing service's
// /route/v1/driving endpoint. It holds no per-call state and is safe for
// concurrent use.
type OSRMRouter struct {
	baseURL    string
	httpClient *http.Client
}

// NewOSRMRouter builds a client against an OSRM base URL such as
// "http://localhost:5000". A nil client gets a default with a 5s timeout.
func NewOSRMRouter(baseURL string, client *http.Client) *OSRMRouter {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &OSRMRouter{baseURL: baseURL, httpClient: client}
}

type osrmResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	DistanceM float64   `json:"distance"`
	DurationS float64   `json:"duration"`
	Legs      []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	DistanceM float64    `json:"distance"`
	DurationS float64    `json:"duration"`
	Steps     []osrmStep `json:"steps"`
}

type osrmStep struct {
	DistanceM float64      `json:"distance"`
	DurationS float64      `json:"duration"`
	Geometry  osrmGeometry `json:"geometry"`
}

type osrmGeometry struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// Route implements Router. For TimeOnly it requests overview=false with no
// step geometry; for FullRoute it requests steps=true so legs/steps/poses
// are populated (spec §6.1).
func (r *OSRMRouter) Route(ctx context.Context, origin, destination model.Position, mode Mode) (model.Route, error) {
	u, err := r.buildURL(origin, destination, mode)
	if err != nil {
		return model.Route{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Route{}, err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return model.Route{}, fmt.Errorf("routing: osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.Route{}, fmt.Errorf("routing: osrm decode failed: %w", err)
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return model.Route{}, ErrInfeasible
	}
	return toModelRoute(parsed.Routes[0], mode), nil
}

func (r *OSRMRouter) buildURL(origin, destination model.Position, mode Mode) (string, error) {
	coords := fmt.Sprintf("%f,%f;%f,%f", origin.Lon, origin.Lat, destination.Lon, destination.Lat)
	base, err := url.Parse(r.baseURL + "/route/v1/driving/" + coords)
	if err != nil {
		return "", fmt.Errorf("routing: invalid osrm base url: %w", err)
	}
	q := base.Query()
	q.Set("alternatives", "false")
	q.Set("geometries", "geojson")
	if mode == FullRoute {
		q.Set("steps", "true")
		q.Set("overview", "full")
	} else {
		q.Set("steps", "false")
		q.Set("overview", "false")
	}
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func toModelRoute(rt osrmRoute, mode Mode) model.Route {
	route := model.Route{
		DistanceM:  rt.DistanceM,
		DurationMs: int64(rt.DurationS * 1000),
	}
	if mode == TimeOnly {
		return route
	}
	for _, l := range rt.Legs {
		leg := model.Leg{DistanceM: l.DistanceM, DurationMs: int64(l.DurationS * 1000)}
		for _, s := range l.Steps {
			poses := make([]model.Position, 0, len(s.Geometry.Coordinates))
			for _, c := range s.Geometry.Coordinates {
				poses = append(poses, model.Position{Lon: c[0], Lat: c[1]})
			}
			if len(poses) < 2 {
				continue
			}
			leg.Steps = append(leg.Steps, model.Step{
				Poses:      poses,
				DistanceM:  s.DistanceM,
				DurationMs: int64(s.DurationS * 1000),
			})
		}
		if len(leg.Steps) > 0 {
			route.Legs = append(route.Legs, leg)
		}
	}
	return route
}
