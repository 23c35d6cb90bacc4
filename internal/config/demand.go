package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"modabm/internal/demand"
	"modabm/internal/legacycorridor"
	"modabm/internal/model"
)

// DemandFile is the on-disk shape of a demand configuration. Source
// selects which demand.Source implementation the simulator wires up:
// "poisson" (the default, original demand_generator.cpp-faithful weighted
// OD model) or "legacycorridor" (the teacher's adapted directional/
// spatial-gradient generator, spec §6.2's documented alternate option).
type DemandFile struct {
	Source         string               `yaml:"source"`
	ODPairs        []odEntry            `yaml:"od_pairs"`
	LegacyCorridor *legacyCorridorEntry `yaml:"legacy_corridor"`
}

type odEntry struct {
	OriginLon      float64 `yaml:"origin_lon" validate:"min=-180,max=180"`
	OriginLat      float64 `yaml:"origin_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `yaml:"destination_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `yaml:"destination_lat" validate:"min=-90,max=90"`
	TripsPerHour   float64 `yaml:"trips_per_hour" validate:"required,gt=0"`
}

type legacyCorridorEntry struct {
	AreaLonMin      float64 `yaml:"area_lon_min"`
	AreaLonMax      float64 `yaml:"area_lon_max" validate:"required,gtfield=AreaLonMin"`
	AreaLatMin      float64 `yaml:"area_lat_min"`
	AreaLatMax      float64 `yaml:"area_lat_max" validate:"required,gtfield=AreaLatMin"`
	FavoredOutbound bool    `yaml:"favored_outbound"`
	FavoredInbound  bool    `yaml:"favored_inbound"`
	SpatialGradient float64 `yaml:"spatial_gradient" validate:"min=0,max=1"`
	BaselineDemand  float64 `yaml:"baseline_demand" validate:"min=0,max=1"`
	DirBias         float64 `yaml:"dir_bias" validate:"min=0"`
	TripsPerHour    float64 `yaml:"trips_per_hour" validate:"required,gt=0"`
}

func parseDemandFile(raw []byte) (*DemandFile, error) {
	var file DemandFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &Error{Cause: fmt.Errorf("parsing demand config: %w", err)}
	}
	if file.Source == "" {
		file.Source = "poisson"
	}
	switch file.Source {
	case "poisson":
		if len(file.ODPairs) == 0 {
			return nil, &Error{Cause: fmt.Errorf("demand config: source \"poisson\" requires at least one od_pairs entry")}
		}
		if err := validator.New().Var(file.ODPairs, "dive"); err != nil {
			return nil, &Error{Cause: err}
		}
	case "legacycorridor":
		if file.LegacyCorridor == nil {
			return nil, &Error{Cause: fmt.Errorf("demand config: source \"legacycorridor\" requires a legacy_corridor section")}
		}
		if err := validator.New().Struct(file.LegacyCorridor); err != nil {
			return nil, &Error{Cause: err}
		}
	default:
		return nil, &Error{Cause: fmt.Errorf("demand config: unknown source %q", file.Source)}
	}
	return &file, nil
}

// LoadDemand reads a demand configuration file into the ODPair slice the
// demand.PoissonGenerator consumes. It only accepts the "poisson" source;
// use LoadDemandSource to also support "legacycorridor".
func LoadDemand(raw []byte) ([]demand.ODPair, error) {
	file, err := parseDemandFile(raw)
	if err != nil {
		return nil, err
	}
	if file.Source != "poisson" {
		return nil, &Error{Cause: fmt.Errorf("demand config: source %q is not a Poisson OD list; use LoadDemandSource", file.Source)}
	}
	return toODPairs(file.ODPairs), nil
}

// LoadDemandSource reads a demand configuration file and builds whichever
// demand.Source its "source" field selects (spec §6.2): the default
// Poisson weighted-OD generator, or the legacycorridor alternate.
func LoadDemandSource(raw []byte, seed int64) (demand.Source, error) {
	file, err := parseDemandFile(raw)
	if err != nil {
		return nil, err
	}
	if file.Source == "legacycorridor" {
		lc := file.LegacyCorridor
		cfg := legacycorridor.Config{
			AreaLonMin:      lc.AreaLonMin,
			AreaLonMax:      lc.AreaLonMax,
			AreaLatMin:      lc.AreaLatMin,
			AreaLatMax:      lc.AreaLatMax,
			FavoredOutbound: lc.FavoredOutbound,
			FavoredInbound:  lc.FavoredInbound,
			SpatialGradient: lc.SpatialGradient,
			BaselineDemand:  lc.BaselineDemand,
			DirBias:         lc.DirBias,
			TripsPerHour:    lc.TripsPerHour,
		}
		return legacycorridor.NewGenerator(cfg, seed), nil
	}
	return demand.NewPoissonGenerator(toODPairs(file.ODPairs), seed)
}

func toODPairs(entries []odEntry) []demand.ODPair {
	pairs := make([]demand.ODPair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, demand.ODPair{
			Origin:       positionOf(e.OriginLon, e.OriginLat),
			Destination:  positionOf(e.DestinationLon, e.DestinationLat),
			TripsPerHour: e.TripsPerHour,
		})
	}
	return pairs
}

func positionOf(lon, lat float64) model.Position {
	return model.Position{Lon: lon, Lat: lat}
}
