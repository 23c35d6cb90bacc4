package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"modabm/internal/config"
	"modabm/internal/demand"
	"modabm/internal/legacycorridor"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "platform.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

const validPlatformYAML = `
area:
  lon_min: -1
  lon_max: 1
  lat_min: -1
  lat_max: 1
fleet:
  fleet_size: 5
  veh_capacity: 4
  initial_lon: 0
  initial_lat: 0
request:
  max_pickup_wait_time_s: 300
simulation:
  cycle_s: 30
  warmup_duration_s: 0
  simulation_duration_s: 3600
  winddown_duration_s: 0
output:
  output_datalog: false
`

func TestLoadPlatformValid(t *testing.T) {
	path := writeTempYAML(t, validPlatformYAML)
	cfg, err := config.LoadPlatform(path)
	if err != nil {
		t.Fatalf("LoadPlatform: %v", err)
	}
	if cfg.Fleet.FleetSize != 5 {
		t.Fatalf("fleet_size = %d, want 5", cfg.Fleet.FleetSize)
	}
}

const datalogWithoutPathYAML = `
area:
  lon_min: -1
  lon_max: 1
  lat_min: -1
  lat_max: 1
fleet:
  fleet_size: 5
  veh_capacity: 4
  initial_lon: 0
  initial_lat: 0
request:
  max_pickup_wait_time_s: 300
simulation:
  cycle_s: 30
  warmup_duration_s: 0
  simulation_duration_s: 3600
  winddown_duration_s: 0
output:
  output_datalog: true
`

func TestLoadPlatformRejectsDatalogWithoutPath(t *testing.T) {
	path := writeTempYAML(t, datalogWithoutPathYAML)
	if _, err := config.LoadPlatform(path); err == nil {
		t.Fatalf("expected error when output_datalog is set without a path")
	}
}

func TestLoadDemandRejectsEmptyPairs(t *testing.T) {
	if _, err := config.LoadDemand([]byte("od_pairs: []\n")); err == nil {
		t.Fatalf("expected error for empty od_pairs")
	}
}

func TestLoadDemandParsesPairs(t *testing.T) {
	raw := []byte(`
od_pairs:
  - origin_lon: 0
    origin_lat: 0
    destination_lon: 1
    destination_lat: 1
    trips_per_hour: 30
`)
	pairs, err := config.LoadDemand(raw)
	if err != nil {
		t.Fatalf("LoadDemand: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].TripsPerHour != 30 {
		t.Fatalf("trips_per_hour = %f, want 30", pairs[0].TripsPerHour)
	}
}

func TestLoadDemandSourceDefaultsToPoisson(t *testing.T) {
	raw := []byte(`
od_pairs:
  - origin_lon: 0
    origin_lat: 0
    destination_lon: 1
    destination_lat: 1
    trips_per_hour: 30
`)
	src, err := config.LoadDemandSource(raw, 1)
	if err != nil {
		t.Fatalf("LoadDemandSource: %v", err)
	}
	if _, ok := src.(*demand.PoissonGenerator); !ok {
		t.Fatalf("expected a *demand.PoissonGenerator, got %T", src)
	}
}

func TestLoadDemandSourceSelectsLegacyCorridor(t *testing.T) {
	raw := []byte(`
source: legacycorridor
legacy_corridor:
  area_lon_min: 0
  area_lon_max: 10
  area_lat_min: 0
  area_lat_max: 10
  favored_outbound: true
  spatial_gradient: 0.5
  baseline_demand: 0.2
  dir_bias: 1.5
  trips_per_hour: 120
`)
	src, err := config.LoadDemandSource(raw, 1)
	if err != nil {
		t.Fatalf("LoadDemandSource: %v", err)
	}
	if _, ok := src.(*legacycorridor.Generator); !ok {
		t.Fatalf("expected a *legacycorridor.Generator, got %T", src)
	}
}

func TestLoadDemandSourceRejectsUnknownSource(t *testing.T) {
	if _, err := config.LoadDemandSource([]byte("source: made_up\n"), 1); err == nil {
		t.Fatalf("expected error for an unknown demand source")
	}
}

func TestLoadDemandSourceRejectsLegacyCorridorWithoutSection(t *testing.T) {
	if _, err := config.LoadDemandSource([]byte("source: legacycorridor\n"), 1); err == nil {
		t.Fatalf("expected error when legacy_corridor section is missing")
	}
}
