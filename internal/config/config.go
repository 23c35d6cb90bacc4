// Package config loads and validates the platform and demand
// configuration files (spec §6.3), layered the way the example pack's
// services do: viper for YAML parsing with environment-variable
// overrides, an optional .env overlay, and struct-tag validation via
// go-playground/validator.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Area bounds requests must fall within; outside is an assertion failure
// in the demand source (spec §7).
type Area struct {
	LonMin float64 `mapstructure:"lon_min" yaml:"lon_min" validate:"required,min=-180,max=180"`
	LonMax float64 `mapstructure:"lon_max" yaml:"lon_max" validate:"required,min=-180,max=180,gtfield=LonMin"`
	LatMin float64 `mapstructure:"lat_min" yaml:"lat_min" validate:"required,min=-90,max=90"`
	LatMax float64 `mapstructure:"lat_max" yaml:"lat_max" validate:"required,min=-90,max=90,gtfield=LatMin"`
}

// Fleet describes the vehicle pool at simulation start.
type Fleet struct {
	FleetSize   int     `mapstructure:"fleet_size" yaml:"fleet_size" validate:"required,min=1"`
	VehCapacity int     `mapstructure:"veh_capacity" yaml:"veh_capacity" validate:"required,min=1"`
	InitialLon  float64 `mapstructure:"initial_lon" yaml:"initial_lon" validate:"min=-180,max=180"`
	InitialLat  float64 `mapstructure:"initial_lat" yaml:"initial_lat" validate:"min=-90,max=90"`
}

// RequestConfig bounds how long a rider will wait before walking away.
type RequestConfig struct {
	MaxPickupWaitTimeS float64 `mapstructure:"max_pickup_wait_time_s" yaml:"max_pickup_wait_time_s" validate:"required,gt=0"`
}

// Simulation shapes the cycle clock and warm-up/main/wind-down windows.
type Simulation struct {
	CycleS             float64 `mapstructure:"cycle_s" yaml:"cycle_s" validate:"required,gt=0"`
	WarmupDurationS    float64 `mapstructure:"warmup_duration_s" yaml:"warmup_duration_s" validate:"min=0"`
	SimulationDurationS float64 `mapstructure:"simulation_duration_s" yaml:"simulation_duration_s" validate:"required,gt=0"`
	WinddownDurationS  float64 `mapstructure:"winddown_duration_s" yaml:"winddown_duration_s" validate:"min=0"`
}

// Output controls datalog persistence and the (unimplemented — see
// SPEC_FULL.md Non-goals) video-rendering knobs, still parsed/validated
// since frames_per_cycle governs datalog snapshot granularity regardless
// of whether video is ever rendered.
type Output struct {
	OutputDatalog        bool    `mapstructure:"output_datalog" yaml:"output_datalog"`
	PathToOutputDatalog  string  `mapstructure:"path_to_output_datalog" yaml:"path_to_output_datalog"`
	RenderVideo          bool    `mapstructure:"render_video" yaml:"render_video"`
	PathToOutputVideo    string  `mapstructure:"path_to_output_video" yaml:"path_to_output_video"`
	FramesPerCycle       int     `mapstructure:"frames_per_cycle" yaml:"frames_per_cycle" validate:"min=0"`
	ReplaySpeed          float64 `mapstructure:"replay_speed" yaml:"replay_speed"`
}

// Platform is the top-level configuration document, mirroring the
// original PlatformConfig (config.cpp). It also serves as the source of
// the end-of-run report's configuration echo (spec §6.6): main.go
// YAML-marshals the loaded Platform verbatim into the report.
type Platform struct {
	Area       Area          `mapstructure:"area" yaml:"area" validate:"required"`
	Fleet      Fleet         `mapstructure:"fleet" yaml:"fleet" validate:"required"`
	Request    RequestConfig `mapstructure:"request" yaml:"request" validate:"required"`
	Simulation Simulation    `mapstructure:"simulation" yaml:"simulation" validate:"required"`
	Output     Output        `mapstructure:"output" yaml:"output"`
}

// Error wraps a configuration failure: malformed YAML, failed validation,
// or an output path missing when a flag implies it (spec §7).
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %v", e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

// LoadPlatform reads and validates a platform configuration file,
// overlaying any MODABM_-prefixed environment variables and an optional
// .env file (adapted from acdtunes-spacetraders's LoadConfig).
func LoadPlatform(path string) (*Platform, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("MODABM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Cause: fmt.Errorf("reading %s: %w", path, err)}
	}

	var cfg Platform
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Cause: fmt.Errorf("unmarshalling: %w", err)}
	}

	if err := cfg.validate(); err != nil {
		return nil, &Error{Cause: err}
	}
	return &cfg, nil
}

func (p *Platform) validate() error {
	if err := validator.New().Struct(p); err != nil {
		return err
	}
	if p.Output.RenderVideo && !p.Output.OutputDatalog {
		return fmt.Errorf("render_video requires output_datalog")
	}
	if p.Output.OutputDatalog && p.Output.PathToOutputDatalog == "" {
		return fmt.Errorf("output_datalog requires path_to_output_datalog")
	}
	if p.Output.RenderVideo {
		if p.Output.PathToOutputVideo == "" {
			return fmt.Errorf("render_video requires path_to_output_video")
		}
		if p.Output.FramesPerCycle <= 0 {
			return fmt.Errorf("render_video requires frames_per_cycle > 0")
		}
		if p.Output.ReplaySpeed <= 0 {
			return fmt.Errorf("render_video requires replay_speed > 0")
		}
	}
	if p.Output.FramesPerCycle > 0 {
		cycleMs := int64(p.Simulation.CycleS * 1000)
		if cycleMs%int64(p.Output.FramesPerCycle) != 0 {
			return fmt.Errorf("cycle_s*1000 (%dms) not evenly divisible by frames_per_cycle (%d)", cycleMs, p.Output.FramesPerCycle)
		}
	}
	return nil
}
