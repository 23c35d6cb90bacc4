// Package sim implements the simulation driver (C6): the cycle/frame
// clock that interleaves vehicle advance, demand draining, and dispatch,
// bracketed by warm-up and wind-down phases during which statistics are
// not counted (spec §4.4).
package sim

import (
	"context"
	"fmt"
	"time"

	"modabm/internal/datalog"
	"modabm/internal/demand"
	"modabm/internal/dispatch"
	"modabm/internal/metrics"
	"modabm/internal/model"
)

// Options configures one run of the driver, mirroring spec §6.3's
// Simulation/Output configuration groups.
type Options struct {
	CycleMs         int64
	WarmupMs        int64
	DurationMs      int64
	WinddownMs      int64
	FramesPerCycle  int
	OutputDatalog   bool
	MaxPickupWaitMs int64
}

// Driver owns the trip vector, the vehicle vector, and the simulation
// clock. It is the sole writer to both vectors (spec §5).
type Driver struct {
	opt        Options
	demand     demand.Source
	dispatcher *dispatch.Dispatcher
	writer     *datalog.Writer
	collectors *metrics.Collectors

	systemTimeMs int64
	mainStartMs  int64
	mainEndMs    int64

	trips    []model.Trip
	vehicles []model.Vehicle
}

// New builds a Driver over the given initial fleet. collectors may be nil,
// in which case per-cycle metrics are simply not observed.
func New(opt Options, source demand.Source, dispatcher *dispatch.Dispatcher, writer *datalog.Writer, collectors *metrics.Collectors, vehicles []model.Vehicle) (*Driver, error) {
	if opt.CycleMs <= 0 {
		return nil, fmt.Errorf("sim: cycle_ms must be positive")
	}
	frames := opt.FramesPerCycle
	if frames <= 0 {
		frames = 1
	}
	if opt.OutputDatalog && opt.CycleMs%int64(frames) != 0 {
		return nil, fmt.Errorf("sim: cycle_ms %d not evenly divisible by frames_per_cycle %d", opt.CycleMs, frames)
	}
	opt.FramesPerCycle = frames
	return &Driver{
		opt:         opt,
		demand:      source,
		dispatcher:  dispatcher,
		writer:      writer,
		collectors:  collectors,
		mainStartMs: opt.WarmupMs,
		mainEndMs:   opt.WarmupMs + opt.DurationMs,
		vehicles:    vehicles,
	}, nil
}

// Trips returns the driver's trip vector as it stands; callers must not
// retain it across further Run calls since it is reallocated on append.
func (d *Driver) Trips() []model.Trip { return d.trips }

// Vehicles returns the driver's vehicle vector.
func (d *Driver) Vehicles() []model.Vehicle { return d.vehicles }

// shutdownMs is the total simulated duration: warm-up + main + wind-down.
func (d *Driver) shutdownMs() int64 {
	return d.opt.WarmupMs + d.opt.DurationMs + d.opt.WinddownMs
}

// Run executes the full cycle loop of spec §4.4 until system_time reaches
// shutdown. It returns only an error; the trip vector, unfiltered, is
// read back through Trips.
func (d *Driver) Run(ctx context.Context) error {
	frameDurationMs := d.opt.CycleMs / int64(d.opt.FramesPerCycle)
	shutdown := d.shutdownMs()

	for d.systemTimeMs < shutdown {
		cycleStart := time.Now()
		inCycleMain := false
		for f := 0; f < d.opt.FramesPerCycle; f++ {
			inMain := d.systemTimeMs >= d.mainStartMs && d.systemTimeMs < d.mainEndMs
			inCycleMain = inCycleMain || inMain
			for i := range d.vehicles {
				if err := model.Advance(&d.vehicles[i], d.trips, d.systemTimeMs, frameDurationMs, inMain); err != nil {
					return fmt.Errorf("sim: advance vehicle %d: %w", d.vehicles[i].ID, err)
				}
			}
			d.systemTimeMs += frameDurationMs
			if d.opt.OutputDatalog && inMain && d.writer != nil {
				if err := d.writer.WriteState(d.systemTimeMs, d.vehicles); err != nil {
					return fmt.Errorf("sim: write state: %w", err)
				}
			}
		}

		requests, err := d.demand.DrainUntil(ctx, d.systemTimeMs)
		if err != nil {
			return fmt.Errorf("sim: drain demand: %w", err)
		}
		var pending []int
		for _, r := range requests {
			if !r.Origin.Valid() || !r.Destination.Valid() {
				return fmt.Errorf("sim: out-of-area request at t=%dms", r.RequestTimeMs)
			}
			trip := model.Trip{
				ID:            len(d.trips),
				Origin:        r.Origin,
				Destination:   r.Destination,
				Status:        model.Requested,
				RequestTimeMs: r.RequestTimeMs,
				MaxPickupMs:   r.RequestTimeMs + d.opt.MaxPickupWaitMs,
			}
			d.trips = append(d.trips, trip)
			pending = append(pending, trip.ID)
		}

		if len(pending) > 0 {
			dispatchStart := time.Now()
			err := d.dispatcher.Assign(ctx, pending, d.trips, d.vehicles, d.systemTimeMs)
			if d.collectors != nil {
				d.collectors.DispatchSearchDuration.Observe(time.Since(dispatchStart).Seconds())
			}
			if err != nil {
				return fmt.Errorf("sim: dispatch: %w", err)
			}
		}

		if d.collectors != nil {
			d.collectors.CycleDuration.Observe(time.Since(cycleStart).Seconds())
			if inCycleMain {
				d.collectors.FleetLoadFactor.Set(fleetLoadFactor(d.vehicles))
			}
		}
	}
	return nil
}

// fleetLoadFactor is the fleet-wide ratio of loaded to total distance
// traveled so far, the same quantity the end-of-run report computes
// (internal/datalog.BuildReport), sampled once per cycle for the gauge.
func fleetLoadFactor(vehicles []model.Vehicle) float64 {
	var totalDist, loadedDist float64
	for _, v := range vehicles {
		totalDist += v.DistTraveledM
		loadedDist += v.LoadedDistTraveledM
	}
	if totalDist == 0 {
		return 0
	}
	return loadedDist / totalDist
}
