// Command modabm runs the mobility-on-demand fleet simulator described in
// SPEC_FULL.md: a fixed-size vehicle fleet serves stochastically
// generated trip requests over a geographic area, dispatched once per
// cycle by an insertion heuristic.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"modabm/internal/config"
	"modabm/internal/datalog"
	"modabm/internal/dispatch"
	"modabm/internal/metrics"
	"modabm/internal/model"
	"modabm/internal/routing"
	"modabm/internal/sim"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modabm <platform_config.yml> <osrm_map> <demand_config.yml> [seed]",
		Short: "Discrete-event simulator for a mobility-on-demand ride-hailing fleet",
		Long: "modabm runs a fixed-size vehicle fleet against a stream of stochastically\n" +
			"generated trip requests, dispatched once per cycle by an insertion heuristic.\n" +
			"osrm_map names the OSRM-compatible HTTP routing service to call (the router is\n" +
			"an external collaborator reached over the network, not an in-process engine).",
		Args:         cobra.RangeArgs(3, 4),
		SilenceUsage: true,
		RunE:         runModabm,
	}
	return cmd
}

func runModabm(cmd *cobra.Command, args []string) error {
	platformPath, osrmBaseURL, demandPath := args[0], args[1], args[2]
	seed := time.Now().UnixNano()
	if len(args) == 4 {
		v, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("modabm: invalid seed %q: %w", args[3], err)
		}
		seed = v
	}

	platform, err := config.LoadPlatform(platformPath)
	if err != nil {
		log.Printf("configuration error: %v", err)
		return err
	}
	demandRaw, err := os.ReadFile(demandPath)
	if err != nil {
		log.Printf("demand config error: %v", err)
		return err
	}
	source, err := config.LoadDemandSource(demandRaw, seed)
	if err != nil {
		log.Printf("demand config error: %v", err)
		return err
	}

	router := routing.NewOSRMRouter(osrmBaseURL, nil)
	collectors := metrics.New()

	vehicles := buildFleet(platform.Fleet)
	dispatcher := dispatch.New(router)

	var writer *datalog.Writer
	if platform.Output.OutputDatalog {
		f, err := os.Create(platform.Output.PathToOutputDatalog)
		if err != nil {
			return fmt.Errorf("modabm: opening datalog: %w", err)
		}
		defer f.Close()
		writer = datalog.NewWriter(f)
		defer writer.Close()
	}

	opt := sim.Options{
		CycleMs:         int64(platform.Simulation.CycleS * 1000),
		WarmupMs:        int64(platform.Simulation.WarmupDurationS * 1000),
		DurationMs:      int64(platform.Simulation.SimulationDurationS * 1000),
		WinddownMs:      int64(platform.Simulation.WinddownDurationS * 1000),
		FramesPerCycle:  platform.Output.FramesPerCycle,
		OutputDatalog:   platform.Output.OutputDatalog,
		MaxPickupWaitMs: int64(platform.Request.MaxPickupWaitTimeS * 1000),
	}

	driver, err := sim.New(opt, source, dispatcher, writer, collectors, vehicles)
	if err != nil {
		return fmt.Errorf("modabm: %w", err)
	}

	start := time.Now()
	if err := driver.Run(context.Background()); err != nil {
		log.Printf("simulation aborted: %v", err)
		return err
	}
	runtime := time.Since(start)

	if writer != nil {
		mainStart := opt.WarmupMs
		mainEnd := opt.WarmupMs + opt.DurationMs
		if err := writer.WriteTrips(driver.Trips(), mainStart, mainEnd); err != nil {
			return fmt.Errorf("modabm: %w", err)
		}
	}

	configEcho, err := yaml.Marshal(platform)
	if err != nil {
		return fmt.Errorf("modabm: rendering config echo: %w", err)
	}
	metricsDump, err := collectors.Dump()
	if err != nil {
		return fmt.Errorf("modabm: dumping metrics: %w", err)
	}

	report := datalog.BuildReport(driver.Trips(), driver.Vehicles(), opt.WarmupMs, opt.WarmupMs+opt.DurationMs, runtime, opt.DurationMs, string(configEcho), metricsDump)
	datalog.PrintConsoleReport(os.Stdout, report)
	return nil
}

func buildFleet(f config.Fleet) []model.Vehicle {
	vehicles := make([]model.Vehicle, f.FleetSize)
	for i := range vehicles {
		vehicles[i] = model.Vehicle{
			ID:       i,
			Pos:      model.Position{Lon: f.InitialLon, Lat: f.InitialLat},
			Capacity: f.VehCapacity,
		}
	}
	return vehicles
}
