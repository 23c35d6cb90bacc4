package datalog

import (
	"fmt"
	"io"
	"time"

	"modabm/internal/model"
)

// Report carries the end-of-run summary of spec §6.6.
type Report struct {
	Runtime           time.Duration
	SimulatedDuration time.Duration

	TripsRequested int
	TripsDispatchedOrDone int
	TripsWalkedAway int

	AvgWaitSeconds   float64
	AvgTravelSeconds float64

	FleetAvgDistanceM  float64
	FleetDistPerHourM  float64
	LoadFactor         float64

	// ConfigEcho is the run's configuration, rendered by the caller (the
	// YAML form of internal/config.Platform), satisfying spec §6.6's
	// "configuration echo".
	ConfigEcho string
	// MetricsDump is the Prometheus text-exposition dump of the run's
	// collectors (internal/metrics.Collectors.Dump), satisfying
	// SPEC_FULL.md §4.9's "dump the registry into the textual report".
	MetricsDump string
}

// BuildReport computes the report fields from the main-window trip and
// vehicle state, matching the original's create_report (spec §6.6).
// configEcho and metricsDump are opaque pre-rendered text, threaded straight
// through to the Report and printed verbatim by PrintConsoleReport.
func BuildReport(trips []model.Trip, vehicles []model.Vehicle, mainStartMs, mainEndMs int64, runtime time.Duration, simulatedMs int64, configEcho, metricsDump string) Report {
	r := Report{
		Runtime:           runtime,
		SimulatedDuration: time.Duration(simulatedMs) * time.Millisecond,
		ConfigEcho:        configEcho,
		MetricsDump:       metricsDump,
	}

	var waitSum, travelSum float64
	var completed int
	for _, t := range trips {
		if !t.InMainWindow(mainStartMs, mainEndMs) {
			continue
		}
		r.TripsRequested++
		switch t.Status {
		case model.Walkaway:
			r.TripsWalkedAway++
		case model.DroppedOff:
			r.TripsDispatchedOrDone++
			completed++
			waitSum += float64(t.PickupTimeMs-t.RequestTimeMs) / 1000.0
			travelSum += float64(t.DropoffTimeMs-t.PickupTimeMs) / 1000.0
		default:
			r.TripsDispatchedOrDone++
		}
	}
	if completed > 0 {
		r.AvgWaitSeconds = waitSum / float64(completed)
		r.AvgTravelSeconds = travelSum / float64(completed)
	}

	var totalDist, totalLoadedDist float64
	for _, v := range vehicles {
		totalDist += v.DistTraveledM
		totalLoadedDist += v.LoadedDistTraveledM
	}
	if len(vehicles) > 0 {
		r.FleetAvgDistanceM = totalDist / float64(len(vehicles))
	}
	if simulatedMs > 0 {
		r.FleetDistPerHourM = totalDist / (float64(simulatedMs) / 1000.0 / 3600.0)
	}
	if totalDist > 0 {
		r.LoadFactor = totalLoadedDist / totalDist
	}
	return r
}

// PrintConsoleReport writes the human-readable summary to w, in the
// teacher's plain fmt.Fprintf report style (sim/report.go).
func PrintConsoleReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "=== MoD Simulation Report ===")
	if r.ConfigEcho != "" {
		fmt.Fprintln(w, "--- configuration ---")
		fmt.Fprint(w, r.ConfigEcho)
		fmt.Fprintln(w, "---------------------")
	}
	fmt.Fprintf(w, "Runtime: %s (%.4fs per simulated second)\n", r.Runtime, r.Runtime.Seconds()/max1(r.SimulatedDuration.Seconds()))
	fmt.Fprintf(w, "Trips requested: %d\n", r.TripsRequested)
	if r.TripsRequested > 0 {
		fmt.Fprintf(w, "  dispatched/completed: %d (%.1f%%)\n", r.TripsDispatchedOrDone, pct(r.TripsDispatchedOrDone, r.TripsRequested))
		fmt.Fprintf(w, "  walked away: %d (%.1f%%)\n", r.TripsWalkedAway, pct(r.TripsWalkedAway, r.TripsRequested))
	}
	fmt.Fprintf(w, "Average wait: %.1fs, average travel: %.1fs\n", r.AvgWaitSeconds, r.AvgTravelSeconds)
	fmt.Fprintf(w, "Fleet avg distance: %.1fm, per-hour: %.1fm, load factor: %.3f\n", r.FleetAvgDistanceM, r.FleetDistPerHourM, r.LoadFactor)
	if r.MetricsDump != "" {
		fmt.Fprintln(w, "--- metrics ---")
		fmt.Fprint(w, r.MetricsDump)
		fmt.Fprintln(w, "---------------")
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

func max1(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
