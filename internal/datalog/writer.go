// Package datalog persists simulation state and the final trip listing as
// newline-delimited YAML (spec §6.4), and builds the human-readable
// end-of-run report (spec §6.6). Grounded on the original simulator's
// write_state_to_datalog/write_trips_to_datalog/create_report and adapted
// to the teacher's free-function report style (sim/report.go).
package datalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"modabm/internal/model"
)

// Writer appends one YAML document per cycle (or frame, when animating)
// to an underlying stream. cmd/modabm opens the file and builds the Writer
// once, the driver holds it for the run, and the CLI closes it
// deterministically after Run and WriteTrips have finished (spec §5).
type Writer struct {
	enc *yaml.Encoder
}

// NewWriter wraps w in a YAML document stream. Closing w is the caller's
// responsibility; Close here only flushes/closes the encoder.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: yaml.NewEncoder(w)}
}

// Close flushes the underlying encoder.
func (w *Writer) Close() error {
	return w.enc.Close()
}

type stateDoc struct {
	SystemTimeMs int64         `yaml:"system_time_ms"`
	Vehicles     []vehicleDoc  `yaml:"vehicles"`
}

type vehicleDoc struct {
	Pos       model.Position `yaml:"pos"`
	Waypoints [][]model.Position `yaml:"waypoints"`
}

// WriteState appends one state snapshot: each vehicle's position plus,
// for each waypoint, the flattened list of poses along its embedded route
// (spec §6.4).
func (w *Writer) WriteState(systemTimeMs int64, vehicles []model.Vehicle) error {
	doc := stateDoc{SystemTimeMs: systemTimeMs}
	for _, v := range vehicles {
		vd := vehicleDoc{Pos: v.Pos}
		for _, wp := range v.Waypoints {
			var poses []model.Position
			for _, leg := range wp.Route.Legs {
				for _, step := range leg.Steps {
					poses = append(poses, step.Poses...)
				}
			}
			vd.Waypoints = append(vd.Waypoints, poses)
		}
		doc.Vehicles = append(doc.Vehicles, vd)
	}
	if err := w.enc.Encode(doc); err != nil {
		return fmt.Errorf("datalog: write state: %w", err)
	}
	return nil
}

// WriteTrips appends the terminal document: every main-window trip with
// id, origin, destination, status, and request/pickup/dropoff times.
func (w *Writer) WriteTrips(trips []model.Trip, mainStartMs, mainEndMs int64) error {
	var main []model.Trip
	for _, t := range trips {
		if t.InMainWindow(mainStartMs, mainEndMs) {
			main = append(main, t)
		}
	}
	if err := w.enc.Encode(struct {
		Trips []model.Trip `yaml:"trips"`
	}{Trips: main}); err != nil {
		return fmt.Errorf("datalog: write trips: %w", err)
	}
	return nil
}
