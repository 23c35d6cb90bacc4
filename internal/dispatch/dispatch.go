// Package dispatch implements the insertion-heuristic assignment of
// pending trips to vehicles (spec §4.3): for each trip, enumerate every
// (pickup_index, dropoff_index) slot in every vehicle's current waypoint
// plan, validate feasibility, and commit the minimum marginal-cost
// insertion across the fleet.
package dispatch

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"modabm/internal/model"
	"modabm/internal/routing"
)

// Dispatcher assigns pending trips to vehicles once per cycle.
type Dispatcher struct {
	router routing.Router
}

// New builds a Dispatcher backed by the given router.
func New(router routing.Router) *Dispatcher {
	return &Dispatcher{router: router}
}

// candidate is one vehicle's best feasible insertion for the trip being
// assigned, or ok=false if no feasible insertion exists on that vehicle.
type candidate struct {
	ok            bool
	vehicleIdx    int
	costDelta     int64
	pickupIndex   int
	dropoffIndex  int
}

// Assign mutates trips and vehicles in place, processing pendingTripIDs in
// ascending order (spec §5). nowMs is the current simulation clock.
func (d *Dispatcher) Assign(ctx context.Context, pendingTripIDs []int, trips []model.Trip, vehicles []model.Vehicle, nowMs int64) error {
	sorted := append([]int(nil), pendingTripIDs...)
	sort.Ints(sorted)

	for _, tripID := range sorted {
		trip := trips[tripID]
		best, err := d.bestInsertion(ctx, trip, trips, vehicles, nowMs)
		if err != nil {
			return err
		}
		if !best.ok {
			trips[tripID].Status = model.Walkaway
			continue
		}
		plan, err := d.build(ctx, vehicles[best.vehicleIdx], tripID, trip, best.pickupIndex, best.dropoffIndex, true)
		if err != nil {
			// Routing failure on commit is treated the same as at search
			// time: the candidate becomes infeasible.
			trips[tripID].Status = model.Walkaway
			continue
		}
		vehicles[best.vehicleIdx].Waypoints = plan
		trips[tripID].Status = model.Dispatched
	}
	return nil
}

// bestInsertion scans vehicles in ascending id order (they are assumed
// stored in ascending-id order, matching the driver's vehicle vector) and
// reduces to (min cost, then smallest vehicle id) deterministically even
// when the per-vehicle searches run concurrently (spec §5).
func (d *Dispatcher) bestInsertion(ctx context.Context, trip model.Trip, trips []model.Trip, vehicles []model.Vehicle, nowMs int64) (candidate, error) {
	results := make([]candidate, len(vehicles))
	g, gctx := errgroup.WithContext(ctx)
	for i := range vehicles {
		i := i
		g.Go(func() error {
			c, err := d.searchVehicle(gctx, vehicles[i], trip, trips, nowMs)
			if err != nil {
				return err
			}
			c.vehicleIdx = i
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return candidate{}, err
	}

	best := candidate{}
	for _, c := range results {
		if !c.ok {
			continue
		}
		if !best.ok || c.costDelta < best.costDelta ||
			(c.costDelta == best.costDelta && vehicles[c.vehicleIdx].ID < vehicles[best.vehicleIdx].ID) {
			best = c
		}
	}
	return best, nil
}

// searchVehicle implements the per-vehicle search of spec §4.3: outer loop
// over pickup_index with monotonic pruning, inner loop over dropoff_index.
func (d *Dispatcher) searchVehicle(ctx context.Context, vehicle model.Vehicle, trip model.Trip, trips []model.Trip, nowMs int64) (candidate, error) {
	n := len(vehicle.Waypoints)
	baseCost, err := d.costOfPlan(vehicle.Waypoints)
	if err != nil {
		return candidate{}, err
	}

	best := candidate{}
	for pickupIdx := 0; pickupIdx <= n; pickupIdx++ {
		pickupTimeMs, err := d.pickupTimeAt(ctx, vehicle, pickupIdx, trip, nowMs)
		if err != nil {
			return candidate{}, err
		}
		if pickupTimeMs > trip.MaxPickupMs {
			// Monotonicity: pickup time as a function of pickup_index is
			// non-decreasing, so no larger index can help (spec §8).
			break
		}
		for dropoffIdx := pickupIdx; dropoffIdx <= n; dropoffIdx++ {
			plan, err := d.build(ctx, vehicle, -1, trip, pickupIdx, dropoffIdx, false)
			if err != nil {
				continue
			}
			if !validate(plan, vehicle.Load, vehicle.Capacity, nowMs, trips, trip) {
				continue
			}
			cost, err := d.costOfPlan(plan)
			if err != nil {
				continue
			}
			delta := cost - baseCost
			if !best.ok || delta < best.costDelta {
				best = candidate{ok: true, costDelta: delta, pickupIndex: pickupIdx, dropoffIndex: dropoffIdx}
			}
		}
	}
	return best, nil
}

// pickupTimeAt computes the simulated time the new trip's pickup would
// occur if inserted at pickupIdx: the time to traverse the existing plan
// up to that slot, plus the routed time from there to the trip's origin.
func (d *Dispatcher) pickupTimeAt(ctx context.Context, vehicle model.Vehicle, pickupIdx int, trip model.Trip, nowMs int64) (int64, error) {
	elapsed := int64(0)
	cursor := vehicle.Pos
	for i := 0; i < pickupIdx; i++ {
		elapsed += vehicle.Waypoints[i].Route.DurationMs
		cursor = vehicle.Waypoints[i].Pos
	}
	rt, err := d.router.Route(ctx, cursor, trip.Origin, routing.TimeOnly)
	if err != nil {
		// Treat as unreachable from this slot: a pickup time of +infinity
		// exceeds any deadline, so the caller's break-on-miss logic applies.
		return int64(1) << 62, nil
	}
	return nowMs + elapsed + rt.DurationMs, nil
}

// build constructs the hypothetical waypoint list per spec §4.3: walk the
// original waypoints in order, inserting the Pickup before position
// pickupIdx and the Dropoff before position dropoffIdx, re-querying every
// following waypoint's embedded route against its new predecessor. When
// full is true, FullRoute geometry is requested (for committing); search
// calls (full=false) use TimeOnly. tripID of -1 during search means the
// new waypoints are left unassigned an id until committed by the caller.
func (d *Dispatcher) build(ctx context.Context, vehicle model.Vehicle, tripID int, trip model.Trip, pickupIdx, dropoffIdx int, full bool) ([]model.Waypoint, error) {
	mode := routing.TimeOnly
	if full {
		mode = routing.FullRoute
	}
	var out []model.Waypoint
	cursor := vehicle.Pos

	route := func(dest model.Position) (model.Route, error) {
		return d.router.Route(ctx, cursor, dest, mode)
	}

	appendWP := func(pos model.Position, op model.WaypointOp, id int) error {
		rt, err := route(pos)
		if err != nil {
			return err
		}
		out = append(out, model.Waypoint{Pos: pos, Op: op, TripID: id, Route: rt})
		cursor = pos
		return nil
	}

	n := len(vehicle.Waypoints)
	for i := 0; i <= n; i++ {
		if i == pickupIdx {
			if err := appendWP(trip.Origin, model.Pickup, tripID); err != nil {
				return nil, err
			}
		}
		if i == dropoffIdx {
			if err := appendWP(trip.Destination, model.Dropoff, tripID); err != nil {
				return nil, err
			}
		}
		if i == n {
			break
		}
		orig := vehicle.Waypoints[i]
		if err := appendWP(orig.Pos, orig.Op, orig.TripID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// validate implements spec §4.3's feasibility check: walk the plan
// accumulating elapsed time and load from the vehicle's current state,
// rejecting a deadline miss at any Pickup (the new trip's own deadline,
// since tripID -1 in the plan denotes it; every other waypoint's trip was
// already feasible when committed and re-validated here against its own
// deadline too) or a load excursion outside [0, capacity].
func validate(plan []model.Waypoint, load, capacity int, nowMs int64, trips []model.Trip, newTrip model.Trip) bool {
	elapsed := int64(0)
	running := load
	for _, wp := range plan {
		elapsed += wp.Route.DurationMs
		switch wp.Op {
		case model.Pickup:
			running++
			deadline := newTrip.MaxPickupMs
			if wp.TripID >= 0 && wp.TripID < len(trips) {
				deadline = trips[wp.TripID].MaxPickupMs
			}
			if nowMs+elapsed > deadline {
				return false
			}
		case model.Dropoff:
			running--
		}
		if running < 0 || running > capacity {
			return false
		}
	}
	return true
}

// costOfPlan is the sum, over all Dropoff waypoints, of the cumulative
// elapsed time from now to that dropoff (spec §4.3's cost function).
func (d *Dispatcher) costOfPlan(plan []model.Waypoint) (int64, error) {
	elapsed := int64(0)
	cost := int64(0)
	for _, wp := range plan {
		elapsed += wp.Route.DurationMs
		if wp.Op == model.Dropoff {
			cost += elapsed
		}
	}
	return cost, nil
}
