package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
)

var ErrNoWaypoints = errs.NewValueIsRequiredError("waypoints")

// LatitudeSequencer orders stops by latitude, then longitude, then id. It
// never calls out and never fails for a non-empty input, which makes it the
// default fallback.
type LatitudeSequencer struct {
	speedKmh float64
}

// NewLatitudeSequencer estimates leg durations at averageSpeedKmh.
func NewLatitudeSequencer(averageSpeedKmh float64) (LatitudeSequencer, error) {
	if averageSpeedKmh <= 0 {
		return LatitudeSequencer{}, errs.NewValueIsOutOfRangeError("average speed", averageSpeedKmh, 1, math.MaxInt32)
	}
	return LatitudeSequencer{speedKmh: averageSpeedKmh}, nil
}

func (s LatitudeSequencer) Name() string { return "latitude" }

func (s LatitudeSequencer) Sequence(_ context.Context, origin *kernel.GeoPoint, waypoints []ports.Waypoint) (route.Sequence, error) {
	if len(waypoints) == 0 {
		return route.Sequence{}, ErrNoWaypoints
	}

	order := make([]int, len(waypoints))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := waypoints[order[i]], waypoints[order[j]]
		if a.Location.Lat() != b.Location.Lat() {
			return a.Location.Lat() < b.Location.Lat()
		}
		if a.Location.Lon() != b.Location.Lon() {
			return a.Location.Lon() < b.Location.Lon()
		}
		return a.ID.Less(b.ID)
	})

	return EstimateSequence(origin, waypoints, order, s.speedKmh)
}

// NearestNeighbourSequencer greedily visits the closest unvisited stop,
// starting from the origin (or from the first stop by latitude when there is
// none). Ties go to the lower id.
type NearestNeighbourSequencer struct {
	speedKmh float64
}

func NewNearestNeighbourSequencer(averageSpeedKmh float64) (NearestNeighbourSequencer, error) {
	if averageSpeedKmh <= 0 {
		return NearestNeighbourSequencer{}, errs.NewValueIsOutOfRangeError("average speed", averageSpeedKmh, 1, math.MaxInt32)
	}
	return NearestNeighbourSequencer{speedKmh: averageSpeedKmh}, nil
}

func (s NearestNeighbourSequencer) Name() string { return "nearest_neighbour" }

func (s NearestNeighbourSequencer) Sequence(ctx context.Context, origin *kernel.GeoPoint, waypoints []ports.Waypoint) (route.Sequence, error) {
	if len(waypoints) == 0 {
		return route.Sequence{}, ErrNoWaypoints
	}

	visited := make([]bool, len(waypoints))
	order := make([]int, 0, len(waypoints))

	var current kernel.GeoPoint
	if origin != nil {
		current = *origin
	} else {
		start, err := LatitudeSequencer{speedKmh: s.speedKmh}.Sequence(ctx, nil, waypoints)
		if err != nil {
			return route.Sequence{}, err
		}
		first := start.Order[0]
		visited[first] = true
		order = append(order, first)
		current = waypoints[first].Location
	}

	for len(order) < len(waypoints) {
		best, bestKm := -1, math.MaxFloat64
		for i, w := range waypoints {
			if visited[i] {
				continue
			}
			km, err := current.DistanceKm(w.Location)
			if err != nil {
				return route.Sequence{}, err
			}
			if km < bestKm || (km == bestKm && w.ID.Less(waypoints[best].ID)) {
				best, bestKm = i, km
			}
		}
		visited[best] = true
		order = append(order, best)
		current = waypoints[best].Location
	}

	return EstimateSequence(origin, waypoints, order, s.speedKmh)
}

// EstimateSequence fills in haversine leg distances and constant-speed leg
// durations for waypoints visited in order. The first leg starts at origin,
// or is zero when there is no origin.
func EstimateSequence(origin *kernel.GeoPoint, waypoints []ports.Waypoint, order []int, speedKmh float64) (route.Sequence, error) {
	if speedKmh <= 0 {
		return route.Sequence{}, errors.New("average speed must be positive")
	}

	seq := route.Sequence{
		Order:          order,
		LegDistancesKm: make([]float64, len(order)),
		LegDurations:   make([]time.Duration, len(order)),
	}

	previous := origin
	for pos, idx := range order {
		here := waypoints[idx].Location
		km := 0.0
		if previous != nil {
			d, err := previous.DistanceKm(here)
			if err != nil {
				return route.Sequence{}, err
			}
			km = d
		}
		leg := time.Duration(km / speedKmh * float64(time.Hour)).Round(time.Second)

		seq.LegDistancesKm[pos] = km
		seq.LegDurations[pos] = leg
		seq.TotalDistanceKm += km
		seq.TotalDuration += leg
		previous = &here
	}

	return seq, nil
}
