package route

import "time"

// Optimization records one sequencing attempt. Failed attempts keep the
// provider error message; the route is then sequenced by the fallback.
type Optimization struct {
	Provider            string
	OriginalDistanceKm  float64
	OptimizedDistanceKm float64
	Success             bool
	ErrorMessage        string
	At                  time.Time
}

// SavingsKm is the distance saved against the order the stops had before.
func (o Optimization) SavingsKm() float64 {
	return roundKm(o.OriginalDistanceKm - o.OptimizedDistanceKm)
}

// Sequence is an ordering of a route's stops with its estimates. Order holds
// indexes into the route's current stop list.
type Sequence struct {
	Order           []int
	TotalDistanceKm float64
	TotalDuration   time.Duration
	LegDistancesKm  []float64
	LegDurations    []time.Duration
}
