package ports

import (
	"context"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
)

// Waypoint is a stop handed to a geometry provider. ID is used for
// deterministic tie-breaks only.
type Waypoint struct {
	ID       kernel.UUID
	Location kernel.GeoPoint
}

// RouteGeometryProvider orders a set of waypoints and estimates the distance
// and duration of the resulting run. The returned Sequence.Order indexes into
// waypoints. Implementations honour ctx cancellation.
type RouteGeometryProvider interface {
	Name() string
	Sequence(ctx context.Context, origin *kernel.GeoPoint, waypoints []Waypoint) (route.Sequence, error)
}
