// Package routerepo persists Route aggregates together with their stops and
// optimization history.
package routerepo

import (
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RouteDTO is the row of the routes table. Durations are stored as
// nanoseconds.
type RouteDTO struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number                 string          `gorm:"uniqueIndex;not null"`
	ScheduledDate          time.Time       `gorm:"not null"`
	Type                   int             `gorm:"not null"`
	Status                 int             `gorm:"index;not null"`
	ProductClass           string          `gorm:"index"`
	OriginLat              *float64        `gorm:"type:double precision"`
	OriginLon              *float64        `gorm:"type:double precision"`
	VehicleID              string          `gorm:"not null"`
	VehicleCapacity        decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	PlannedDistanceKm      float64
	PlannedDuration        int64
	ActualDistanceKm       *float64
	ActualDuration         *int64
	TotalDelivered         decimal.Decimal  `gorm:"type:numeric(20,4);not null"`
	DistancePerUnit        *decimal.Decimal `gorm:"type:numeric(20,4)"`
	PlanningAccuracyTarget decimal.Decimal  `gorm:"type:numeric(7,4);not null"`
	Degraded               bool
	DegradedReason         string
	DelayReason            string
	ActivatedAt            *time.Time
	CompletedAt            *time.Time `gorm:"index"`
	CreatedAt              time.Time  `gorm:"not null"`
	Version                int64      `gorm:"not null;default:0"`

	Stops         []StopDTO         `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	Optimizations []OptimizationDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

func (RouteDTO) TableName() string {
	return "routes"
}

type StopDTO struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey"`
	RouteID              uuid.UUID        `gorm:"type:uuid;index;not null"`
	OrderID              uuid.UUID        `gorm:"type:uuid;index;not null"`
	SiteID               uuid.UUID        `gorm:"type:uuid;not null"`
	LocationLat          float64          `gorm:"type:double precision"`
	LocationLon          float64          `gorm:"type:double precision"`
	Sequence             int              `gorm:"not null"`
	PlannedQuantity      decimal.Decimal  `gorm:"type:numeric(20,4);not null"`
	DeliveredQuantity    *decimal.Decimal `gorm:"type:numeric(20,4)"`
	EstimatedArrival     *time.Time
	ActualArrival        *time.Time
	CompletedAt          *time.Time
	Status               int `gorm:"not null"`
	DistanceFromPrevious float64
	DurationFromPrevious int64
	ServiceMinutes       int
	DeliveryMethod       int
	HasIssue             bool
	IssueDescription     string
	ResolutionNotes      string
}

func (StopDTO) TableName() string {
	return "route_stops"
}

// OptimizationDTO is one sequencing attempt. Attempts are append-only and
// numbered from zero per route.
type OptimizationDTO struct {
	RouteID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Attempt             int       `gorm:"primaryKey;autoIncrement:false"`
	Provider            string
	OriginalDistanceKm  float64
	OptimizedDistanceKm float64
	Success             bool
	ErrorMessage        string
	At                  time.Time
}

func (OptimizationDTO) TableName() string {
	return "route_optimizations"
}

func fromDomain(r *route.Route) RouteDTO {
	dto := RouteDTO{
		ID:                     r.ID().Bytes(),
		Number:                 r.Number(),
		ScheduledDate:          r.ScheduledDate(),
		Type:                   int(r.Type()),
		Status:                 int(r.Status()),
		ProductClass:           r.ProductClass(),
		VehicleID:              r.Vehicle().ID,
		VehicleCapacity:        r.Vehicle().Capacity.Decimal(),
		PlannedDistanceKm:      r.PlannedDistanceKm(),
		PlannedDuration:        int64(r.PlannedDuration()),
		ActualDistanceKm:       r.ActualDistanceKm(),
		TotalDelivered:         r.TotalDeliveredQuantity().Decimal(),
		DistancePerUnit:        r.DistancePerUnit(),
		PlanningAccuracyTarget: r.PlanningAccuracyTarget(),
		Degraded:               r.IsDegraded(),
		DegradedReason:         r.DegradedReason(),
		DelayReason:            r.DelayReason(),
		ActivatedAt:            r.ActivatedAt(),
		CompletedAt:            r.CompletedAt(),
		CreatedAt:              r.CreatedAt(),
		Version:                r.Version(),
	}

	if o := r.Origin(); o != nil {
		lat, lon := o.Lat(), o.Lon()
		dto.OriginLat, dto.OriginLon = &lat, &lon
	}
	if d := r.ActualDuration(); d != nil {
		v := int64(*d)
		dto.ActualDuration = &v
	}

	for _, s := range r.Stops() {
		dto.Stops = append(dto.Stops, stopFromDomain(dto.ID, s))
	}
	for i, o := range r.Optimizations() {
		dto.Optimizations = append(dto.Optimizations, OptimizationDTO{
			RouteID:             dto.ID,
			Attempt:             i,
			Provider:            o.Provider,
			OriginalDistanceKm:  o.OriginalDistanceKm,
			OptimizedDistanceKm: o.OptimizedDistanceKm,
			Success:             o.Success,
			ErrorMessage:        o.ErrorMessage,
			At:                  o.At,
		})
	}

	return dto
}

func stopFromDomain(routeID uuid.UUID, s *route.Stop) StopDTO {
	dto := StopDTO{
		ID:                   s.ID().Bytes(),
		RouteID:              routeID,
		OrderID:              s.OrderID().Bytes(),
		SiteID:               s.SiteID().Bytes(),
		LocationLat:          s.Location().Lat(),
		LocationLon:          s.Location().Lon(),
		Sequence:             s.Sequence(),
		PlannedQuantity:      s.PlannedQuantity().Decimal(),
		EstimatedArrival:     s.EstimatedArrival(),
		ActualArrival:        s.ActualArrival(),
		CompletedAt:          s.CompletedAt(),
		Status:               int(s.Status()),
		DistanceFromPrevious: s.DistanceFromPreviousKm(),
		DurationFromPrevious: int64(s.DurationFromPrevious()),
		ServiceMinutes:       s.ServiceMinutes(),
		DeliveryMethod:       int(s.DeliveryMethod()),
		HasIssue:             s.HasIssue(),
		IssueDescription:     s.IssueDescription(),
		ResolutionNotes:      s.ResolutionNotes(),
	}
	if q := s.DeliveredQuantity(); q != nil {
		d := q.Decimal()
		dto.DeliveredQuantity = &d
	}
	return dto
}

func toDomain(dto RouteDTO) (*route.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var origin *kernel.GeoPoint
	if dto.OriginLat != nil && dto.OriginLon != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.OriginLat, *dto.OriginLon)
		if pointErr != nil {
			return nil, pointErr
		}
		origin = &p
	}

	capacity, err := kernel.NewQuantity(dto.VehicleCapacity)
	if err != nil {
		return nil, err
	}
	delivered, err := kernel.NewQuantity(dto.TotalDelivered)
	if err != nil {
		return nil, err
	}

	var actualDuration *time.Duration
	if dto.ActualDuration != nil {
		d := time.Duration(*dto.ActualDuration)
		actualDuration = &d
	}

	stops := make([]route.StopSnapshot, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		snapshot, stopErr := stopToSnapshot(s)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, snapshot)
	}

	optimizations := make([]route.Optimization, len(dto.Optimizations))
	for _, o := range dto.Optimizations {
		if o.Attempt < 0 || o.Attempt >= len(optimizations) {
			continue
		}
		optimizations[o.Attempt] = route.Optimization{
			Provider:            o.Provider,
			OriginalDistanceKm:  o.OriginalDistanceKm,
			OptimizedDistanceKm: o.OptimizedDistanceKm,
			Success:             o.Success,
			ErrorMessage:        o.ErrorMessage,
			At:                  o.At.UTC(),
		}
	}

	return route.RestoreRoute(route.Snapshot{
		ID:     id,
		Number: dto.Number,
		Header: route.Header{
			ScheduledDate:          dto.ScheduledDate.UTC(),
			Vehicle:                route.Vehicle{ID: dto.VehicleID, Capacity: capacity},
			ProductClass:           dto.ProductClass,
			Origin:                 origin,
			PlanningAccuracyTarget: dto.PlanningAccuracyTarget,
		},
		Type:              route.Type(dto.Type),
		Status:            route.Status(dto.Status),
		Stops:             stops,
		PlannedDistanceKm: dto.PlannedDistanceKm,
		PlannedDuration:   time.Duration(dto.PlannedDuration),
		ActualDistanceKm:  dto.ActualDistanceKm,
		ActualDuration:    actualDuration,
		TotalDelivered:    delivered,
		DistancePerUnit:   dto.DistancePerUnit,
		Degraded:          dto.Degraded,
		DegradedReason:    dto.DegradedReason,
		DelayReason:       dto.DelayReason,
		ActivatedAt:       utc(dto.ActivatedAt),
		CompletedAt:       utc(dto.CompletedAt),
		CreatedAt:         dto.CreatedAt,
		Optimizations:     optimizations,
		Version:           dto.Version,
	})
}

func stopToSnapshot(dto StopDTO) (route.StopSnapshot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return route.StopSnapshot{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return route.StopSnapshot{}, err
	}
	siteID, err := kernel.UUIDFromBytes(dto.SiteID[:])
	if err != nil {
		return route.StopSnapshot{}, err
	}
	location, err := kernel.NewGeoPoint(dto.LocationLat, dto.LocationLon)
	if err != nil {
		return route.StopSnapshot{}, err
	}
	planned, err := kernel.NewQuantity(dto.PlannedQuantity)
	if err != nil {
		return route.StopSnapshot{}, err
	}

	var delivered *kernel.Quantity
	if dto.DeliveredQuantity != nil {
		q, qErr := kernel.NewQuantity(*dto.DeliveredQuantity)
		if qErr != nil {
			return route.StopSnapshot{}, qErr
		}
		delivered = &q
	}

	return route.StopSnapshot{
		ID:                   id,
		OrderID:              orderID,
		SiteID:               siteID,
		Location:             location,
		Sequence:             dto.Sequence,
		PlannedQuantity:      planned,
		DeliveredQuantity:    delivered,
		EstimatedArrival:     utc(dto.EstimatedArrival),
		ActualArrival:        utc(dto.ActualArrival),
		CompletedAt:          utc(dto.CompletedAt),
		Status:               route.StopStatus(dto.Status),
		DistanceFromPrevious: dto.DistanceFromPrevious,
		DurationFromPrevious: time.Duration(dto.DurationFromPrevious),
		ServiceMinutes:       dto.ServiceMinutes,
		DeliveryMethod:       route.DeliveryMethod(dto.DeliveryMethod),
		HasIssue:             dto.HasIssue,
		IssueDescription:     dto.IssueDescription,
		ResolutionNotes:      dto.ResolutionNotes,
	}, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
