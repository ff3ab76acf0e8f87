package site

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/ddd"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrSiteIsNotConstructed = errors.New("Site must be created via NewSite or RestoreSite")
	ErrNameIsRequired       = errs.NewValueIsRequiredError("name")
)

// Attributes are the externally supplied properties of a site.
type Attributes struct {
	Name     string
	Location kernel.GeoPoint
	Capacity kernel.Quantity
	Current  kernel.Quantity
	LowStock StockLevel
	Priority Priority
	SensorID string
}

// Snapshot is the full persisted state used to restore a Site.
type Snapshot struct {
	ID                  kernel.UUID
	Attributes          Attributes
	Connected           bool
	LastSensorReadingAt *time.Time
	Version             int64
}

// Site is a storage location with bounded capacity. It owns the StorageLedger:
// the capacity / current quantity pair and the low-stock thresholds.
type Site struct {
	ddd.EventRecorder

	id                  kernel.UUID
	name                string
	location            kernel.GeoPoint
	capacity            kernel.Quantity
	current             kernel.Quantity
	lowStock            StockLevel
	priority            Priority
	sensorID            string
	connected           bool
	lastSensorReadingAt *time.Time
	version             int64

	guard guard.ConstructorGuard
}

func NewSite(id kernel.UUID, attrs Attributes) (*Site, error) {
	return build(Snapshot{ID: id, Attributes: attrs, Connected: attrs.SensorID != ""})
}

func RestoreSite(snapshot Snapshot) (*Site, error) {
	return build(snapshot)
}

func build(snapshot Snapshot) (*Site, error) {
	s := &Site{guard: guard.NewConstructorGuard()}
	attrs := snapshot.Attributes

	if err := errors.Join(
		s.setID(snapshot.ID),
		s.setName(attrs.Name),
		attrs.Location.Validate(),
		attrs.Priority.Validate(),
		s.setLedger(attrs.Capacity, attrs.Current),
		s.setVersion(snapshot.Version),
	); err != nil {
		return nil, err
	}

	s.location = attrs.Location
	s.lowStock = attrs.LowStock
	s.priority = attrs.Priority
	s.sensorID = strings.TrimSpace(attrs.SensorID)
	s.connected = snapshot.Connected
	if snapshot.LastSensorReadingAt != nil {
		at := snapshot.LastSensorReadingAt.UTC()
		s.lastSensorReadingAt = &at
	}

	return s, nil
}

func (s *Site) Validate() error {
	if s == nil {
		return ErrSiteIsNotConstructed
	}
	return s.guard.Validate(ErrSiteIsNotConstructed)
}

func (s *Site) ID() kernel.UUID                  { return s.id }
func (s *Site) Name() string                     { return s.name }
func (s *Site) Location() kernel.GeoPoint        { return s.location }
func (s *Site) Capacity() kernel.Quantity        { return s.capacity }
func (s *Site) CurrentQuantity() kernel.Quantity { return s.current }
func (s *Site) LowStock() StockLevel             { return s.lowStock }
func (s *Site) Priority() Priority               { return s.priority }
func (s *Site) SensorID() string                 { return s.sensorID }
func (s *Site) IsConnected() bool                { return s.connected }
func (s *Site) Version() int64                   { return s.version }

func (s *Site) LastSensorReadingAt() *time.Time {
	if s.lastSensorReadingAt == nil {
		return nil
	}
	at := *s.lastSensorReadingAt
	return &at
}

// Available is the headroom left before the site is full.
func (s *Site) Available() kernel.Quantity {
	return s.capacity.Sub(s.current)
}

func (s *Site) PercentageRemaining() decimal.Decimal {
	return s.current.PercentOf(s.capacity)
}

func (s *Site) IsLowStock() bool {
	return s.lowStock.ReachedBy(s.current, s.capacity)
}

func (s *Site) IsEmergency(level StockLevel) bool {
	return level.ReachedBy(s.current, s.capacity)
}

// CheckCanAccept fails with a CapacityExceededError when adding quantity to the
// current stock would overflow the site.
func (s *Site) CheckCanAccept(quantity kernel.Quantity) error {
	if s.current.Add(quantity).GreaterThan(s.capacity) {
		return errs.NewCapacityExceededError("site "+s.name, quantity.String(), s.Available().String())
	}
	return nil
}

// Replenish increments the stock by quantity, clamped to capacity, and returns
// the amount actually applied.
func (s *Site) Replenish(quantity kernel.Quantity, at time.Time) kernel.Quantity {
	applied := quantity.Min(s.Available())
	s.current = s.current.Add(applied)
	s.Record(newStockReplenished(s, applied.String(), at))
	return applied
}

// ApplySensorReading sets the stock to an absolute reading clamped to
// [0, capacity]. Readings are last-write-wins by timestamp: a reading that is
// not strictly newer than the last applied one is ignored and false is returned.
func (s *Site) ApplySensorReading(quantity kernel.Quantity, at time.Time) (bool, error) {
	if at.IsZero() {
		return false, errs.NewValueIsRequiredError("reading timestamp")
	}

	at = at.UTC()
	if s.lastSensorReadingAt != nil && !at.After(*s.lastSensorReadingAt) {
		return false, nil
	}

	wasLow := s.IsLowStock()
	s.current = quantity.Min(s.capacity)
	s.lastSensorReadingAt = &at
	s.connected = true

	if !wasLow && s.IsLowStock() {
		s.Record(newLowStockDetected(s, at))
	}

	return true, nil
}

// MarkDisconnected flags a site whose sensor stopped reporting.
func (s *Site) MarkDisconnected() {
	s.connected = false
}

// IncrementVersion is called by repositories after a successful write.
func (s *Site) IncrementVersion() {
	s.version++
}

func (s *Site) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Site) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	s.name = name
	return nil
}

func (s *Site) setLedger(capacity, current kernel.Quantity) error {
	if capacity.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("capacity", fmt.Errorf("%s is not greater than 0", capacity))
	}
	if current.GreaterThan(capacity) {
		return errs.NewValueIsOutOfRangeError("current quantity", current.String(), "0", capacity.String())
	}
	s.capacity = capacity
	s.current = current
	return nil
}

func (s *Site) setVersion(version int64) error {
	if version < 0 {
		return errs.NewVersionIsInvalidError("version", fmt.Errorf("%d is negative", version))
	}
	s.version = version
	return nil
}
