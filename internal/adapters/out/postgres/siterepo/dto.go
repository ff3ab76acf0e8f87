// Package siterepo persists Site aggregates and their storage ledgers.
package siterepo

import (
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SiteDTO is the row of the sites table. Quantities are tonnes.
type SiteDTO struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                string          `gorm:"not null"`
	Location            GeoPointDTO     `gorm:"embedded;embeddedPrefix:location_"`
	Capacity            decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	CurrentQuantity     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	LowStockAbsolute    decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	LowStockPercentage  decimal.Decimal `gorm:"type:numeric(7,4);not null"`
	Priority            int             `gorm:"not null"`
	SensorID            string          `gorm:"index"`
	Connected           bool
	LastSensorReadingAt *time.Time
	Version             int64 `gorm:"not null;default:0"`
}

func (SiteDTO) TableName() string {
	return "sites"
}

type GeoPointDTO struct {
	Lat float64 `gorm:"type:double precision"`
	Lon float64 `gorm:"type:double precision"`
}

func fromDomain(s *site.Site) SiteDTO {
	return SiteDTO{
		ID:   s.ID().Bytes(),
		Name: s.Name(),
		Location: GeoPointDTO{
			Lat: s.Location().Lat(),
			Lon: s.Location().Lon(),
		},
		Capacity:            s.Capacity().Decimal(),
		CurrentQuantity:     s.CurrentQuantity().Decimal(),
		LowStockAbsolute:    s.LowStock().Absolute().Decimal(),
		LowStockPercentage:  s.LowStock().Percentage(),
		Priority:            int(s.Priority()),
		SensorID:            s.SensorID(),
		Connected:           s.IsConnected(),
		LastSensorReadingAt: s.LastSensorReadingAt(),
		Version:             s.Version(),
	}
}

func toDomain(dto SiteDTO) (*site.Site, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Location.Lat, dto.Location.Lon)
	if err != nil {
		return nil, err
	}

	capacity, err := kernel.NewQuantity(dto.Capacity)
	if err != nil {
		return nil, err
	}
	current, err := kernel.NewQuantity(dto.CurrentQuantity)
	if err != nil {
		return nil, err
	}
	absolute, err := kernel.NewQuantity(dto.LowStockAbsolute)
	if err != nil {
		return nil, err
	}
	lowStock, err := site.NewStockLevel(absolute, dto.LowStockPercentage)
	if err != nil {
		return nil, err
	}

	return site.RestoreSite(site.Snapshot{
		ID: id,
		Attributes: site.Attributes{
			Name:     dto.Name,
			Location: location,
			Capacity: capacity,
			Current:  current,
			LowStock: lowStock,
			Priority: site.Priority(dto.Priority),
			SensorID: dto.SensorID,
		},
		Connected:           dto.Connected,
		LastSensorReadingAt: dto.LastSensorReadingAt,
		Version:             dto.Version,
	})
}
