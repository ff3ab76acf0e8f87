package kernel

import (
	"errors"
	"fmt"
	"math"

	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

const earthRadiusKm = 6371.0

var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a WGS84 coordinate of a site or depot.
type GeoPoint struct { //nolint:recvcheck // setters need pointer receivers
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

func NewGeoPoint(lat, lon float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLat(lat), p.setLon(lon)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 { return p.lat }
func (p GeoPoint) Lon() float64 { return p.lon }

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lon)
}

func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lon == other.lon
}

// DistanceKm returns the great-circle (haversine) distance in kilometres.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1, lat2 := radians(p.lat), radians(other.lat)
	dLat := lat2 - lat1
	dLon := radians(other.lon - p.lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return errs.NewValueIsOutOfRangeError("latitude", lat, -90, 90)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return errs.NewValueIsOutOfRangeError("longitude", lon, -180, 180)
	}
	p.lon = lon
	return nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
