package domain

import "math"

// GeoPoint is a geographic coordinate in decimal degrees. Both fields must
// be present for the point to count; a half-filled point is treated as
// absent everywhere.
type GeoPoint struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// NewGeoPoint builds a fully-populated point. Convenience for tests and
// callers that already hold concrete coordinates.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Latitude: &lat, Longitude: &lng}
}

// Valid reports whether the point carries both coordinates.
func (p *GeoPoint) Valid() bool {
	return p != nil && p.Latitude != nil && p.Longitude != nil
}

// DistanceKm returns the great-circle distance to another point in
// kilometers, or 0 when either point is incomplete.
func (p *GeoPoint) DistanceKm(other *GeoPoint) float64 {
	if !p.Valid() || !other.Valid() {
		return 0
	}
	return HaversineKm(*p.Latitude, *p.Longitude, *other.Latitude, *other.Longitude)
}

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two coordinates
// in kilometers using the haversine formula.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
