// Package geo provides great-circle distance computation and radius
// filtering for venue and event discovery.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Coordinate bounds validation errors.
var (
	ErrInvalidLatitude  = errors.New("invalid latitude: must be between -90 and 90")
	ErrInvalidLongitude = errors.New("invalid longitude: must be between -180 and 180")
	ErrInvalidRadius    = errors.New("invalid radius: must be greater than 0")
)

// Coordinate is a geographic point in signed decimal degrees.
// Values are treated as immutable; all methods are value receivers.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinate builds a validated coordinate rounded to 6 decimal places,
// matching the precision venues and user locations are stored with.
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, ErrInvalidLatitude
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, ErrInvalidLongitude
	}
	return Coordinate{Lat: round6(lat), Lng: round6(lng)}, nil
}

// round6 rounds a decimal degree value to 6 decimal places (~0.11 m).
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Validate checks that the coordinate is within valid bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidLatitude
	}
	if c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// DistanceKm computes the great-circle distance between two coordinates
// using the haversine formula.
//
// The argument to the square root is clamped into [0, 1] before the
// atan2 step so that floating-point overshoot near antipodal points
// cannot produce NaN.
func DistanceKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Clamp to absorb floating-point overshoot at h ~= 1 (antipodes)
	// and h slightly below 0 for identical points.
	if h > 1 {
		h = 1
	}
	if h < 0 {
		h = 0
	}

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// Candidate pairs an opaque ID with its coordinate for radius queries.
type Candidate struct {
	ID    string
	Point Coordinate
}

// Match is a candidate that fell within the requested radius, annotated
// with its computed distance.
type Match struct {
	ID         string
	DistanceKm float64
}

// WithinRadius returns the candidates whose great-circle distance from
// center is at most radiusKm. A candidate exactly on the boundary is
// included. Result order is unspecified; callers sort as needed.
func WithinRadius(center Coordinate, radiusKm float64, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, cand := range candidates {
		d := DistanceKm(center, cand.Point)
		if d <= radiusKm {
			matches = append(matches, Match{ID: cand.ID, DistanceKm: d})
		}
	}
	return matches
}
