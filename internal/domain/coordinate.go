package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinate (latitude, longitude) in decimal degrees.
// Build values with NewCoordinate so the range invariant holds.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// NewCoordinate validates the latitude/longitude range and returns the coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if err := ValidateCoordinate(lat, lon); err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// ValidateCoordinate reports whether lat/lon are inside the WGS84 ranges.
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrInvalidCoordinate, lon)
	}
	return nil
}

// CoordinateFromPair builds a coordinate from a [lat, lng] pair as found in config files.
func CoordinateFromPair(pair []float64) (Coordinate, error) {
	if len(pair) != 2 {
		return Coordinate{}, fmt.Errorf("%w: coordinates must be a [lat, lng] pair, got %d values", ErrInvalidCoordinate, len(pair))
	}
	return NewCoordinate(pair[0], pair[1])
}

// CoordinatesFromPairs converts a list of [lat, lng] pairs, reporting the first invalid entry.
func CoordinatesFromPairs(pairs [][]float64) ([]Coordinate, error) {
	out := make([]Coordinate, 0, len(pairs))
	for i, p := range pairs {
		c, err := CoordinateFromPair(p)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// Pair returns the coordinate as [lat, lng] for config files.
func (c Coordinate) Pair() []float64 { return []float64{c.Lat, c.Lon} }

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinate) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lon)
}
