package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Key is the stable cache key of a location, rounded to ~0.1 m.
func (c Coordinates) Key() string { return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat) }

// Valid reports whether the coordinates lie on the globe.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) {
		return false
	}
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}
