package models

import "math"

// Station is one entry of the station directory.
//
// Latitude and Longitude are NaN when the reference table carried a value
// that could not be parsed as a decimal number.
type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// HasCoordinates reports whether both coordinates of the station are known.
func (s Station) HasCoordinates() bool {
	return !math.IsNaN(s.Latitude) && !math.IsNaN(s.Longitude)
}
