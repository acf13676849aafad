package datastructure

import "math"

// Location is one positioning sample. Bearing and Speed may be NaN, which
// means "not provided, derive locally".
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Bearing   float32 `json:"bearing"`
	Speed     float32 `json:"speed"` // m/s
	Accuracy  float32 `json:"accuracy"`
}

func NewLocation(lat, lon float64, bearing, speed, accuracy float32) Location {
	return Location{
		Latitude:  lat,
		Longitude: lon,
		Bearing:   bearing,
		Speed:     speed,
		Accuracy:  accuracy,
	}
}

// NewCoordLocation builds a location carrying only a coordinate, with
// bearing and speed marked absent.
func NewCoordLocation(lat, lon float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lon,
		Bearing:   float32(math.NaN()),
		Speed:     float32(math.NaN()),
	}
}

func (l Location) HasBearing() bool {
	return !math.IsNaN(float64(l.Bearing))
}

func (l Location) HasSpeed() bool {
	return !math.IsNaN(float64(l.Speed))
}
