package datastructure

import (
	"math"

	"github.com/lintang-b-s/osmrouter/pkg/geo"
)

// coordinate tolerance, ~0.1 mm
const EPS = 1e-9

// Coordinate. one geometry point of an edge, stored in the flat point table of GraphStorage.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

// SameAs. equal within EPS on both axes.
func (c Coordinate) SameAs(lat, lon float64) bool {
	return math.Abs(c.Lat-lat) <= EPS && math.Abs(c.Lon-lon) <= EPS
}

// NewGeoCoordinates. edge geometry -> pkg/geo points (polyline encoding, bearings).
func NewGeoCoordinates(coords []Coordinate) []geo.Coordinate {
	out := make([]geo.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = geo.NewCoordinate(c.Lat, c.Lon)
	}
	return out
}

// NewCoordinatesFromGeo. simplified segment points from the importer -> edge geometry.
func NewCoordinatesFromGeo(coords []geo.Coordinate) []Coordinate {
	out := make([]Coordinate, len(coords))
	for i, c := range coords {
		out[i] = NewCoordinate(c.GetLat(), c.GetLon())
	}
	return out
}
