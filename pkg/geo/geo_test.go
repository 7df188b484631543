package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	// one degree of latitude is ~111.19 km
	d := CalculateHaversineDistance(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.01)
	assert.InDelta(t, d*1000, HaversineMeters(0, 0, 1, 0), 1e-6)
	assert.Zero(t, HaversineMeters(-7.7, 110.3, -7.7, 110.3))
}

func TestDestinationPoint(t *testing.T) {
	lat, lon := DestinationPoint(-7.76, 110.37, 90, 1000)
	assert.InDelta(t, 1000, HaversineMeters(-7.76, 110.37, lat, lon), 0.5)
	assert.InDelta(t, 90, BearingTo(-7.76, 110.37, lat, lon), 0.1)
}

func TestBearingDelta(t *testing.T) {
	testCases := []struct {
		name     string
		from, to float64
		want     float64
	}{
		{name: "straight", from: 10, to: 10, want: 0},
		{name: "right across north", from: 350, to: 20, want: 30},
		{name: "left across north", from: 20, to: 350, want: -30},
		{name: "u turn", from: 0, to: 180, want: 180},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BearingDelta(tt.from, tt.to), 1e-9)
		})
	}
}

func TestRamerDouglasPeucker(t *testing.T) {
	line := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, 0.0001),
		NewCoordinate(0.000001, 0.0002),
		NewCoordinate(0, 0.0003),
		NewCoordinate(0.01, 0.0004),
	}

	simplified := RamerDouglasPeucker(line, 1.0)
	require.GreaterOrEqual(t, len(simplified), 2)
	assert.Equal(t, line[0], simplified[0])
	assert.Equal(t, line[len(line)-1], simplified[len(simplified)-1])
	assert.Less(t, len(simplified), len(line))

	// epsilon 0 keeps everything
	assert.Equal(t, line, RamerDouglasPeucker(line, 0))
}

func TestPolylineRoundTrip(t *testing.T) {
	path := []Coordinate{
		NewCoordinate(-7.76123, 110.37654),
		NewCoordinate(-7.76201, 110.37712),
		NewCoordinate(-7.76355, 110.37801),
	}
	encoded := PolylineFromCoords(path)
	require.NotEmpty(t, encoded)

	decoded, err := CoordsFromPolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(path))
	for i := range path {
		assert.InDelta(t, path[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, path[i].Lon, decoded[i].Lon, 1e-5)
	}
}
