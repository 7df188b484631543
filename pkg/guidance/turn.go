package guidance

import (
	"math"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
)

// entryBearing. bearing of the first geometry segment of an edge.
func entryBearing(geometry []datastructure.Coordinate) float64 {
	if len(geometry) < 2 {
		return 0
	}
	return geo.BearingTo(geometry[0].GetLat(), geometry[0].GetLon(), geometry[1].GetLat(), geometry[1].GetLon())
}

// exitBearing. bearing of the last geometry segment of an edge.
func exitBearing(geometry []datastructure.Coordinate) float64 {
	n := len(geometry)
	if n < 2 {
		return 0
	}
	return geo.BearingTo(geometry[n-2].GetLat(), geometry[n-2].GetLon(), geometry[n-1].GetLat(), geometry[n-1].GetLon())
}

// getTurnSign. delta in degrees, negative = left.
func getTurnSign(delta float64) TurnSign {
	absDelta := math.Abs(delta)
	switch {
	case absDelta < 12:
		return CONTINUE_ON_STREET
	case absDelta < 40:
		if delta < 0 {
			return TURN_SLIGHT_LEFT
		}
		return TURN_SLIGHT_RIGHT
	case absDelta < 105:
		if delta < 0 {
			return TURN_LEFT
		}
		return TURN_RIGHT
	case delta < 0:
		return TURN_SHARP_LEFT
	default:
		return TURN_SHARP_RIGHT
	}
}
