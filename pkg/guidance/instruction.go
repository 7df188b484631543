package guidance

import (
	"fmt"

	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

type TurnSign int

const (
	TURN_SHARP_LEFT    TurnSign = -3
	TURN_LEFT          TurnSign = -2
	TURN_SLIGHT_LEFT   TurnSign = -1
	CONTINUE_ON_STREET TurnSign = 0
	TURN_SLIGHT_RIGHT  TurnSign = 1
	TURN_RIGHT         TurnSign = 2
	TURN_SHARP_RIGHT   TurnSign = 3
	FINISH             TurnSign = 4
	USE_ROUNDABOUT     TurnSign = 6
	START              TurnSign = 101
)

func (s TurnSign) String() string {
	switch s {
	case TURN_SHARP_LEFT:
		return "TURN_SHARP_LEFT"
	case TURN_LEFT:
		return "TURN_LEFT"
	case TURN_SLIGHT_LEFT:
		return "TURN_SLIGHT_LEFT"
	case CONTINUE_ON_STREET:
		return "CONTINUE_ON_STREET"
	case TURN_SLIGHT_RIGHT:
		return "TURN_SLIGHT_RIGHT"
	case TURN_RIGHT:
		return "TURN_RIGHT"
	case TURN_SHARP_RIGHT:
		return "TURN_SHARP_RIGHT"
	case FINISH:
		return "FINISH"
	case USE_ROUNDABOUT:
		return "USE_ROUNDABOUT"
	case START:
		return "START"
	default:
		return "UNKNOWN"
	}
}

// DrivingDirection. one step of the route, covers edgeIds.
type DrivingDirection struct {
	instruction string
	turnSign    TurnSign
	point       datastructure.Coordinate
	streetName  string
	travelTime  float64 // second
	distance    float64 // meter
	edgeIds     []datastructure.Index
	polyline    string
	turnBearing float64 // degree
	exitNumber  int
}

func (d DrivingDirection) GetInstruction() string {
	return d.instruction
}

func (d DrivingDirection) GetTurnSign() TurnSign {
	return d.turnSign
}

func (d DrivingDirection) GetPoint() datastructure.Coordinate {
	return d.point
}

func (d DrivingDirection) GetStreetName() string {
	return d.streetName
}

func (d DrivingDirection) GetTravelTime() float64 {
	return d.travelTime
}

func (d DrivingDirection) GetDistance() float64 {
	return d.distance
}

func (d DrivingDirection) GetEdgeIds() []datastructure.Index {
	return d.edgeIds
}

func (d DrivingDirection) GetPolyline() string {
	return d.polyline
}

func (d DrivingDirection) GetTurnBearing() float64 {
	return d.turnBearing
}

func (d DrivingDirection) GetExitNumber() int {
	return d.exitNumber
}

func streetOrUnnamed(name string) string {
	if name == "" {
		return "unnamed road"
	}
	return name
}

func describe(sign TurnSign, streetName string, bearing float64, exitNumber int) string {
	street := streetOrUnnamed(streetName)
	switch sign {
	case START:
		return fmt.Sprintf("Head %s on %s", compassDirection(bearing), street)
	case CONTINUE_ON_STREET:
		return fmt.Sprintf("Continue onto %s", street)
	case TURN_SLIGHT_LEFT:
		return fmt.Sprintf("Turn slight left onto %s", street)
	case TURN_LEFT:
		return fmt.Sprintf("Turn left onto %s", street)
	case TURN_SHARP_LEFT:
		return fmt.Sprintf("Turn sharp left onto %s", street)
	case TURN_SLIGHT_RIGHT:
		return fmt.Sprintf("Turn slight right onto %s", street)
	case TURN_RIGHT:
		return fmt.Sprintf("Turn right onto %s", street)
	case TURN_SHARP_RIGHT:
		return fmt.Sprintf("Turn sharp right onto %s", street)
	case USE_ROUNDABOUT:
		if exitNumber == 0 {
			return "Enter the roundabout"
		}
		return fmt.Sprintf("At the roundabout, take exit %d onto %s", exitNumber, street)
	case FINISH:
		return "Arrive at destination"
	default:
		return ""
	}
}

var compassPoints = [...]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

func compassDirection(bearing float64) string {
	idx := int((bearing+22.5)/45) % len(compassPoints)
	if idx < 0 {
		idx += len(compassPoints)
	}
	return compassPoints[idx]
}
