package guidance

import (
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/lintang-b-s/osmrouter/pkg/geo"
)

type Graph interface {
	GetOutEdge(e datastructure.Index) *datastructure.OutEdge
	GetEdgeGeometry(e datastructure.Index) []datastructure.Coordinate
	GetStreetName(e datastructure.Index) string
	IsRoundabout(e datastructure.Index) bool
	ForOutEdgesOf(u datastructure.Index, handle func(e *datastructure.OutEdge, id datastructure.Index))
}

type step struct {
	sign        TurnSign
	streetName  string
	point       datastructure.Coordinate
	turnBearing float64
	exitNumber  int
	exited      bool
	distance    float64
	travelTime  float64
	edgeIds     []datastructure.Index
	points      []datastructure.Coordinate
}

// DirectionBuilder. groups consecutive route edges into turn by turn steps. one builder per route.
type DirectionBuilder struct {
	graph Graph
	steps []*step
}

func NewDirectionBuilder(graph Graph) *DirectionBuilder {
	return &DirectionBuilder{
		graph: graph,
		steps: make([]*step, 0),
	}
}

// GetDrivingDirections. path is the edge id sequence of a route. empty path gives no directions.
func (db *DirectionBuilder) GetDrivingDirections(path []datastructure.Index) []DrivingDirection {
	if len(path) == 0 {
		return []DrivingDirection{}
	}

	for i, edgeId := range path {
		if i == 0 {
			db.startStep(edgeId)
			continue
		}
		db.buildInstruction(path[i-1], edgeId)
	}

	last := path[len(path)-1]
	geometry := db.graph.GetEdgeGeometry(last)
	db.steps = append(db.steps, &step{
		sign:        FINISH,
		streetName:  db.graph.GetStreetName(last),
		point:       geometry[len(geometry)-1],
		turnBearing: exitBearing(geometry),
		edgeIds:     []datastructure.Index{},
		points:      []datastructure.Coordinate{geometry[len(geometry)-1]},
	})

	directions := make([]DrivingDirection, len(db.steps))
	for i, s := range db.steps {
		directions[i] = DrivingDirection{
			instruction: describe(s.sign, s.streetName, s.turnBearing, s.exitNumber),
			turnSign:    s.sign,
			point:       s.point,
			streetName:  s.streetName,
			travelTime:  s.travelTime,
			distance:    s.distance,
			edgeIds:     s.edgeIds,
			polyline:    geo.PolylineFromCoords(datastructure.NewGeoCoordinates(s.points)),
			turnBearing: s.turnBearing,
			exitNumber:  s.exitNumber,
		}
	}
	return directions
}

func (db *DirectionBuilder) current() *step {
	return db.steps[len(db.steps)-1]
}

func (db *DirectionBuilder) startStep(edgeId datastructure.Index) {
	geometry := db.graph.GetEdgeGeometry(edgeId)
	sign := START
	if db.graph.IsRoundabout(edgeId) {
		// rute mulai di dalam bundaran
		sign = USE_ROUNDABOUT
	}
	db.steps = append(db.steps, &step{
		sign:        sign,
		streetName:  db.graph.GetStreetName(edgeId),
		point:       geometry[0],
		turnBearing: entryBearing(geometry),
		edgeIds:     make([]datastructure.Index, 0),
		points:      make([]datastructure.Coordinate, 0),
	})
	db.appendEdge(edgeId)
}

func (db *DirectionBuilder) buildInstruction(prevEdgeId, edgeId datastructure.Index) {
	geometry := db.graph.GetEdgeGeometry(edgeId)
	streetName := db.graph.GetStreetName(edgeId)
	isRoundabout := db.graph.IsRoundabout(edgeId)
	prevInRoundabout := db.graph.IsRoundabout(prevEdgeId)
	turnBearing := entryBearing(geometry)

	switch {
	case isRoundabout && !prevInRoundabout:
		db.steps = append(db.steps, &step{
			sign:        USE_ROUNDABOUT,
			streetName:  streetName,
			point:       geometry[0],
			turnBearing: turnBearing,
			edgeIds:     make([]datastructure.Index, 0),
			points:      make([]datastructure.Coordinate, 0),
		})
	case !isRoundabout && prevInRoundabout:
		// keluar bundaran: street name of the roundabout step becomes the exit road
		cur := db.current()
		cur.streetName = streetName
		cur.exited = true
	case !isRoundabout:
		delta := geo.BearingDelta(exitBearing(db.graph.GetEdgeGeometry(prevEdgeId)), turnBearing)
		sign := getTurnSign(delta)
		if sign != CONTINUE_ON_STREET || streetName != db.current().streetName {
			db.steps = append(db.steps, &step{
				sign:        sign,
				streetName:  streetName,
				point:       geometry[0],
				turnBearing: turnBearing,
				edgeIds:     make([]datastructure.Index, 0),
				points:      make([]datastructure.Coordinate, 0),
			})
		}
	}

	db.appendEdge(edgeId)
}

func (db *DirectionBuilder) appendEdge(edgeId datastructure.Index) {
	cur := db.current()
	e := db.graph.GetOutEdge(edgeId)
	cur.distance += e.GetLength()
	cur.travelTime += e.GetWeight()
	cur.edgeIds = append(cur.edgeIds, edgeId)

	geometry := db.graph.GetEdgeGeometry(edgeId)
	if len(cur.points) > 0 && len(geometry) > 0 {
		geometry = geometry[1:]
	}
	cur.points = append(cur.points, geometry...)

	if db.graph.IsRoundabout(edgeId) && !cur.exited {
		// every exit passed (or taken) at the head of a roundabout edge
		hasExit := false
		db.graph.ForOutEdgesOf(e.GetHead(), func(out *datastructure.OutEdge, id datastructure.Index) {
			if !db.graph.IsRoundabout(id) {
				hasExit = true
			}
		})
		if hasExit {
			cur.exitNumber++
		}
	}
}
