package costfunction

import (
	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
)

type EdgeAttributes interface {
	GetWeight() float64
	GetEdgeSpeed() float64
	GetLength() float64
	GetEdgeId() datastructure.Index
	GetHighwayType() pkg.OsmHighwayType
}

// CostFunction. GetLowerBound must never exceed the true cost of covering the given straight-line distance,
// A* relies on it.
type CostFunction interface {
	GetWeight(e EdgeAttributes) float64
	GetLowerBound(meters float64) float64
	Name() string
}

const (
	METRIC_TIME     = "time"
	METRIC_DISTANCE = "distance"
)

// NewCostFunction. maxSpeed is the fastest edge of the graph in meter/second.
func NewCostFunction(metric string, maxSpeed float64) (CostFunction, bool) {
	switch metric {
	case METRIC_TIME, "":
		return NewTimeCostFunction(maxSpeed), true
	case METRIC_DISTANCE:
		return NewDistanceCostFunction(), true
	default:
		return nil, false
	}
}
