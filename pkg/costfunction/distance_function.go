package costfunction

type DistanceFunction struct {
}

func NewDistanceCostFunction() *DistanceFunction {
	return &DistanceFunction{}
}

// GetWeight. length in meters
func (df *DistanceFunction) GetWeight(e EdgeAttributes) float64 {
	return e.GetLength()
}

func (df *DistanceFunction) GetLowerBound(meters float64) float64 {
	return meters
}

func (df *DistanceFunction) Name() string {
	return METRIC_DISTANCE
}
