package costfunction

type TimeFunction struct {
	maxSpeed float64 // meter/second
}

func NewTimeCostFunction(maxSpeed float64) *TimeFunction {
	return &TimeFunction{maxSpeed: maxSpeed}
}

// GetWeight. travel time in seconds
func (tf *TimeFunction) GetWeight(e EdgeAttributes) float64 {
	return e.GetWeight()
}

func (tf *TimeFunction) GetLowerBound(meters float64) float64 {
	if tf.maxSpeed <= 0 {
		return 0
	}
	return meters / tf.maxSpeed
}

func (tf *TimeFunction) Name() string {
	return METRIC_TIME
}
