package costfunction

import (
	"testing"

	"github.com/lintang-b-s/osmrouter/pkg"
	"github.com/lintang-b-s/osmrouter/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostFunctions(t *testing.T) {
	// 100 m at 10 m/s
	e := datastructure.NewOutEdge(0, 0, 1, 10, 100, pkg.PRIMARY)

	testCases := []struct {
		metric     string
		wantWeight float64
		wantBound  float64
	}{
		{metric: METRIC_TIME, wantWeight: 10, wantBound: 50.0 / 20},
		{metric: "", wantWeight: 10, wantBound: 50.0 / 20},
		{metric: METRIC_DISTANCE, wantWeight: 100, wantBound: 50},
	}

	for _, tt := range testCases {
		t.Run(tt.metric, func(t *testing.T) {
			cf, ok := NewCostFunction(tt.metric, 20)
			require.True(t, ok)
			assert.InDelta(t, tt.wantWeight, cf.GetWeight(e), 1e-9)
			assert.InDelta(t, tt.wantBound, cf.GetLowerBound(50), 1e-9)
		})
	}

	_, ok := NewCostFunction("fuel", 20)
	assert.False(t, ok)
	assert.Zero(t, NewTimeCostFunction(0).GetLowerBound(100))
}
