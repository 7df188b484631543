package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHighwayType(t *testing.T) {
	testCases := []struct {
		tag  string
		want OsmHighwayType
	}{
		{tag: "motorway", want: MOTORWAY},
		{tag: "residential", want: RESIDENTIAL},
		{tag: "tertiary_link", want: TERTIARY_LINK},
		{tag: "motorroad", want: MOTORROAD},
		{tag: "footway", want: UNKNOWN},
		{tag: "", want: UNKNOWN},
	}
	for _, tt := range testCases {
		t.Run(tt.tag, func(t *testing.T) {
			got := GetHighwayType(tt.tag)
			assert.Equal(t, tt.want, got)
			if tt.want != UNKNOWN {
				assert.Equal(t, tt.tag, got.String())
			}
		})
	}
	assert.Equal(t, "unknown", OsmHighwayType(200).String())
}
