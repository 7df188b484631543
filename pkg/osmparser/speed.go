package osmparser

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSpeedTable. km/h per osm highway class
func DefaultSpeedTable() map[string]float64 {
	return map[string]float64{
		"motorway":       100,
		"trunk":          70,
		"primary":        65,
		"secondary":      60,
		"tertiary":       50,
		"unclassified":   40,
		"residential":    30,
		"service":        20,
		"motorway_link":  70,
		"trunk_link":     65,
		"primary_link":   60,
		"secondary_link": 50,
		"tertiary_link":  40,
		"living_street":  5,
		"road":           20,
		"track":          15,
		"motorroad":      90,
	}
}

// parseMaxSpeed. maxspeed tag value to km/h. https://wiki.openstreetmap.org/wiki/Key:maxspeed
func parseMaxSpeed(value string) (float64, error) {
	value = strings.TrimSpace(value)
	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		value = strings.TrimSuffix(value, "mph")
		factor = 1.60934
	case strings.HasSuffix(value, "knots"):
		value = strings.TrimSuffix(value, "knots")
		factor = 1.852
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	case strings.HasSuffix(value, "kmh"):
		value = strings.TrimSuffix(value, "kmh")
	}

	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if speed <= 0 {
		return 0, fmt.Errorf("non positive maxspeed %v", speed)
	}
	return speed * factor, nil
}
