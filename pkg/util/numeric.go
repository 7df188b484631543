package util

import (
	"context"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

const degToRad = math.Pi / 180

func DegreeToRadians(deg float64) float64 { return deg * degToRad }

func RadiansToDegree(rad float64) float64 { return rad / degToRad }

// StringToFloat64. query params & osm tags, surrounding whitespace allowed
func StringToFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// RoundFloat. round half away from zero to `precision` decimals
func RoundFloat(val float64, precision uint) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(val*scale) / scale
}

// ReverseInPlace. reverses s and returns it
func ReverseInPlace[T any](s []T) []T {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

// StopConcurrentOperation. non blocking check, true once ctx is done
func StopConcurrentOperation(ctx context.Context) bool {
	return ctx.Err() != nil
}

func AssertPanic(cond bool, msg string) {
	if cond {
		return
	}
	panic(msg)
}

func MinG[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func MaxG[T constraints.Ordered](a, b T) T {
	if b > a {
		return b
	}
	return a
}
