// Package utils contains small helpers shared across the module.
package utils

import (
	"math"
	"strconv"
	"strings"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// Clamp returns value clamped to the range [lower, upper].
func Clamp(value, lower, upper float64) float64 {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}

// WrapAngle wraps the given angle in radians into the range (-pi, pi].
func WrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// AngleDiff returns the shortest signed angular difference to - from, in radians.
func AngleDiff(from, to float64) float64 {
	return WrapAngle(to - from)
}

// SpaceDelimitedStringToFloatSlice splits up space-delimited fields, such as the xyz or rpy attributes of a URDF.
// Fields which fail to parse are returned as NaN.
func SpaceDelimitedStringToFloatSlice(s string) []float64 {
	var converted []float64
	for _, field := range strings.Fields(s) {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			value = math.NaN()
		}
		converted = append(converted, value)
	}
	return converted
}
