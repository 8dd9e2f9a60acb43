// Package convert provides overflow-safe integer conversions.
package convert

import "math"

// IntToInt32Clamped converts an int to int32, clamping at the int32 bounds.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// IntToUintClamped converts an int to uint, mapping negatives to zero.
func IntToUintClamped(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}
