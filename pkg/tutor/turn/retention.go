package turn

import (
	"math"
	"strconv"
	"strings"
)

const (
	mediumThreshold = 0.5
	highThreshold   = 0.75
)

// NormalizeRetention parses a retention value into [0,1].
//
// Workflow variants disagree on scale: some send a fraction, others a 0-100
// percentage. Any value above 1 is read as a percentage and divided by 100.
// The result is clamped, so a malformed 250 becomes 1. Values that do not
// parse as a finite number are dropped.
func NormalizeRetention(v any) (float64, bool) {
	var r float64
	switch val := v.(type) {
	case float64:
		r = val
	case float32:
		r = float64(val)
	case int:
		r = float64(val)
	case int64:
		r = float64(val)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		r = parsed
	default:
		return 0, false
	}

	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	if r > 1 {
		r = r / 100
	}
	return clamp(r), true
}

// BucketFor maps a retention score to its band. Both thresholds belong to medium.
func BucketFor(r float64) Bucket {
	switch {
	case r < mediumThreshold:
		return BucketLow
	case r <= highThreshold:
		return BucketMedium
	default:
		return BucketHigh
	}
}

func clamp(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
