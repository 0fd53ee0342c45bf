// Package random adds jitter to retry delays.
package random

import (
	"math"
	"math/rand"
	"time"
)

// Randomize applies ±percent randomization to value
// Example: Randomize(100, 1.0) returns value in range [99, 101]
func Randomize(value float64, percent float64) float64 {
	if percent <= 0 {
		return value
	}

	variance := value * (percent / 100.0)

	// Random offset in [-variance, +variance]
	offset := (rand.Float64()*2 - 1) * variance

	result := value + offset
	return math.Round(result*100) / 100
}

// Jitter spreads d by ±percent so concurrent clients do not retry in step.
// The result is never negative.
func Jitter(d time.Duration, percent float64) time.Duration {
	if d <= 0 {
		return 0
	}
	jittered := time.Duration(Randomize(float64(d), percent))
	if jittered < 0 {
		return 0
	}
	return jittered
}
