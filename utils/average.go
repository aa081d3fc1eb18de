package utils

import "time"

// RollingAverage averages the most recent durations added to it.
type RollingAverage struct {
	data  []time.Duration
	pos   int
	count int
}

// NewRollingAverage returns a RollingAverage over the last numSamples values.
func NewRollingAverage(numSamples int) *RollingAverage {
	return &RollingAverage{data: make([]time.Duration, numSamples)}
}

// NumSamples returns the size of the window.
func (ra *RollingAverage) NumSamples() int {
	return len(ra.data)
}

// Add records x, replacing the oldest value once the window is full.
func (ra *RollingAverage) Add(x time.Duration) {
	ra.data[ra.pos] = x
	ra.pos++
	if ra.pos >= len(ra.data) {
		ra.pos = 0
	}
	if ra.count < len(ra.data) {
		ra.count++
	}
}

// Average returns the mean of the recorded values, or zero before anything was added.
func (ra *RollingAverage) Average() time.Duration {
	if ra.count == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ra.data[:ra.count] {
		sum += d
	}
	return sum / time.Duration(ra.count)
}
