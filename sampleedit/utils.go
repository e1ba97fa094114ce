package sampleedit

import (
	"github.com/quasilyte/ptmod"
)

// filterBaseRate is the C-3 playback rate, in Hz.
var filterBaseRate = ptmod.PeriodFrequency(214)

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func toInt8(v int) int8 {
	return int8(clamp(v, -128, 127))
}
