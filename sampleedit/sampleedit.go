// Package sampleedit implements the tracker sample tools.
//
// All functions modify the sample data in place unless they
// return a new sample. Most of them operate on a Range;
// the zero Range selects the whole sample.
package sampleedit

import (
	"errors"
	"fmt"
	"math"

	"github.com/quasilyte/ptmod/modfile"
)

var errEmptySample = errors.New("empty sample")

// Range selects the [Start, End) bytes of a sample.
type Range struct {
	Start int
	End   int
}

// All is the zero Range, it selects the whole sample.
var All = Range{}

func (r Range) bounds(s *modfile.Sample) (int, int) {
	if r == All {
		return 0, len(s.Data)
	}
	start := clamp(r.Start, 0, len(s.Data))
	end := clamp(r.End, start, len(s.Data))
	return start, end
}

// Boost emphasizes the high frequencies:
// every byte gets a quarter of its difference with the previous byte added.
func Boost(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	prev := 0
	for i := from; i < to; i++ {
		v := int(s.Data[i])
		s.Data[i] = toInt8(v + (v-prev)>>2)
		prev = v
	}
}

// Filter is a simple two-tap averaging filter,
// the opposite of Boost.
func Filter(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	for i := from; i < to-1; i++ {
		s.Data[i] = int8((int(s.Data[i]) + int(s.Data[i+1])) >> 1)
	}
}

// LowPass applies a 1-pole low-pass filter with the given cutoff.
//
// The sample is assumed to be played at the C-3 rate (period 214),
// this is how the trackers tune the sample filters.
func LowPass(s *modfile.Sample, r Range, cutoff float64) error {
	a, err := onePoleCoefficient(cutoff)
	if err != nil {
		return err
	}
	from, to := r.bounds(s)
	y := 0.0
	if from < to {
		y = float64(s.Data[from])
	}
	for i := from; i < to; i++ {
		y += a * (float64(s.Data[i]) - y)
		s.Data[i] = toInt8(int(math.Round(y)))
	}
	return nil
}

// HighPass applies a 1-pole high-pass filter with the given cutoff.
// See LowPass.
func HighPass(s *modfile.Sample, r Range, cutoff float64) error {
	a, err := onePoleCoefficient(cutoff)
	if err != nil {
		return err
	}
	from, to := r.bounds(s)
	low := 0.0
	for i := from; i < to; i++ {
		x := float64(s.Data[i])
		low += a * (x - low)
		s.Data[i] = toInt8(int(math.Round(x - low)))
	}
	return nil
}

func onePoleCoefficient(cutoff float64) (float64, error) {
	if cutoff <= 0 || cutoff >= filterBaseRate/2 {
		return 0, fmt.Errorf("cutoff %.1f Hz is out of (0, %.1f) range", cutoff, filterBaseRate/2)
	}
	w := 2 * math.Pi * cutoff / filterBaseRate
	return 1 - math.Exp(-w), nil
}

func Reverse(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	for i, j := from, to-1; i < j; i, j = i+1, j-1 {
		s.Data[i], s.Data[j] = s.Data[j], s.Data[i]
	}
}

// Invert flips the sample sign. -128 becomes 127.
func Invert(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	for i := from; i < to; i++ {
		s.Data[i] = toInt8(-int(s.Data[i]))
	}
}

// Normalize scales the range so its peak hits the full 8-bit amplitude.
// It returns the applied gain (1 for the silent ranges).
func Normalize(s *modfile.Sample, r Range) float64 {
	from, to := r.bounds(s)
	peak := 0
	for i := from; i < to; i++ {
		peak = max(peak, abs(int(s.Data[i])))
	}
	if peak == 0 {
		return 1
	}
	gain := 127.0 / float64(peak)
	if peak == 128 {
		gain = 1
	}
	for i := from; i < to; i++ {
		s.Data[i] = toInt8(int(math.Round(float64(s.Data[i]) * gain)))
	}
	return gain
}

// FadeIn ramps the volume from 0 to 100% across the range.
func FadeIn(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	n := to - from
	for i := 0; i < n; i++ {
		s.Data[from+i] = int8(int(s.Data[from+i]) * i / n)
	}
}

// FadeOut ramps the volume from 100% to 0 across the range.
func FadeOut(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	n := to - from
	for i := 0; i < n; i++ {
		s.Data[from+i] = int8(int(s.Data[from+i]) * (n - 1 - i) / n)
	}
}

// Centre removes the DC offset of the range.
func Centre(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	if from == to {
		return
	}
	sum := 0
	for i := from; i < to; i++ {
		sum += int(s.Data[i])
	}
	offset := int(math.Round(float64(sum) / float64(to-from)))
	for i := from; i < to; i++ {
		s.Data[i] = toInt8(int(s.Data[i]) - offset)
	}
}

// Crop removes everything outside of the range.
// The loop is kept if it still fits the sample.
func Crop(s *modfile.Sample, r Range) {
	from, to := r.bounds(s)
	s.Data = append([]int8(nil), s.Data[from:to]...)
	s.LoopStart -= from
	fixLoop(s)
}

// fixLoop makes the loop points valid for the current data length.
func fixLoop(s *modfile.Sample) {
	if s.LoopLength <= 0 || s.LoopStart < 0 || s.LoopStart >= len(s.Data) {
		s.LoopStart = 0
		s.LoopLength = 0
		return
	}
	s.LoopLength = min(s.LoopLength, len(s.Data)-s.LoopStart)
}
