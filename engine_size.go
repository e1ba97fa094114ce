package ptmod

import (
	"unsafe"
)

// Info contains the engine rendering information.
type Info struct {
	// SampleRate is the output frames per second.
	SampleRate uint

	// FramesPerTick is the current tick duration in output frames.
	// It's fractional: the engine accumulates the remainder between the ticks.
	FramesPerTick float64

	// MemoryUsage approximates the compiled module size in bytes.
	MemoryUsage uint

	// Interpolation is the sample interpolation mode
	// selected at build time ("nearest" or "linear").
	Interpolation string
}

// GetInfo returns the engine rendering information.
// See Info for more details.
func (e *Engine) GetInfo() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{
		SampleRate:    e.config.SampleRate,
		FramesPerTick: float64(e.framesPerTick) / (1 << 32),
		MemoryUsage:   moduleSize(e.module),
		Interpolation: interpolationName,
	}
}

func moduleSize(m *module) uint {
	memoryUsage := int(unsafe.Sizeof(*m))
	for i := range m.samples {
		memoryUsage += len(m.samples[i].data)
	}
	return uint(memoryUsage)
}
