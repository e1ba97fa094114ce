package ptmod

import (
	"encoding/binary"
)

type numeric interface {
	uint8 | int | float64
}

func clampMin[T numeric](v, min T) T {
	if v < min {
		return min
	}
	return v
}

func clampMax[T numeric](v, max T) T {
	if v > max {
		return max
	}
	return v
}

func clamp[T numeric](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// calcFramesPerTick returns the tick duration as a 32.32 fixed-point
// number of output frames.
func calcFramesPerTick(sampleRate uint, mode TempoMode, bpm int) uint64 {
	var ticksPerSecond float64
	if mode == TempoVBlank {
		ticksPerSecond = vblankHz
	} else {
		ticksPerSecond = ciaClockHz / float64(ciaTempoDivider/bpm)
	}
	return uint64(float64(sampleRate) / ticksPerSecond * (1 << 32))
}

func putPCM(b []byte, l, r int16) {
	binary.LittleEndian.PutUint16(b[0:], uint16(l))
	binary.LittleEndian.PutUint16(b[2:], uint16(r))
}

func decodeFinetune(x uint8) int8 {
	v := int8(x & 0x0F)
	if v > 7 {
		v -= 16
	}
	return v
}
