package modfile

import (
	"bytes"
	"strings"
)

func convertCstring(data []byte) string {
	i := bytes.IndexByte(data, 0)
	if i != -1 {
		data = data[:i]
	}
	return strings.TrimRight(string(data), " ")
}

// decodeFinetune converts a 4-bit two's complement nibble into -8..7.
func decodeFinetune(b uint8) int8 {
	v := int8(b & 0x0F)
	if v > 7 {
		v -= 16
	}
	return v
}

func encodeFinetune(v int8) uint8 {
	return uint8(v) & 0x0F
}

func isPrintableTag(tag []byte) bool {
	for _, c := range tag {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}
