package modfile

import (
	"fmt"
)

// ParseError describes a malformed module file.
//
// Stage names the file section that was being decoded,
// like "sample[3].header" or "pattern[12]".
type ParseError struct {
	Message string

	Stage string

	Offset int
}

func (e *ParseError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("%s (offset=%d)", e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s (offset=%d)", e.Stage, e.Message, e.Offset)
}
