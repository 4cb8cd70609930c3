package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is wrapped by FormatError when the magic bytes do not match.
	ErrBadMagic = errors.New("magic bytes mismatch")
	// ErrShortBuffer is wrapped by FormatError when a buffer is smaller than the fixed layout.
	ErrShortBuffer = errors.New("buffer too short")
)

// FormatError reports bytes that are not a wbin header or record.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return "wbin format: " + e.Msg
	}
	return fmt.Sprintf("wbin format: %s: %v", e.Msg, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// VersionError reports a header written with a version this reader does not understand.
type VersionError struct {
	Version   uint32
	Supported uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("wbin version %d not supported (max %d)", e.Version, e.Supported)
}
