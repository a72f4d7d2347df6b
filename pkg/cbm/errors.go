package cbm

import (
	"errors"
	"fmt"
)

var (
	ErrGeometry           = errors.New("track/sector outside disk geometry")
	ErrOutOfRange         = errors.New("sector link points outside disk geometry")
	ErrTruncatedImage     = errors.New("image is shorter than its geometry requires")
	ErrCorruptChain       = errors.New("corrupt sector chain")
	ErrEndOfChain         = errors.New("no more sectors in chain")
	ErrUnrecognizedFormat = errors.New("unrecognized disk image format")
	ErrIO                 = errors.New("cannot read disk image")
	ErrHeaderUnreadable   = errors.New("disk header sector unreadable")
	ErrCorruptSample      = errors.New("corrupt capture sample")
)

// ChainError describes a failure while walking a sector chain
type ChainError struct {
	Op  string      // "file" or "directory"
	At  TrackSector // coordinate that failed validation
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s chain at %s: %v", e.Op, e.At, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// SampleError reports an invalid sample pair in a raw capture
type SampleError struct {
	Offset int // byte offset of the pair inside the capture file
	Hi, Lo byte
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("%v at offset 0x%X: samples 0x%02X/0x%02X", ErrCorruptSample, e.Offset, e.Hi, e.Lo)
}

func (e *SampleError) Unwrap() error {
	return ErrCorruptSample
}
