package lsbsteg

import (
	"errors"
	"fmt"
)

var (
	// ErrCarrierTooSmall is matched (errors.Is) by every *CapacityError and *FramingError.
	ErrCarrierTooSmall = errors.New("lsbsteg: carrier too small")
	// ErrPayloadTooLarge is returned when a frame declares more bytes than the caller allows.
	ErrPayloadTooLarge = errors.New("lsbsteg: payload too large")
	// ErrNoProvider is returned by store operations of a Steg built without a Provider.
	ErrNoProvider = errors.New("lsbsteg: no provider configured")
)

// CapacityError reports a carrier that cannot hold the requested payload.
type CapacityError struct {
	Actual   int // carrier length in bytes
	Required int // carrier length needed
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("lsbsteg: carrier is %d bytes, but %d bytes are required (%d short)",
		e.Actual, e.Required, e.Shortfall())
}

// Shortfall returns how many more carrier bytes are needed.
func (e *CapacityError) Shortfall() int { return e.Required - e.Actual }

func (e *CapacityError) Unwrap() error { return ErrCarrierTooSmall }

// Frame sections reported by FramingError.
const (
	SectionLength  = "length"
	SectionPayload = "payload"
)

// FramingError reports a framed carrier that ended before the length field or
// the payload could be read in full. Counts are payload bytes, not carrier bytes.
type FramingError struct {
	Section   string // SectionLength or SectionPayload
	Expected  uint64
	Recovered uint64
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("lsbsteg: short %s: expected %d bytes, recovered %d (%d missing)",
		e.Section, e.Expected, e.Recovered, e.Missing())
}

// Missing returns how many bytes of the section could not be recovered.
func (e *FramingError) Missing() uint64 { return e.Expected - e.Recovered }

func (e *FramingError) Unwrap() error { return ErrCarrierTooSmall }

// StepError reports a step that does not divide 8 or is outside 1..7.
// The codec functions panic with it; Options and config validation return it.
type StepError struct {
	Step Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("lsbsteg: invalid step %d: must be 1, 2 or 4", e.Step)
}
