package lsbsteg

import "github.com/unkn0wn-root/lsbsteg/internal/wire"

// Step is the number of low-order bits of each carrier byte that carry payload bits.
// Valid steps divide 8 and are below 8: 1, 2 or 4.
type Step uint8

const (
	Step1 Step = 1
	Step2 Step = 2
	Step4 Step = 4
)

// WordSize is the width in bytes of the length field that prefixes a framed payload.
const WordSize = wire.LengthSize

// Valid reports whether s can be used by the codec.
func (s Step) Valid() bool {
	return s > 0 && s < 8 && 8%s == 0
}

// SlotsPerByte returns how many carrier bytes hold one payload byte (8/s).
// It panics with *StepError if s is not valid.
func (s Step) SlotsPerByte() int {
	if !s.Valid() {
		panic(&StepError{Step: s})
	}
	return 8 / int(s)
}

// RequiredCarrier returns the carrier length Pack needs for n payload bytes.
func RequiredCarrier(n int, step Step) int {
	return n * step.SlotsPerByte()
}

// FramedCarrier returns the carrier length Encode needs for n payload bytes,
// length field included.
func FramedCarrier(n int, step Step) int {
	return (WordSize + n) * step.SlotsPerByte()
}

// MaxPayload returns how many bytes Pack can fit into carrierLen carrier bytes.
func MaxPayload(carrierLen int, step Step) int {
	if carrierLen <= 0 {
		return 0
	}
	return carrierLen / step.SlotsPerByte()
}

// MaxFramedPayload returns how many payload bytes Encode can fit into carrierLen carrier bytes.
func MaxFramedPayload(carrierLen int, step Step) int {
	n := MaxPayload(carrierLen, step) - WordSize
	if n < 0 {
		return 0
	}
	return n
}
