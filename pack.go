package lsbsteg

import "math/bits"

// Pack writes payload into the low step bits of carrier, least-significant bit first,
// using step.SlotsPerByte() carrier bytes per payload byte. The high 8-step bits of
// every carrier byte are preserved.
//
// It returns the part of carrier following the consumed bytes so that further
// payloads can be packed after this one. If carrier is too short, Pack returns
// a *CapacityError and leaves carrier untouched.
//
// Pack panics with *StepError if step is not valid.
func Pack(carrier, payload []byte, step Step) ([]byte, error) {
	slots := step.SlotsPerByte()
	need := len(payload) * slots
	if len(carrier) < need {
		return carrier, &CapacityError{Actual: len(carrier), Required: need}
	}

	mask := byte(1)<<step - 1
	off := 0
	for _, b := range payload {
		for i := 0; i < slots; i++ {
			carrier[off] = carrier[off]&^mask | (b>>(uint(i)*uint(step)))&mask
			off++
		}
	}
	return carrier[need:], nil
}

// Unpack reads up to count payload bytes back out of carrier.
//
// When carrier holds fewer than count full slot groups, Unpack stops at the last
// complete group: out is shorter than count, rest is empty and no error is
// reported. Callers that need exactly count bytes must check len(out).
//
// Unpack panics with *StepError if step is not valid.
func Unpack(carrier []byte, count int, step Step) (rest, out []byte) {
	slots := step.SlotsPerByte()
	if count < 0 {
		count = 0
	}

	n := count
	if avail := len(carrier) / slots; avail < n {
		n = avail
	}

	out = make([]byte, n)
	for i := range out {
		out[i] = unpackByte(carrier[i*slots:(i+1)*slots], step)
	}

	if n < count {
		return carrier[len(carrier):], out
	}
	return carrier[n*slots:], out
}

// unpackByte rebuilds one payload byte from its slot group. Bits are collected in
// write order by shifting left, which yields the mirror image of the source byte.
func unpackByte(group []byte, step Step) byte {
	var cur byte
	for _, slot := range group {
		for bit := uint(0); bit < uint(step); bit++ {
			cur = cur<<1 | (slot>>bit)&1
		}
	}
	return bits.Reverse8(cur)
}
