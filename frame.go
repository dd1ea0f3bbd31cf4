package lsbsteg

import (
	"fmt"

	"github.com/unkn0wn-root/lsbsteg/internal/wire"
)

// Encode packs a big-endian length field of WordSize bytes followed by payload into
// carrier and returns the unused remainder.
//
// The full frame size is checked before anything is written, so a *CapacityError
// leaves carrier untouched.
//
// Layout (each byte spread over 8/step carrier bytes):
//
//	len(u64 be) | payload(len)
func Encode(carrier, payload []byte, step Step) ([]byte, error) {
	need := FramedCarrier(len(payload), step)
	if len(carrier) < need {
		return carrier, &CapacityError{Actual: len(carrier), Required: need}
	}

	hdr := wire.PutLength(uint64(len(payload)))
	rest, err := Pack(carrier, hdr[:], step)
	if err != nil {
		return carrier, err
	}
	return Pack(rest, payload, step)
}

// Decode reads one frame written by Encode and returns its payload.
func Decode(carrier []byte, step Step) ([]byte, error) {
	payload, _, err := decodeFrame(carrier, step, -1)
	return payload, err
}

// DecodeNext is like Decode but also returns the carrier following the frame,
// for reading frames that were encoded one after another.
func DecodeNext(carrier []byte, step Step) (payload, rest []byte, err error) {
	return decodeFrame(carrier, step, -1)
}

// DecodeLimit is like Decode but fails with ErrPayloadTooLarge when the frame
// declares more than limit payload bytes. Nothing past the length field is read in that case.
func DecodeLimit(carrier []byte, step Step, limit int) ([]byte, error) {
	if limit < 0 {
		limit = 0
	}
	payload, _, err := decodeFrame(carrier, step, limit)
	return payload, err
}

// decodeFrame ignores limit when it is negative.
func decodeFrame(carrier []byte, step Step, limit int) ([]byte, []byte, error) {
	rest, hdr := Unpack(carrier, WordSize, step)
	if len(hdr) != WordSize {
		return nil, carrier, &FramingError{
			Section:   SectionLength,
			Expected:  WordSize,
			Recovered: uint64(len(hdr)),
		}
	}

	n := wire.Length(hdr)
	if limit >= 0 && n > uint64(limit) {
		return nil, carrier, fmt.Errorf("%w: frame declares %d bytes, limit is %d", ErrPayloadTooLarge, n, limit)
	}

	// overflow-safe: compare in payload bytes, not carrier bytes
	avail := uint64(MaxPayload(len(rest), step))
	if n > avail {
		return nil, carrier, &FramingError{
			Section:   SectionPayload,
			Expected:  n,
			Recovered: avail,
		}
	}

	rest, payload := Unpack(rest, int(n), step)
	return payload, rest, nil
}
