package codec

import "fmt"

// Limit wraps another codec and refuses payloads larger than Max bytes in both
// directions. Max <= 0 disables the check.
//
// Use it to keep a hidden value well under the carrier capacity, or to bound
// what a Reveal from an untrusted carrier may allocate in Inner.
type Limit[V any] struct {
	Inner Codec[V]
	Max   int
}

func (c Limit[V]) Encode(v V) ([]byte, error) {
	b, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	if c.Max > 0 && len(b) > c.Max {
		return nil, fmt.Errorf("payload too large: %d > %d", len(b), c.Max)
	}
	return b, nil
}

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.Max > 0 && len(b) > c.Max {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.Max)
	}
	return c.Inner.Decode(b)
}
