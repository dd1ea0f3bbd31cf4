package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR hides values as fxamacker/cbor documents. Construct with NewCBOR or
// MustCBOR; the zero value has no modes set.
//
// CBOR output is compact, which stretches a carrier further than JSON. With
// deterministic=true (RFC 8949 Core Deterministic) equal values leave identical
// low bits in identical carriers, so two stego images can be compared bytewise.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	// unix seconds: 1 to 9 bytes instead of a ~30 byte RFC 3339 string
	eo.Time = cbor.TimeUnixDynamic

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	// hostile carriers can declare huge arrays; cap what Reveal may allocate
	dm, err := (cbor.DecOptions{MaxArrayElements: 1 << 16, MaxMapPairs: 1 << 16}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Meant for package-level vars and tests.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
