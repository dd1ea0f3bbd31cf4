package codec

import (
	"github.com/klauspost/compress/zstd"
)

// Zstd compresses the output of Inner with zstd before it is hidden, so more
// value fits into the same carrier. Construct with NewZstd; call Close when done.
// Safe for concurrent use.
type Zstd[V any] struct {
	Inner Codec[V]

	enc *zstd.Encoder
	dec *zstd.Decoder
}

var _ Codec[[]byte] = (*Zstd[[]byte])(nil)

// NewZstd wraps inner. level follows the zstd CLI scale (1..22); it is mapped to
// the nearest encoder level.
func NewZstd[V any](inner Codec[V], level int) (*Zstd[V], error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Zstd[V]{Inner: inner, enc: enc, dec: dec}, nil
}

func (z *Zstd[V]) Encode(v V) ([]byte, error) {
	b, err := z.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	return z.enc.EncodeAll(b, nil), nil
}

func (z *Zstd[V]) Decode(b []byte) (V, error) {
	raw, err := z.dec.DecodeAll(b, nil)
	if err != nil {
		var zero V
		return zero, err
	}
	return z.Inner.Decode(raw)
}

// Close releases encoder and decoder resources.
func (z *Zstd[V]) Close() error {
	z.dec.Close()
	return z.enc.Close()
}
