package codec

// Bytes is an identity codec for []byte values. Use it to hide an already encoded
// or encrypted blob while still getting the envelope check on Reveal; Capacity
// is then exactly the largest blob that fits.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String hides Go strings as their UTF-8 bytes. No validation on Decode.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
