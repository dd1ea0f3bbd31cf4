// Package codec turns typed values into the byte payloads lsbsteg hides in carriers.
package codec

// Codec encodes/decodes values V to []byte payloads.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
