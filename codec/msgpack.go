package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack hides values as vmihailenco/msgpack/v5 documents. The zero value is
// ready to use. Struct fields are written as compact arrays when tagged with
// `msgpack:",as_array"`, which saves the field names in every carrier.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
