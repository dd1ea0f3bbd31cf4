package codec

import "encoding/json"

// JSON hides values as encoding/json text. The zero value is ready to use.
// JSON is the most portable choice and the least dense: prefer Msgpack or CBOR,
// or wrap it in Zstd, when Capacity is tight.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
