package report

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a compact Codec for high-volume report streams.
// The zero value is ready to use. Mind the struct tag differences vs JSON;
// use `msgpack:"fieldName"` tags for explicit control.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
