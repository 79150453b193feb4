package report

import "google.golang.org/protobuf/proto"

// Protobuf serializes caller-defined report messages for pipelines that
// already speak a proto schema. T is the concrete generated message type.
type Protobuf[T proto.Message] struct {
	new func() T // constructor, e.g. func() *reportpb.Failure { return &reportpb.Failure{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
