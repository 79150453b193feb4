// Package report carries structured decode-failure records to a diagnostic
// sink. A record holds exactly what an operator needs to troubleshoot a
// mis-encoded attribute: where the value came from, the scheme it was
// decoded under, the byte position, and the offending bytes themselves.
package report

import "context"

// Failure is one decode failure. Offset is -1 when no byte position
// applies (e.g. scheme detection found no match).
type Failure struct {
	Namespace string `json:"namespace" cbor:"namespace" msgpack:"namespace"`
	Attr      string `json:"attr" cbor:"attr" msgpack:"attr"`
	Scheme    string `json:"scheme" cbor:"scheme" msgpack:"scheme"`
	Offset    int    `json:"offset" cbor:"offset" msgpack:"offset"`
	Value     []byte `json:"value,omitempty" cbor:"value,omitempty" msgpack:"value,omitempty"`
	Reason    string `json:"reason" cbor:"reason" msgpack:"reason"`
}

// Codec encodes/decodes report records V to []byte for transport.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Sink receives failure records. Implementations decide transport and
// durability; the Mapper only requires that Emit either accepts the record
// or returns an error.
type Sink interface {
	Emit(ctx context.Context, f Failure) error
}
