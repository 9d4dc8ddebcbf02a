// Package codec provides the serialization capability for framed sessions:
// turning a message value into a frame payload and back.
//
// The interface is deliberately small so deployments can swap the encoding
// without touching session or framing logic. Proto is the flagship
// implementation; Bytes passes opaque payloads through; Sealed wraps any
// codec in an authenticated encryption envelope.
package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Codec encodes messages of type T into frame payloads and decodes them back.
//
// Marshal must succeed for any constructible message; a failure is reported
// to the sender as an encode error. Unmarshal failures terminate the read
// half of the stream that produced the payload.
type Codec[T any] interface {
	Marshal(msg T) ([]byte, error)
	Unmarshal(payload []byte) (T, error)
}

// HeaderCodec is the extension implemented by codecs whose frames carry a
// distinct header segment, with the header length packed into the top byte of
// the length prefix (framed.Config.HeaderFramed).
type HeaderCodec[T any] interface {
	MarshalParts(msg T) (header, body []byte, err error)
	UnmarshalParts(header, body []byte) (T, error)
}

// Message constrains a pointer to a generated protobuf struct.
type Message[T any] interface {
	*T
	proto.Message
}

type protoCodec[T any, PT Message[T]] struct{}

// Proto returns a Codec backed by the protobuf binary wire format.
func Proto[T any, PT Message[T]]() Codec[PT] {
	return protoCodec[T, PT]{}
}

func (protoCodec[T, PT]) Marshal(msg PT) ([]byte, error) {
	return proto.Marshal(msg)
}

func (protoCodec[T, PT]) Unmarshal(payload []byte) (PT, error) {
	msg := PT(new(T))
	if err := proto.Unmarshal(payload, msg); err != nil {
		var zero PT
		return zero, err
	}
	return msg, nil
}

type bytesCodec struct{}

// Bytes returns a passthrough codec for opaque []byte payloads.
func Bytes() Codec[[]byte] {
	return bytesCodec{}
}

func (bytesCodec) Marshal(msg []byte) ([]byte, error) {
	return msg, nil
}

func (bytesCodec) Unmarshal(payload []byte) ([]byte, error) {
	return payload, nil
}

var errNilMessage = errors.New("codec: nil message")
