package framed

import (
	stderrors "errors"
)

// Kind categorizes stream errors so callers can decide how to react.
// Read-path kinds (KindFrameTooLarge, KindDecode, KindUnexpectedEOF,
// KindTransport, KindCapacity) are terminal for the half that raised them,
// while KindMessageTooLarge and KindEncode are returned to the specific Send
// call and leave the sink usable.
type Kind uint8

const (
	// KindFrameTooLarge means an incoming frame declared a length above the
	// configured maximum. The frame is rejected before its payload is read.
	KindFrameTooLarge Kind = iota + 1
	// KindMessageTooLarge means an outgoing message encoded to more bytes
	// than one frame may carry.
	KindMessageTooLarge
	// KindDecode means a complete payload failed structured decoding.
	KindDecode
	// KindEncode means the serialization codec rejected an outgoing message.
	KindEncode
	// KindUnexpectedEOF means the transport closed mid-frame.
	KindUnexpectedEOF
	// KindTransport wraps an I/O failure from the underlying transport.
	KindTransport
	// KindCapacity means a buffer would have grown past its hard ceiling.
	KindCapacity
	// KindClosed means the half was closed locally.
	KindClosed
)

type Error struct {
	Kind  Kind
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Inner == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Inner.Error()
}

func (e *Error) Unwrap() error { return e.Inner }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, inner error) *Error {
	return &Error{Kind: kind, Msg: msg, Inner: inner}
}

func IsKind(err error, kind Kind) bool {
	var fe *Error
	if stderrors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// errNeedMore is the internal control signal for "frame incomplete, read more
// bytes". It never surfaces to callers.
var errNeedMore = stderrors.New("framed: need more data")
