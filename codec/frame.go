package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// BodyDecider is implemented by header messages that decide per frame whether
// the body should be decoded or handed over as raw bytes. Headers that do not
// implement it always get a decoded body.
type BodyDecider interface {
	DecodeBody() bool
}

// Frame pairs a protobuf header with a body that is decoded only when the
// header asks for it. Exactly one of Msg and Raw is set on a decoded frame;
// a frame being sent may carry either.
type Frame[H, B any, PH Message[H], PB Message[B]] struct {
	Header PH
	// Msg is the decoded body.
	Msg PB
	// Raw is the undecoded body, kept when the header declined decoding.
	Raw []byte
}

type frameCodec[H, B any, PH Message[H], PB Message[B]] struct{}

// FrameOf returns the codec for header-framed streams of Frame[H, B]. It only
// operates in header-framed mode (framed.Config.HeaderFramed); the plain
// Marshal/Unmarshal entry points reject use under a flat length prefix.
func FrameOf[H, B any, PH Message[H], PB Message[B]]() Codec[*Frame[H, B, PH, PB]] {
	return frameCodec[H, B, PH, PB]{}
}

var errNotHeaderFramed = errors.New("codec: frame codec requires header framing")

func (frameCodec[H, B, PH, PB]) Marshal(*Frame[H, B, PH, PB]) ([]byte, error) {
	return nil, errNotHeaderFramed
}

func (frameCodec[H, B, PH, PB]) Unmarshal([]byte) (*Frame[H, B, PH, PB], error) {
	return nil, errNotHeaderFramed
}

func (frameCodec[H, B, PH, PB]) MarshalParts(f *Frame[H, B, PH, PB]) (header, body []byte, err error) {
	if f == nil {
		return nil, nil, errNilMessage
	}
	if f.Header != nil {
		header, err = proto.Marshal(f.Header)
		if err != nil {
			return nil, nil, err
		}
	}
	switch {
	case f.Raw != nil:
		body = f.Raw
	case f.Msg != nil:
		body, err = proto.Marshal(f.Msg)
		if err != nil {
			return nil, nil, err
		}
	}
	return header, body, nil
}

func (frameCodec[H, B, PH, PB]) UnmarshalParts(header, body []byte) (*Frame[H, B, PH, PB], error) {
	f := &Frame[H, B, PH, PB]{Header: PH(new(H))}
	decodeBody := true
	if len(header) > 0 {
		if err := proto.Unmarshal(header, f.Header); err != nil {
			return nil, err
		}
		if d, ok := any(f.Header).(BodyDecider); ok {
			decodeBody = d.DecodeBody()
		}
	}
	if decodeBody {
		msg := PB(new(B))
		if err := proto.Unmarshal(body, msg); err != nil {
			return nil, err
		}
		f.Msg = msg
	} else {
		f.Raw = body
	}
	return f, nil
}
