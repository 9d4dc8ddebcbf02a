package framed

import (
	"io"

	"go.uber.org/zap"

	"github.com/reflexnet/framed/codec"
)

// Reader is the read half of a framed channel: it owns the receive buffer,
// the frame decoder cursor and the inbound codec, and produces decoded
// messages one at a time.
//
// Recv blocks only on the underlying transport read. Any decode-path failure
// is terminal: once Recv has returned an error other than io.EOF, it keeps
// returning that error and yields no further messages.
type Reader[T any] struct {
	r     io.Reader
	cfg   Config
	buf   *Buffer
	dec   frameDecoder
	codec codec.Codec[T]
	parts codec.HeaderCodec[T] // set in header-framed mode
	log   *zap.Logger
	done  *teardown
	err   error
}

// NewReader wraps r into a message producer decoding payloads with c.
// The caller keeps ownership of r; closing a standalone Reader does not close
// the underlying reader.
func NewReader[T any](r io.Reader, c codec.Codec[T], opts ...Option) (*Reader[T], error) {
	if r == nil {
		return nil, New(KindTransport, "framed: nil reader")
	}
	if c == nil {
		return nil, New(KindTransport, "framed: nil codec")
	}
	o := buildOptions(opts)
	if err := o.cfg.validate(); err != nil {
		return nil, err
	}
	if o.rawAppend {
		return nil, New(KindTransport, "framed: prefix required on the read path")
	}
	rd := &Reader[T]{
		r:     r,
		cfg:   o.cfg,
		buf:   NewBuffer(o.cfg.MaxBuffer),
		dec:   frameDecoder{cfg: o.cfg},
		codec: c,
		log:   o.log,
	}
	if o.cfg.HeaderFramed {
		parts, ok := c.(codec.HeaderCodec[T])
		if !ok {
			return nil, New(KindTransport, "framed: header framing requires a header codec")
		}
		rd.parts = parts
	}
	return rd, nil
}

// Recv returns the next decoded message.
//
// It first tries to decode from already buffered bytes and performs one
// transport read per incomplete attempt. A clean close of the transport at a
// frame boundary returns io.EOF; a close mid-frame returns KindUnexpectedEOF.
func (rd *Reader[T]) Recv() (T, error) {
	var zero T
	if rd.err != nil {
		return zero, rd.err
	}
	for {
		payload, headerLen, err := rd.dec.next(rd.buf)
		if err == nil {
			return rd.decode(payload, headerLen)
		}
		if err != errNeedMore {
			return zero, rd.fail(err)
		}
		if err := rd.fill(); err != nil {
			if err == io.EOF {
				rd.err = io.EOF
				return zero, io.EOF
			}
			return zero, rd.fail(err)
		}
	}
}

// fill performs one transport read into the receive buffer. A zero-byte close
// is io.EOF only when the decoder cursor sits at a frame boundary with no
// bytes pending.
func (rd *Reader[T]) fill() error {
	// Never reserve past the ceiling: an incomplete frame always leaves at
	// least one byte of room below MaxBuffer.
	chunk := rd.cfg.ReadChunk
	if room := rd.cfg.MaxBuffer - rd.buf.Len(); room < chunk {
		chunk = room
	}
	spare, err := rd.buf.Spare(chunk)
	if err != nil {
		return err
	}
	for {
		n, err := rd.r.Read(spare)
		if n > 0 {
			rd.buf.Commit(n)
			return nil
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			if rd.dec.atBoundary() && rd.buf.Len() == 0 {
				return io.EOF
			}
			return New(KindUnexpectedEOF, "framed: transport closed mid-frame")
		}
		return Wrap(KindTransport, "framed: transport read", err)
	}
}

func (rd *Reader[T]) decode(payload []byte, headerLen int) (T, error) {
	var (
		msg T
		err error
	)
	if rd.parts != nil {
		msg, err = rd.parts.UnmarshalParts(payload[:headerLen], payload[headerLen:])
	} else {
		msg, err = rd.codec.Unmarshal(payload)
	}
	if err != nil {
		var zero T
		return zero, rd.fail(Wrap(KindDecode, "framed: decode payload", err))
	}
	rd.log.Debug("frame received", zap.Int("payload", len(payload)))
	return msg, nil
}

func (rd *Reader[T]) fail(err error) error {
	rd.err = err
	rd.log.Warn("read half terminated", zap.Error(err))
	return err
}

// Close marks the read half closed and releases its share of the transport.
// When the transport supports read shutdown (e.g. *net.TCPConn), the read
// direction is shut down immediately; the transport itself is closed once the
// write half is gone too.
func (rd *Reader[T]) Close() error {
	if rd.err == nil {
		rd.err = New(KindClosed, "framed: read half closed")
	}
	if cr, ok := rd.r.(interface{ CloseRead() error }); ok {
		_ = cr.CloseRead()
	}
	if rd.done != nil {
		return rd.done.release()
	}
	return nil
}
