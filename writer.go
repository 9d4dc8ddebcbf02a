package framed

import (
	"io"

	"go.uber.org/zap"

	"github.com/reflexnet/framed/codec"
)

// Writer is the write half of a framed channel: a buffered sink that accepts
// messages, assembles their frames in a send buffer, and drains the buffer to
// the transport on Flush.
//
// Send never touches the transport, so messages batch until an explicit
// Flush. Per-message failures (encode errors, oversized messages) are
// returned to that Send and leave the sink usable; a transport failure on
// Flush is terminal.
type Writer[T any] struct {
	w     io.Writer
	cfg   Config
	buf   *Buffer
	enc   frameEncoder
	codec codec.Codec[T]
	parts codec.HeaderCodec[T] // set in header-framed mode
	log   *zap.Logger
	done  *teardown
	err   error
}

// NewWriter wraps w into a buffered message sink encoding payloads with c.
// The caller keeps ownership of w; closing a standalone Writer flushes but
// does not close the underlying writer.
func NewWriter[T any](w io.Writer, c codec.Codec[T], opts ...Option) (*Writer[T], error) {
	if w == nil {
		return nil, New(KindTransport, "framed: nil writer")
	}
	if c == nil {
		return nil, New(KindTransport, "framed: nil codec")
	}
	o := buildOptions(opts)
	if err := o.cfg.validate(); err != nil {
		return nil, err
	}
	if o.rawAppend && o.cfg.HeaderFramed {
		return nil, New(KindTransport, "framed: header framing requires the length prefix")
	}
	wr := &Writer[T]{
		w:     w,
		cfg:   o.cfg,
		buf:   NewBuffer(o.cfg.MaxBuffer),
		enc:   frameEncoder{cfg: o.cfg, prefix: !o.rawAppend},
		codec: c,
		log:   o.log,
	}
	if o.cfg.HeaderFramed {
		parts, ok := c.(codec.HeaderCodec[T])
		if !ok {
			return nil, New(KindTransport, "framed: header framing requires a header codec")
		}
		wr.parts = parts
	}
	return wr, nil
}

// Send encodes msg and appends its frame to the send buffer. It does not
// write to the transport. An error from Send concerns only this message;
// earlier buffered frames stay pending and later Sends are allowed.
func (wr *Writer[T]) Send(msg T) error {
	if wr.err != nil {
		return wr.err
	}
	var (
		header, body []byte
		err          error
	)
	if wr.parts != nil {
		header, body, err = wr.parts.MarshalParts(msg)
	} else {
		body, err = wr.codec.Marshal(msg)
	}
	if err != nil {
		return Wrap(KindEncode, "framed: encode message", err)
	}
	if err := wr.enc.appendFrame(wr.buf, header, body); err != nil {
		return err
	}
	wr.log.Debug("frame buffered", zap.Int("payload", len(header)+len(body)))
	return nil
}

// Flush drains the send buffer to the transport, looping over partial writes.
// The buffer head advances only past bytes the transport confirmed, so an
// abandoned flush leaves the remainder pending in order. When the transport
// itself buffers (exposes Flush() error), it is flushed as well.
func (wr *Writer[T]) Flush() error {
	if wr.err != nil {
		return wr.err
	}
	for wr.buf.Len() > 0 {
		n, err := wr.w.Write(wr.buf.Bytes())
		if n > 0 {
			wr.buf.Consume(n)
		}
		if err != nil {
			return wr.fail(Wrap(KindTransport, "framed: transport write", err))
		}
		if n == 0 {
			return wr.fail(Wrap(KindTransport, "framed: transport write", io.ErrNoProgress))
		}
	}
	if f, ok := wr.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return wr.fail(Wrap(KindTransport, "framed: transport flush", err))
		}
	}
	return nil
}

func (wr *Writer[T]) fail(err error) error {
	wr.err = err
	wr.log.Warn("write half terminated", zap.Error(err))
	return err
}

// Close flushes remaining buffered frames, shuts down the write direction
// when the transport supports it (e.g. *net.TCPConn), and releases this
// half's share of the transport. The transport itself is closed once the
// read half is gone too.
func (wr *Writer[T]) Close() error {
	ferr := wr.Flush()
	if cw, ok := wr.w.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	if wr.err == nil {
		wr.err = New(KindClosed, "framed: write half closed")
	}
	var rerr error
	if wr.done != nil {
		rerr = wr.done.release()
	}
	if ferr != nil {
		return ferr
	}
	return rerr
}
