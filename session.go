package framed

import (
	"io"
	"sync/atomic"

	"github.com/reflexnet/framed/codec"
)

// Transport is the duplex byte channel a session runs over. net.Conn
// satisfies it. Reads and writes may block; partial writes are permitted and
// are looped by the write half.
type Transport interface {
	io.Reader
	io.Writer
	Close() error
}

// teardown shares one transport between the two directional halves. Each half
// holds one reference; the transport is closed exactly once, when the second
// reference is released, regardless of release order.
type teardown struct {
	c    io.Closer
	refs atomic.Int32
}

func newTeardown(c io.Closer) *teardown {
	t := &teardown{c: c}
	t.refs.Store(2)
	return t
}

func (t *teardown) release() error {
	if t.refs.Add(-1) == 0 {
		return t.c.Close()
	}
	return nil
}

// Session pairs a Reader and a Writer over a single transport: a typed duplex
// channel receiving R and sending W.
//
// A session must not be driven from two goroutines at once. To run the
// directions concurrently, Split it and drive each half from its own
// goroutine; the halves share no buffers or cursors, so no locking is needed
// on the data path.
type Session[R, W any] struct {
	rd *Reader[R]
	wr *Writer[W]
}

// NewSession wraps t into a typed duplex channel decoding inbound payloads
// with in and encoding outbound payloads with out. The session takes
// ownership of t: it is closed when both halves are closed.
func NewSession[R, W any](t Transport, in codec.Codec[R], out codec.Codec[W], opts ...Option) (*Session[R, W], error) {
	if t == nil {
		return nil, New(KindTransport, "framed: nil transport")
	}
	rd, err := NewReader[R](t, in, opts...)
	if err != nil {
		return nil, err
	}
	wr, err := NewWriter[W](t, out, opts...)
	if err != nil {
		return nil, err
	}
	td := newTeardown(t)
	rd.done = td
	wr.done = td
	return &Session[R, W]{rd: rd, wr: wr}, nil
}

// Recv returns the next decoded inbound message. See Reader.Recv.
func (s *Session[R, W]) Recv() (R, error) {
	return s.rd.Recv()
}

// Send buffers one outbound message. See Writer.Send.
func (s *Session[R, W]) Send(msg W) error {
	return s.wr.Send(msg)
}

// Flush drains buffered outbound frames to the transport. See Writer.Flush.
func (s *Session[R, W]) Flush() error {
	return s.wr.Flush()
}

// Split divides the session into its read half and write half. The halves
// jointly own the transport and may be driven by separate goroutines; the
// read half can only decode, the write half can only encode and flush.
// After a split the Session itself must no longer be used; close the halves
// instead.
func (s *Session[R, W]) Split() (*Reader[R], *Writer[W]) {
	return s.rd, s.wr
}

// Close flushes pending outbound frames and closes both halves, which
// releases the transport.
func (s *Session[R, W]) Close() error {
	werr := s.wr.Close()
	rerr := s.rd.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
