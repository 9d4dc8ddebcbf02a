package framed

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reflexnet/framed/codec"
)

// slowWriter accepts at most chunk bytes per Write, forcing partial writes.
type slowWriter struct {
	bytes.Buffer
	chunk int
}

func (w *slowWriter) Write(p []byte) (int, error) {
	if len(p) > w.chunk {
		p = p[:w.chunk]
	}
	return w.Buffer.Write(p)
}

// faultWriter fails permanently after accepting limit bytes.
type faultWriter struct {
	limit int
	n     int
}

func (w *faultWriter) Write(p []byte) (int, error) {
	if w.n >= w.limit {
		return 0, errors.New("wire down")
	}
	n := len(p)
	if w.n+n > w.limit {
		n = w.limit - w.n
	}
	w.n += n
	return n, errors.New("wire down")
}

func TestWriterBatchesUntilFlush(t *testing.T) {
	var sink bytes.Buffer
	wr, err := NewWriter(&sink, codec.Bytes())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := wr.Send([]byte("hi")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := wr.Send([]byte("bye")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("Send touched the transport: %d bytes", sink.Len())
	}

	if err := wr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x02, 0x68, 0x69,
		0x00, 0x00, 0x00, 0x03, 0x62, 0x79, 0x65,
	}
	if !bytes.Equal(sink.Bytes(), want) {
		t.Fatalf("wire: got %x want %x", sink.Bytes(), want)
	}
	if wr.buf.Len() != 0 {
		t.Fatalf("send buffer not drained: %d", wr.buf.Len())
	}
}

func TestWriterPartialWrites(t *testing.T) {
	sink := &slowWriter{chunk: 3}
	wr, err := NewWriter(sink, codec.Bytes())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	payload := bytes.Repeat([]byte("abc"), 100)
	if err := wr.Send(payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := wr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := frameWire(t, payload)
	if !bytes.Equal(sink.Buffer.Bytes(), want) {
		t.Fatalf("wire mismatch after partial writes")
	}
}

// The send buffer head may advance only past bytes the transport confirmed.
func TestWriterFlushWatermark(t *testing.T) {
	sink := &faultWriter{limit: 5}
	wr, err := NewWriter(sink, codec.Bytes())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := wr.Send([]byte("hello world")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	buffered := wr.buf.Len()

	ferr := wr.Flush()
	if !IsKind(ferr, KindTransport) {
		t.Fatalf("expected KindTransport, got %v", ferr)
	}
	if got := wr.buf.Len(); got != buffered-5 {
		t.Fatalf("pending after failed flush: got %d want %d", got, buffered-5)
	}
	// Transport failure is terminal for the write half.
	if err := wr.Send([]byte("x")); err != ferr {
		t.Fatalf("Send after transport failure: %v", err)
	}
}

func TestWriterMessageTooLargeDoesNotPoison(t *testing.T) {
	var sink bytes.Buffer
	cfg := Config{MaxFrameSize: 8}.withDefaults()
	wr, err := NewWriter(&sink, codec.Bytes(), WithConfig(cfg))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := wr.Send(bytes.Repeat([]byte{1}, 9)); !IsKind(err, KindMessageTooLarge) {
		t.Fatalf("expected KindMessageTooLarge, got %v", err)
	}
	// The failed Send must not leave a torn frame behind.
	if err := wr.Send([]byte("ok")); err != nil {
		t.Fatalf("Send after rejection: %v", err)
	}
	if err := wr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x02, 0x6F, 0x6B}
	if !bytes.Equal(sink.Bytes(), want) {
		t.Fatalf("wire: got %x want %x", sink.Bytes(), want)
	}
}

func TestWriterWithoutPrefix(t *testing.T) {
	var sink bytes.Buffer
	wr, err := NewWriter(&sink, codec.Bytes(), WithoutPrefix())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := wr.Send([]byte("raw")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := wr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), []byte("raw")) {
		t.Fatalf("wire: got %q", sink.Bytes())
	}
}
