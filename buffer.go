package framed

// Buffer is a single contiguous growable byte region with append-at-tail and
// consume-from-head. Consumed bytes are reclaimed by compaction instead of
// reallocation, and growth is refused past a hard ceiling so a misbehaving
// peer cannot force unbounded allocation.
//
// Buffer is not safe for concurrent use; each direction of a session owns its
// own instance.
type Buffer struct {
	data []byte // data[head:] is the pending region
	head int
	max  int // hard ceiling for pending bytes, 0 = unbounded
}

// NewBuffer creates an empty buffer whose pending region may grow to at most
// max bytes (0 for no ceiling).
func NewBuffer(max int) *Buffer {
	return &Buffer{max: max}
}

// Len returns the number of pending bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.head
}

// Bytes returns the pending region. The view is valid only until the next
// Append, Reserve or Consume.
func (b *Buffer) Bytes() []byte {
	return b.data[b.head:]
}

// Reserve ensures capacity for n more bytes, compacting consumed space before
// growing and doubling the backing array to amortize copy cost. It fails with
// KindCapacity when pending+n would pass the ceiling.
func (b *Buffer) Reserve(n int) error {
	if n < 0 {
		panic("framed: negative reserve")
	}
	pending := b.Len()
	if b.max > 0 && pending+n > b.max {
		return New(KindCapacity, "framed: buffer ceiling exceeded")
	}
	if len(b.data)+n <= cap(b.data) {
		return nil
	}
	if b.head > 0 {
		b.compact()
		if len(b.data)+n <= cap(b.data) {
			return nil
		}
	}
	newCap := 2 * cap(b.data)
	if newCap < pending+n {
		newCap = pending + n
	}
	if newCap < 64 {
		newCap = 64
	}
	if b.max > 0 && newCap > b.max {
		newCap = b.max
	}
	grown := make([]byte, pending, newCap)
	copy(grown, b.data[b.head:])
	b.data = grown
	b.head = 0
	return nil
}

// Append writes p at the tail, growing as needed.
func (b *Buffer) Append(p []byte) error {
	if err := b.Reserve(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

// Spare reserves room for n more bytes and returns the writable tail slice of
// exactly n bytes. Bytes written into it become pending only after Commit.
func (b *Buffer) Spare(n int) ([]byte, error) {
	if err := b.Reserve(n); err != nil {
		return nil, err
	}
	return b.data[len(b.data) : len(b.data)+n], nil
}

// Commit extends the pending region over n bytes previously written into the
// slice returned by Spare.
func (b *Buffer) Commit(n int) {
	b.data = b.data[:len(b.data)+n]
}

// Consume advances the head past n pending bytes, invalidating earlier views.
func (b *Buffer) Consume(n int) {
	if n < 0 || n > b.Len() {
		panic("framed: consume past pending data")
	}
	b.head += n
}

// Compact shifts pending bytes to offset 0 when the consumed prefix is large
// enough to be worth reclaiming. Reserve compacts unconditionally before
// growing, so calling this is purely a space/latency trade.
func (b *Buffer) Compact() {
	if b.head == 0 || 2*b.head < cap(b.data) {
		return
	}
	b.compact()
}

func (b *Buffer) compact() {
	n := copy(b.data, b.data[b.head:])
	b.data = b.data[:n]
	b.head = 0
}
