package framed

// frameEncoder assembles outgoing frames into a send buffer. Appending is
// synchronous with respect to the buffer; only the eventual transport flush
// blocks.
type frameEncoder struct {
	cfg    Config
	prefix bool // false in WithoutPrefix mode
}

// appendFrame validates sizes, then appends prefix, header and body as one
// frame. The buffer is reserved up front so a failed append never leaves a
// torn frame behind. header must be empty outside header-framed mode.
func (e *frameEncoder) appendFrame(buf *Buffer, header, body []byte) error {
	if e.cfg.HeaderFramed {
		if len(header) > maxPackedHeaderLen {
			return New(KindMessageTooLarge, "framed: header exceeds packed prefix range")
		}
		if len(body) > maxPackedBodyLen {
			return New(KindMessageTooLarge, "framed: body exceeds packed prefix range")
		}
	}
	total := len(header) + len(body)
	if uint64(total) > e.cfg.MaxFrameSize {
		return New(KindMessageTooLarge, "framed: message exceeds maximum frame size")
	}

	if !e.prefix {
		if err := buf.Reserve(total); err != nil {
			return err
		}
		_ = buf.Append(header)
		_ = buf.Append(body)
		return nil
	}

	if err := buf.Reserve(e.cfg.PrefixLen + total); err != nil {
		return err
	}
	var prefix [8]byte
	v := uint64(total)
	if e.cfg.HeaderFramed {
		v = uint64(len(header))<<24 | uint64(len(body))
	}
	putPrefix(prefix[:e.cfg.PrefixLen], e.cfg.PrefixLen, v)
	_ = buf.Append(prefix[:e.cfg.PrefixLen])
	_ = buf.Append(header)
	_ = buf.Append(body)
	return nil
}
