package framed

type decodeState uint8

const (
	awaitingLength decodeState = iota
	awaitingPayload
)

// frameDecoder incrementally recognizes length-prefixed frames in a receive
// buffer. The cursor (state plus the lengths already parsed) lives in plain
// fields, so a decode attempt interrupted by "need more bytes" resumes later
// without re-reading the prefix or mis-accounting consumed bytes.
type frameDecoder struct {
	cfg       Config
	state     decodeState
	frameLen  int // payload bytes of the frame in progress
	headerLen int // leading header bytes of frameLen, header-framed mode only
}

// next attempts to extract one complete frame payload from buf.
//
// It returns errNeedMore while the prefix or payload is still incomplete;
// this is a control signal, not a failure. A declared length above
// MaxFrameSize fails with KindFrameTooLarge before any payload is consumed.
// On success it consumes prefix+payload from buf and resets to the frame
// boundary; headerLen is the length of the header segment of the payload
// (always 0 outside header-framed mode).
func (d *frameDecoder) next(buf *Buffer) (payload []byte, headerLen int, err error) {
	if d.state == awaitingLength {
		if buf.Len() < d.cfg.PrefixLen {
			return nil, 0, errNeedMore
		}
		raw := readPrefix(buf.Bytes(), d.cfg.PrefixLen)
		var hdrLen, total uint64
		if d.cfg.HeaderFramed {
			hdrLen = raw >> 24
			total = hdrLen + raw&maxPackedBodyLen
		} else {
			total = raw
		}
		if total > d.cfg.MaxFrameSize {
			return nil, 0, New(KindFrameTooLarge, "framed: frame length exceeds maximum")
		}
		d.headerLen = int(hdrLen)
		d.frameLen = int(total)
		d.state = awaitingPayload
	}

	if buf.Len() < d.cfg.PrefixLen+d.frameLen {
		return nil, 0, errNeedMore
	}

	payload = make([]byte, d.frameLen)
	copy(payload, buf.Bytes()[d.cfg.PrefixLen:])
	buf.Consume(d.cfg.PrefixLen + d.frameLen)

	headerLen = d.headerLen
	d.state = awaitingLength
	d.frameLen = 0
	d.headerLen = 0
	return payload, headerLen, nil
}

// atBoundary reports whether the cursor sits between frames, which is the only
// place a zero-byte read counts as a clean end of stream.
func (d *frameDecoder) atBoundary() bool {
	return d.state == awaitingLength
}
