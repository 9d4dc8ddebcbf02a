package framed

import (
	"encoding/binary"

	"go.uber.org/zap"
)

// Defaults chosen to match common deployments: a 4-byte network-order prefix
// and a 16 MiB frame cap keep a single peer from forcing unbounded allocation.
const (
	DefaultPrefixLen    = 4
	DefaultMaxFrameSize = 16 << 20
	DefaultReadChunk    = 8192
)

// Header-framed prefixes pack the header length into the top byte of a 4-byte
// prefix, leaving 24 bits for the body.
const (
	maxPackedHeaderLen = 0xFF
	maxPackedBodyLen   = 0xFFFFFF
)

// Config carries the framing constants for one deployment. Both ends of a
// connection must use identical values; no negotiation is performed.
type Config struct {
	// PrefixLen is the width of the big-endian length prefix: 2, 4 or 8.
	PrefixLen int
	// MaxFrameSize caps the payload bytes of a single frame. Incoming frames
	// above it terminate the read half; outgoing messages above it fail the
	// individual Send.
	MaxFrameSize uint64
	// MaxBuffer is the hard ceiling for receive/send buffer growth.
	// 0 derives PrefixLen + MaxFrameSize + ReadChunk.
	MaxBuffer int
	// ReadChunk is the target size of a single transport read.
	ReadChunk int
	// HeaderFramed selects the packed-prefix layout
	// [headerLen<<24|bodyLen:4B][header][body]; requires PrefixLen 4 and a
	// codec implementing codec.HeaderCodec.
	HeaderFramed bool
}

func (c Config) withDefaults() Config {
	if c.PrefixLen == 0 {
		c.PrefixLen = DefaultPrefixLen
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
		if max := c.prefixRange(); max < c.MaxFrameSize {
			c.MaxFrameSize = max
		}
	}
	if c.ReadChunk == 0 {
		c.ReadChunk = DefaultReadChunk
	}
	if c.MaxBuffer == 0 {
		c.MaxBuffer = c.PrefixLen + int(c.MaxFrameSize) + c.ReadChunk
	}
	return c
}

func (c Config) validate() error {
	switch c.PrefixLen {
	case 2, 4, 8:
	default:
		return New(KindTransport, "framed: prefix length must be 2, 4 or 8")
	}
	if c.HeaderFramed {
		if c.PrefixLen != 4 {
			return New(KindTransport, "framed: header framing requires a 4-byte prefix")
		}
		if c.MaxFrameSize > maxPackedHeaderLen+maxPackedBodyLen {
			return New(KindTransport, "framed: max frame size exceeds packed prefix range")
		}
	}
	if c.MaxFrameSize > c.prefixRange() {
		return New(KindTransport, "framed: max frame size exceeds prefix range")
	}
	if c.MaxFrameSize > uint64(maxInt) {
		return New(KindTransport, "framed: max frame size exceeds addressable memory")
	}
	if c.MaxBuffer < c.PrefixLen+int(c.MaxFrameSize) {
		return New(KindTransport, "framed: buffer ceiling below one full frame")
	}
	return nil
}

// prefixRange returns the largest length value the prefix can represent.
func (c Config) prefixRange() uint64 {
	switch c.PrefixLen {
	case 2:
		return 1<<16 - 1
	case 8:
		return 1<<64 - 1
	default:
		return 1<<32 - 1
	}
}

const maxInt = int(^uint(0) >> 1)

func putPrefix(dst []byte, width int, v uint64) {
	switch width {
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(v))
	case 8:
		binary.BigEndian.PutUint64(dst, v)
	default:
		binary.BigEndian.PutUint32(dst, uint32(v))
	}
}

func readPrefix(src []byte, width int) uint64 {
	switch width {
	case 2:
		return uint64(binary.BigEndian.Uint16(src))
	case 8:
		return binary.BigEndian.Uint64(src)
	default:
		return uint64(binary.BigEndian.Uint32(src))
	}
}

type options struct {
	cfg       Config
	log       *zap.Logger
	rawAppend bool
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, apply := range opts {
		apply(&o)
	}
	o.cfg = o.cfg.withDefaults()
	return o
}

// Option configures a Reader, Writer or Session.
type Option func(*options)

// WithConfig overrides the default framing constants.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger attaches a zap logger; frame traffic is logged at debug level and
// terminal stream errors at warn level.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log.Named("framed")
		}
	}
}

// WithoutPrefix makes a Writer append bare encoded messages with no length
// prefix, for peers that delimit the byte stream themselves. Write-side only:
// a Reader cannot recover frame boundaries without the prefix and rejects
// this option.
func WithoutPrefix() Option {
	return func(o *options) { o.rawAppend = true }
}
