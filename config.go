package framed

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with TOML tags. Framing constants are deployment
// constants; shipping them in a config file keeps both ends of a connection
// on the same values.
type fileConfig struct {
	PrefixLen    int    `toml:"prefix_len"`
	MaxFrameSize uint64 `toml:"max_frame_size"`
	MaxBuffer    int    `toml:"max_buffer"`
	ReadChunk    int    `toml:"read_chunk"`
	HeaderFramed bool   `toml:"header_framed"`
}

// LoadConfig reads framing constants from a TOML file, applying defaults for
// keys that are absent and validating the result.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load framed config: %w", err)
	}

	var cfg Config
	if meta.IsDefined("prefix_len") {
		cfg.PrefixLen = raw.PrefixLen
	}
	if meta.IsDefined("max_frame_size") {
		cfg.MaxFrameSize = raw.MaxFrameSize
	}
	if meta.IsDefined("max_buffer") {
		cfg.MaxBuffer = raw.MaxBuffer
	}
	if meta.IsDefined("read_chunk") {
		cfg.ReadChunk = raw.ReadChunk
	}
	if meta.IsDefined("header_framed") {
		cfg.HeaderFramed = raw.HeaderFramed
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load framed config: %w", err)
	}
	return cfg, nil
}
