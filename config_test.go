package framed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framed.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
prefix_len = 2
max_frame_size = 1024
read_chunk = 512
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PrefixLen != 2 {
		t.Fatalf("prefix_len: %d", cfg.PrefixLen)
	}
	if cfg.MaxFrameSize != 1024 {
		t.Fatalf("max_frame_size: %d", cfg.MaxFrameSize)
	}
	if cfg.ReadChunk != 512 {
		t.Fatalf("read_chunk: %d", cfg.ReadChunk)
	}
	// Absent keys pick up defaults.
	if want := cfg.PrefixLen + int(cfg.MaxFrameSize) + cfg.ReadChunk; cfg.MaxBuffer != want {
		t.Fatalf("max_buffer: got %d want %d", cfg.MaxBuffer, want)
	}
	if cfg.HeaderFramed {
		t.Fatalf("header_framed should default off")
	}
}

func TestLoadConfigEmptyFileIsAllDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PrefixLen != DefaultPrefixLen || cfg.MaxFrameSize != DefaultMaxFrameSize || cfg.ReadChunk != DefaultReadChunk {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad prefix":      "prefix_len = 3",
		"range overflow":  "prefix_len = 2\nmax_frame_size = 70000",
		"ceiling too low": "max_buffer = 16",
		"header prefix":   "prefix_len = 2\nheader_framed = true",
		"not toml":        "prefix_len = [",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
