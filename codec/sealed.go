package codec

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"sync/atomic"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// noncePrefixSize is the leading zero bytes of each AEAD nonce; the
	// trailing 8 bytes carry the per-direction frame counter.
	noncePrefixSize = chacha20poly1305.NonceSize - 8
)

// sealedCodec wraps an inner codec in a ChaCha20-Poly1305 envelope. Nonces
// are derived from independent seal/open counters, so both peers of a
// connection must start from a fresh instance with the same key and each
// direction stays in step frame by frame.
//
// A single instance may seal from one goroutine while opening in another;
// the counters are atomic and otherwise independent.
type sealedCodec[T any] struct {
	inner Codec[T]
	aead  cipher.AEAD

	sealNonce atomic.Uint64
	openNonce atomic.Uint64
}

// Sealed wraps inner so every payload is encrypted and authenticated with
// ChaCha20-Poly1305 under the 32-byte key. Tampered payloads fail Unmarshal
// and therefore terminate the receiving half.
func Sealed[T any](inner Codec[T], key []byte) (Codec[T], error) {
	if inner == nil {
		return nil, errors.New("codec: nil inner codec")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("codec: sealed codec requires a 32-byte key")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &sealedCodec[T]{inner: inner, aead: aead}, nil
}

func (s *sealedCodec[T]) Marshal(msg T) ([]byte, error) {
	plain, err := s.inner.Marshal(msg)
	if err != nil {
		return nil, err
	}
	nonce := makeNonce(s.sealNonce.Add(1) - 1)
	return s.aead.Seal(nil, nonce[:], plain, nil), nil
}

func (s *sealedCodec[T]) Unmarshal(payload []byte) (T, error) {
	nonce := makeNonce(s.openNonce.Add(1) - 1)
	plain, err := s.aead.Open(nil, nonce[:], payload, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.inner.Unmarshal(plain)
}

func makeNonce(counter uint64) [chacha20poly1305.NonceSize]byte {
	var nonce [chacha20poly1305.NonceSize]byte
	// First nonce used is 0.
	binary.BigEndian.PutUint64(nonce[noncePrefixSize:], counter)
	return nonce
}
