// Package codec implements the reversible at-rest obfuscation applied to
// persisted values when a key's strategy asks for encryption.
//
// This is symmetric obfuscation, not cryptography: it keeps casual eyes and
// grep out of the storage medium and nothing more. A co-tenant on the same
// storage origin can trivially reverse it. The interesting property is that
// decoding is fallible by construction - a CRC-32 of the plaintext travels
// inside the payload, so any corruption of the stored string surfaces as a
// decode error instead of silently yielding garbage. Callers map decode
// failure to "not found" or "empty tree"; they never propagate it.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// defaultKey is the keystream shared by every deployed store instance.
// Changing it orphans all previously persisted encrypted items, so it is
// effectively frozen.
var defaultKey = []byte("shellstore/obfuscation/v1")

// Obfuscator encodes and decodes byte payloads with a fixed XOR keystream
// and an integrity check. The zero value uses the shared default key.
type Obfuscator struct {
	key []byte
}

// New returns an obfuscator with the shared default keystream.
func New() *Obfuscator {
	return &Obfuscator{key: defaultKey}
}

// NewWithKey returns an obfuscator with a caller-supplied keystream.
// An empty key falls back to the default.
func NewWithKey(key []byte) *Obfuscator {
	if len(key) == 0 {
		key = defaultKey
	}
	return &Obfuscator{key: key}
}

// Encode obfuscates data into a storable ASCII string.
func (o *Obfuscator) Encode(data []byte) string {
	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(data))
	copy(buf[4:], data)
	o.xor(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Decode reverses Encode. It returns an error - never panics - when the
// input is not valid base64, is truncated, or fails the integrity check.
func (o *Obfuscator) Decode(encoded string) ([]byte, error) {
	buf, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if len(buf) < 4 {
		return nil, fmt.Errorf("decode payload: truncated (%d bytes)", len(buf))
	}
	o.xor(buf)
	want := binary.BigEndian.Uint32(buf)
	data := buf[4:]
	if got := crc32.ChecksumIEEE(data); got != want {
		return nil, fmt.Errorf("decode payload: checksum mismatch (got %08x, want %08x)", got, want)
	}
	return data, nil
}

func (o *Obfuscator) xor(buf []byte) {
	for i := range buf {
		buf[i] ^= o.key[i%len(o.key)]
	}
}
