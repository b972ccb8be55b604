// Package digest provides the fixed size content identifier used for boxes,
// transactions and tokens.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrInvalidSize is returned when decoded bytes do not have the digest length.
	ErrInvalidSize = errors.New("digest: invalid size")
	// ErrDecoding is returned when a text form is not hexadecimal.
	ErrDecoding = errors.New("digest: invalid hex encoding")
)

// Digest32 is a 32 byte identifier. It is a value type; copies are independent.
type Digest32 [params.BytesDigest]byte

// Zero returns the all zero digest.
func Zero() Digest32 {
	return Digest32{}
}

// FromBytes copies b into a Digest32.
func FromBytes(b []byte) (Digest32, error) {
	var d Digest32
	if len(b) != len(d) {
		return d, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidSize, len(b), len(d))
	}
	copy(d[:], b)
	return d, nil
}

// Parse decodes the lowercase or uppercase hex form of a digest.
//
// A string containing a non hex character fails with ErrDecoding, any other
// string whose length is not 64 fails with ErrInvalidSize.
func Parse(text string) (Digest32, error) {
	for i := 0; i < len(text); i++ {
		if !isHex(text[i]) {
			return Digest32{}, fmt.Errorf("%w: invalid character %q at offset %d", ErrDecoding, text[i], i)
		}
	}
	if len(text) != 2*params.BytesDigest {
		return Digest32{}, fmt.Errorf("%w: got %d hex characters, expected %d", ErrInvalidSize, len(text), 2*params.BytesDigest)
	}
	b, err := hex.DecodeString(text)
	if err != nil {
		return Digest32{}, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return FromBytes(b)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Blake2b256 returns the blake2b-256 hash of the concatenation of parts.
func Blake2b256(parts ...[]byte) Digest32 {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("digest.Blake2b256: %v", err))
	}
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var d Digest32
	h.Sum(d[:0])
	return d
}

// String returns the 64 character lowercase hex form.
func (d Digest32) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns a copy of the digest bytes.
func (d Digest32) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

// IsZero reports whether d is the all zero digest.
func (d Digest32) IsZero() bool {
	return d == Digest32{}
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest32) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest32) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d Digest32) MarshalBinary() ([]byte, error) {
	return d.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Digest32) UnmarshalBinary(data []byte) error {
	parsed, err := FromBytes(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
