// Package hash implements the transcript hashed into Fiat-Shamir challenges.
package hash

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the length of Sum.
const DigestLengthBytes = params.SecBytes * 2

// Transcript absorbs labeled frames into blake3, keyed by a protocol name.
//
// A frame is the label, a zero byte, the big-endian uint32 length of the data,
// then the data. Two different sequences of frames never write the same bytes.
type Transcript struct {
	h *blake3.Hasher
}

// New returns an empty transcript for protocol.
func New(protocol string) *Transcript {
	return &Transcript{h: blake3.NewDeriveKey(protocol)}
}

// Append writes one frame.
func (t *Transcript) Append(label string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	// blake3.Hasher.Write never fails
	_, _ = t.h.Write([]byte(label))
	_, _ = t.h.Write([]byte{0})
	_, _ = t.h.Write(length[:])
	_, _ = t.h.Write(data)
}

// AppendUint32 writes v as a 4 byte frame.
func (t *Transcript) AppendUint32(label string, v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	t.Append(label, buf[:])
}

// Digest returns a reader over the output of the transcript in its current state.
// Later appends do not affect the reader.
func (t *Transcript) Digest() io.Reader {
	return t.h.Digest()
}

// Sum returns DigestLengthBytes of output. Use Digest for other lengths.
func (t *Transcript) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(t.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Transcript.Sum: %v", err))
	}
	return out
}

// Clone returns an independent copy of t.
func (t *Transcript) Clone() *Transcript {
	return &Transcript{h: t.h.Clone()}
}
