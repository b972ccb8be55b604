package sigma

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

const maxChildren = 1<<16 - 1

// Bytes returns the binary encoding of p.
//
// Each node starts with its Tag. Leaves follow with their compressed points,
// connectives with a big-endian uint16 child count, preceded by K for Threshold.
// An identity or missing point is written as zeros, which Parse rejects.
func Bytes(p Proposition) []byte {
	var buf bytes.Buffer
	writeProposition(&buf, p)
	return buf.Bytes()
}

func writePoint(buf *bytes.Buffer, point *curve.Point) {
	if point == nil || point.IsIdentity() {
		buf.Write(make([]byte, params.BytesPoint))
		return
	}
	b, _ := point.MarshalBinary()
	buf.Write(b)
}

func writeUint16(buf *bytes.Buffer, v int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	buf.Write(b[:])
}

func writeProposition(buf *bytes.Buffer, p Proposition) {
	if p == nil {
		return
	}
	buf.WriteByte(byte(p.Tag()))
	switch t := p.(type) {
	case ProveDlog:
		writePoint(buf, t.H)
	case ProveDHTuple:
		writePoint(buf, t.G)
		writePoint(buf, t.H)
		writePoint(buf, t.U)
		writePoint(buf, t.V)
	case And:
		writeChildren(buf, t.Children)
	case Or:
		writeChildren(buf, t.Children)
	case Threshold:
		writeUint16(buf, t.K)
		writeChildren(buf, t.Children)
	}
}

func writeChildren(buf *bytes.Buffer, children []Proposition) {
	writeUint16(buf, len(children))
	for _, c := range children {
		writeProposition(buf, c)
	}
}

// Parse decodes a proposition produced by Bytes, requiring every byte to be consumed.
func Parse(data []byte) (Proposition, error) {
	r := bytes.NewReader(data)
	p, err := readProposition(r, 0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidProposition, r.Len())
	}
	return p, nil
}

// maxDepth bounds recursion on untrusted input.
const maxDepth = 128

func readPoint(r *bytes.Reader) (*curve.Point, error) {
	b := make([]byte, params.BytesPoint)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: truncated point", ErrInvalidProposition)
	}
	point := curve.NewIdentityPoint()
	if err := point.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProposition, err)
	}
	return point, nil
}

func readUint16(r *bytes.Reader) (int, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: truncated length", ErrInvalidProposition)
	}
	return int(binary.BigEndian.Uint16(b[:])), nil
}

func readProposition(r *bytes.Reader, depth int) (Proposition, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: tree too deep", ErrInvalidProposition)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: truncated tag", ErrInvalidProposition)
	}
	switch Tag(tag) {
	case TagFalse:
		return Trivial{Value: false}, nil
	case TagTrue:
		return Trivial{Value: true}, nil
	case TagDlog:
		h, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		return ProveDlog{H: h}, nil
	case TagDHTuple:
		points := make([]*curve.Point, 4)
		for i := range points {
			if points[i], err = readPoint(r); err != nil {
				return nil, err
			}
		}
		return ProveDHTuple{G: points[0], H: points[1], U: points[2], V: points[3]}, nil
	case TagAnd:
		children, err := readChildren(r, depth)
		if err != nil {
			return nil, err
		}
		return And{Children: children}, nil
	case TagOr:
		children, err := readChildren(r, depth)
		if err != nil {
			return nil, err
		}
		return Or{Children: children}, nil
	case TagThreshold:
		k, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		children, err := readChildren(r, depth)
		if err != nil {
			return nil, err
		}
		return Threshold{K: k, Children: children}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", ErrInvalidProposition, tag)
	}
}

func readChildren(r *bytes.Reader, depth int) ([]Proposition, error) {
	n, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	// every child takes at least one byte
	if n > r.Len() {
		return nil, fmt.Errorf("%w: %d children in %d bytes", ErrInvalidProposition, n, r.Len())
	}
	children := make([]Proposition, n)
	for i := range children {
		if children[i], err = readProposition(r, depth+1); err != nil {
			return nil, err
		}
	}
	return children, nil
}

// Marshallable wraps a Proposition so that it can be embedded in cbor records.
type Marshallable struct {
	Proposition
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Marshallable) MarshalBinary() ([]byte, error) {
	if err := Validate(m.Proposition); err != nil {
		return nil, err
	}
	return Bytes(m.Proposition), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Marshallable) UnmarshalBinary(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	m.Proposition = p
	return nil
}
