package sigma

import (
	"bytes"
	"fmt"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

// Commitment is the first message of a leaf protocol.
//
// A discrete log leaf commits to A = r⋅G, a Diffie-Hellman tuple leaf to
// A = r⋅G and B = r⋅H.
type Commitment struct {
	A *curve.Point
	B *curve.Point
}

// FirstMessage computes the commitment of leaf for randomness r.
func FirstMessage(leaf Leaf, r *curve.Scalar) *Commitment {
	switch t := leaf.(type) {
	case ProveDlog:
		return &Commitment{A: curve.NewIdentityPoint().ScalarBaseMult(r)}
	case ProveDHTuple:
		return &Commitment{
			A: curve.NewIdentityPoint().ScalarMult(r, t.G),
			B: curve.NewIdentityPoint().ScalarMult(r, t.H),
		}
	}
	panic(fmt.Sprintf("sigma.FirstMessage: unknown leaf %T", leaf))
}

// ComputeCommitment returns the commitment that makes (commitment, e, z) an
// accepting transcript for leaf.
//
// For a discrete log leaf this is A = z⋅G - e⋅H, for a tuple leaf
// A = z⋅G - e⋅U and B = z⋅H - e⋅V. The verifier recomputes commitments this
// way, and a simulator uses it with a random z.
func ComputeCommitment(leaf Leaf, e, z *curve.Scalar) *Commitment {
	minusE := curve.NewScalar().Negate(e)
	switch t := leaf.(type) {
	case ProveDlog:
		a := curve.NewIdentityPoint().ScalarBaseMult(z)
		a.Add(a, curve.NewIdentityPoint().ScalarMult(minusE, t.H))
		return &Commitment{A: a}
	case ProveDHTuple:
		a := curve.NewIdentityPoint().ScalarMult(z, t.G)
		a.Add(a, curve.NewIdentityPoint().ScalarMult(minusE, t.U))
		b := curve.NewIdentityPoint().ScalarMult(z, t.H)
		b.Add(b, curve.NewIdentityPoint().ScalarMult(minusE, t.V))
		return &Commitment{A: a, B: b}
	}
	panic(fmt.Sprintf("sigma.ComputeCommitment: unknown leaf %T", leaf))
}

// Respond computes z = r + e⋅x.
func Respond(r, e, x *curve.Scalar) *curve.Scalar {
	return curve.NewScalar().MultiplyAdd(e, x, r)
}

// Equal reports whether both commitments hold the same points.
func (c *Commitment) Equal(d *Commitment) bool {
	if c == nil || d == nil {
		return c == d
	}
	return pointsEqual(c.A, d.A) && pointsEqual(c.B, d.B)
}

func pointsEqual(p, q *curve.Point) bool {
	if p == nil || q == nil {
		return p == nil && q == nil
	}
	return p.Equal(q)
}

// Matches reports whether c has the shape of a commitment for leaf.
func (c *Commitment) Matches(leaf Leaf) bool {
	if c == nil || c.A == nil {
		return false
	}
	switch leaf.(type) {
	case ProveDlog:
		return c.B == nil
	case ProveDHTuple:
		return c.B != nil
	}
	return false
}

// Bytes returns the compressed points of c; identity points are written as zeros.
func (c *Commitment) Bytes() []byte {
	var buf bytes.Buffer
	writePoint(&buf, c.A)
	if c.B != nil {
		writePoint(&buf, c.B)
	}
	return buf.Bytes()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Commitment) MarshalBinary() ([]byte, error) {
	if c == nil || c.A == nil {
		return nil, fmt.Errorf("%w: empty commitment", ErrInvalidProof)
	}
	return c.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Commitment) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesPoint && len(data) != 2*params.BytesPoint {
		return fmt.Errorf("%w: commitment of %d bytes", ErrInvalidProof, len(data))
	}
	r := bytes.NewReader(data)
	a, err := readPoint(r)
	if err != nil {
		return err
	}
	c.A, c.B = a, nil
	if r.Len() > 0 {
		if c.B, err = readPoint(r); err != nil {
			return err
		}
	}
	return nil
}
