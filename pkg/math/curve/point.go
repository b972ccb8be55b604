package curve

import "github.com/decred/dcrd/dcrec/secp256k1/v4"

// Point is an element of the secp256k1 group, in Jacobian coordinates.
//
// The zero value is the identity. Every operation leaves its result in affine
// form, so that read-only methods never write to a shared point.
type Point struct {
	p secp256k1.JacobianPoint
}

// NewIdentityPoint returns the identity element.
func NewIdentityPoint() *Point {
	return &Point{}
}

// NewBasePoint returns a point initialized to the canonical generator g.
func NewBasePoint() *Point {
	return NewIdentityPoint().ScalarBaseMult(NewScalarUInt32(1))
}

// Set sets v = u, and returns v.
func (v *Point) Set(u *Point) *Point {
	v.p.Set(&u.p)
	return v
}

// Add sets v = p + q, and returns v.
func (v *Point) Add(p, q *Point) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&p.p, &q.p, &r)
	v.p.Set(&r)
	return v.toAffine()
}

// Subtract sets v = p - q, and returns v.
func (v *Point) Subtract(p, q *Point) *Point {
	var qNeg Point
	qNeg.Negate(q)
	return v.Add(p, &qNeg)
}

// Negate sets v = -p, and returns v.
func (v *Point) Negate(p *Point) *Point {
	v.Set(p)
	if v.IsIdentity() {
		return v
	}
	v.p.ToAffine()
	v.p.Y.Negate(1).Normalize()
	return v
}

// ScalarBaseMult sets v = x⋅g, where g is the canonical generator, and
// returns v.
func (v *Point) ScalarBaseMult(x *Scalar) *Point {
	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&x.s, &r)
	v.p.Set(&r)
	return v.toAffine()
}

// ScalarMult sets v = x⋅q, and returns v.
func (v *Point) ScalarMult(x *Scalar, q *Point) *Point {
	if x.IsZero() || q.IsIdentity() {
		v.p = secp256k1.JacobianPoint{}
		return v
	}
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&x.s, &q.p, &r)
	v.p.Set(&r)
	return v.toAffine()
}

// Equal returns true if v and u represent the same group element.
func (v *Point) Equal(u *Point) bool {
	vID, uID := v.IsIdentity(), u.IsIdentity()
	if vID || uID {
		return vID && uID
	}
	v.toAffine()
	u.toAffine()
	return v.p.X.Equals(&u.p.X) && v.p.Y.Equals(&u.p.Y)
}

// IsIdentity returns true if the point is ∞.
func (v *Point) IsIdentity() bool {
	return (v.p.X.IsZero() && v.p.Y.IsZero()) || v.p.Z.IsZero()
}

// HasEvenY returns true if the affine y coordinate of v is even.
func (v *Point) HasEvenY() bool {
	v.toAffine()
	return !v.p.Y.IsOdd()
}

// XBytes returns the 32 byte affine x coordinate of v.
func (v *Point) XBytes() []byte {
	v.toAffine()
	out := make([]byte, 32)
	v.p.X.PutBytesUnchecked(out)
	return out
}

// Key returns a string identifying v, suitable as a map key.
//
// The identity maps to the empty string.
func (v *Point) Key() string {
	data, err := v.MarshalBinary()
	if err != nil {
		return ""
	}
	return string(data)
}

func (v *Point) toAffine() *Point {
	if v.IsIdentity() {
		return v
	}
	if !v.p.Z.IsOne() {
		v.p.ToAffine()
	}
	return v
}
