// Package secret holds the private keys a prover answers challenges with.
package secret

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/math/sample"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// ErrInvalidSecret is returned for zero scalars and identity generators.
var ErrInvalidSecret = errors.New("secret: invalid secret")

// Secret is a private scalar together with the atomic statement it proves.
//
// The concrete types are *DlogSecret and *DHTupleSecret.
type Secret interface {
	// Image returns the statement this secret proves.
	Image() sigma.Leaf
	// Scalar returns a copy of the private scalar.
	Scalar() *curve.Scalar
	// Bytes returns the 32 byte encoding of the private scalar.
	Bytes() []byte
}

// DlogSecret is a scalar x, proving knowledge of the discrete log of x⋅G.
type DlogSecret struct {
	x     *curve.Scalar
	image sigma.ProveDlog
}

// NewDlogSecret returns the secret for x, which must be nonzero.
func NewDlogSecret(x *curve.Scalar) (*DlogSecret, error) {
	if x == nil || x.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidSecret)
	}
	return &DlogSecret{
		x:     x.Clone(),
		image: sigma.ProveDlog{H: curve.NewIdentityPoint().ScalarBaseMult(x)},
	}, nil
}

// DlogSecretFromBytes reads a 32 byte big-endian scalar, which must be in [1, q).
func DlogSecretFromBytes(b []byte) (*DlogSecret, error) {
	x := curve.NewScalar()
	if err := x.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return NewDlogSecret(x)
}

// GenerateDlog samples a fresh secret from rand.
func GenerateDlog(rand io.Reader) *DlogSecret {
	s, _ := NewDlogSecret(sample.ScalarUnit(rand))
	return s
}

func (s *DlogSecret) Image() sigma.Leaf {
	return s.image
}

// PublicImage returns the statement as its concrete type.
func (s *DlogSecret) PublicImage() sigma.ProveDlog {
	return s.image
}

func (s *DlogSecret) Scalar() *curve.Scalar {
	return s.x.Clone()
}

func (s *DlogSecret) Bytes() []byte {
	return s.x.Bytes()
}

// DHTupleSecret is a scalar x, proving that (G, H, x⋅G, x⋅H) is a Diffie-Hellman tuple.
type DHTupleSecret struct {
	x     *curve.Scalar
	image sigma.ProveDHTuple
}

// NewDHTupleSecret returns the tuple secret for x over the generators g and h.
func NewDHTupleSecret(x *curve.Scalar, g, h *curve.Point) (*DHTupleSecret, error) {
	if x == nil || x.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidSecret)
	}
	if g == nil || h == nil || g.IsIdentity() || h.IsIdentity() {
		return nil, fmt.Errorf("%w: identity generator", ErrInvalidSecret)
	}
	return &DHTupleSecret{
		x: x.Clone(),
		image: sigma.ProveDHTuple{
			G: curve.NewIdentityPoint().Set(g),
			H: curve.NewIdentityPoint().Set(h),
			U: curve.NewIdentityPoint().ScalarMult(x, g),
			V: curve.NewIdentityPoint().ScalarMult(x, h),
		},
	}, nil
}

func (s *DHTupleSecret) Image() sigma.Leaf {
	return s.image
}

// PublicImage returns the statement as its concrete type.
func (s *DHTupleSecret) PublicImage() sigma.ProveDHTuple {
	return s.image
}

func (s *DHTupleSecret) Scalar() *curve.Scalar {
	return s.x.Clone()
}

func (s *DHTupleSecret) Bytes() []byte {
	return s.x.Bytes()
}
