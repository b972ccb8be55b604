package curve

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/sigma-signer/internal/params"
)

var (
	// ErrScalarEncoding is returned for scalars that are not 32 bytes below the order.
	ErrScalarEncoding = errors.New("curve: invalid scalar encoding")
	// ErrPointEncoding is returned for bytes that are not a compressed curve point.
	ErrPointEncoding = errors.New("curve: invalid point encoding")
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Scalar) MarshalBinary() ([]byte, error) {
	return s.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Encodings of values not reduced modulo q are rejected.
func (s *Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesScalar {
		return fmt.Errorf("%w: %d bytes", ErrScalarEncoding, len(data))
	}
	var x secp256k1.ModNScalar
	if overflow := x.SetByteSlice(data); overflow {
		return fmt.Errorf("%w: not reduced modulo q", ErrScalarEncoding)
	}
	s.s = x
	return nil
}

// MarshalBinary returns the 33 byte compressed SEC encoding of v.
func (v *Point) MarshalBinary() ([]byte, error) {
	if v == nil || v.IsIdentity() {
		return nil, fmt.Errorf("%w: the identity has no encoding", ErrPointEncoding)
	}
	p := v.p
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y).SerializeCompressed(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Only the compressed encoding is accepted.
func (v *Point) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesPoint {
		return fmt.Errorf("%w: %d bytes", ErrPointEncoding, len(data))
	}
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPointEncoding, err)
	}
	pk.AsJacobian(&v.p)
	return nil
}

func (v *Point) String() string {
	switch {
	case v == nil:
		return "<nil>"
	case v.IsIdentity():
		return "Point(identity)"
	}
	data, _ := v.MarshalBinary()
	return "Point(" + hex.EncodeToString(data) + ")"
}

func (s *Scalar) String() string {
	if s == nil {
		return "<nil>"
	}
	return "Scalar(" + hex.EncodeToString(s.Bytes()) + ")"
}
