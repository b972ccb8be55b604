package sample

import (
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

const maxIterations = 255

// ErrMaxIterations is returned when rejection sampling keeps failing.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// Scalar returns a new *curve.Scalar by reading bytes from rand.
//
// Twice the bytes of a scalar are read, so that the reduction mod q introduces
// no noticeable bias.
func Scalar(rand io.Reader) *curve.Scalar {
	buffer := make([]byte, 2*params.BytesScalar)
	mustReadBits(rand, buffer)
	return curve.FromHash(buffer)
}

// ScalarPointPair returns a new random scalar x, and the point x⋅g.
func ScalarPointPair(rand io.Reader) (*curve.Scalar, *curve.Point) {
	s := Scalar(rand)
	return s, curve.NewIdentityPoint().ScalarBaseMult(s)
}

// ScalarUnit returns a new random nonzero scalar.
func ScalarUnit(rand io.Reader) *curve.Scalar {
	for i := 0; i < maxIterations; i++ {
		s := Scalar(rand)
		if !s.IsZero() {
			return s
		}
	}
	panic(ErrMaxIterations)
}
