package sample

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

func TestScalar(t *testing.T) {
	a, b := Scalar(rand.Reader), Scalar(rand.Reader)
	assert.False(t, a.Equal(b))
	assert.False(t, ScalarUnit(rand.Reader).IsZero())
}

func TestScalarDeterministicReader(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 64)
	a := Scalar(bytes.NewReader(seed))
	b := Scalar(bytes.NewReader(seed))
	assert.True(t, a.Equal(b))
}

func TestScalarReduction(t *testing.T) {
	// 2²⁵⁶ mod q = 2²⁵⁶ - q
	buf := make([]byte, 64)
	buf[31] = 1
	expected := curve.NewScalar().SetBytes([]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0x45, 0x51, 0x23, 0x19, 0x50, 0xb7, 0x5f, 0xc4,
		0x40, 0x2d, 0xa1, 0x73, 0x2f, 0xc9, 0xbe, 0xbf,
	})
	assert.True(t, Scalar(bytes.NewReader(buf)).Equal(expected))

	// q + 5 in the low half reduces to 5
	buf = make([]byte, 64)
	copy(buf[32:], curve.Order().Bytes())
	buf[63] += 5
	assert.True(t, Scalar(bytes.NewReader(buf)).Equal(curve.NewScalarUInt32(5)))
}

func TestScalarPointPair(t *testing.T) {
	x, X := ScalarPointPair(rand.Reader)
	assert.True(t, curve.NewIdentityPoint().ScalarBaseMult(x).Equal(X))
}
