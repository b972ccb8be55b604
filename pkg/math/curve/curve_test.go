package curve

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalar(t *testing.T) *Scalar {
	buf := make([]byte, 32)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return NewScalar().SetBytes(buf)
}

func TestNewBasePoint(t *testing.T) {
	var g1, g2 Point
	two := NewScalarUInt32(2)
	g1.Add(NewBasePoint(), NewBasePoint())
	g2.ScalarBaseMult(two)
	assert.True(t, g1.Equal(&g2))

	Gx, _ := hex.DecodeString("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	assert.Equal(t, Gx, NewBasePoint().XBytes())
}

func TestPoint_Negate(t *testing.T) {
	var Gneg, GminGneg Point
	G := NewBasePoint()
	Gneg.Negate(G)
	GminGneg.Add(G, &Gneg)
	assert.True(t, GminGneg.IsIdentity())
	assert.True(t, NewIdentityPoint().Negate(NewIdentityPoint()).IsIdentity())
}

func TestPoint_Subtract(t *testing.T) {
	g := NewBasePoint()
	p := NewIdentityPoint().Subtract(g, g)
	assert.True(t, p.IsIdentity())
	p.Subtract(NewIdentityPoint(), g)
	gneg := NewIdentityPoint().Negate(g)
	assert.True(t, p.Equal(gneg))
}

func TestPoint_Equal(t *testing.T) {
	id := NewIdentityPoint()
	assert.True(t, id.Equal(NewIdentityPoint()))
	assert.False(t, id.Equal(NewBasePoint()))
	assert.False(t, NewBasePoint().Equal(id))
}

func TestPoint_ScalarMult(t *testing.T) {
	x, y := randomScalar(t), randomScalar(t)
	xy := NewScalar().Multiply(x, y)

	// (x⋅y)⋅g = y⋅(x⋅g)
	expected := NewIdentityPoint().ScalarBaseMult(xy)
	actual := NewIdentityPoint().ScalarMult(y, NewIdentityPoint().ScalarBaseMult(x))
	assert.True(t, expected.Equal(actual))

	assert.True(t, NewIdentityPoint().ScalarMult(NewScalar(), NewBasePoint()).IsIdentity())
	assert.True(t, NewIdentityPoint().ScalarMult(x, NewIdentityPoint()).IsIdentity())
}

func TestPoint_MatchesBtcec(t *testing.T) {
	x := randomScalar(t)
	_, pub := btcec.PrivKeyFromBytes(x.Bytes())

	data, err := NewIdentityPoint().ScalarBaseMult(x).MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, pub.SerializeCompressed(), data)
}

func TestPoint_Marshal(t *testing.T) {
	p := NewIdentityPoint().ScalarBaseMult(randomScalar(t))
	data, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 33)

	q := NewIdentityPoint()
	require.NoError(t, q.UnmarshalBinary(data))
	assert.True(t, p.Equal(q))

	_, err = NewIdentityPoint().MarshalBinary()
	assert.Error(t, err)
	assert.Error(t, q.UnmarshalBinary(data[:32]))
	bad := append([]byte{0x05}, data[1:]...)
	assert.Error(t, q.UnmarshalBinary(bad))
}

func TestScalar_Arithmetic(t *testing.T) {
	x, y, z := randomScalar(t), randomScalar(t), randomScalar(t)

	sum := NewScalar().Add(x, y)
	assert.True(t, NewScalar().Subtract(sum, y).Equal(x))

	neg := NewScalar().Negate(x)
	assert.True(t, NewScalar().Add(x, neg).IsZero())

	inv := NewScalar().Invert(x)
	assert.True(t, NewScalar().Multiply(x, inv).Equal(NewScalarUInt32(1)))

	expected := NewScalar().Add(NewScalar().Multiply(x, y), z)
	assert.True(t, NewScalar().MultiplyAdd(x, y, z).Equal(expected))

	// aliasing the receiver with the operands
	w := x.Clone()
	w.MultiplyAdd(w, y, z)
	assert.True(t, w.Equal(expected))
}

func TestScalar_Marshal(t *testing.T) {
	x := randomScalar(t)
	data, err := x.MarshalBinary()
	require.NoError(t, err)
	y := NewScalar()
	require.NoError(t, y.UnmarshalBinary(data))
	assert.True(t, x.Equal(y))

	overflow := bytes.Repeat([]byte{0xff}, 32)
	assert.Error(t, y.UnmarshalBinary(overflow))
	assert.Error(t, y.UnmarshalBinary(data[:31]))
}

func TestFromHash(t *testing.T) {
	h := bytes.Repeat([]byte{0xff}, 64)
	s := FromHash(h)
	assert.False(t, s.IsZero())

	small := make([]byte, 32)
	small[31] = 7
	assert.True(t, FromHash(small).Equal(NewScalarUInt32(7)))
}
