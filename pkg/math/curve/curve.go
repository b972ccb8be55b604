// Package curve implements the secp256k1 group and its scalar field.
package curve

import (
	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var order = saferith.ModulusFromBytes(secp256k1.Params().N.Bytes())

// Order returns the order q of the group generated by the base point.
func Order() *saferith.Modulus {
	return order
}

// FromHash reduces the big-endian integer h modulo q.
//
// A 64 byte h gives a scalar whose distance from uniform is negligible.
func FromHash(h []byte) *Scalar {
	return NewScalar().SetNat(new(saferith.Nat).SetBytes(h))
}
