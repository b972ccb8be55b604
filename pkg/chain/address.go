package chain

import (
	"errors"

	"github.com/taurusgroup/sigma-signer/pkg/digest"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/script"
)

// ErrScriptUnknown is returned for addresses that only commit to a script hash.
var ErrScriptUnknown = errors.New("chain: address does not reveal its script")

// Address designates who can spend a box.
//
// The concrete types are *P2PKAddress, *P2SAddress and *P2SHAddress.
type Address interface {
	// Script returns the script guarding boxes sent to the address.
	Script() (script.Tree, error)
}

// P2PKAddress is guarded by a single public key.
type P2PKAddress struct {
	PublicKey *curve.Point
}

// P2SAddress is guarded by a script.
type P2SAddress struct {
	Tree script.Tree
}

// P2SHAddress is guarded by the script whose encoding hashes to Hash.
type P2SHAddress struct {
	Hash [24]byte
}

func (a *P2PKAddress) Script() (script.Tree, error) {
	return script.P2PK(a.PublicKey), nil
}

func (a *P2SAddress) Script() (script.Tree, error) {
	return a.Tree, nil
}

func (a *P2SHAddress) Script() (script.Tree, error) {
	return script.Tree{}, ErrScriptUnknown
}

// NewP2SHAddress returns the address committing to the first 24 bytes of the
// blake2b-256 hash of the script encoding.
func NewP2SHAddress(tree script.Tree) (*P2SHAddress, error) {
	data, err := tree.Bytes()
	if err != nil {
		return nil, err
	}
	h := digest.Blake2b256(data)
	a := &P2SHAddress{}
	copy(a.Hash[:], h[:24])
	return a, nil
}
