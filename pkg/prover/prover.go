// Package prover builds proofs of sigma propositions, alone or together with
// other signers through hints.
package prover

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/pkg/hint"
	"github.com/taurusgroup/sigma-signer/pkg/math/sample"
	"github.com/taurusgroup/sigma-signer/pkg/secret"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

var (
	// ErrUnprovable is returned when the secrets and hints do not satisfy the proposition.
	ErrUnprovable = errors.New("prover: proposition cannot be satisfied with the available secrets and hints")
	// ErrMissingResponse is returned when a real leaf has neither a secret nor a proof share.
	ErrMissingResponse = errors.New("prover: missing response for a real leaf")
	// ErrChallengeMismatch is returned when a proof share answers another challenge.
	ErrChallengeMismatch = errors.New("prover: proof share was computed for another challenge")
	// ErrTrivialFalse is returned when the proposition reduces to false.
	ErrTrivialFalse = errors.New("prover: proposition is false")
)

// Prover answers sigma propositions with the secrets of a store.
//
// A Prover only reads its state, and can be used from several goroutines when
// its random source is safe for concurrent use.
type Prover struct {
	secrets map[string]secret.Secret
	rand    io.Reader
}

// New returns a Prover over the secrets of store, sampling randomness from source.
// A nil source means crypto/rand.Reader.
func New(store *secret.Store, source io.Reader) *Prover {
	p := &Prover{rand: source}
	if p.rand == nil {
		p.rand = rand.Reader
	}
	if store != nil {
		p.secrets = store.Index()
	} else {
		p.secrets = map[string]secret.Secret{}
	}
	return p
}

// Secret returns the secret proving leaf, if the prover holds it.
func (p *Prover) Secret(leaf sigma.Leaf) (secret.Secret, bool) {
	s, ok := p.secrets[leaf.Key()]
	return s, ok
}

// GenerateCommitments returns, for every leaf of prop whose secret is held,
// an own commitment and its public form.
//
// The own commitments must stay with this signer; send bag.Public() to the others.
func (p *Prover) GenerateCommitments(prop sigma.Proposition) (*hint.Bag, error) {
	if err := sigma.Validate(prop); err != nil {
		return nil, err
	}
	bag := hint.NewBag()
	for _, l := range sigma.Leaves(sigma.Normalize(prop)) {
		if _, ok := p.Secret(l.Leaf); !ok {
			continue
		}
		own := hint.NewOwnCommitment(l.Leaf, l.Position, sample.Scalar(p.rand))
		bag.Add(own, own.Public())
	}
	return bag, nil
}

// Prove returns the serialized proof of prop bound to message.
//
// Every real leaf must be answered, either with a held secret or with a
// RealSecretProof hint; otherwise ErrMissingResponse is returned.
func (p *Prover) Prove(prop sigma.Proposition, message []byte, hints *hint.Bag) ([]byte, error) {
	t, err := p.run(prop, message, hints)
	if err != nil {
		return nil, err
	}
	if t.trivial {
		return []byte{}, nil
	}
	if pending := t.pending(); len(pending) > 0 {
		return nil, fmt.Errorf("%w: %d leaves, first at %v", ErrMissingResponse, len(pending), pending[0].pos)
	}
	return sigma.SerializeProof(t.root.proof())
}

// ProveShares runs the proving algorithm without requiring every leaf to be
// answered, and returns the shares other signers need to complete the proof:
// a RealSecretProof for every leaf answered with a held secret, and a
// SimulatedSecretProof for every simulated leaf.
func (p *Prover) ProveShares(prop sigma.Proposition, message []byte, hints *hint.Bag) (*hint.Bag, error) {
	t, err := p.run(prop, message, hints)
	if err != nil {
		return nil, err
	}
	bag := hint.NewBag()
	if t.trivial {
		return bag, nil
	}
	for _, n := range t.root.leaves() {
		switch {
		case !n.real:
			bag.Add(hint.NewSimulatedSecretProof(n.leaf, n.pos, n.commitment, n.challenge, n.response))
		case n.ownResponse:
			bag.Add(hint.NewRealSecretProof(n.leaf, n.pos, n.commitment, n.challenge, n.response))
		}
	}
	return bag, nil
}
