// Package hint holds the partial proof state exchanged between signers.
package hint

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// ErrInvalidHint is returned by Validate for malformed hints.
var ErrInvalidHint = errors.New("hint: invalid hint")

// Kind discriminates the variants of a Hint.
type Kind uint8

const (
	// OwnCommitment is a commitment together with its randomness, and never
	// leaves the signer that produced it.
	OwnCommitment Kind = iota + 1
	// RealCommitment announces the commitment of a leaf another signer proves.
	RealCommitment
	// SimulatedCommitment announces that a leaf is simulated.
	SimulatedCommitment
	// RealSecretProof is the challenge and response of a proven leaf.
	RealSecretProof
	// SimulatedSecretProof is the full transcript of a simulated leaf.
	SimulatedSecretProof
)

func (k Kind) String() string {
	switch k {
	case OwnCommitment:
		return "own commitment"
	case RealCommitment:
		return "real commitment"
	case SimulatedCommitment:
		return "simulated commitment"
	case RealSecretProof:
		return "real secret proof"
	case SimulatedSecretProof:
		return "simulated secret proof"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsReal reports whether the hint marks its leaf as proven with a secret.
func (k Kind) IsReal() bool {
	return k == OwnCommitment || k == RealCommitment || k == RealSecretProof
}

// IsSimulated reports whether the hint marks its leaf as simulated.
func (k Kind) IsSimulated() bool {
	return k == SimulatedCommitment || k == SimulatedSecretProof
}

// IsProof reports whether the hint carries a challenge and response.
func (k Kind) IsProof() bool {
	return k == RealSecretProof || k == SimulatedSecretProof
}

// Hint describes the state of one atomic statement at one position of a proposition.
type Hint struct {
	Kind     Kind
	Image    sigma.Leaf
	Position sigma.Position

	// Randomness is only set on OwnCommitment.
	Randomness *curve.Scalar
	Commitment *sigma.Commitment

	// Challenge and Response are set on proofs.
	Challenge *curve.Scalar
	Response  *curve.Scalar
}

// NewOwnCommitment returns the commitment r⋅G (or its tuple form) for image, keeping r.
func NewOwnCommitment(image sigma.Leaf, pos sigma.Position, r *curve.Scalar) Hint {
	return Hint{
		Kind:       OwnCommitment,
		Image:      image,
		Position:   pos,
		Randomness: r,
		Commitment: sigma.FirstMessage(image, r),
	}
}

// NewRealCommitment returns the public form of a real commitment.
func NewRealCommitment(image sigma.Leaf, pos sigma.Position, c *sigma.Commitment) Hint {
	return Hint{Kind: RealCommitment, Image: image, Position: pos, Commitment: c}
}

// NewSimulatedCommitment returns a hint forcing image at pos to be simulated.
// The commitment may be nil.
func NewSimulatedCommitment(image sigma.Leaf, pos sigma.Position, c *sigma.Commitment) Hint {
	return Hint{Kind: SimulatedCommitment, Image: image, Position: pos, Commitment: c}
}

// NewRealSecretProof returns the proof share of a real leaf.
func NewRealSecretProof(image sigma.Leaf, pos sigma.Position, c *sigma.Commitment, e, z *curve.Scalar) Hint {
	return Hint{Kind: RealSecretProof, Image: image, Position: pos, Commitment: c, Challenge: e, Response: z}
}

// NewSimulatedSecretProof returns the transcript of a simulated leaf.
func NewSimulatedSecretProof(image sigma.Leaf, pos sigma.Position, c *sigma.Commitment, e, z *curve.Scalar) Hint {
	return Hint{Kind: SimulatedSecretProof, Image: image, Position: pos, Commitment: c, Challenge: e, Response: z}
}

// Public returns the hint to announce to other signers in place of h.
// An OwnCommitment becomes a RealCommitment; other hints are returned as is.
func (h Hint) Public() Hint {
	if h.Kind == OwnCommitment {
		return NewRealCommitment(h.Image, h.Position, h.Commitment)
	}
	return h
}

// Validate checks that the fields required by the kind of h are set.
func (h Hint) Validate() error {
	if h.Image == nil || len(h.Position) == 0 {
		return fmt.Errorf("%w: missing image or position", ErrInvalidHint)
	}
	if err := sigma.Validate(h.Image); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHint, err)
	}
	if h.Kind < OwnCommitment || h.Kind > SimulatedSecretProof {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidHint, h.Kind)
	}
	// a simulated commitment may only force its leaf to be simulated
	if (h.Kind != SimulatedCommitment || h.Commitment != nil) && !h.Commitment.Matches(h.Image) {
		return fmt.Errorf("%w: %v without a matching commitment", ErrInvalidHint, h.Kind)
	}
	if h.Kind == OwnCommitment && h.Randomness == nil {
		return fmt.Errorf("%w: own commitment without randomness", ErrInvalidHint)
	}
	if h.Kind.IsProof() && (h.Challenge == nil || h.Response == nil) {
		return fmt.Errorf("%w: %v without challenge or response", ErrInvalidHint, h.Kind)
	}
	return nil
}

// Describes reports whether h is about image at pos.
func (h Hint) Describes(image sigma.Leaf, pos sigma.Position) bool {
	return h.Image != nil && h.Image.Key() == image.Key() && h.Position.Equal(pos)
}
