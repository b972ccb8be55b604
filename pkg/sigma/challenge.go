package sigma

import (
	"github.com/taurusgroup/sigma-signer/internal/hash"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

const transcriptProtocol = "sigma-signer 2024 fiat-shamir challenge"

// LeafCommitment is the commitment of the leaf at Position.
type LeafCommitment struct {
	Position   Position
	Commitment *Commitment
}

// Challenge derives the Fiat-Shamir challenge of a normalized proposition.
//
// The transcript holds the proposition encoding and the leaf count, then the
// position and commitment of every leaf in depth-first order, then the message.
func Challenge(p Proposition, commitments []LeafCommitment, message []byte) *curve.Scalar {
	t := hash.New(transcriptProtocol)
	t.Append("SigmaProposition", Bytes(p))
	t.AppendUint32("SigmaLeaves", uint32(len(commitments)))
	for _, lc := range commitments {
		t.Append("SigmaPosition", []byte(lc.Position.String()))
		t.Append("SigmaCommitment", lc.Commitment.Bytes())
	}
	t.Append("SigmaMessage", message)
	return curve.FromHash(t.Sum())
}
