package wallet

import (
	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/hint"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// ExtractHints reads the proofs of tx and returns, for every input, a
// RealSecretProof for each leaf whose image is in realImages and a
// SimulatedSecretProof for each leaf whose image is in simulatedImages.
//
// Leaves in neither set are skipped. rtx must be the reduction tx was signed from.
func ExtractHints(tx *chain.Transaction, rtx *ReducedTransaction, realImages, simulatedImages []sigma.Leaf) (*hint.TransactionBag, error) {
	if err := rtx.validate(); err != nil {
		return nil, err
	}
	if tx == nil || len(tx.Inputs) != len(rtx.Inputs) {
		return nil, ErrTransactionDiff
	}
	realSet := keySet(realImages)
	simulatedSet := keySet(simulatedImages)

	bag := hint.NewTransactionBag()
	for i, in := range rtx.Inputs {
		root, err := sigma.ParseProof(in.Proposition, tx.Inputs[i].Proof)
		if err != nil {
			return nil, &ProvingError{InputIndex: i, Err: err}
		}
		hints := hint.NewBag()
		for _, n := range root.Leaves() {
			leaf, ok := n.Proposition.(sigma.Leaf)
			if !ok {
				continue
			}
			switch {
			case realSet[leaf.Key()]:
				hints.Add(hint.NewRealSecretProof(leaf, n.Position, n.Commitment, n.Challenge, n.Response))
			case simulatedSet[leaf.Key()]:
				hints.Add(hint.NewSimulatedSecretProof(leaf, n.Position, n.Commitment, n.Challenge, n.Response))
			}
		}
		if hints.Len() > 0 {
			bag.AddHintsForInput(i, hints)
		}
	}
	return bag, nil
}

func keySet(leaves []sigma.Leaf) map[string]bool {
	set := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		set[l.Key()] = true
	}
	return set
}
