package wallet

import (
	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// VerifyTransaction checks the proofs of tx against the scripts of the boxes it spends.
func VerifyTransaction(tx *chain.Transaction, boxesToSpend, dataBoxes []chain.Box, state chain.StateContext) error {
	ctx, err := NewTransactionContext(tx.Unsigned(), boxesToSpend, dataBoxes)
	if err != nil {
		return err
	}
	rtx, err := Reduce(ctx, state)
	if err != nil {
		return err
	}
	return VerifyReducedTransaction(tx, rtx)
}

// VerifyReducedTransaction checks the proofs of tx against the propositions of rtx.
func VerifyReducedTransaction(tx *chain.Transaction, rtx *ReducedTransaction) error {
	if err := rtx.validate(); err != nil {
		return err
	}
	if tx == nil || len(tx.Inputs) != len(rtx.Inputs) {
		return ErrTransactionDiff
	}
	id, err := tx.ID()
	if err != nil {
		return err
	}
	reducedID, err := rtx.Tx.ID()
	if err != nil {
		return err
	}
	if id != reducedID {
		return ErrTransactionDiff
	}
	msg, err := rtx.Tx.BytesToSign()
	if err != nil {
		return err
	}
	for i, in := range rtx.Inputs {
		if !sigma.Verify(in.Proposition, msg, tx.Inputs[i].Proof) {
			return &ProvingError{InputIndex: i, Err: ErrInvalidProof}
		}
	}
	return nil
}

// VerifyMessage reports whether proof proves prop bound to msg.
func VerifyMessage(prop sigma.Proposition, msg, proof []byte) bool {
	return sigma.Verify(prop, msg, proof)
}
