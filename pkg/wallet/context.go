package wallet

import (
	"github.com/taurusgroup/sigma-signer/pkg/chain"
)

// TransactionContext binds an unsigned transaction to the boxes it spends and reads.
type TransactionContext struct {
	tx        *chain.UnsignedTransaction
	boxes     []chain.Box
	dataBoxes []chain.Box
}

// NewTransactionContext checks that boxesToSpend and dataBoxes are, position by
// position, the boxes referenced by the inputs and data inputs of tx.
func NewTransactionContext(tx *chain.UnsignedTransaction, boxesToSpend, dataBoxes []chain.Box) (*TransactionContext, error) {
	inputIDs := make([]chain.DataInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputIDs[i] = chain.DataInput{BoxID: in.BoxID}
	}
	if err := match(inputIDs, boxesToSpend); err != nil {
		return nil, err
	}
	if err := match(tx.DataInputs, dataBoxes); err != nil {
		return nil, err
	}
	return &TransactionContext{
		tx:        tx,
		boxes:     append([]chain.Box(nil), boxesToSpend...),
		dataBoxes: append([]chain.Box(nil), dataBoxes...),
	}, nil
}

func match(refs []chain.DataInput, boxes []chain.Box) error {
	for i, ref := range refs {
		if i >= len(boxes) {
			return &ContextCreationError{BoxID: ref.BoxID, Err: ErrMissingBox}
		}
		if boxes[i].ID() != ref.BoxID {
			return &ContextCreationError{BoxID: ref.BoxID, Err: ErrBoxMismatch}
		}
	}
	if len(boxes) > len(refs) {
		return &ContextCreationError{BoxID: boxes[len(refs)].ID(), Err: ErrSurplusBox}
	}
	return nil
}

// Tx returns the unsigned transaction.
func (c *TransactionContext) Tx() *chain.UnsignedTransaction {
	return c.tx
}

// InputBox returns the box spent by input i.
func (c *TransactionContext) InputBox(i int) (chain.Box, bool) {
	if i < 0 || i >= len(c.boxes) {
		return chain.Box{}, false
	}
	return c.boxes[i], true
}

// InputBoxes returns the spent boxes, in input order.
func (c *TransactionContext) InputBoxes() []chain.Box {
	return append([]chain.Box(nil), c.boxes...)
}

// DataBoxes returns the read-only boxes, in data input order.
func (c *TransactionContext) DataBoxes() []chain.Box {
	return append([]chain.Box(nil), c.dataBoxes...)
}
