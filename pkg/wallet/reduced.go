package wallet

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/script"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
	"golang.org/x/sync/errgroup"
)

// ReducedInput is the proposition an input's script reduced to.
type ReducedInput struct {
	Proposition sigma.Proposition
	Cost        uint64
	Extension   chain.ContextExtension
}

// ReducedTransaction is an unsigned transaction whose input scripts have been
// evaluated. It carries everything needed to sign without the chain state, so
// that it can be handed to an offline signer.
type ReducedTransaction struct {
	Tx     *chain.UnsignedTransaction
	Inputs []ReducedInput
}

// Reduce evaluates the script of every input of ctx against state.
func Reduce(ctx *TransactionContext, state chain.StateContext) (*ReducedTransaction, error) {
	inputs := make([]ReducedInput, len(ctx.tx.Inputs))
	var g errgroup.Group
	for i := range inputs {
		i := i
		g.Go(func() error {
			in, err := reduceInput(ctx, state, i)
			if err != nil {
				return err
			}
			inputs[i] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debugf("Reduced transaction with %d inputs", len(inputs))
	return &ReducedTransaction{Tx: ctx.tx, Inputs: inputs}, nil
}

func reduceInput(ctx *TransactionContext, state chain.StateContext, i int) (ReducedInput, error) {
	box, ok := ctx.InputBox(i)
	if !ok {
		return ReducedInput{}, &ProvingError{InputIndex: i, Err: ErrInputIndex}
	}
	ext := ctx.tx.Inputs[i].Extension
	prop, cost, err := script.Reduce(box.Script, script.Context{
		Height:    state.Height,
		Extension: ext,
		MaxCost:   state.Parameters.MaxBlockCost,
	})
	if err != nil {
		return ReducedInput{}, &ProvingError{InputIndex: i, Err: err}
	}
	log.Tracef("Input %d reduced with cost %d", i, cost)
	return ReducedInput{Proposition: prop, Cost: cost, Extension: ext}, nil
}

// Cost returns the summed reduction cost of all inputs.
func (r *ReducedTransaction) Cost() uint64 {
	var total uint64
	for _, in := range r.Inputs {
		total += in.Cost
	}
	return total
}

type reducedMarshal struct {
	Tx     []byte
	Inputs []reducedInputMarshal
}

type reducedInputMarshal struct {
	Proposition sigma.Marshallable
	Cost        uint64
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *ReducedTransaction) MarshalBinary() ([]byte, error) {
	tx, err := r.Tx.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rm := reducedMarshal{Tx: tx, Inputs: make([]reducedInputMarshal, len(r.Inputs))}
	for i, in := range r.Inputs {
		rm.Inputs[i] = reducedInputMarshal{Proposition: sigma.Marshallable{Proposition: in.Proposition}, Cost: in.Cost}
	}
	return cbor.Marshal(rm)
}

// validate checks that r pairs every input of its transaction with a
// proposition.
func (r *ReducedTransaction) validate() error {
	if r == nil || r.Tx == nil {
		return fmt.Errorf("%w: missing transaction", ErrTransactionDiff)
	}
	if len(r.Inputs) != len(r.Tx.Inputs) {
		return fmt.Errorf("%w: %d reduced inputs for %d inputs", ErrTransactionDiff, len(r.Inputs), len(r.Tx.Inputs))
	}
	for i, in := range r.Inputs {
		if in.Proposition == nil {
			return fmt.Errorf("%w: input %d has no proposition", ErrTransactionDiff, i)
		}
	}
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *ReducedTransaction) UnmarshalBinary(data []byte) error {
	var rm reducedMarshal
	if err := cbor.Unmarshal(data, &rm); err != nil {
		return fmt.Errorf("wallet: reduced transaction: %w", err)
	}
	var tx chain.UnsignedTransaction
	if err := tx.UnmarshalBinary(rm.Tx); err != nil {
		return err
	}
	if len(rm.Inputs) != len(tx.Inputs) {
		return errors.New("wallet: reduced transaction: input count mismatch")
	}
	inputs := make([]ReducedInput, len(rm.Inputs))
	for i, in := range rm.Inputs {
		if in.Proposition.Proposition == nil {
			return fmt.Errorf("wallet: reduced transaction: input %d has no proposition", i)
		}
		inputs[i] = ReducedInput{
			Proposition: in.Proposition.Proposition,
			Cost:        in.Cost,
			Extension:   tx.Inputs[i].Extension,
		}
	}
	*r = ReducedTransaction{Tx: &tx, Inputs: inputs}
	return nil
}
