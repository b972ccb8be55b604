package chain

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/sigma-signer/pkg/digest"
)

// UnsignedInput references a box to spend.
type UnsignedInput struct {
	BoxID     digest.Digest32
	Extension ContextExtension
}

// Input is a spent box together with the proof satisfying its script.
type Input struct {
	BoxID     digest.Digest32
	Proof     []byte
	Extension ContextExtension
}

// DataInput references a box that is read but not spent.
type DataInput struct {
	BoxID digest.Digest32
}

// UnsignedTransaction is a transaction whose inputs carry no proofs yet.
type UnsignedTransaction struct {
	Inputs     []UnsignedInput
	DataInputs []DataInput
	Outputs    []BoxCandidate
}

// Transaction is a signed transaction.
type Transaction struct {
	Inputs     []Input
	DataInputs []DataInput
	Outputs    []BoxCandidate
}

type inputMarshal struct {
	BoxID     digest.Digest32
	Proof     []byte `cbor:",omitempty"`
	Extension []entryMarshal
}

type txMarshal struct {
	Inputs     []inputMarshal
	DataInputs []DataInput
	Outputs    []candidateMarshal
}

func marshalOutputs(outputs []BoxCandidate) ([]candidateMarshal, error) {
	out := make([]candidateMarshal, len(outputs))
	for i := range outputs {
		cm, err := outputs[i].toMarshal()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out[i] = cm
	}
	return out, nil
}

func unmarshalOutputs(cms []candidateMarshal) ([]BoxCandidate, error) {
	out := make([]BoxCandidate, len(cms))
	for i, cm := range cms {
		c, err := cm.candidate()
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func (tx *UnsignedTransaction) toMarshal() (txMarshal, error) {
	outputs, err := marshalOutputs(tx.Outputs)
	if err != nil {
		return txMarshal{}, err
	}
	inputs := make([]inputMarshal, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = inputMarshal{BoxID: in.BoxID, Extension: entries(in.Extension)}
	}
	return txMarshal{Inputs: inputs, DataInputs: tx.DataInputs, Outputs: outputs}, nil
}

// BytesToSign returns the message every input proof is bound to: the
// deterministic encoding of the transaction without proofs.
func (tx *UnsignedTransaction) BytesToSign() ([]byte, error) {
	tm, err := tx.toMarshal()
	if err != nil {
		return nil, fmt.Errorf("chain.UnsignedTransaction: %w", err)
	}
	return encMode.Marshal(tm)
}

// ID returns the blake2b-256 hash of the bytes to sign.
func (tx *UnsignedTransaction) ID() (digest.Digest32, error) {
	data, err := tx.BytesToSign()
	if err != nil {
		return digest.Zero(), err
	}
	return digest.Blake2b256(data), nil
}

// OutputBoxes returns the outputs as boxes of the transaction with id txID.
func OutputBoxes(txID digest.Digest32, outputs []BoxCandidate) []Box {
	boxes := make([]Box, len(outputs))
	for i, c := range outputs {
		boxes[i] = Box{BoxCandidate: c, TransactionID: txID, Index: uint16(i)}
	}
	return boxes
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (tx *UnsignedTransaction) MarshalBinary() ([]byte, error) {
	return tx.BytesToSign()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (tx *UnsignedTransaction) UnmarshalBinary(data []byte) error {
	var tm txMarshal
	if err := cbor.Unmarshal(data, &tm); err != nil {
		return fmt.Errorf("%w: transaction: %v", ErrInvalidEncoding, err)
	}
	outputs, err := unmarshalOutputs(tm.Outputs)
	if err != nil {
		return err
	}
	inputs := make([]UnsignedInput, len(tm.Inputs))
	for i, in := range tm.Inputs {
		ext, err := fromEntries(in.Extension)
		if err != nil {
			return err
		}
		inputs[i] = UnsignedInput{BoxID: in.BoxID, Extension: ext}
	}
	*tx = UnsignedTransaction{Inputs: inputs, DataInputs: tm.DataInputs, Outputs: outputs}
	return nil
}

// Unsigned returns the transaction with its proofs removed.
func (tx *Transaction) Unsigned() *UnsignedTransaction {
	inputs := make([]UnsignedInput, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = UnsignedInput{BoxID: in.BoxID, Extension: in.Extension}
	}
	return &UnsignedTransaction{Inputs: inputs, DataInputs: tx.DataInputs, Outputs: tx.Outputs}
}

// ID returns the id of the unsigned form; proofs do not change it.
func (tx *Transaction) ID() (digest.Digest32, error) {
	return tx.Unsigned().ID()
}

// Sign attaches proofs to the inputs of tx, in order.
func (tx *UnsignedTransaction) Sign(proofs [][]byte) (*Transaction, error) {
	if len(proofs) != len(tx.Inputs) {
		return nil, fmt.Errorf("chain: %d proofs for %d inputs", len(proofs), len(tx.Inputs))
	}
	inputs := make([]Input, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = Input{BoxID: in.BoxID, Proof: proofs[i], Extension: in.Extension}
	}
	return &Transaction{Inputs: inputs, DataInputs: tx.DataInputs, Outputs: tx.Outputs}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	tm, err := tx.Unsigned().toMarshal()
	if err != nil {
		return nil, err
	}
	for i, in := range tx.Inputs {
		tm.Inputs[i].Proof = in.Proof
	}
	return encMode.Marshal(tm)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (tx *Transaction) UnmarshalBinary(data []byte) error {
	var unsigned UnsignedTransaction
	if err := unsigned.UnmarshalBinary(data); err != nil {
		return err
	}
	var tm txMarshal
	if err := cbor.Unmarshal(data, &tm); err != nil {
		return fmt.Errorf("%w: transaction: %v", ErrInvalidEncoding, err)
	}
	proofs := make([][]byte, len(tm.Inputs))
	for i, in := range tm.Inputs {
		proofs[i] = in.Proof
		if proofs[i] == nil {
			proofs[i] = []byte{}
		}
	}
	signed, err := unsigned.Sign(proofs)
	if err != nil {
		return err
	}
	*tx = *signed
	return nil
}

// Parameters are the chain parameters scripts are evaluated with.
type Parameters struct {
	MaxBlockCost uint64
}

// DefaultParameters returns the parameters of a fresh chain.
func DefaultParameters() Parameters {
	return Parameters{MaxBlockCost: 1_000_000}
}

// StateContext is the snapshot of chain state a transaction is signed against.
type StateContext struct {
	Height     uint32
	Parameters Parameters
}
