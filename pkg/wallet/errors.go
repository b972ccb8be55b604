package wallet

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/digest"
)

var (
	// ErrUnsupportedAddress is returned when signing a message for an address
	// that is not guarded by a single public key.
	ErrUnsupportedAddress = errors.New("wallet: address is not a single public key address")

	// ErrMissingBox is returned when an input or data input has no box.
	ErrMissingBox = errors.New("wallet: no box for input")
	// ErrBoxMismatch is returned when a box id differs from the id its input references.
	ErrBoxMismatch = errors.New("wallet: box does not match the referenced id")
	// ErrSurplusBox is returned for boxes beyond the inputs of the transaction.
	ErrSurplusBox = errors.New("wallet: box is not referenced by the transaction")
	// ErrInputIndex is returned when signing an input the transaction does not have.
	ErrInputIndex = errors.New("wallet: input index out of range")
	// ErrInvalidProof is returned by verification when an input proof does not hold.
	ErrInvalidProof = errors.New("wallet: invalid proof")
	// ErrTransactionDiff is returned when a transaction and its reduction do
	// not describe the same inputs, or the reduction is incomplete.
	ErrTransactionDiff = errors.New("wallet: transaction differs from the reduced transaction")
)

// ContextCreationError reports a box that does not line up with the
// references of a transaction.
type ContextCreationError struct {
	BoxID digest.Digest32
	Err   error
}

func (e *ContextCreationError) Error() string {
	return fmt.Sprintf("transaction context: box %s: %v", e.BoxID, e.Err)
}

func (e *ContextCreationError) Unwrap() error {
	return e.Err
}

// ProvingError reports the input that could not be proven.
type ProvingError struct {
	InputIndex int
	Err        error
}

func (e *ProvingError) Error() string {
	return fmt.Sprintf("wallet: input %d: %v", e.InputIndex, e.Err)
}

func (e *ProvingError) Unwrap() error {
	return e.Err
}
