// Package wallet signs transactions and messages with the secrets of a store,
// alone or together with other signers exchanging hints.
package wallet

import (
	"crypto/rand"
	"io"

	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/hint"
	"github.com/taurusgroup/sigma-signer/pkg/pool"
	"github.com/taurusgroup/sigma-signer/pkg/prover"
	"github.com/taurusgroup/sigma-signer/pkg/secret"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// Wallet holds secrets and signs with them.
//
// A Wallet is not safe for concurrent use while secrets are being added.
type Wallet struct {
	store *secret.Store
	rand  io.Reader
	pl    *pool.Pool
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithRand sets the source of the commitment randomness.
func WithRand(r io.Reader) Option {
	return func(w *Wallet) {
		w.rand = r
	}
}

// WithPool runs per input work on pl. A nil pool runs it inline.
func WithPool(pl *pool.Pool) Option {
	return func(w *Wallet) {
		w.pl = pl
	}
}

// New returns a Wallet signing with the secrets of store.
func New(store *secret.Store, opts ...Option) *Wallet {
	if store == nil {
		store = secret.NewStore()
	}
	w := &Wallet{store: store, rand: rand.Reader}
	for _, opt := range opts {
		opt(w)
	}
	w.rand = pool.NewLockedReader(w.rand)
	return w
}

// FromMnemonic returns a Wallet holding the master key of a mnemonic.
func FromMnemonic(phrase, passphrase string, opts ...Option) (*Wallet, error) {
	store, err := secret.FromMnemonic(phrase, passphrase)
	if err != nil {
		return nil, err
	}
	return New(store, opts...), nil
}

// FromSecrets returns a Wallet holding secrets.
func FromSecrets(secrets []secret.Secret, opts ...Option) *Wallet {
	return New(secret.NewStore(secrets...), opts...)
}

// AddSecret adds s to the secrets of w.
func (w *Wallet) AddSecret(s secret.Secret) {
	w.store.Add(s)
}

// Secrets returns the secrets held by w.
func (w *Wallet) Secrets() []secret.Secret {
	return w.store.Secrets()
}

func (w *Wallet) prover() *prover.Prover {
	return prover.New(w.store, w.rand)
}

// SignTransaction reduces the inputs of ctx against state and proves every one of them.
func (w *Wallet) SignTransaction(ctx *TransactionContext, state chain.StateContext, hints *hint.TransactionBag) (*chain.Transaction, error) {
	rtx, err := Reduce(ctx, state)
	if err != nil {
		return nil, err
	}
	return w.SignReducedTransaction(rtx, hints)
}

// SignReducedTransaction proves every input of rtx. It fails as a whole when
// any input cannot be proven.
func (w *Wallet) SignReducedTransaction(rtx *ReducedTransaction, hints *hint.TransactionBag) (*chain.Transaction, error) {
	if err := rtx.validate(); err != nil {
		return nil, err
	}
	msg, err := rtx.Tx.BytesToSign()
	if err != nil {
		return nil, err
	}
	p := w.prover()
	proofs := make([][]byte, len(rtx.Inputs))
	for i, in := range rtx.Inputs {
		bag := hints.AllHintsForInput(i)
		log.Debugf("Signing input %d with %d hints", i, bag.Len())
		proof, err := p.Prove(in.Proposition, msg, bag)
		if err != nil {
			return nil, &ProvingError{InputIndex: i, Err: err}
		}
		proofs[i] = proof
	}
	tx, err := rtx.Tx.Sign(proofs)
	if err != nil {
		return nil, err
	}
	log.Infof("Signed transaction with %d inputs", len(proofs))
	return tx, nil
}

// SignTransactionShares is SignTransaction for a signer that cannot complete
// the proofs alone: it returns the proof shares of w for every input.
func (w *Wallet) SignTransactionShares(ctx *TransactionContext, state chain.StateContext, hints *hint.TransactionBag) (*hint.TransactionBag, error) {
	rtx, err := Reduce(ctx, state)
	if err != nil {
		return nil, err
	}
	return w.SignReducedTransactionShares(rtx, hints)
}

// SignReducedTransactionShares returns the proof shares of w for every input of rtx.
func (w *Wallet) SignReducedTransactionShares(rtx *ReducedTransaction, hints *hint.TransactionBag) (*hint.TransactionBag, error) {
	if err := rtx.validate(); err != nil {
		return nil, err
	}
	msg, err := rtx.Tx.BytesToSign()
	if err != nil {
		return nil, err
	}
	p := w.prover()
	shares := hint.NewTransactionBag()
	for i, in := range rtx.Inputs {
		bag, err := p.ProveShares(in.Proposition, msg, hints.AllHintsForInput(i))
		if err != nil {
			return nil, &ProvingError{InputIndex: i, Err: err}
		}
		if bag.Len() > 0 {
			shares.AddHintsForInput(i, bag)
		}
	}
	return shares, nil
}

// GenerateCommitments reduces the inputs of ctx against state and returns the
// commitments of w for every input.
func (w *Wallet) GenerateCommitments(ctx *TransactionContext, state chain.StateContext) (*hint.TransactionBag, error) {
	rtx, err := Reduce(ctx, state)
	if err != nil {
		return nil, err
	}
	return w.GenerateCommitmentsForReducedTransaction(rtx)
}

// GenerateCommitmentsForReducedTransaction returns the commitments of w for
// every input of rtx. The returned bag holds own commitments and must not be
// shared as is; share its Public form.
func (w *Wallet) GenerateCommitmentsForReducedTransaction(rtx *ReducedTransaction) (*hint.TransactionBag, error) {
	if err := rtx.validate(); err != nil {
		return nil, err
	}
	p := w.prover()
	type result struct {
		bag *hint.Bag
		err error
	}
	results := pool.Parallelize(w.pl, len(rtx.Inputs), func(i int) result {
		bag, err := p.GenerateCommitments(rtx.Inputs[i].Proposition)
		return result{bag, err}
	})
	commitments := hint.NewTransactionBag()
	for i, r := range results {
		if r.err != nil {
			return nil, &ProvingError{InputIndex: i, Err: r.err}
		}
		if r.bag.Len() > 0 {
			commitments.AddHintsForInput(i, r.bag)
		}
	}
	return commitments, nil
}

// SignMessageUsingP2PK proves knowledge of the key behind addr, bound to msg.
func (w *Wallet) SignMessageUsingP2PK(addr chain.Address, msg []byte) ([]byte, error) {
	p2pk, ok := addr.(*chain.P2PKAddress)
	if !ok || p2pk.PublicKey == nil {
		return nil, ErrUnsupportedAddress
	}
	return w.SignMessage(sigma.NewProveDlog(p2pk.PublicKey), msg)
}

// SignMessage proves prop, bound to msg.
func (w *Wallet) SignMessage(prop sigma.Proposition, msg []byte) ([]byte, error) {
	return w.prover().Prove(prop, msg, nil)
}

// SignTxInput reduces and proves the single input idx of ctx, using the hints
// recorded for that input.
func (w *Wallet) SignTxInput(idx int, ctx *TransactionContext, state chain.StateContext, hints *hint.TransactionBag) (*chain.Input, error) {
	if idx < 0 || idx >= len(ctx.tx.Inputs) {
		return nil, &ProvingError{InputIndex: idx, Err: ErrInputIndex}
	}
	in, err := reduceInput(ctx, state, idx)
	if err != nil {
		return nil, err
	}
	return w.signInput(idx, ctx.tx, in, hints.AllHintsForInput(idx))
}

// SignReducedTxInput proves the single input idx of rtx.
func (w *Wallet) SignReducedTxInput(idx int, rtx *ReducedTransaction, hints *hint.TransactionBag) (*chain.Input, error) {
	if err := rtx.validate(); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(rtx.Inputs) {
		return nil, &ProvingError{InputIndex: idx, Err: ErrInputIndex}
	}
	return w.signInput(idx, rtx.Tx, rtx.Inputs[idx], hints.AllHintsForInput(idx))
}

func (w *Wallet) signInput(idx int, tx *chain.UnsignedTransaction, in ReducedInput, hints *hint.Bag) (*chain.Input, error) {
	msg, err := tx.BytesToSign()
	if err != nil {
		return nil, err
	}
	proof, err := w.prover().Prove(in.Proposition, msg, hints)
	if err != nil {
		return nil, &ProvingError{InputIndex: idx, Err: err}
	}
	return &chain.Input{BoxID: tx.Inputs[idx].BoxID, Proof: proof, Extension: tx.Inputs[idx].Extension}, nil
}
