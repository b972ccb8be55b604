package wallet

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/digest"
	"github.com/taurusgroup/sigma-signer/pkg/hint"
	"github.com/taurusgroup/sigma-signer/pkg/pool"
	"github.com/taurusgroup/sigma-signer/pkg/prover"
	"github.com/taurusgroup/sigma-signer/pkg/script"
	"github.com/taurusgroup/sigma-signer/pkg/secret"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

var state = chain.StateContext{Height: 1000, Parameters: chain.DefaultParameters()}

func box(tree script.Tree, index uint16) chain.Box {
	return chain.Box{
		BoxCandidate:  chain.BoxCandidate{Value: 1_000_000, Script: tree, CreationHeight: 10},
		TransactionID: digest.Blake2b256([]byte("funding")),
		Index:         index,
	}
}

// spend returns a transaction spending boxes, together with its context.
func spend(t *testing.T, boxes ...chain.Box) *TransactionContext {
	tx := &chain.UnsignedTransaction{
		Outputs: []chain.BoxCandidate{{Value: 900_000, Script: script.Prop(sigma.Trivial{Value: true}), CreationHeight: state.Height}},
	}
	for i, b := range boxes {
		tx.Inputs = append(tx.Inputs, chain.UnsignedInput{BoxID: b.ID(), Extension: chain.ContextExtension{0: []byte{byte(i)}}})
	}
	ctx, err := NewTransactionContext(tx, boxes, nil)
	require.NoError(t, err)
	return ctx
}

func newSecrets(n int) []*secret.DlogSecret {
	out := make([]*secret.DlogSecret, n)
	for i := range out {
		out[i] = secret.GenerateDlog(rand.Reader)
	}
	return out
}

func TestTransactionContext(t *testing.T) {
	s := newSecrets(2)
	b0, b1 := box(script.P2PK(s[0].PublicImage().H), 0), box(script.P2PK(s[1].PublicImage().H), 1)
	tx := &chain.UnsignedTransaction{
		Inputs:     []chain.UnsignedInput{{BoxID: b0.ID()}, {BoxID: b1.ID()}},
		DataInputs: []chain.DataInput{{BoxID: b1.ID()}},
	}

	ctx, err := NewTransactionContext(tx, []chain.Box{b0, b1}, []chain.Box{b1})
	require.NoError(t, err)
	got, ok := ctx.InputBox(1)
	require.True(t, ok)
	assert.Equal(t, b1.ID(), got.ID())
	_, ok = ctx.InputBox(2)
	assert.False(t, ok)
	assert.Len(t, ctx.DataBoxes(), 1)

	var cErr *ContextCreationError

	_, err = NewTransactionContext(tx, []chain.Box{b0}, []chain.Box{b1})
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, b1.ID(), cErr.BoxID)
	assert.ErrorIs(t, err, ErrMissingBox)

	_, err = NewTransactionContext(tx, []chain.Box{b1, b0}, []chain.Box{b1})
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, b0.ID(), cErr.BoxID)
	assert.ErrorIs(t, err, ErrBoxMismatch)

	_, err = NewTransactionContext(tx, []chain.Box{b0, b1}, []chain.Box{b1, b0})
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, b0.ID(), cErr.BoxID)
	assert.ErrorIs(t, err, ErrSurplusBox)

	_, err = NewTransactionContext(tx, []chain.Box{b0, b1}, nil)
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, b1.ID(), cErr.BoxID)
}

func TestSignTransaction(t *testing.T) {
	s := newSecrets(2)
	boxes := []chain.Box{box(script.P2PK(s[0].PublicImage().H), 0), box(script.P2PK(s[1].PublicImage().H), 1)}
	ctx := spend(t, boxes...)
	w := FromSecrets([]secret.Secret{s[0], s[1]})

	tx, err := w.SignTransaction(ctx, state, nil)
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 2)
	assert.NoError(t, VerifyTransaction(tx, boxes, nil, state))

	id, err := tx.ID()
	require.NoError(t, err)
	unsignedID, err := ctx.Tx().ID()
	require.NoError(t, err)
	assert.Equal(t, unsignedID, id)

	// swapping proofs breaks both inputs
	tx.Inputs[0].Proof, tx.Inputs[1].Proof = tx.Inputs[1].Proof, tx.Inputs[0].Proof
	err = VerifyTransaction(tx, boxes, nil, state)
	var pErr *ProvingError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 0, pErr.InputIndex)
	assert.ErrorIs(t, err, ErrInvalidProof)
}

func TestSignTransactionMissingSecret(t *testing.T) {
	s := newSecrets(2)
	ctx := spend(t, box(script.P2PK(s[0].PublicImage().H), 0), box(script.P2PK(s[1].PublicImage().H), 1))
	w := FromSecrets([]secret.Secret{s[0]})

	tx, err := w.SignTransaction(ctx, state, nil)
	assert.Nil(t, tx)
	var pErr *ProvingError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 1, pErr.InputIndex)
	assert.ErrorIs(t, err, prover.ErrUnprovable)

	w.AddSecret(s[1])
	_, err = w.SignTransaction(ctx, state, nil)
	assert.NoError(t, err)
}

func TestReduce(t *testing.T) {
	s := newSecrets(2)
	a, b := s[0].PublicImage(), s[1].PublicImage()
	timelocked := script.Tree{Root: script.Or{Items: []script.Expr{
		script.And{Items: []script.Expr{script.HeightAtLeast{Height: 2000}, script.SigmaProp{Prop: a}}},
		script.SigmaProp{Prop: b},
	}}}
	unlocked := script.Tree{Root: script.Or{Items: []script.Expr{
		script.HeightAtLeast{Height: 500},
		script.SigmaProp{Prop: b},
	}}}
	ctx := spend(t, box(timelocked, 0), box(unlocked, 1))

	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)
	require.Len(t, rtx.Inputs, 2)
	assert.True(t, sigma.Equal(b, rtx.Inputs[0].Proposition))
	assert.True(t, sigma.Equal(sigma.Trivial{Value: true}, rtx.Inputs[1].Proposition))
	assert.Positive(t, rtx.Inputs[0].Cost)
	assert.Equal(t, rtx.Inputs[0].Cost+rtx.Inputs[1].Cost, rtx.Cost())
	assert.Equal(t, []byte{1}, rtx.Inputs[1].Extension[0])

	// a wallet holding no secret can still spend a box that reduces to true
	w := New(nil)
	in, err := w.SignReducedTxInput(1, rtx, nil)
	require.NoError(t, err)
	assert.Empty(t, in.Proof)

	poor := chain.StateContext{Height: state.Height, Parameters: chain.Parameters{MaxBlockCost: 10}}
	_, err = Reduce(ctx, poor)
	var pErr *ProvingError
	require.True(t, errors.As(err, &pErr))
	assert.ErrorIs(t, err, script.ErrCostLimit)
}

func TestReducedTransactionMarshal(t *testing.T) {
	s := newSecrets(3)
	prop := sigma.NewThreshold(2, s[0].PublicImage(), s[1].PublicImage(), s[2].PublicImage())
	ctx := spend(t, box(script.Prop(prop), 0), box(script.P2PK(s[0].PublicImage().H), 1))
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)

	data, err := rtx.MarshalBinary()
	require.NoError(t, err)
	var decoded ReducedTransaction
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.Len(t, decoded.Inputs, 2)
	for i := range rtx.Inputs {
		assert.True(t, sigma.Equal(rtx.Inputs[i].Proposition, decoded.Inputs[i].Proposition))
		assert.Equal(t, rtx.Inputs[i].Cost, decoded.Inputs[i].Cost)
		assert.Equal(t, rtx.Inputs[i].Extension, decoded.Inputs[i].Extension)
	}

	// an offline signer only needs the decoded reduction
	w := FromSecrets([]secret.Secret{s[0], s[1]})
	tx, err := w.SignReducedTransaction(&decoded, nil)
	require.NoError(t, err)
	assert.NoError(t, VerifyReducedTransaction(tx, rtx))

	other := spend(t, box(script.P2PK(s[1].PublicImage().H), 2))
	otherReduced, err := Reduce(other, state)
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyReducedTransaction(tx, otherReduced), ErrTransactionDiff)
}

func TestMultiPartyTransaction(t *testing.T) {
	s := newSecrets(3)
	a, b, c := s[0].PublicImage(), s[1].PublicImage(), s[2].PublicImage()
	boxes := []chain.Box{
		box(script.Prop(sigma.NewAnd(a, b)), 0),
		box(script.Prop(sigma.NewThreshold(2, a, b, c)), 1),
	}
	ctx := spend(t, boxes...)
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)

	alice := FromSecrets([]secret.Secret{s[0]})
	bob := FromSecrets([]secret.Secret{s[1]})

	// neither can sign alone
	_, err = alice.SignReducedTransaction(rtx, nil)
	assert.Error(t, err)

	commitmentsA, err := alice.GenerateCommitmentsForReducedTransaction(rtx)
	require.NoError(t, err)
	commitmentsB, err := bob.GenerateCommitmentsForReducedTransaction(rtx)
	require.NoError(t, err)

	// only public commitments cross between signers
	for _, i := range commitmentsB.Public().Indices() {
		for _, h := range commitmentsB.Public().AllHintsForInput(i).Hints() {
			assert.NotEqual(t, hint.OwnCommitment, h.Kind)
		}
	}

	sharesA, err := alice.SignReducedTransactionShares(rtx, commitmentsA.Merge(commitmentsB.Public()))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, sharesA.Indices())

	tx, err := bob.SignReducedTransaction(rtx, commitmentsB.Merge(sharesA))
	require.NoError(t, err)
	assert.NoError(t, VerifyTransaction(tx, boxes, nil, state))

	// shares computed without bob's commitments answer another challenge
	lone, err := alice.GenerateCommitmentsForReducedTransaction(rtx)
	require.NoError(t, err)
	early, err := alice.SignReducedTransactionShares(rtx, lone)
	if err == nil {
		_, err = bob.SignReducedTransaction(rtx, commitmentsB.Merge(early))
	}
	assert.Error(t, err)
}

func TestGenerateCommitmentsWithPool(t *testing.T) {
	pl := pool.NewPool(2)
	defer pl.TearDown()

	s := newSecrets(2)
	var boxes []chain.Box
	for i := 0; i < 6; i++ {
		boxes = append(boxes, box(script.P2PK(s[i%2].PublicImage().H), uint16(i)))
	}
	ctx := spend(t, boxes...)

	w := FromSecrets([]secret.Secret{s[0]}, WithPool(pl), WithRand(rand.Reader))
	commitments, err := w.GenerateCommitments(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, commitments.Indices())
	for _, i := range commitments.Indices() {
		bag := commitments.AllHintsForInput(i)
		assert.Equal(t, 2, bag.Len())
		assert.Equal(t, 1, commitments.Public().AllHintsForInput(i).Len())
	}
}

func TestSignTxInput(t *testing.T) {
	s := newSecrets(2)
	boxes := []chain.Box{box(script.P2PK(s[0].PublicImage().H), 0), box(script.P2PK(s[1].PublicImage().H), 1)}
	ctx := spend(t, boxes...)

	// each custodian signs the input it is responsible for
	in0, err := FromSecrets([]secret.Secret{s[0]}).SignTxInput(0, ctx, state, nil)
	require.NoError(t, err)
	in1, err := FromSecrets([]secret.Secret{s[1]}).SignTxInput(1, ctx, state, nil)
	require.NoError(t, err)
	assert.Equal(t, boxes[1].ID(), in1.BoxID)
	assert.Equal(t, ctx.Tx().Inputs[1].Extension, in1.Extension)

	tx, err := ctx.Tx().Sign([][]byte{in0.Proof, in1.Proof})
	require.NoError(t, err)
	assert.NoError(t, VerifyTransaction(tx, boxes, nil, state))

	_, err = FromSecrets([]secret.Secret{s[0]}).SignTxInput(1, ctx, state, nil)
	var pErr *ProvingError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 1, pErr.InputIndex)

	_, err = FromSecrets([]secret.Secret{s[0]}).SignTxInput(2, ctx, state, nil)
	assert.ErrorIs(t, err, ErrInputIndex)
}

func TestMalformedReducedTransaction(t *testing.T) {
	s := newSecrets(1)
	w := FromSecrets([]secret.Secret{s[0]})
	ctx := spend(t, box(script.P2PK(s[0].PublicImage().H), 0))
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)
	tx, err := w.SignReducedTransaction(rtx, nil)
	require.NoError(t, err)

	pk := s[0].PublicImage()
	malformed := map[string]*ReducedTransaction{
		"nil":            nil,
		"no transaction": {Inputs: []ReducedInput{{Proposition: pk}}},
		"extra input":    {Tx: &chain.UnsignedTransaction{}, Inputs: []ReducedInput{{Proposition: pk}}},
		"missing input":  {Tx: ctx.Tx()},
		"no proposition": {Tx: ctx.Tx(), Inputs: []ReducedInput{{}}},
	}
	for name, bad := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := w.SignReducedTxInput(0, bad, nil)
			assert.ErrorIs(t, err, ErrTransactionDiff)
			_, err = w.SignReducedTransaction(bad, nil)
			assert.ErrorIs(t, err, ErrTransactionDiff)
			_, err = w.SignReducedTransactionShares(bad, nil)
			assert.ErrorIs(t, err, ErrTransactionDiff)
			_, err = w.GenerateCommitmentsForReducedTransaction(bad)
			assert.ErrorIs(t, err, ErrTransactionDiff)
			assert.ErrorIs(t, VerifyReducedTransaction(tx, bad), ErrTransactionDiff)
			_, err = ExtractHints(tx, bad, nil, nil)
			assert.ErrorIs(t, err, ErrTransactionDiff)
		})
	}
}

func TestExtractHints(t *testing.T) {
	s := newSecrets(3)
	a, b, c := s[0].PublicImage(), s[1].PublicImage(), s[2].PublicImage()
	boxes := []chain.Box{box(script.Prop(sigma.NewThreshold(2, a, b, c)), 0)}
	ctx := spend(t, boxes...)
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)

	tx, err := FromSecrets([]secret.Secret{s[0], s[1]}).SignReducedTransaction(rtx, nil)
	require.NoError(t, err)

	hints, err := ExtractHints(tx, rtx, []sigma.Leaf{a, b}, []sigma.Leaf{c})
	require.NoError(t, err)
	bag := hints.AllHintsForInput(0)
	require.Equal(t, 3, bag.Len())
	assert.Equal(t, 2, bag.Filter(func(h hint.Hint) bool { return h.Kind == hint.RealSecretProof }).Len())
	_, ok := bag.Find(hint.SimulatedSecretProof, c, sigma.Root().Child(2))
	assert.True(t, ok)

	// the extracted shares are enough to rebuild a valid proof without any secret
	rebuilt, err := New(nil).SignReducedTransaction(rtx, hints)
	require.NoError(t, err)
	assert.NoError(t, VerifyTransaction(rebuilt, boxes, nil, state))

	partial, err := ExtractHints(tx, rtx, []sigma.Leaf{a}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, partial.AllHintsForInput(0).Len())
}

func TestSignMessageUsingP2PK(t *testing.T) {
	s := newSecrets(2)
	w := FromSecrets([]secret.Secret{s[0]})
	msg := []byte("hello")

	addr := &chain.P2PKAddress{PublicKey: s[0].PublicImage().H}
	proof, err := w.SignMessageUsingP2PK(addr, msg)
	require.NoError(t, err)
	assert.True(t, VerifyMessage(s[0].PublicImage(), msg, proof))
	assert.False(t, VerifyMessage(s[0].PublicImage(), []byte("hello!"), proof))
	assert.False(t, VerifyMessage(s[1].PublicImage(), msg, proof))

	_, err = w.SignMessageUsingP2PK(&chain.P2SAddress{Tree: script.P2PK(s[0].PublicImage().H)}, msg)
	assert.ErrorIs(t, err, ErrUnsupportedAddress)

	_, err = w.SignMessageUsingP2PK(&chain.P2PKAddress{PublicKey: s[1].PublicImage().H}, msg)
	assert.ErrorIs(t, err, prover.ErrUnprovable)
}

func TestFromMnemonic(t *testing.T) {
	const phrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	w, err := FromMnemonic(phrase, "")
	require.NoError(t, err)
	require.Len(t, w.Secrets(), 1)

	master, err := secret.MasterKey(phrase, "")
	require.NoError(t, err)
	proof, err := w.SignMessage(master.PublicImage(), []byte("msg"))
	require.NoError(t, err)
	assert.True(t, VerifyMessage(master.PublicImage(), []byte("msg"), proof))

	_, err = FromMnemonic("abandon about", "")
	assert.Error(t, err)
}

func TestReducedSigningMatchesDirectSigning(t *testing.T) {
	s := newSecrets(2)
	prop := sigma.NewOr(s[0].PublicImage(), s[1].PublicImage())
	boxes := []chain.Box{box(script.Prop(prop), 0)}
	ctx := spend(t, boxes...)
	w := FromSecrets([]secret.Secret{s[1]})

	direct, err := w.SignTransaction(ctx, state, nil)
	require.NoError(t, err)
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)
	reduced, err := w.SignReducedTransaction(rtx, nil)
	require.NoError(t, err)

	msg, err := ctx.Tx().BytesToSign()
	require.NoError(t, err)
	for _, tx := range []*chain.Transaction{direct, reduced} {
		assert.True(t, sigma.Verify(prop, msg, tx.Inputs[0].Proof))
		assert.NoError(t, VerifyTransaction(tx, boxes, nil, state))
	}
}

func TestMultiPartyOr(t *testing.T) {
	s := newSecrets(2)
	a, b := s[0].PublicImage(), s[1].PublicImage()
	boxes := []chain.Box{box(script.Prop(sigma.NewOr(a, b)), 0)}
	ctx := spend(t, boxes...)
	rtx, err := Reduce(ctx, state)
	require.NoError(t, err)

	alice := FromSecrets([]secret.Secret{s[0]})
	bob := FromSecrets([]secret.Secret{s[1]})

	// bob proves his branch, alice's leaf is simulated by both sessions
	commitmentsB, err := bob.GenerateCommitmentsForReducedTransaction(rtx)
	require.NoError(t, err)
	simulated := hint.NewTransactionBag()
	simulated.AddHintsForInput(0, hint.NewBag(hint.NewSimulatedCommitment(a, sigma.Root().Child(0), nil)))

	shares, err := alice.SignReducedTransactionShares(rtx, simulated.Merge(commitmentsB.Public()))
	require.NoError(t, err)
	tx, err := bob.SignReducedTransaction(rtx, commitmentsB.Merge(shares))
	require.NoError(t, err)
	assert.NoError(t, VerifyTransaction(tx, boxes, nil, state))
}
