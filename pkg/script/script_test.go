package script

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/sigma-signer/pkg/math/sample"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

func randomKey() sigma.ProveDlog {
	_, X := sample.ScalarPointPair(rand.Reader)
	return sigma.ProveDlog{H: X}
}

func TestReduceP2PK(t *testing.T) {
	key := randomKey()
	prop, cost, err := Reduce(P2PK(key.H), Context{})
	require.NoError(t, err)
	assert.True(t, sigma.Equal(key, prop))
	assert.EqualValues(t, CostDlog, cost)
}

func TestReduceFolding(t *testing.T) {
	a, b := randomKey(), randomKey()
	ctx := Context{
		Height:    100,
		Extension: map[uint8][]byte{1: []byte("preimage")},
	}

	tests := []struct {
		name     string
		root     Expr
		expected sigma.Proposition
	}{
		{"height reached", And{Items: []Expr{HeightAtLeast{Height: 100}, SigmaProp{Prop: a}}}, a},
		{"height not reached", And{Items: []Expr{HeightAtLeast{Height: 101}, SigmaProp{Prop: a}}}, sigma.Trivial{Value: false}},
		{"timelock or key", Or{Items: []Expr{SigmaProp{Prop: a}, HeightAtLeast{Height: 50}}}, sigma.Trivial{Value: true}},
		{"extension matches", Or{Items: []Expr{ExtensionEquals{ID: 1, Value: []byte("preimage")}, SigmaProp{Prop: a}}}, sigma.Trivial{Value: true}},
		{"extension differs", Or{Items: []Expr{ExtensionEquals{ID: 1, Value: []byte("other")}, SigmaProp{Prop: a}}}, a},
		{"extension missing", And{Items: []Expr{ExtensionEquals{ID: 2}, SigmaProp{Prop: a}}}, sigma.Trivial{Value: false}},
		{"at least", AtLeast{K: 2, Items: []Expr{SigmaProp{Prop: a}, True, SigmaProp{Prop: b}}}, sigma.NewOr(a, b)},
		{"constants", And{Items: []Expr{True, Or{Items: []Expr{False, SigmaProp{Prop: b}}}}}, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop, cost, err := Reduce(Tree{Root: tt.root}, ctx)
			require.NoError(t, err)
			assert.True(t, sigma.Equal(tt.expected, prop))
			assert.Positive(t, cost)
		})
	}
}

func TestReduceCostLimit(t *testing.T) {
	a, b := randomKey(), randomKey()
	tree := Tree{Root: And{Items: []Expr{SigmaProp{Prop: a}, SigmaProp{Prop: b}}}}

	_, cost, err := Reduce(tree, Context{})
	require.NoError(t, err)
	assert.EqualValues(t, CostConnective+2*CostPerItem+2*CostDlog, cost)

	_, _, err = Reduce(tree, Context{MaxCost: cost})
	assert.NoError(t, err)
	_, _, err = Reduce(tree, Context{MaxCost: cost - 1})
	assert.ErrorIs(t, err, ErrCostLimit)
}

func TestReduceErrors(t *testing.T) {
	_, _, err := Reduce(Tree{}, Context{})
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, _, err = Reduce(Tree{Version: MaxVersion + 1, Root: True}, Context{})
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, _, err = Reduce(Tree{Root: AtLeast{K: -1}}, Context{})
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, _, err = Reduce(Tree{Root: SigmaProp{Prop: sigma.ProveDlog{}}}, Context{})
	assert.ErrorIs(t, err, ErrInvalidExpression)

	var deep Expr = True
	for i := 0; i <= maxDepth+1; i++ {
		deep = And{Items: []Expr{deep}}
	}
	_, _, err = Reduce(Tree{Root: deep}, Context{})
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestTreeEncoding(t *testing.T) {
	a, b := randomKey(), randomKey()
	tree := Tree{Root: Or{Items: []Expr{
		And{Items: []Expr{HeightAtLeast{Height: 7}, SigmaProp{Prop: a}}},
		AtLeast{K: 1, Items: []Expr{ExtensionEquals{ID: 3, Value: []byte{1, 2}}, SigmaProp{Prop: sigma.NewOr(a, b)}, False}},
	}}}
	data, err := tree.Bytes()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	again, err := parsed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	ctx := Context{Height: 10, Extension: map[uint8][]byte{3: {9}}}
	p1, c1, err := Reduce(tree, ctx)
	require.NoError(t, err)
	p2, c2, err := Reduce(parsed, ctx)
	require.NoError(t, err)
	assert.True(t, sigma.Equal(p1, p2))
	assert.Equal(t, c1, c2)

	_, err = Tree{Root: SigmaProp{Prop: sigma.ProveDlog{}}}.Bytes()
	assert.ErrorIs(t, err, ErrInvalidExpression)
	_, err = Parse([]byte{0xa0})
	assert.ErrorIs(t, err, ErrInvalidExpression)
}

func TestTreeEncodingDepth(t *testing.T) {
	nest := func(levels int) Expr {
		var e Expr = True
		for i := 0; i < levels; i++ {
			e = And{Items: []Expr{e}}
		}
		return e
	}

	data, err := Tree{Root: nest(maxDepth)}.Bytes()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	_, _, err = Reduce(parsed, Context{})
	require.NoError(t, err)

	_, err = Tree{Root: nest(maxDepth + 1)}.Bytes()
	assert.ErrorIs(t, err, ErrInvalidExpression)

	// Encode past the limit directly, bypassing the depth check in Bytes.
	for _, levels := range []int{maxDepth + 1, maxDepth + 40} {
		em := exprMarshal{Op: OpTrue}
		for i := 0; i < levels; i++ {
			em = exprMarshal{Op: OpAnd, Items: []exprMarshal{em}}
		}
		raw, err := encMode.Marshal(treeMarshal{Root: em})
		require.NoError(t, err)
		_, err = Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidExpression, "levels %d", levels)
	}
}
