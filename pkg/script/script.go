// Package script describes the guarding scripts of boxes, and reduces them
// to sigma propositions against a spending context.
package script

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

var (
	// ErrCostLimit is returned when reduction exceeds Context.MaxCost.
	ErrCostLimit = errors.New("script: cost limit exceeded")
	// ErrInvalidExpression is returned for malformed or undecodable scripts.
	ErrInvalidExpression = errors.New("script: invalid expression")
)

// MaxVersion is the highest script version understood by Reduce.
const MaxVersion = 0

// Op identifies the kind of an expression.
type Op uint8

const (
	OpSigmaProp Op = iota + 1
	OpTrue
	OpFalse
	OpHeightAtLeast
	OpExtensionEquals
	OpAnd
	OpOr
	OpAtLeast
)

// Expr is a node of a guarding script.
//
// The concrete types are SigmaProp, Bool, HeightAtLeast, ExtensionEquals,
// And, Or and AtLeast.
type Expr interface {
	Op() Op
}

// SigmaProp is a constant proposition.
type SigmaProp struct {
	Prop sigma.Proposition
}

// Bool is a constant; use True and False.
type Bool struct {
	Value bool
}

// HeightAtLeast holds when the spending height is at least Height.
type HeightAtLeast struct {
	Height uint32
}

// ExtensionEquals holds when the context extension variable ID equals Value.
type ExtensionEquals struct {
	ID    uint8
	Value []byte
}

// And holds when all of its items do.
type And struct {
	Items []Expr
}

// Or holds when one of its items does.
type Or struct {
	Items []Expr
}

// AtLeast holds when K of its items do.
type AtLeast struct {
	K     int
	Items []Expr
}

func (SigmaProp) Op() Op       { return OpSigmaProp }
func (HeightAtLeast) Op() Op   { return OpHeightAtLeast }
func (ExtensionEquals) Op() Op { return OpExtensionEquals }
func (And) Op() Op             { return OpAnd }
func (Or) Op() Op              { return OpOr }
func (AtLeast) Op() Op         { return OpAtLeast }

func (b Bool) Op() Op {
	if b.Value {
		return OpTrue
	}
	return OpFalse
}

var (
	True  = Bool{Value: true}
	False = Bool{Value: false}
)

// Tree is a versioned guarding script.
type Tree struct {
	Version uint8
	Root    Expr
}

// P2PK returns the script guarding a box with the key pk.
func P2PK(pk *curve.Point) Tree {
	return Tree{Root: SigmaProp{Prop: sigma.NewProveDlog(pk)}}
}

// Prop returns the script guarding a box with a constant proposition.
func Prop(p sigma.Proposition) Tree {
	return Tree{Root: SigmaProp{Prop: p}}
}

// Context is the part of the spending transaction and chain state a script can read.
type Context struct {
	Height    uint32
	Extension map[uint8][]byte
	// MaxCost bounds the cost of a reduction; 0 means unbounded.
	MaxCost uint64
}

// Costs of evaluating each operation.
const (
	CostConstant        = 10
	CostHeight          = 20
	CostExtension       = 30
	CostConnective      = 20
	CostPerItem         = 10
	CostDlog            = 100
	CostDHTuple         = 200
	CostSigmaConnective = 10
)

// Reduce evaluates tree against ctx, and returns the normalized proposition
// a spender must prove, together with the cost of the evaluation.
func Reduce(tree Tree, ctx Context) (sigma.Proposition, uint64, error) {
	if tree.Version > MaxVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrInvalidExpression, tree.Version)
	}
	r := reducer{ctx: ctx}
	p, err := r.reduce(tree.Root, 0)
	if err != nil {
		return nil, r.cost, err
	}
	return sigma.Normalize(p), r.cost, nil
}

type reducer struct {
	ctx  Context
	cost uint64
}

// maxDepth bounds expression nesting in Reduce and in the cbor encoding.
const maxDepth = 100

func (r *reducer) add(cost uint64) error {
	r.cost += cost
	if r.ctx.MaxCost != 0 && r.cost > r.ctx.MaxCost {
		return fmt.Errorf("%w: %d > %d", ErrCostLimit, r.cost, r.ctx.MaxCost)
	}
	return nil
}

func (r *reducer) reduce(e Expr, depth int) (sigma.Proposition, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: script too deep", ErrInvalidExpression)
	}
	switch t := e.(type) {
	case SigmaProp:
		if err := sigma.Validate(t.Prop); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		if err := r.add(propositionCost(t.Prop)); err != nil {
			return nil, err
		}
		return t.Prop, nil
	case Bool:
		if err := r.add(CostConstant); err != nil {
			return nil, err
		}
		return sigma.Trivial{Value: t.Value}, nil
	case HeightAtLeast:
		if err := r.add(CostHeight); err != nil {
			return nil, err
		}
		return sigma.Trivial{Value: r.ctx.Height >= t.Height}, nil
	case ExtensionEquals:
		if err := r.add(CostExtension + uint64(len(t.Value))); err != nil {
			return nil, err
		}
		v, ok := r.ctx.Extension[t.ID]
		return sigma.Trivial{Value: ok && bytes.Equal(v, t.Value)}, nil
	case And:
		children, err := r.reduceItems(t.Items, depth)
		if err != nil {
			return nil, err
		}
		return sigma.NewAnd(children...), nil
	case Or:
		children, err := r.reduceItems(t.Items, depth)
		if err != nil {
			return nil, err
		}
		return sigma.NewOr(children...), nil
	case AtLeast:
		if t.K < 0 {
			return nil, fmt.Errorf("%w: negative bound %d", ErrInvalidExpression, t.K)
		}
		children, err := r.reduceItems(t.Items, depth)
		if err != nil {
			return nil, err
		}
		return sigma.NewThreshold(t.K, children...), nil
	case nil:
		return nil, fmt.Errorf("%w: nil expression", ErrInvalidExpression)
	default:
		return nil, fmt.Errorf("%w: unknown expression %T", ErrInvalidExpression, e)
	}
}

func (r *reducer) reduceItems(items []Expr, depth int) ([]sigma.Proposition, error) {
	if err := r.add(CostConnective + CostPerItem*uint64(len(items))); err != nil {
		return nil, err
	}
	out := make([]sigma.Proposition, len(items))
	for i, item := range items {
		p, err := r.reduce(item, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// propositionCost is the cost of verifying a proof of p.
func propositionCost(p sigma.Proposition) uint64 {
	switch p.(type) {
	case sigma.ProveDlog:
		return CostDlog
	case sigma.ProveDHTuple:
		return CostDHTuple
	case sigma.Trivial:
		return CostConstant
	}
	children := sigma.Children(p)
	cost := uint64(CostSigmaConnective * len(children))
	for _, c := range children {
		cost += propositionCost(c)
	}
	return cost
}
