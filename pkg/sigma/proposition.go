// Package sigma implements the propositions guarding boxes, and the
// non-interactive sigma protocol proofs of knowledge that satisfy them.
package sigma

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

var (
	// ErrInvalidProposition is returned for malformed or undecodable propositions.
	ErrInvalidProposition = errors.New("sigma: invalid proposition")
	// ErrInvalidProof is returned when proof bytes do not match the proposition.
	ErrInvalidProof = errors.New("sigma: invalid proof")
)

// Tag is the first byte of an encoded proposition node.
type Tag byte

// Node tags, in encoding order: Trivial false and true, ProveDlog,
// ProveDHTuple, And, Or and Threshold.
const (
	TagFalse Tag = iota
	TagTrue
	TagDlog
	TagDHTuple
	TagAnd
	TagOr
	TagThreshold
)

// Proposition is a node of a boolean tree over sigma statements.
//
// The concrete types are Trivial, ProveDlog, ProveDHTuple, And, Or and Threshold.
type Proposition interface {
	Tag() Tag
}

// Leaf is an atomic statement, proven with a secret scalar.
type Leaf interface {
	Proposition
	// Key identifies the statement by its encoding, and is used to match secrets.
	Key() string
}

// Trivial is a constant proposition.
type Trivial struct {
	Value bool
}

// ProveDlog states knowledge of x such that H = x⋅G.
type ProveDlog struct {
	H *curve.Point
}

// ProveDHTuple states knowledge of x such that U = x⋅G and V = x⋅H.
type ProveDHTuple struct {
	G, H, U, V *curve.Point
}

// And is satisfied when all of its children are.
type And struct {
	Children []Proposition
}

// Or is satisfied when one of its children is.
type Or struct {
	Children []Proposition
}

// Threshold is satisfied when at least K of its children are.
type Threshold struct {
	K        int
	Children []Proposition
}

func (t Trivial) Tag() Tag {
	if t.Value {
		return TagTrue
	}
	return TagFalse
}
func (ProveDlog) Tag() Tag    { return TagDlog }
func (ProveDHTuple) Tag() Tag { return TagDHTuple }
func (And) Tag() Tag          { return TagAnd }
func (Or) Tag() Tag           { return TagOr }
func (Threshold) Tag() Tag    { return TagThreshold }

func (p ProveDlog) Key() string    { return string(Bytes(p)) }
func (p ProveDHTuple) Key() string { return string(Bytes(p)) }

// NewProveDlog returns the statement of knowledge of the discrete log of h.
func NewProveDlog(h *curve.Point) ProveDlog {
	return ProveDlog{H: curve.NewIdentityPoint().Set(h)}
}

// NewAnd returns the conjunction of children.
func NewAnd(children ...Proposition) And {
	return And{Children: children}
}

// NewOr returns the disjunction of children.
func NewOr(children ...Proposition) Or {
	return Or{Children: children}
}

// NewThreshold returns the k-out-of-n statement over children.
func NewThreshold(k int, children ...Proposition) Threshold {
	return Threshold{K: k, Children: children}
}

// Validate checks that every point of p is set and not the identity, and that
// connectives fit the binary encoding.
func Validate(p Proposition) error {
	switch t := p.(type) {
	case Trivial:
		return nil
	case ProveDlog:
		return validatePoints(t.H)
	case ProveDHTuple:
		return validatePoints(t.G, t.H, t.U, t.V)
	case And:
		return validateChildren(t.Children)
	case Or:
		return validateChildren(t.Children)
	case Threshold:
		if t.K < 0 || t.K > maxChildren {
			return fmt.Errorf("%w: threshold %d out of range", ErrInvalidProposition, t.K)
		}
		return validateChildren(t.Children)
	case nil:
		return fmt.Errorf("%w: nil node", ErrInvalidProposition)
	default:
		return fmt.Errorf("%w: unknown node %T", ErrInvalidProposition, p)
	}
}

func validatePoints(points ...*curve.Point) error {
	for _, point := range points {
		if point == nil || point.IsIdentity() {
			return fmt.Errorf("%w: missing or identity point", ErrInvalidProposition)
		}
	}
	return nil
}

func validateChildren(children []Proposition) error {
	if len(children) > maxChildren {
		return fmt.Errorf("%w: %d children", ErrInvalidProposition, len(children))
	}
	for _, c := range children {
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether both propositions have the same encoding.
func Equal(p, q Proposition) bool {
	return bytes.Equal(Bytes(p), Bytes(q))
}

// Normalize folds constant children into their parents, and replaces
// connectives equivalent to a simpler one:
//
//   - And drops true children, and is false with a false child;
//   - Or drops false children, and is true with a true child;
//   - Threshold lowers K for each true child, and drops false ones;
//   - Threshold with K ≤ 0 is true, K > n is false, K = n is And, K = 1 is Or;
//   - a connective with one child is that child.
func Normalize(p Proposition) Proposition {
	switch t := p.(type) {
	case And:
		children := make([]Proposition, 0, len(t.Children))
		for _, c := range t.Children {
			c = Normalize(c)
			if triv, ok := c.(Trivial); ok {
				if !triv.Value {
					return Trivial{Value: false}
				}
				continue
			}
			children = append(children, c)
		}
		switch len(children) {
		case 0:
			return Trivial{Value: true}
		case 1:
			return children[0]
		}
		return And{Children: children}
	case Or:
		children := make([]Proposition, 0, len(t.Children))
		for _, c := range t.Children {
			c = Normalize(c)
			if triv, ok := c.(Trivial); ok {
				if triv.Value {
					return Trivial{Value: true}
				}
				continue
			}
			children = append(children, c)
		}
		switch len(children) {
		case 0:
			return Trivial{Value: false}
		case 1:
			return children[0]
		}
		return Or{Children: children}
	case Threshold:
		k := t.K
		children := make([]Proposition, 0, len(t.Children))
		for _, c := range t.Children {
			c = Normalize(c)
			if triv, ok := c.(Trivial); ok {
				if triv.Value {
					k--
				}
				continue
			}
			children = append(children, c)
		}
		switch {
		case k <= 0:
			return Trivial{Value: true}
		case k > len(children):
			return Trivial{Value: false}
		case k == len(children):
			return Normalize(And{Children: children})
		case k == 1:
			return Normalize(Or{Children: children})
		}
		return Threshold{K: k, Children: children}
	default:
		return p
	}
}

// LeafAt is an atomic statement together with its position in a tree.
type LeafAt struct {
	Position Position
	Leaf     Leaf
}

// Leaves lists the atomic statements of p in depth-first order.
func Leaves(p Proposition) []LeafAt {
	var out []LeafAt
	var walk func(Proposition, Position)
	walk = func(p Proposition, pos Position) {
		switch t := p.(type) {
		case Leaf:
			out = append(out, LeafAt{Position: pos, Leaf: t})
		case And:
			for i, c := range t.Children {
				walk(c, pos.Child(i))
			}
		case Or:
			for i, c := range t.Children {
				walk(c, pos.Child(i))
			}
		case Threshold:
			for i, c := range t.Children {
				walk(c, pos.Child(i))
			}
		}
	}
	walk(p, Root())
	return out
}

// Children returns the children of a connective, or nil.
func Children(p Proposition) []Proposition {
	switch t := p.(type) {
	case And:
		return t.Children
	case Or:
		return t.Children
	case Threshold:
		return t.Children
	}
	return nil
}
