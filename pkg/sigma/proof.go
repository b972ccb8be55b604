package sigma

import (
	"bytes"
	"fmt"
	"io"

	"github.com/taurusgroup/sigma-signer/internal/params"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/math/polynomial"
)

// Node is one node of a proof tree, mirroring a normalized proposition.
type Node struct {
	Proposition Proposition
	Position    Position
	Challenge   *curve.Scalar

	// Commitment and Response are set on leaves.
	Commitment *Commitment
	Response   *curve.Scalar

	// Polynomial is set on Threshold nodes. Its constant term is Challenge,
	// and the i-th child has challenge Polynomial(i+1).
	Polynomial *polynomial.Polynomial

	Children []*Node
}

// Leaves returns the leaf nodes of the tree rooted at n, in depth-first order.
func (n *Node) Leaves() []*Node {
	if _, ok := n.Proposition.(Leaf); ok {
		return []*Node{n}
	}
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// LeafCommitments lists the commitment of each leaf, in depth-first order.
func (n *Node) LeafCommitments() []LeafCommitment {
	leaves := n.Leaves()
	out := make([]LeafCommitment, len(leaves))
	for i, l := range leaves {
		out[i] = LeafCommitment{Position: l.Position, Commitment: l.Commitment}
	}
	return out
}

// ThresholdIndex returns the x coordinate of the i-th child of a Threshold node.
func ThresholdIndex(i int) *curve.Scalar {
	return curve.NewScalarUInt32(uint32(i + 1))
}

// SerializeProof encodes a complete proof tree.
//
// A proof of true is empty. Otherwise the root challenge is followed by a
// depth-first walk: leaves write their response, Or nodes write the challenges
// of all children but the last, and Threshold nodes write the non-constant
// coefficients of their polynomial, before descending into the children.
func SerializeProof(root *Node) ([]byte, error) {
	switch t := root.Proposition.(type) {
	case Trivial:
		if t.Value {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("%w: false has no proof", ErrInvalidProof)
	}
	var buf bytes.Buffer
	if err := writeScalar(&buf, root.Challenge); err != nil {
		return nil, err
	}
	if err := writeNode(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeScalar(buf *bytes.Buffer, s *curve.Scalar) error {
	if s == nil {
		return fmt.Errorf("%w: missing scalar", ErrInvalidProof)
	}
	buf.Write(s.Bytes())
	return nil
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	switch t := n.Proposition.(type) {
	case Leaf:
		if n.Response == nil {
			return fmt.Errorf("%w: no response at %v", ErrInvalidProof, n.Position)
		}
		return writeScalar(buf, n.Response)
	case And:
	case Or:
		for _, c := range n.Children[:len(n.Children)-1] {
			if err := writeScalar(buf, c.Challenge); err != nil {
				return err
			}
		}
	case Threshold:
		if n.Polynomial == nil || int(n.Polynomial.Degree()) != len(t.Children)-t.K {
			return fmt.Errorf("%w: bad polynomial at %v", ErrInvalidProof, n.Position)
		}
		for _, c := range n.Polynomial.Coefficients()[1:] {
			buf.Write(c.Bytes())
		}
	default:
		return fmt.Errorf("%w: unexpected node %T", ErrInvalidProof, n.Proposition)
	}
	for _, c := range n.Children {
		if err := writeNode(buf, c); err != nil {
			return err
		}
	}
	return nil
}

// ParseProof decodes proof against the normal form of p, and recomputes the
// commitment of every leaf from its challenge and response.
//
// The returned tree is consistent, but the root challenge is not checked;
// use Verify for that.
func ParseProof(p Proposition, proof []byte) (*Node, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	p = Normalize(p)
	if t, ok := p.(Trivial); ok {
		if !t.Value {
			return nil, fmt.Errorf("%w: false has no proof", ErrInvalidProof)
		}
		if len(proof) != 0 {
			return nil, fmt.Errorf("%w: proof of true must be empty", ErrInvalidProof)
		}
		return &Node{Proposition: p, Position: Root()}, nil
	}

	r := bytes.NewReader(proof)
	e, err := readScalar(r)
	if err != nil {
		return nil, err
	}
	root, err := readNode(r, p, Root(), e)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidProof, r.Len())
	}
	return root, nil
}

func readScalar(r *bytes.Reader) (*curve.Scalar, error) {
	b := make([]byte, params.BytesScalar)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: truncated", ErrInvalidProof)
	}
	s := curve.NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return s, nil
}

func readNode(r *bytes.Reader, p Proposition, pos Position, e *curve.Scalar) (*Node, error) {
	n := &Node{Proposition: p, Position: pos, Challenge: e}
	var challenges []*curve.Scalar
	switch t := p.(type) {
	case Leaf:
		z, err := readScalar(r)
		if err != nil {
			return nil, err
		}
		n.Response = z
		n.Commitment = ComputeCommitment(t, e, z)
		return n, nil
	case And:
		challenges = make([]*curve.Scalar, len(t.Children))
		for i := range challenges {
			challenges[i] = e
		}
	case Or:
		challenges = make([]*curve.Scalar, len(t.Children))
		last := e.Clone()
		for i := 0; i < len(t.Children)-1; i++ {
			c, err := readScalar(r)
			if err != nil {
				return nil, err
			}
			challenges[i] = c
			last.Subtract(last, c)
		}
		challenges[len(challenges)-1] = last
	case Threshold:
		coefficients := make([]*curve.Scalar, len(t.Children)-t.K+1)
		coefficients[0] = e
		for i := 1; i < len(coefficients); i++ {
			c, err := readScalar(r)
			if err != nil {
				return nil, err
			}
			coefficients[i] = c
		}
		n.Polynomial = polynomial.FromCoefficients(coefficients)
		challenges = make([]*curve.Scalar, len(t.Children))
		for i := range challenges {
			challenges[i] = n.Polynomial.Evaluate(ThresholdIndex(i))
		}
	default:
		return nil, fmt.Errorf("%w: unexpected node %T", ErrInvalidProof, p)
	}

	children := Children(p)
	n.Children = make([]*Node, len(children))
	for i, c := range children {
		child, err := readNode(r, c, pos.Child(i), challenges[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	return n, nil
}

// Verify reports whether proof is a valid proof of p bound to message.
func Verify(p Proposition, message []byte, proof []byte) bool {
	root, err := ParseProof(p, proof)
	if err != nil {
		return false
	}
	if _, ok := root.Proposition.(Trivial); ok {
		return true
	}
	e := Challenge(root.Proposition, root.LeafCommitments(), message)
	return e.Equal(root.Challenge)
}
