package prover

import (
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/hint"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/math/polynomial"
	"github.com/taurusgroup/sigma-signer/pkg/math/sample"
	"github.com/taurusgroup/sigma-signer/pkg/secret"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// node is a node of the proof being built.
type node struct {
	prop     sigma.Proposition
	pos      sigma.Position
	children []*node
	real     bool

	challenge *curve.Scalar
	// poly is set on Threshold nodes.
	poly *polynomial.Polynomial

	// pinned is the challenge of a subtree whose leaves all carry a
	// SimulatedSecretProof, and pinnedPoly the matching Threshold polynomial.
	pinned     *curve.Scalar
	pinnedPoly *polynomial.Polynomial

	// leaf state
	leaf        sigma.Leaf
	secret      secret.Secret
	forced      bool
	own         *hint.Hint
	announced   *hint.Hint
	share       *hint.Hint
	pin         *hint.Hint
	randomness  *curve.Scalar
	commitment  *sigma.Commitment
	response    *curve.Scalar
	ownResponse bool
}

type tree struct {
	trivial bool
	root    *node
}

// find returns the first well formed hint of kind about leaf at pos.
func find(bag *hint.Bag, kind hint.Kind, leaf sigma.Leaf, pos sigma.Position) *hint.Hint {
	for _, h := range bag.Hints() {
		if h.Kind == kind && h.Describes(leaf, pos) && h.Validate() == nil {
			return &h
		}
	}
	return nil
}

// run executes every step of the proving algorithm but the serialization.
func (p *Prover) run(prop sigma.Proposition, message []byte, hints *hint.Bag) (*tree, error) {
	if err := sigma.Validate(prop); err != nil {
		return nil, err
	}
	prop = sigma.Normalize(prop)
	if t, ok := prop.(sigma.Trivial); ok {
		if t.Value {
			return &tree{trivial: true}, nil
		}
		return nil, ErrTrivialFalse
	}

	root := p.build(prop, sigma.Root(), hints)
	markReal(root)
	if !root.real {
		return nil, ErrUnprovable
	}
	polish(root)
	pin(root)
	p.simulate(root)
	p.commit(root)
	root.challenge = sigma.Challenge(prop, root.leafCommitments(), message)
	if err := assignReal(root); err != nil {
		return nil, err
	}
	return &tree{root: root}, nil
}

func (p *Prover) build(prop sigma.Proposition, pos sigma.Position, hints *hint.Bag) *node {
	n := &node{prop: prop, pos: pos}
	if leaf, ok := prop.(sigma.Leaf); ok {
		n.leaf = leaf
		if s, ok := p.Secret(leaf); ok {
			n.secret = s
		}
		n.pin = find(hints, hint.SimulatedSecretProof, leaf, pos)
		n.forced = n.pin != nil || find(hints, hint.SimulatedCommitment, leaf, pos) != nil
		n.own = find(hints, hint.OwnCommitment, leaf, pos)
		n.announced = find(hints, hint.RealCommitment, leaf, pos)
		n.share = find(hints, hint.RealSecretProof, leaf, pos)
		return n
	}
	children := sigma.Children(prop)
	n.children = make([]*node, len(children))
	for i, c := range children {
		n.children[i] = p.build(c, pos.Child(i), hints)
	}
	return n
}

// markReal decides bottom-up which nodes can be proven.
func markReal(n *node) {
	if n.leaf != nil {
		n.real = !n.forced && (n.secret != nil || n.own != nil || n.announced != nil || n.share != nil)
		return
	}
	count := 0
	for _, c := range n.children {
		markReal(c)
		if c.real {
			count++
		}
	}
	switch t := n.prop.(type) {
	case sigma.And:
		n.real = count == len(n.children)
	case sigma.Or:
		n.real = count > 0
	case sigma.Threshold:
		n.real = count >= t.K
	}
}

// polish keeps the first real child of a real Or and the first K real children
// of a real Threshold, and turns every other child into a simulated subtree.
func polish(n *node) {
	if !n.real {
		setSimulated(n)
		return
	}
	switch t := n.prop.(type) {
	case sigma.And:
		for _, c := range n.children {
			polish(c)
		}
	case sigma.Or:
		kept := false
		for _, c := range n.children {
			if c.real && !kept {
				kept = true
				polish(c)
				continue
			}
			setSimulated(c)
		}
	case sigma.Threshold:
		kept := 0
		for _, c := range n.children {
			if c.real && kept < t.K {
				kept++
				polish(c)
				continue
			}
			setSimulated(c)
		}
	}
}

func setSimulated(n *node) {
	n.real = false
	for _, c := range n.children {
		setSimulated(c)
	}
}

// pin computes the challenge of every subtree fully described by
// SimulatedSecretProof hints, so that it is simulated the same way again.
func pin(n *node) {
	if n.leaf != nil {
		if n.pin != nil {
			n.pinned = n.pin.Challenge
		}
		return
	}
	complete := true
	for _, c := range n.children {
		pin(c)
		complete = complete && c.pinned != nil
	}
	if !complete {
		return
	}
	switch t := n.prop.(type) {
	case sigma.And:
		e := n.children[0].pinned
		for _, c := range n.children[1:] {
			if !c.pinned.Equal(e) {
				return
			}
		}
		n.pinned = e
	case sigma.Or:
		e := curve.NewScalar()
		for _, c := range n.children {
			e.Add(e, c.pinned)
		}
		n.pinned = e
	case sigma.Threshold:
		points := len(n.children) - t.K + 1
		xs := make([]*curve.Scalar, points)
		ys := make([]*curve.Scalar, points)
		for i := 0; i < points; i++ {
			xs[i], ys[i] = sigma.ThresholdIndex(i), n.children[i].pinned
		}
		q, err := polynomial.Interpolate(xs, ys)
		if err != nil {
			return
		}
		for i, c := range n.children[points:] {
			if !q.Evaluate(sigma.ThresholdIndex(points + i)).Equal(c.pinned) {
				return
			}
		}
		n.pinnedPoly = q
		n.pinned = q.Constant()
	}
}

// simulate assigns a challenge to the simulated children of real nodes, and
// simulates those subtrees.
func (p *Prover) simulate(n *node) {
	for _, c := range n.children {
		if c.real {
			p.simulate(c)
			continue
		}
		if c.pinned != nil {
			c.challenge = c.pinned
		} else {
			c.challenge = sample.Scalar(p.rand)
		}
		p.simulateSubtree(c)
	}
}

// simulateSubtree splits the challenge of a simulated node among its
// descendants, and computes a commitment for every leaf from a random response.
func (p *Prover) simulateSubtree(n *node) {
	e := n.challenge
	if n.leaf != nil {
		if n.pin != nil && n.pin.Challenge.Equal(e) {
			n.response = n.pin.Response
		} else {
			n.response = sample.Scalar(p.rand)
		}
		n.commitment = sigma.ComputeCommitment(n.leaf, e, n.response)
		return
	}

	usePins := n.pinned != nil && n.pinned.Equal(e)
	switch t := n.prop.(type) {
	case sigma.And:
		for _, c := range n.children {
			c.challenge = e
		}
	case sigma.Or:
		if usePins {
			for _, c := range n.children {
				c.challenge = c.pinned
			}
			break
		}
		rest := e.Clone()
		last := len(n.children) - 1
		for _, c := range n.children[:last] {
			c.challenge = sample.Scalar(p.rand)
			rest.Subtract(rest, c.challenge)
		}
		n.children[last].challenge = rest
	case sigma.Threshold:
		if usePins {
			n.poly = n.pinnedPoly
		} else {
			n.poly = polynomial.New(len(n.children)-t.K, e, p.rand)
		}
		for i, c := range n.children {
			c.challenge = n.poly.Evaluate(sigma.ThresholdIndex(i))
		}
	}
	for _, c := range n.children {
		p.simulateSubtree(c)
	}
}

// commit fixes the commitment of every real leaf: from an own commitment,
// then an announced commitment or proof share, and otherwise from fresh
// randomness when the secret is held.
func (p *Prover) commit(n *node) {
	for _, c := range n.children {
		p.commit(c)
	}
	if n.leaf == nil || !n.real {
		return
	}
	switch {
	case n.own != nil:
		n.randomness = n.own.Randomness
		n.commitment = sigma.FirstMessage(n.leaf, n.randomness)
	case n.announced != nil:
		n.commitment = n.announced.Commitment
	case n.share != nil:
		n.commitment = n.share.Commitment
	case n.secret != nil:
		n.randomness = sample.Scalar(p.rand)
		n.commitment = sigma.FirstMessage(n.leaf, n.randomness)
	}
}

// assignReal splits the challenge of a real node among its real children,
// and answers real leaves.
func assignReal(n *node) error {
	e := n.challenge
	if n.leaf != nil {
		switch {
		case n.secret != nil && n.randomness != nil:
			n.response = sigma.Respond(n.randomness, e, n.secret.Scalar())
			n.ownResponse = true
		case n.share != nil:
			if !n.share.Challenge.Equal(e) {
				return fmt.Errorf("%w: leaf at %v", ErrChallengeMismatch, n.pos)
			}
			n.response = n.share.Response
		}
		return nil
	}

	switch n.prop.(type) {
	case sigma.And:
		for _, c := range n.children {
			c.challenge = e
		}
	case sigma.Or:
		rest := e.Clone()
		for _, c := range n.children {
			if !c.real {
				rest.Subtract(rest, c.challenge)
			}
		}
		for _, c := range n.children {
			if c.real {
				c.challenge = rest
			}
		}
	case sigma.Threshold:
		xs := []*curve.Scalar{curve.NewScalar()}
		ys := []*curve.Scalar{e}
		for i, c := range n.children {
			if !c.real {
				xs = append(xs, sigma.ThresholdIndex(i))
				ys = append(ys, c.challenge)
			}
		}
		q, err := polynomial.Interpolate(xs, ys)
		if err != nil {
			return fmt.Errorf("prover: threshold at %v: %w", n.pos, err)
		}
		n.poly = q
		for i, c := range n.children {
			if c.real {
				c.challenge = q.Evaluate(sigma.ThresholdIndex(i))
			}
		}
	}
	for _, c := range n.children {
		if !c.real {
			continue
		}
		if err := assignReal(c); err != nil {
			return err
		}
	}
	return nil
}

func (n *node) leaves() []*node {
	if n.leaf != nil {
		return []*node{n}
	}
	var out []*node
	for _, c := range n.children {
		out = append(out, c.leaves()...)
	}
	return out
}

func (n *node) leafCommitments() []sigma.LeafCommitment {
	leaves := n.leaves()
	out := make([]sigma.LeafCommitment, len(leaves))
	for i, l := range leaves {
		out[i] = sigma.LeafCommitment{Position: l.pos, Commitment: l.commitment}
	}
	return out
}

// pending returns the real leaves without a response.
func (t *tree) pending() []*node {
	var out []*node
	for _, l := range t.root.leaves() {
		if l.real && l.response == nil {
			out = append(out, l)
		}
	}
	return out
}

// proof converts the subtree at n to its sigma form.
func (n *node) proof() *sigma.Node {
	out := &sigma.Node{
		Proposition: n.prop,
		Position:    n.pos,
		Challenge:   n.challenge,
		Commitment:  n.commitment,
		Response:    n.response,
		Polynomial:  n.poly,
	}
	for _, c := range n.children {
		out.Children = append(out.Children, c.proof())
	}
	return out
}
