package hint

import (
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

// Bag is the set of hints for one proposition.
type Bag struct {
	hints []Hint
}

// NewBag returns a bag holding hints.
func NewBag(hints ...Hint) *Bag {
	b := &Bag{}
	b.Add(hints...)
	return b
}

// Add appends hints to b.
func (b *Bag) Add(hints ...Hint) {
	b.hints = append(b.hints, hints...)
}

// Hints returns the hints of b, in insertion order.
func (b *Bag) Hints() []Hint {
	if b == nil {
		return nil
	}
	return append([]Hint(nil), b.hints...)
}

// Len returns the number of hints.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.hints)
}

// Public returns a bag without own commitments, safe to send to other signers.
func (b *Bag) Public() *Bag {
	return b.Filter(func(h Hint) bool { return h.Kind != OwnCommitment })
}

// Merge returns a bag holding the hints of b followed by those of others.
func (b *Bag) Merge(others ...*Bag) *Bag {
	out := NewBag(b.Hints()...)
	for _, o := range others {
		out.Add(o.Hints()...)
	}
	return out
}

// Find returns the first hint of the given kind about image at pos.
func (b *Bag) Find(kind Kind, image sigma.Leaf, pos sigma.Position) (Hint, bool) {
	if b == nil {
		return Hint{}, false
	}
	for _, h := range b.hints {
		if h.Kind == kind && h.Describes(image, pos) {
			return h, true
		}
	}
	return Hint{}, false
}

// Filter returns the hints for which keep returns true.
func (b *Bag) Filter(keep func(Hint) bool) *Bag {
	out := &Bag{}
	for _, h := range b.Hints() {
		if keep(h) {
			out.hints = append(out.hints, h)
		}
	}
	return out
}

// Commitments returns a bag with only the commitment hints of b.
func (b *Bag) Commitments() *Bag {
	return b.Filter(func(h Hint) bool { return !h.Kind.IsProof() })
}

// Proofs returns a bag with only the proof hints of b.
func (b *Bag) Proofs() *Bag {
	return b.Filter(func(h Hint) bool { return h.Kind.IsProof() })
}
