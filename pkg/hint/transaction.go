package hint

import "sort"

// TransactionBag maps the index of a transaction input to the hints for its proposition.
type TransactionBag struct {
	bags map[int]*Bag
}

// NewTransactionBag returns an empty TransactionBag.
func NewTransactionBag() *TransactionBag {
	return &TransactionBag{bags: make(map[int]*Bag)}
}

// AddHintsForInput appends the hints of bag to those already held for index.
func (t *TransactionBag) AddHintsForInput(index int, bag *Bag) {
	if t.bags == nil {
		t.bags = make(map[int]*Bag)
	}
	if existing, ok := t.bags[index]; ok {
		t.bags[index] = existing.Merge(bag)
		return
	}
	t.bags[index] = NewBag(bag.Hints()...)
}

// AllHintsForInput returns the hints held for index, or an empty bag.
func (t *TransactionBag) AllHintsForInput(index int) *Bag {
	if t == nil {
		return NewBag()
	}
	if b, ok := t.bags[index]; ok {
		return NewBag(b.Hints()...)
	}
	return NewBag()
}

// Indices returns the input indices that have hints, in increasing order.
func (t *TransactionBag) Indices() []int {
	if t == nil {
		return nil
	}
	out := make([]int, 0, len(t.bags))
	for i := range t.bags {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Merge returns a bag holding, for every input, the hints of t followed by those of others.
func (t *TransactionBag) Merge(others ...*TransactionBag) *TransactionBag {
	out := NewTransactionBag()
	for _, bag := range append([]*TransactionBag{t}, others...) {
		for _, i := range bag.Indices() {
			out.AddHintsForInput(i, bag.bags[i])
		}
	}
	return out
}

// Public returns the bag to send to other signers, without any commitment randomness.
func (t *TransactionBag) Public() *TransactionBag {
	out := NewTransactionBag()
	for _, i := range t.Indices() {
		out.bags[i] = t.bags[i].Public()
	}
	return out
}
