package hint

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

type hintMarshal struct {
	Kind       Kind
	Image      []byte
	Position   []int
	Randomness []byte `cbor:",omitempty"`
	Commitment []byte `cbor:",omitempty"`
	Challenge  []byte `cbor:",omitempty"`
	Response   []byte `cbor:",omitempty"`
}

type inputMarshal struct {
	Index int
	Hints []hintMarshal
}

func scalarBytes(s *curve.Scalar) []byte {
	if s == nil {
		return nil
	}
	return s.Bytes()
}

func toMarshal(h Hint) (hintMarshal, error) {
	if err := h.Validate(); err != nil {
		return hintMarshal{}, err
	}
	hm := hintMarshal{
		Kind:       h.Kind,
		Image:      sigma.Bytes(h.Image),
		Position:   h.Position,
		Randomness: scalarBytes(h.Randomness),
		Challenge:  scalarBytes(h.Challenge),
		Response:   scalarBytes(h.Response),
	}
	if h.Commitment != nil {
		hm.Commitment = h.Commitment.Bytes()
	}
	return hm, nil
}

func readScalar(data []byte) (*curve.Scalar, error) {
	if data == nil {
		return nil, nil
	}
	s := curve.NewScalar()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHint, err)
	}
	return s, nil
}

func fromMarshal(hm hintMarshal) (Hint, error) {
	image, err := sigma.Parse(hm.Image)
	if err != nil {
		return Hint{}, fmt.Errorf("%w: %v", ErrInvalidHint, err)
	}
	leaf, ok := image.(sigma.Leaf)
	if !ok {
		return Hint{}, fmt.Errorf("%w: image is not an atomic statement", ErrInvalidHint)
	}
	h := Hint{
		Kind:     hm.Kind,
		Image:    leaf,
		Position: hm.Position,
	}
	if hm.Commitment != nil {
		h.Commitment = &sigma.Commitment{}
		if err = h.Commitment.UnmarshalBinary(hm.Commitment); err != nil {
			return Hint{}, fmt.Errorf("%w: %v", ErrInvalidHint, err)
		}
	}
	if h.Randomness, err = readScalar(hm.Randomness); err != nil {
		return Hint{}, err
	}
	if h.Challenge, err = readScalar(hm.Challenge); err != nil {
		return Hint{}, err
	}
	if h.Response, err = readScalar(hm.Response); err != nil {
		return Hint{}, err
	}
	if err = h.Validate(); err != nil {
		return Hint{}, err
	}
	return h, nil
}

func marshalHints(hints []Hint) ([]hintMarshal, error) {
	out := make([]hintMarshal, 0, len(hints))
	for _, h := range hints {
		hm, err := toMarshal(h)
		if err != nil {
			return nil, err
		}
		out = append(out, hm)
	}
	return out, nil
}

func unmarshalHints(hms []hintMarshal) ([]Hint, error) {
	out := make([]Hint, 0, len(hms))
	for _, hm := range hms {
		h, err := fromMarshal(hm)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bag) MarshalBinary() ([]byte, error) {
	hms, err := marshalHints(b.Hints())
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(hms)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Bag) UnmarshalBinary(data []byte) error {
	var hms []hintMarshal
	if err := cbor.Unmarshal(data, &hms); err != nil {
		return fmt.Errorf("hint.Bag: %w", err)
	}
	hints, err := unmarshalHints(hms)
	if err != nil {
		return err
	}
	b.hints = hints
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *TransactionBag) MarshalBinary() ([]byte, error) {
	inputs := make([]inputMarshal, 0, len(t.bags))
	for _, i := range t.Indices() {
		hms, err := marshalHints(t.bags[i].Hints())
		if err != nil {
			return nil, fmt.Errorf("hint.TransactionBag: input %d: %w", i, err)
		}
		inputs = append(inputs, inputMarshal{Index: i, Hints: hms})
	}
	return cbor.Marshal(inputs)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *TransactionBag) UnmarshalBinary(data []byte) error {
	var inputs []inputMarshal
	if err := cbor.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("hint.TransactionBag: %w", err)
	}
	bags := make(map[int]*Bag, len(inputs))
	for _, in := range inputs {
		if in.Index < 0 {
			return fmt.Errorf("hint.TransactionBag: negative input index %d", in.Index)
		}
		if _, ok := bags[in.Index]; ok {
			return fmt.Errorf("hint.TransactionBag: duplicate input index %d", in.Index)
		}
		hints, err := unmarshalHints(in.Hints)
		if err != nil {
			return fmt.Errorf("hint.TransactionBag: input %d: %w", in.Index, err)
		}
		bags[in.Index] = NewBag(hints...)
	}
	t.bags = bags
	return nil
}
