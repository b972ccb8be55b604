// Package chain defines the boxes and transactions signed by this module.
package chain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/sigma-signer/pkg/digest"
	"github.com/taurusgroup/sigma-signer/pkg/script"
)

// ErrInvalidEncoding is returned when a box or transaction cannot be decoded.
var ErrInvalidEncoding = errors.New("chain: invalid encoding")

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Token is an amount of the token identified by ID.
type Token struct {
	ID     digest.Digest32
	Amount uint64
}

// Registers holds the additional registers of a box, keyed by register number.
type Registers map[uint8][]byte

// ContextExtension holds the variables a spender attaches to an input, keyed by id.
type ContextExtension map[uint8][]byte

// BoxCandidate is an output before its transaction is known.
type BoxCandidate struct {
	Value          uint64
	Script         script.Tree
	Tokens         []Token
	Registers      Registers
	CreationHeight uint32
}

// Box is an output of a transaction.
type Box struct {
	BoxCandidate
	TransactionID digest.Digest32
	Index         uint16
}

type entryMarshal struct {
	Key   uint8
	Value []byte
}

type boxMarshal struct {
	Value          uint64
	Script         []byte
	Tokens         []Token
	Registers      []entryMarshal
	CreationHeight uint32
	TransactionID  digest.Digest32
	Index          uint16
}

type candidateMarshal struct {
	Value          uint64
	Script         []byte
	Tokens         []Token
	Registers      []entryMarshal
	CreationHeight uint32
}

// entries lists a register or extension map in increasing key order.
func entries(m map[uint8][]byte) []entryMarshal {
	out := make([]entryMarshal, 0, len(m))
	for k, v := range m {
		out = append(out, entryMarshal{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func fromEntries(es []entryMarshal) (map[uint8][]byte, error) {
	if len(es) == 0 {
		return nil, nil
	}
	out := make(map[uint8][]byte, len(es))
	for _, e := range es {
		if _, ok := out[e.Key]; ok {
			return nil, fmt.Errorf("%w: duplicate key %d", ErrInvalidEncoding, e.Key)
		}
		out[e.Key] = e.Value
	}
	return out, nil
}

func (c *BoxCandidate) toMarshal() (candidateMarshal, error) {
	s, err := c.Script.Bytes()
	if err != nil {
		return candidateMarshal{}, err
	}
	return candidateMarshal{
		Value:          c.Value,
		Script:         s,
		Tokens:         c.Tokens,
		Registers:      entries(c.Registers),
		CreationHeight: c.CreationHeight,
	}, nil
}

func (cm candidateMarshal) candidate() (BoxCandidate, error) {
	s, err := script.Parse(cm.Script)
	if err != nil {
		return BoxCandidate{}, err
	}
	regs, err := fromEntries(cm.Registers)
	if err != nil {
		return BoxCandidate{}, err
	}
	return BoxCandidate{
		Value:          cm.Value,
		Script:         s,
		Tokens:         cm.Tokens,
		Registers:      regs,
		CreationHeight: cm.CreationHeight,
	}, nil
}

// Bytes returns the deterministic encoding of b.
func (b *Box) Bytes() ([]byte, error) {
	cm, err := b.BoxCandidate.toMarshal()
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(boxMarshal{
		Value:          cm.Value,
		Script:         cm.Script,
		Tokens:         cm.Tokens,
		Registers:      cm.Registers,
		CreationHeight: cm.CreationHeight,
		TransactionID:  b.TransactionID,
		Index:          b.Index,
	})
}

// ID returns the blake2b-256 hash of the encoding of b.
//
// A box whose script cannot be encoded has the zero id.
func (b *Box) ID() digest.Digest32 {
	data, err := b.Bytes()
	if err != nil {
		return digest.Zero()
	}
	return digest.Blake2b256(data)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Box) MarshalBinary() ([]byte, error) {
	return b.Bytes()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Box) UnmarshalBinary(data []byte) error {
	var bm boxMarshal
	if err := cbor.Unmarshal(data, &bm); err != nil {
		return fmt.Errorf("%w: box: %v", ErrInvalidEncoding, err)
	}
	c, err := candidateMarshal{
		Value:          bm.Value,
		Script:         bm.Script,
		Tokens:         bm.Tokens,
		Registers:      bm.Registers,
		CreationHeight: bm.CreationHeight,
	}.candidate()
	if err != nil {
		return err
	}
	*b = Box{BoxCandidate: c, TransactionID: bm.TransactionID, Index: bm.Index}
	return nil
}
