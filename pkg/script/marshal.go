package script

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
)

type exprMarshal struct {
	Op     Op
	Prop   []byte        `cbor:",omitempty"`
	Height uint32        `cbor:",omitempty"`
	ID     uint8         `cbor:",omitempty"`
	Value  []byte        `cbor:",omitempty"`
	K      int           `cbor:",omitempty"`
	Items  []exprMarshal `cbor:",omitempty"`
}

type treeMarshal struct {
	Version uint8
	Root    exprMarshal
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// maxNestedLevels covers the tree header, then a map and an items array for
// every expression level up to maxDepth.
const maxNestedLevels = 2*maxDepth + 4

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{MaxNestedLevels: maxNestedLevels}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

func toMarshal(e Expr, depth int) (exprMarshal, error) {
	if depth > maxDepth {
		return exprMarshal{}, fmt.Errorf("%w: script too deep", ErrInvalidExpression)
	}
	if e == nil {
		return exprMarshal{}, fmt.Errorf("%w: nil expression", ErrInvalidExpression)
	}
	em := exprMarshal{Op: e.Op()}
	var items []Expr
	switch t := e.(type) {
	case SigmaProp:
		if err := sigma.Validate(t.Prop); err != nil {
			return exprMarshal{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		em.Prop = sigma.Bytes(t.Prop)
	case Bool:
	case HeightAtLeast:
		em.Height = t.Height
	case ExtensionEquals:
		em.ID, em.Value = t.ID, t.Value
	case And:
		items = t.Items
	case Or:
		items = t.Items
	case AtLeast:
		em.K, items = t.K, t.Items
	default:
		return exprMarshal{}, fmt.Errorf("%w: unknown expression %T", ErrInvalidExpression, e)
	}
	for _, item := range items {
		im, err := toMarshal(item, depth+1)
		if err != nil {
			return exprMarshal{}, err
		}
		em.Items = append(em.Items, im)
	}
	return em, nil
}

func fromMarshal(em exprMarshal, depth int) (Expr, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: script too deep", ErrInvalidExpression)
	}
	items := make([]Expr, len(em.Items))
	for i, im := range em.Items {
		item, err := fromMarshal(im, depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	switch em.Op {
	case OpSigmaProp:
		p, err := sigma.Parse(em.Prop)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		return SigmaProp{Prop: p}, nil
	case OpTrue:
		return True, nil
	case OpFalse:
		return False, nil
	case OpHeightAtLeast:
		return HeightAtLeast{Height: em.Height}, nil
	case OpExtensionEquals:
		return ExtensionEquals{ID: em.ID, Value: em.Value}, nil
	case OpAnd:
		return And{Items: items}, nil
	case OpOr:
		return Or{Items: items}, nil
	case OpAtLeast:
		return AtLeast{K: em.K, Items: items}, nil
	}
	return nil, fmt.Errorf("%w: unknown op %d", ErrInvalidExpression, em.Op)
}

// Bytes returns the deterministic cbor encoding of t.
func (t Tree) Bytes() ([]byte, error) {
	root, err := toMarshal(t.Root, 0)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(treeMarshal{Version: t.Version, Root: root})
}

// Parse decodes a script produced by Tree.Bytes.
func Parse(data []byte) (Tree, error) {
	var tm treeMarshal
	if err := decMode.Unmarshal(data, &tm); err != nil {
		return Tree{}, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	root, err := fromMarshal(tm.Root, 0)
	if err != nil {
		return Tree{}, err
	}
	return Tree{Version: tm.Version, Root: root}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t Tree) MarshalBinary() ([]byte, error) {
	return t.Bytes()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Tree) UnmarshalBinary(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
