package sigma

import (
	"fmt"
	"strconv"
	"strings"
)

// Position locates a node in a proposition tree. The root is "0", and the
// i-th child of the node at p is at "p-i".
type Position []int

// Root returns the position of the root node.
func Root() Position {
	return Position{0}
}

// Child returns the position of the i-th child of p.
func (p Position) Child(i int) Position {
	child := make(Position, len(p)+1)
	copy(child, p)
	child[len(p)] = i
	return child
}

// String returns the dash separated form, such as "0-1-2".
func (p Position) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "-")
}

// Equal reports whether both positions designate the same node.
func (p Position) Equal(q Position) bool {
	return p.String() == q.String()
}

// ParsePosition reads the dash separated form of a position.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, "-")
	pos := make(Position, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("sigma: invalid position %q", s)
		}
		pos[i] = v
	}
	if pos[0] != 0 {
		return nil, fmt.Errorf("sigma: position %q does not start at the root", s)
	}
	return pos, nil
}
