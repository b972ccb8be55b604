package bip32

import (
	"fmt"
	"strconv"
	"strings"
)

const hardenedBit = uint32(1 << 31)

// Path is a sequence of child indices; hardened indices have the top bit set.
type Path struct {
	indices []uint32
}

func newIndex(i uint32, hardened bool) (uint32, error) {
	if i >= hardenedBit {
		return 0, fmt.Errorf("index %d out of range", i)
	}
	if hardened {
		i |= hardenedBit
	}
	return i, nil
}

func parseIndex(s string) (uint32, error) {
	hardened := false
	if n := len(s); n > 0 && (s[n-1] == '\'' || s[n-1] == 'h') {
		hardened, s = true, s[:n-1]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return newIndex(uint32(v), hardened)
}

// PathFrom parses a derivation path such as "m/44'/429'/0'/0/0".
// The leading "m" is optional, and "h" is accepted as a hardened marker.
func PathFrom(spec string) (Path, error) {
	if spec == "m" || spec == "" {
		return Path{}, nil
	}
	spec = strings.TrimPrefix(spec, "m/")
	parts := strings.Split(spec, "/")
	indices := make([]uint32, len(parts))
	for i, part := range parts {
		index, err := parseIndex(part)
		if err != nil {
			return Path{}, fmt.Errorf("bip32: path component %d (%q): %w", i, part, err)
		}
		indices[i] = index
	}
	return Path{indices: indices}, nil
}

// Indices returns a copy of the raw child indices, hardened ones with the top bit set.
func (p Path) Indices() []uint32 {
	return append([]uint32(nil), p.indices...)
}

// String returns the path in "m/a/b'" form.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, i := range p.indices {
		sb.WriteString("/")
		sb.WriteString(strconv.FormatUint(uint64(i&^hardenedBit), 10))
		if i&hardenedBit != 0 {
			sb.WriteString("'")
		}
	}
	return sb.String()
}
