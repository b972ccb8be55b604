package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
)

var (
	// ErrInvalidSeed is returned for seeds outside 16 to 64 bytes.
	ErrInvalidSeed = errors.New("bip32: invalid seed length")
	// ErrInvalidChild is returned when a derivation step yields an invalid key.
	ErrInvalidChild = errors.New("bip32: derived key is invalid")
)

var masterKey = []byte("Bitcoin seed")

// hmacSplit returns HMAC-SHA512(key, data...) split into its left and right halves.
func hmacSplit(key []byte, data ...[]byte) ([]byte, []byte) {
	h := hmac.New(sha512.New, key)
	for _, d := range data {
		_, _ = h.Write(d)
	}
	out := h.Sum(nil)
	return out[:32], out[32:]
}

// parseIL interprets the left half of an HMAC output as a scalar, failing when it is not below q.
func parseIL(il []byte) (*curve.Scalar, error) {
	s := curve.NewScalar()
	if err := s.UnmarshalBinary(il); err != nil {
		return nil, ErrInvalidChild
	}
	return s, nil
}

// DeriveMaster computes the master private key and chain code of a seed.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki#master-key-generation
func DeriveMaster(seed []byte) (*curve.Scalar, []byte, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, nil, ErrInvalidSeed
	}
	il, chain := hmacSplit(masterKey, seed)
	key, err := parseIL(il)
	if err != nil || key.IsZero() {
		return nil, nil, ErrInvalidChild
	}
	return key, chain, nil
}

// DeriveScalar uses a public point, chaining value, and index, to derive a scalar and chaining value.
//
// This scalar should be added to the secret key.
//
// If an error is returned, this means that this index will not be useable, and another
// index should be used instead.
//
// This function will panic if an index for a hardened key is used.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki
func DeriveScalar(public *curve.Point, chaining []byte, i uint32) (*curve.Scalar, []byte, error) {
	if i>>31 != 0 {
		panic("DeriveScalar doesn't work with hardened keys.")
	}

	compressed, err := public.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("bip32.DeriveScalar: %w", err)
	}
	iBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(iBytes, i)

	il, chain := hmacSplit(chaining, compressed, iBytes)
	scalar, err := parseIL(il)
	if err != nil {
		return nil, nil, fmt.Errorf("bad index: %d", i)
	}

	return scalar, chain, nil
}

// DeriveChild derives the private child key at index i, hardened or not.
func DeriveChild(private *curve.Scalar, chaining []byte, i uint32) (*curve.Scalar, []byte, error) {
	var (
		tweak *curve.Scalar
		chain []byte
		err   error
	)
	if i>>31 != 0 {
		iBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(iBytes, i)
		var il []byte
		il, chain = hmacSplit(chaining, []byte{0}, private.Bytes(), iBytes)
		if tweak, err = parseIL(il); err != nil {
			return nil, nil, fmt.Errorf("bad index: %d", i)
		}
	} else {
		public := curve.NewIdentityPoint().ScalarBaseMult(private)
		if tweak, chain, err = DeriveScalar(public, chaining, i); err != nil {
			return nil, nil, err
		}
	}
	child := curve.NewScalar().Add(tweak, private)
	if child.IsZero() {
		return nil, nil, ErrInvalidChild
	}
	return child, chain, nil
}

// DerivePath follows every index of path starting from a private key and chain code.
func DerivePath(private *curve.Scalar, chaining []byte, path Path) (*curve.Scalar, []byte, error) {
	key, chain := private, chaining
	var err error
	for _, i := range path.indices {
		if key, chain, err = DeriveChild(key, chain, i); err != nil {
			return nil, nil, err
		}
	}
	return key, chain, nil
}
