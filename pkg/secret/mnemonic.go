package secret

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/taurusgroup/sigma-signer/internal/bip32"
	"github.com/taurusgroup/sigma-signer/internal/params"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// ErrKeyDerivation is returned when no key can be derived from a phrase or path.
var ErrKeyDerivation = errors.New("secret: key derivation failed")

// Seed computes the 64 byte BIP-39 seed of a mnemonic phrase and passphrase.
func Seed(phrase, passphrase string) []byte {
	password := norm.NFKD.String(phrase)
	salt := "mnemonic" + norm.NFKD.String(passphrase)
	return pbkdf2.Key([]byte(password), []byte(salt), params.MnemonicIterations, params.BytesSeed, sha512.New)
}

func checkWordCount(phrase string) error {
	switch n := len(strings.Fields(phrase)); n {
	case 12, 15, 18, 21, 24:
		return nil
	default:
		return fmt.Errorf("%w: phrase has %d words", ErrKeyDerivation, n)
	}
}

// MasterKey derives the BIP-32 master secret of a mnemonic phrase.
func MasterKey(phrase, passphrase string) (*DlogSecret, error) {
	return DeriveKey(phrase, passphrase, "m")
}

// DeriveKey derives the secret at path, such as "m/44'/429'/0'/0/0", from the
// BIP-32 master key of a mnemonic phrase.
func DeriveKey(phrase, passphrase, path string) (*DlogSecret, error) {
	if err := checkWordCount(phrase); err != nil {
		return nil, err
	}
	p, err := bip32.PathFrom(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	master, chain, err := bip32.DeriveMaster(Seed(phrase, passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	x, _, err := bip32.DerivePath(master, chain, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	secret, err := NewDlogSecret(x)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return secret, nil
}

// FromMnemonic returns a store holding the master secret of a mnemonic phrase.
func FromMnemonic(phrase, passphrase string) (*Store, error) {
	secret, err := MasterKey(phrase, passphrase)
	if err != nil {
		return nil, err
	}
	return NewStore(secret), nil
}

// FromMnemonicPath returns a store holding the secret at path of a mnemonic phrase.
func FromMnemonicPath(phrase, passphrase, path string) (*Store, error) {
	secret, err := DeriveKey(phrase, passphrase, path)
	if err != nil {
		return nil, err
	}
	return NewStore(secret), nil
}
