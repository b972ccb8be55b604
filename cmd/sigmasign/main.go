// Command sigmasign derives a key from a mnemonic, and signs and verifies
// messages with it.
//
// Usage:
//
//	sigmasign [-config file] [-loglevel level] pubkey
//	sigmasign [-config file] [-loglevel level] sign-message -msg <hex>
//	sigmasign verify-message -pk <hex> -msg <hex> -proof <hex>
//	sigmasign digest <hex>
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/taurusgroup/sigma-signer/pkg/chain"
	"github.com/taurusgroup/sigma-signer/pkg/digest"
	"github.com/taurusgroup/sigma-signer/pkg/math/curve"
	"github.com/taurusgroup/sigma-signer/pkg/secret"
	"github.com/taurusgroup/sigma-signer/pkg/sigma"
	"github.com/taurusgroup/sigma-signer/pkg/wallet"
)

var errInvalidSignature = errors.New("invalid signature")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sigmasign", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "sigmasign.yaml", "Path to the yaml config file")
	logLevel := fs.String("loglevel", "", "Logging level {trace, debug, info, warn, error, critical, off}")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("missing command: pubkey, sign-message, verify-message or digest")
	}

	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "verify-message":
		return verifyMessage(cmdArgs, stdout, stderr)
	case "digest":
		return printDigest(cmdArgs, stdout)
	case "pubkey", "sign-message":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log, err := setupLogging(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}

	key, err := loadKey(cfg)
	if err != nil {
		return err
	}
	log.Debugf("Loaded key from config %s", *configPath)

	if cmd == "pubkey" {
		pk, err := key.PublicImage().H.MarshalBinary()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, hex.EncodeToString(pk))
		return nil
	}
	return signMessage(key, cmdArgs, stdout, stderr, log)
}

func setupLogging(level string, w io.Writer) (slog.Logger, error) {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	backend := slog.NewBackend(w)
	log := backend.Logger("SGNR")
	log.SetLevel(lvl)
	walletLog := backend.Logger("WLLT")
	walletLog.SetLevel(lvl)
	wallet.UseLogger(walletLog)
	return log, nil
}

func loadKey(cfg Config) (*secret.DlogSecret, error) {
	if cfg.Path == "" {
		return secret.MasterKey(cfg.Mnemonic, cfg.Passphrase)
	}
	return secret.DeriveKey(cfg.Mnemonic, cfg.Passphrase, cfg.Path)
}

func signMessage(key *secret.DlogSecret, args []string, stdout, stderr io.Writer, log slog.Logger) error {
	fs := flag.NewFlagSet("sign-message", flag.ContinueOnError)
	fs.SetOutput(stderr)
	msgHex := fs.String("msg", "", "Hex encoded message to sign")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := hex.DecodeString(*msgHex)
	if err != nil {
		return fmt.Errorf("invalid -msg: %w", err)
	}

	w := wallet.FromSecrets([]secret.Secret{key})
	proof, err := w.SignMessageUsingP2PK(&chain.P2PKAddress{PublicKey: key.PublicImage().H}, msg)
	if err != nil {
		return err
	}
	log.Infof("Signed %d byte message", len(msg))
	fmt.Fprintln(stdout, hex.EncodeToString(proof))
	return nil
}

func verifyMessage(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("verify-message", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pkHex := fs.String("pk", "", "Hex encoded compressed public key")
	msgHex := fs.String("msg", "", "Hex encoded message")
	proofHex := fs.String("proof", "", "Hex encoded signature")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pkBytes, err := hex.DecodeString(*pkHex)
	if err != nil {
		return fmt.Errorf("invalid -pk: %w", err)
	}
	pk := curve.NewIdentityPoint()
	if err := pk.UnmarshalBinary(pkBytes); err != nil {
		return fmt.Errorf("invalid -pk: %w", err)
	}
	msg, err := hex.DecodeString(*msgHex)
	if err != nil {
		return fmt.Errorf("invalid -msg: %w", err)
	}
	proof, err := hex.DecodeString(*proofHex)
	if err != nil {
		return fmt.Errorf("invalid -proof: %w", err)
	}

	if !wallet.VerifyMessage(sigma.NewProveDlog(pk), msg, proof) {
		return errInvalidSignature
	}
	fmt.Fprintln(stdout, "valid")
	return nil
}

func printDigest(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: digest <hex>")
	}
	data, err := hex.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	fmt.Fprintln(stdout, digest.Blake2b256(data))
	return nil
}
