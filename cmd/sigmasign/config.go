package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultLogLevel = "info"

// Config is read from the yaml file given with -config.
type Config struct {
	// Mnemonic is the BIP-39 phrase the signing key is derived from.
	Mnemonic string `yaml:"mnemonic"`
	// Passphrase is the optional BIP-39 passphrase.
	Passphrase string `yaml:"passphrase"`
	// Path is a BIP-32 derivation path such as m/44'/429'/0'/0/0.
	// If empty, the master key is used.
	Path     string `yaml:"path"`
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads and validates the configuration at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Mnemonic == "" {
		return cfg, errors.New("config: mnemonic is required")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	return cfg, nil
}
