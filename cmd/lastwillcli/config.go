package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the lastwillcli configuration file content.
type Config struct {
	// Node is the tendermint RPC address.
	Node string `toml:"node"`
	// ChainID is used when signing. Empty means ask the node.
	ChainID string `toml:"chain_id"`
	// KeyPath is the raw ed25519 private key used for signing.
	KeyPath string `toml:"key_path"`
	// Bech32Prefix is used when printing addresses.
	Bech32Prefix string `toml:"bech32_prefix"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(home string) *Config {
	return &Config{
		Node:         "http://localhost:26657",
		KeyPath:      filepath.Join(home, "lastwill.priv.key"),
		Bech32Prefix: "lw",
	}
}

// ReadConfig decodes a configuration. Fields missing from the input keep the
// values of defaults.
func ReadConfig(r io.Reader, defaults *Config) (*Config, error) {
	cfg := *defaults
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %s", err)
	}
	return &cfg, nil
}

// WriteConfig encodes cfg as TOML.
func WriteConfig(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("cannot encode config: %s", err)
	}
	return nil
}

// LoadConfig reads the configuration file at path. A missing file is not an
// error, defaults are returned instead.
func LoadConfig(path string, defaults *Config) (*Config, error) {
	fd, err := os.Open(path)
	if os.IsNotExist(err) {
		cfg := *defaults
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open config file: %s", err)
	}
	defer fd.Close()

	cfg, err := ReadConfig(fd, defaults)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %s", path, err)
	}
	return cfg, nil
}

// InitConfig writes cfg to path. An existing file is never overwritten.
func InitConfig(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %s", err)
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("cannot create config file: %s", err)
	}
	defer fd.Close()

	if err := WriteConfig(fd, cfg); err != nil {
		return err
	}
	return fd.Close()
}
