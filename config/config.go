// Package config loads the YAML configuration used by the northroot CLI
// and other hosts. The trust kernel itself reads no configuration, no
// environment, and no files beyond the journal path it is handed; this
// package exists purely at the edge.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/journal"
)

// Reader modes accepted in configuration files.
const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

var (
	// ErrInvalidConfig indicates configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// KeystoreConfig selects where attestation keys live.
type KeystoreConfig struct {
	// Backend is "memory", "file" or "keyring". Empty disables signing.
	Backend string `yaml:"backend"`

	// Dir is the keystore directory for the file backend.
	Dir string `yaml:"dir"`

	// Service is the service name for the keyring backend.
	Service string `yaml:"service"`
}

// Config is the tool configuration.
type Config struct {
	// Journal is the default journal path.
	Journal string `yaml:"journal"`

	// Profile is the canonicalization profile id.
	Profile string `yaml:"profile"`

	// Mode is the reader mode, "strict" or "permissive".
	Mode string `yaml:"mode"`

	// SyncAfterAppend makes every append durable before returning.
	SyncAfterAppend bool `yaml:"sync_after_append"`

	// Keystore selects the attestation keystore backend.
	Keystore KeystoreConfig `yaml:"keystore"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Profile: canonical.ProfileV1ID,
		Mode:    ModeStrict,
	}
}

// Load reads and validates a YAML configuration file. Unknown fields are
// rejected so typos fail loudly instead of silently using defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and cross-field constraints.
func (c *Config) Validate() error {
	if c.Profile == "" {
		return fmt.Errorf("%w: profile must not be empty", ErrInvalidConfig)
	}
	switch c.Mode {
	case ModeStrict, ModePermissive:
	default:
		return fmt.Errorf("%w: mode %q (want %q or %q)", ErrInvalidConfig, c.Mode, ModeStrict, ModePermissive)
	}
	switch c.Keystore.Backend {
	case "", "memory":
	case "file":
		if c.Keystore.Dir == "" {
			return fmt.Errorf("%w: file keystore requires dir", ErrInvalidConfig)
		}
	case "keyring":
		if c.Keystore.Service == "" {
			return fmt.Errorf("%w: keyring keystore requires service", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: keystore backend %q", ErrInvalidConfig, c.Keystore.Backend)
	}
	return nil
}

// ReaderMode converts the configured mode string to a journal mode.
func (c *Config) ReaderMode() journal.Mode {
	if c.Mode == ModePermissive {
		return journal.Permissive
	}
	return journal.Strict
}
