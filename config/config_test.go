package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Northroot-Labs/northroot/canonical"
	"github.com/Northroot-Labs/northroot/journal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "northroot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, canonical.ProfileV1ID, cfg.Profile)
	assert.Equal(t, journal.Strict, cfg.ReaderMode())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
journal: /var/lib/northroot/audit.nrj
mode: permissive
sync_after_append: true
keystore:
  backend: file
  dir: /var/lib/northroot/keys
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/northroot/audit.nrj", cfg.Journal)
	assert.Equal(t, journal.Permissive, cfg.ReaderMode())
	assert.True(t, cfg.SyncAfterAppend)
	assert.Equal(t, "file", cfg.Keystore.Backend)

	// Fields not present keep their defaults.
	assert.Equal(t, canonical.ProfileV1ID, cfg.Profile)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "jornal: typo.nrj\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty profile", mutate: func(c *Config) { c.Profile = "" }},
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "lenient" }},
		{name: "file keystore without dir", mutate: func(c *Config) { c.Keystore.Backend = "file" }},
		{name: "keyring keystore without service", mutate: func(c *Config) { c.Keystore.Backend = "keyring" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Keystore.Backend = "tpm" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
