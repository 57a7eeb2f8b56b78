package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// keyringEnvelope is the serialized form stored in the platform keyring.
// The OS credential store provides the at-rest protection, so the envelope
// itself is plain.
type keyringEnvelope struct {
	Algorithm Algorithm `json:"algorithm"`
	Private   []byte    `json:"private"`
}

// KeyringStore implements KeyStore on the operating system keyring
// (Keychain, Secret Service, Windows Credential Manager) via
// zalando/go-keyring. Platform keyrings cannot enumerate entries, so List
// is unsupported.
type KeyringStore struct {
	mu      sync.Mutex
	service string
	closed  bool
}

// NewKeyringStore creates a store scoped to a service name.
func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("%w: service name cannot be empty", ErrInvalidKeyName)
	}
	return &KeyringStore{service: service}, nil
}

// Store saves a key under the service/name pair.
func (ks *KeyringStore) Store(name string, key StoredKey) error {
	if err := validateStoredKey(name, key); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return ErrKeyStoreClosed
	}

	if _, err := keyring.Get(ks.service, name); err == nil {
		return ErrKeyExists
	}

	data, err := json.Marshal(keyringEnvelope{Algorithm: key.Algorithm, Private: key.Private})
	if err != nil {
		return fmt.Errorf("encode keyring envelope: %w", err)
	}
	if err := keyring.Set(ks.service, name, base64.StdEncoding.EncodeToString(data)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// Load retrieves a key by name.
func (ks *KeyringStore) Load(name string) (StoredKey, error) {
	if err := ValidateKeyName(name); err != nil {
		return StoredKey{}, err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return StoredKey{}, ErrKeyStoreClosed
	}

	encoded, err := keyring.Get(ks.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return StoredKey{}, ErrKeyNotFound
	}
	if err != nil {
		return StoredKey{}, fmt.Errorf("keyring get: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return StoredKey{}, fmt.Errorf("decode keyring entry: %w", err)
	}
	var envelope keyringEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return StoredKey{}, fmt.Errorf("decode keyring envelope: %w", err)
	}
	return StoredKey{Name: name, Algorithm: envelope.Algorithm, Private: envelope.Private}, nil
}

// Delete removes a key by name.
func (ks *KeyringStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return ErrKeyStoreClosed
	}

	err := keyring.Delete(ks.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// List is not supported: platform keyrings cannot enumerate entries.
func (ks *KeyringStore) List() ([]string, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return nil, ErrKeyStoreClosed
	}
	return nil, ErrListNotSupported
}

// Close marks the store closed. Keyring entries live in the OS store and
// survive the process.
func (ks *KeyringStore) Close() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if ks.closed {
		return ErrKeyStoreClosed
	}
	ks.closed = true
	return nil
}
