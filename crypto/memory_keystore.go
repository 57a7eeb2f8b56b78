package crypto

import "sync"

// MemoryKeyStore implements KeyStore with in-memory storage. Keys are held
// in plaintext, which suits tests and ephemeral use only.
type MemoryKeyStore struct {
	mu     sync.RWMutex
	keys   map[string]StoredKey
	closed bool
}

// NewMemoryKeyStore creates a new in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]StoredKey, 16)}
}

// Store saves a key to the store.
func (m *MemoryKeyStore) Store(name string, key StoredKey) error {
	if err := validateStoredKey(name, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	if _, exists := m.keys[name]; exists {
		return ErrKeyExists
	}

	// Store a copy to prevent external mutation.
	m.keys[name] = copyStoredKey(key)
	return nil
}

// Load retrieves a key. The returned key is a copy; callers should wipe
// the private bytes when done.
func (m *MemoryKeyStore) Load(name string) (StoredKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return StoredKey{}, ErrKeyStoreClosed
	}
	key, ok := m.keys[name]
	if !ok {
		return StoredKey{}, ErrKeyNotFound
	}
	return copyStoredKey(key), nil
}

// Delete removes a key, zeroing its material first.
func (m *MemoryKeyStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	key, ok := m.keys[name]
	if !ok {
		return ErrKeyNotFound
	}
	for i := range key.Private {
		key.Private[i] = 0
	}
	delete(m.keys, name)
	return nil
}

// List returns all key names.
func (m *MemoryKeyStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrKeyStoreClosed
	}
	names := make([]string, 0, len(m.keys))
	for name := range m.keys {
		names = append(names, name)
	}
	return names, nil
}

// Close zeroes all key material and marks the store closed.
func (m *MemoryKeyStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrKeyStoreClosed
	}
	for _, key := range m.keys {
		for i := range key.Private {
			key.Private[i] = 0
		}
	}
	m.keys = nil
	m.closed = true
	return nil
}
