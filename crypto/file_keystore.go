package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32 // AES-256 requires a 32-byte key
	pbkdf2SaltLen    = 16

	aesGCMNonceLen = 12 // 96-bit nonce, the recommended size for GCM

	keyFileExt = ".key"
)

// fileEnvelope is the on-disk form of one encrypted key.
type fileEnvelope struct {
	Algorithm  Algorithm `json:"algorithm"`
	Salt       string    `json:"salt"`
	Nonce      string    `json:"nonce"`
	Ciphertext string    `json:"ciphertext"`
}

// FileKeyStore implements KeyStore over a directory of encrypted key
// files. Each key is sealed with AES-256-GCM under a key derived from the
// store password via PBKDF2-SHA256 with a per-key salt.
type FileKeyStore struct {
	mu       sync.Mutex
	dir      string
	password []byte
	closed   bool
}

// NewFileKeyStore opens (creating if needed) a keystore directory. A
// directory it creates is restricted to the owning user; the permissions
// of an existing directory are left as they are.
func NewFileKeyStore(dir string, password []byte) (*FileKeyStore, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidPassword)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create keystore directory: %w", err)
	}
	pw := make([]byte, len(password))
	copy(pw, password)
	return &FileKeyStore{dir: dir, password: pw}, nil
}

// Store saves an encrypted key file.
func (fs *FileKeyStore) Store(name string, key StoredKey) error {
	if err := validateStoredKey(name, key); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrKeyStoreClosed
	}

	path := fs.path(name)
	if _, err := os.Stat(path); err == nil {
		return ErrKeyExists
	}

	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, aesGCMNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	derived := pbkdf2.Key(fs.password, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	gcm, err := newGCM(derived)
	if err != nil {
		return err
	}
	ciphertext := gcm.Seal(nil, nonce, key.Private, []byte(name))

	envelope := fileEnvelope{
		Algorithm:  key.Algorithm,
		Salt:       hex.EncodeToString(salt),
		Nonce:      hex.EncodeToString(nonce),
		Ciphertext: hex.EncodeToString(ciphertext),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode key envelope: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Load decrypts a key file. A wrong password surfaces as
// ErrInvalidPassword, not as a generic decryption failure.
func (fs *FileKeyStore) Load(name string) (StoredKey, error) {
	if err := ValidateKeyName(name); err != nil {
		return StoredKey{}, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return StoredKey{}, ErrKeyStoreClosed
	}

	data, err := os.ReadFile(fs.path(name))
	if os.IsNotExist(err) {
		return StoredKey{}, ErrKeyNotFound
	}
	if err != nil {
		return StoredKey{}, fmt.Errorf("read key file: %w", err)
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return StoredKey{}, fmt.Errorf("decode key envelope: %w", err)
	}
	salt, err := hex.DecodeString(envelope.Salt)
	if err != nil {
		return StoredKey{}, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := hex.DecodeString(envelope.Nonce)
	if err != nil {
		return StoredKey{}, fmt.Errorf("decode nonce: %w", err)
	}
	ciphertext, err := hex.DecodeString(envelope.Ciphertext)
	if err != nil {
		return StoredKey{}, fmt.Errorf("decode ciphertext: %w", err)
	}

	derived := pbkdf2.Key(fs.password, salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	gcm, err := newGCM(derived)
	if err != nil {
		return StoredKey{}, err
	}
	private, err := gcm.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return StoredKey{}, ErrInvalidPassword
	}
	return StoredKey{Name: name, Algorithm: envelope.Algorithm, Private: private}, nil
}

// Delete removes a key file.
func (fs *FileKeyStore) Delete(name string) error {
	if err := ValidateKeyName(name); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrKeyStoreClosed
	}

	err := os.Remove(fs.path(name))
	if os.IsNotExist(err) {
		return ErrKeyNotFound
	}
	return err
}

// List returns the names of all stored keys.
func (fs *FileKeyStore) List() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil, ErrKeyStoreClosed
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keyFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), keyFileExt))
	}
	return names, nil
}

// Close wipes the store password and marks the store closed.
func (fs *FileKeyStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrKeyStoreClosed
	}
	for i := range fs.password {
		fs.password[i] = 0
	}
	fs.closed = true
	return nil
}

func (fs *FileKeyStore) path(name string) string {
	return filepath.Join(fs.dir, name+keyFileExt)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init GCM: %w", err)
	}
	return gcm, nil
}
