package crypto

import "errors"

var (
	// ErrInvalidAlgorithm indicates an unknown or unsupported algorithm.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")

	// ErrInvalidKey indicates malformed key material.
	ErrInvalidKey = errors.New("invalid key data")

	// ErrInvalidKeyName indicates a key name that fails validation.
	ErrInvalidKeyName = errors.New("invalid key name")

	// ErrInvalidPassword indicates a wrong keystore password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrKeyNotFound indicates a key name absent from the store.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists indicates a key name already present in the store.
	ErrKeyExists = errors.New("key already exists")

	// ErrKeyStoreClosed indicates use of a keystore after Close.
	ErrKeyStoreClosed = errors.New("keystore is closed")

	// ErrListNotSupported indicates a backend that cannot enumerate keys.
	ErrListNotSupported = errors.New("listing keys is not supported by this backend")
)
