// Package encrypted wraps a SecureStore and encrypts every value at rest.
//
// The key is derived with Argon2id from a local passphrase. The salt and a
// passphrase check value are kept in the underlying store next to the data.
package encrypted

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/identitykeeper/internal/client/storage"
	"github.com/iudanet/identitykeeper/internal/crypto"
)

const (
	keySalt  = "store_salt"
	keyCheck = "store_check"

	checkPlaintext = "identitykeeper"
)

// ErrWrongPassphrase indicates that the passphrase does not open this store
var ErrWrongPassphrase = errors.New("wrong store passphrase")

// Store encrypts values before delegating to the inner SecureStore
type Store struct {
	inner storage.SecureStore
	key   []byte
}

var _ storage.SecureStore = (*Store)(nil)

// New opens an encrypted view over inner.
// On first use it generates a salt and stores a check value; afterwards the
// check value is used to reject a wrong passphrase early.
func New(ctx context.Context, inner storage.SecureStore, passphrase string) (*Store, error) {
	salt, err := inner.Read(ctx, keySalt)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		salt, err = crypto.GenerateSalt()
		if err != nil {
			return nil, err
		}
		if err := inner.Write(ctx, keySalt, salt); err != nil {
			return nil, fmt.Errorf("failed to save store salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read store salt: %w", err)
	}

	key, err := crypto.DeriveStoreKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive store key: %w", err)
	}

	s := &Store{inner: inner, key: key}
	if err := s.verify(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) verify(ctx context.Context) error {
	_, err := s.inner.Read(ctx, keyCheck)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return s.Write(ctx, keyCheck, []byte(checkPlaintext))
	}
	if err != nil {
		return fmt.Errorf("failed to read store check: %w", err)
	}

	value, err := s.Read(ctx, keyCheck)
	if err != nil || string(value) != checkPlaintext {
		return ErrWrongPassphrase
	}
	return nil
}

// Read decrypts the value stored under key
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) == 0 {
		return sealed, nil
	}

	plaintext, err := crypto.Open(sealed, s.key, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %q: %w", key, err)
	}
	return plaintext, nil
}

// Write encrypts value and stores it under key
func (s *Store) Write(ctx context.Context, key string, value []byte) error {
	if len(value) == 0 {
		return s.inner.Write(ctx, key, value)
	}

	sealed, err := crypto.Seal(value, s.key, []byte(key))
	if err != nil {
		return fmt.Errorf("failed to encrypt %q: %w", key, err)
	}
	return s.inner.Write(ctx, key, sealed)
}

// Remove deletes key from the inner store
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
