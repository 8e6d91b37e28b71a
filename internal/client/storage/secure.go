package storage

import (
	"context"
	"fmt"

	"github.com/inclick-mx/inclick-cli/internal/cryptox"
)

// keyDerivationSalt is fixed; uniqueness comes from the per-device secret.
const keyDerivationSalt = "inclick-secure-store-v1"

// SecureStore encrypts values with a key derived from a per-device secret
// before handing them to the underlying Store. It is the analog of the
// mobile app's hardware-backed secure storage.
type SecureStore struct {
	inner Store
	key   []byte
}

// NewSecureStore derives the encryption key from deviceSecret and wraps
// inner.
func NewSecureStore(inner Store, deviceSecret []byte) *SecureStore {
	key := cryptox.DeriveKey(deviceSecret, []byte(keyDerivationSalt))
	return &SecureStore{inner: inner, key: key}
}

func (s *SecureStore) Get(ctx context.Context, key string) ([]byte, error) {
	ciphertext, err := s.inner.Get(ctx, key)
	if err != nil || ciphertext == nil {
		return nil, err
	}
	plaintext, err := cryptox.DecryptValue(ciphertext, s.key)
	if err != nil {
		return nil, fmt.Errorf("secure get %s: %w", key, err)
	}
	return plaintext, nil
}

func (s *SecureStore) Set(ctx context.Context, key string, value []byte) error {
	ciphertext, err := cryptox.EncryptValue(value, s.key)
	if err != nil {
		return fmt.Errorf("secure set %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, ciphertext)
}

func (s *SecureStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SecureStore) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
