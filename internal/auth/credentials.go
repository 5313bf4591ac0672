// Package auth verifies operator credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier checks a username and password pair.
type CredentialVerifier interface {
	// Verify returns ErrInvalidCredentials if the pair does not match.
	Verify(ctx context.Context, username, password string) error
}

// HashedStore verifies passwords against bcrypt hashes.
type HashedStore struct {
	hashes map[string][]byte
}

var _ CredentialVerifier = (*HashedStore)(nil)

// unknown users are compared against this hash so that they take as long as known ones
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("stockguard"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// NewHashedStore creates a store from username -> bcrypt hash pairs.
func NewHashedStore(users map[string]string) (*HashedStore, error) {
	hashes := make(map[string][]byte, len(users))
	for name, hash := range users {
		if name == "" {
			return nil, errors.New("user name cannot be empty")
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", name, err)
		}
		hashes[name] = []byte(hash)
	}
	return &HashedStore{hashes: hashes}, nil
}

func (s *HashedStore) Verify(_ context.Context, username, password string) error {
	hash, ok := s.hashes[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to verify password of %q: %w", username, err)
	}
	return nil
}

// Len returns the number of configured users.
func (s *HashedStore) Len() int {
	return len(s.hashes)
}

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
