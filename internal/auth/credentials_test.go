package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *HashedStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	store, err := NewHashedStore(map[string]string{"admin": string(hash)})
	require.NoError(t, err)
	return store
}

func TestHashedStore_Verify(t *testing.T) {
	store := newTestStore(t)
	testCases := []struct {
		name        string
		username    string
		password    string
		expectError error
	}{
		{name: "Success - valid credentials", username: "admin", password: "admin123"},
		{name: "Error - wrong password", username: "admin", password: "admin", expectError: ErrInvalidCredentials},
		{name: "Error - unknown user", username: "root", password: "admin123", expectError: ErrInvalidCredentials},
		{name: "Error - empty input", expectError: ErrInvalidCredentials},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			err := store.Verify(context.Background(), tc.username, tc.password)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewHashedStore_InvalidHash(t *testing.T) {
	// when
	store, err := NewHashedStore(map[string]string{"admin": "admin123"})
	// then
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestHashPassword(t *testing.T) {
	// when
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	store, err := NewHashedStore(map[string]string{"ops": hash})
	require.NoError(t, err)
	// then
	assert.NoError(t, store.Verify(context.Background(), "ops", "s3cret"))
	assert.Equal(t, 1, store.Len())

	_, err = HashPassword("")
	assert.Error(t, err)
}
