package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSeal(t *testing.T) {
	validKey := testKey(t)

	tests := []struct {
		name      string
		errMsg    string
		plaintext []byte
		key       []byte
		wantErr   bool
	}{
		{
			name:      "successful encryption",
			plaintext: []byte(`{"alice":{"accessToken":"a1"}}`),
			key:       validKey,
		},
		{
			name:      "empty plaintext",
			plaintext: []byte{},
			key:       validKey,
			wantErr:   true,
			errMsg:    "plaintext cannot be empty",
		},
		{
			name:      "invalid key length - too short",
			plaintext: []byte("test"),
			key:       make([]byte, 16),
			wantErr:   true,
			errMsg:    "encryption key must be 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Seal(tt.plaintext, tt.key, []byte("aad"))

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, sealed)
				return
			}

			require.NoError(t, err)
			// nonce + ciphertext + auth_tag
			assert.Len(t, sealed, NonceSize+len(tt.plaintext)+16)
			assert.NotEqual(t, tt.plaintext, sealed[NonceSize:NonceSize+len(tt.plaintext)])
		})
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("alice")

	sealed, err := Seal(plaintext, key, []byte("default_user"))
	require.NoError(t, err)

	opened, err := Open(sealed, key, []byte("default_user"))
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	// Одинаковый plaintext дает разный шифртекст (случайный nonce)
	sealed2, err := Seal(plaintext, key, []byte("default_user"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, sealed2)
}

func TestOpen_Failures(t *testing.T) {
	key := testKey(t)
	sealed, err := Seal([]byte("secret"), key, []byte("user_infos"))
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		_, err := Open(sealed, testKey(t), []byte("user_infos"))
		assert.ErrorContains(t, err, "authentication failed")
	})

	t.Run("wrong aad", func(t *testing.T) {
		_, err := Open(sealed, key, []byte("default_user"))
		assert.ErrorContains(t, err, "authentication failed")
	})

	t.Run("tampered", func(t *testing.T) {
		tampered := append([]byte(nil), sealed...)
		tampered[len(tampered)-1] ^= 0xFF
		_, err := Open(tampered, key, []byte("user_infos"))
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := Open([]byte{1, 2, 3}, key, nil)
		assert.ErrorContains(t, err, "too short")
	})
}
