package encrypted

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/identitykeeper/internal/client/storage"
	"github.com/iudanet/identitykeeper/internal/client/storage/memory"
)

func TestStore_EncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	s, err := New(ctx, inner, "local passphrase")
	require.NoError(t, err)
	assert.True(t, inner.Has(keySalt))
	assert.True(t, inner.Has(keyCheck))

	require.NoError(t, s.Write(ctx, storage.KeyDefaultUser, []byte("alice")))

	raw, err := inner.Read(ctx, storage.KeyDefaultUser)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice")

	got, err := s.Read(ctx, storage.KeyDefaultUser)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(got))
}

func TestStore_ReopenWithSamePassphrase(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	s, err := New(ctx, inner, "local passphrase")
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, storage.KeyAccounts, []byte(`{"alice":{}}`)))

	reopened, err := New(ctx, inner, "local passphrase")
	require.NoError(t, err)

	got, err := reopened.Read(ctx, storage.KeyAccounts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"alice":{}}`, string(got))
}

func TestStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	_, err := New(ctx, inner, "right passphrase")
	require.NoError(t, err)

	_, err = New(ctx, inner, "wrong passphrase")
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestStore_EmptyPassphrase(t *testing.T) {
	_, err := New(context.Background(), memory.New(), "")
	assert.ErrorContains(t, err, "passphrase cannot be empty")
}

func TestStore_ValueBoundToKey(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	s, err := New(ctx, inner, "local passphrase")
	require.NoError(t, err)
	require.NoError(t, s.Write(ctx, storage.KeyDefaultUser, []byte("alice")))

	// Переносим шифртекст под другой ключ напрямую во внутреннем хранилище
	raw, err := inner.Read(ctx, storage.KeyDefaultUser)
	require.NoError(t, err)
	require.NoError(t, inner.Write(ctx, storage.KeyDeviceID, raw))

	_, err = s.Read(ctx, storage.KeyDeviceID)
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestStore_MissingKeyAndRemove(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, memory.New(), "local passphrase")
	require.NoError(t, err)

	_, err = s.Read(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Write(ctx, "k", []byte("v")))
	require.NoError(t, s.Remove(ctx, "k"))
	_, err = s.Read(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}
