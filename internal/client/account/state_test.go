package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/identitykeeper/internal/models"
)

func receive(t *testing.T, ch <-chan models.SessionState) models.SessionState {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "channel closed")
		return s
	case <-time.After(time.Second):
		t.Fatal("no state received")
		return models.SessionState{}
	}
}

func assertNoState(t *testing.T, ch <-chan models.SessionState) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected state: %+v", s)
	default:
	}
}

func TestStateHub_CurrentState(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	state, err := hub.CurrentState(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsLoggedIn)
	assert.Equal(t, int64(-1), state.ExpiresAt)
	assert.Empty(t, state.AccessToken)

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))

	state, err = hub.CurrentState(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsLoggedIn)
	assert.Equal(t, "alice", state.UserSelectBy)
	assert.Equal(t, "a1", state.AccessToken)
}

func TestStateHub_NoReplayBeforeFirstPublish(t *testing.T) {
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	assertNoState(t, ch)
	_, ok := hub.Latest()
	assert.False(t, ok)
}

func TestStateHub_PublishesOnMutation(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))
	s := receive(t, ch)
	assert.True(t, s.IsLoggedIn)
	assert.Equal(t, "alice", s.UserSelectBy)

	require.NoError(t, repo.RemoveDefaultUser(ctx, true))
	s = receive(t, ch)
	assert.False(t, s.IsLoggedIn)
	assert.Equal(t, int64(-1), s.ExpiresAt)
}

func TestStateHub_LateSubscriberGetsLatest(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))
	require.NoError(t, repo.AddAccount(ctx, "bob", newAccount("bob", "b1", "rb", 1000), true))

	ch, cancel := hub.Subscribe()
	defer cancel()

	s := receive(t, ch)
	assert.Equal(t, "bob", s.UserSelectBy)
	assertNoState(t, ch)
}

func TestStateHub_SlowSubscriberSeesLatestOnly(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))
	require.NoError(t, repo.AddAccount(ctx, "bob", newAccount("bob", "b1", "rb", 1000), true))
	require.NoError(t, repo.AddAccount(ctx, "carol", newAccount("carol", "c1", "rc", 1000), true))

	s := receive(t, ch)
	assert.Equal(t, "carol", s.UserSelectBy)
	assertNoState(t, ch)
}

func TestStateHub_RenewStateOverride(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))

	require.NoError(t, hub.RenewState(ctx, func(s *models.SessionState) {
		s.AccessToken = "override"
	}))

	latest, ok := hub.Latest()
	require.True(t, ok)
	assert.Equal(t, "override", latest.AccessToken)

	// переопределение не попадает в хранилище
	stored, err := repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a1", stored.AccessToken)
}

func TestStateHub_CancelClosesChannel(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// публикация после отписки не паникует
	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))
}

func TestStateHub_SubscriberCopiesAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo, _ := createTestRepository(t)
	hub := NewStateHub(repo, nil)

	require.NoError(t, repo.AddAccount(ctx, "alice", newAccount("alice", "a1", "r1", 1000), true))

	ch, cancel := hub.Subscribe()
	defer cancel()
	s := receive(t, ch)
	require.NotNil(t, s.Profile)
	s.Profile.UserName = "mutated"

	latest, ok := hub.Latest()
	require.True(t, ok)
	assert.Equal(t, "alice", latest.Profile.UserName)
}
