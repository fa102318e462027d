package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/client/storage/memory"
	"github.com/iudanet/identitykeeper/internal/crypto"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

const testSecret = "shared-secret"

// fixedNow момент времени для тестов, в миллисекундах 1_700_000_000_000
var fixedNow = time.UnixMilli(1_700_000_000_000)

func newIdentityMock() *IdentityAPIMock {
	return &IdentityAPIMock{
		ApplyDefaultHeadersFunc: func(h http.Header) {
			h.Set(pkgapi.HeaderPoweredBy, "test")
		},
		LoginFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
			return &pkgapi.TokenResponse{
				AccessToken:  "a-" + req.UserSelectBy,
				RefreshToken: "r-" + req.UserSelectBy,
				ExpiresAt:    fixedNow.UnixMilli() + 60_000,
				Profile:      &pkgapi.UserProfile{UserID: "id-" + req.UserSelectBy, UserName: req.UserSelectBy},
			}, nil
		},
		AuthenticateFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
			return &pkgapi.TokenResponse{AccessToken: "auth-a", RefreshToken: "auth-r", ExpiresAt: 1}, nil
		},
		RefreshTokensFunc: func(ctx context.Context, tokens models.TokenTriple) (*api.RefreshResult, error) {
			return signedRefresh("a-next", "r-next", fixedNow.UnixMilli()+120_000), nil
		},
	}
}

// signedRefresh ответ refresh с корректным revision checksum
func signedRefresh(access, refresh string, expiresAt int64) *api.RefreshResult {
	next := models.TokenTriple{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}
	return &api.RefreshResult{
		Tokens:   &pkgapi.TokenResponse{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt},
		Revision: crypto.RevisionChecksum(next, testSecret),
	}
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, identity IdentityAPI, opts ...Option) (*Manager, *memory.Store, *testClock) {
	t.Helper()
	store := memory.New()
	clock := &testClock{now: fixedNow}
	opts = append([]Option{WithClock(clock.Now), WithRevisionSecret(testSecret)}, opts...)
	m, err := NewManager(context.Background(), identity, store, opts...)
	require.NoError(t, err)
	return m, store, clock
}

func loginRequest(id string) pkgapi.LoginRequest {
	return pkgapi.LoginRequest{UserSelectBy: id, Password: "pw", Language: "en"}
}

// seedAccount сохраняет аккаунт напрямую в репозиторий
func seedAccount(t *testing.T, m *Manager, id string, tokens models.TokenTriple) {
	t.Helper()
	info := &models.UserAccountInfo{
		UserSelectBy: id,
		Profile:      &pkgapi.UserProfile{UserID: "id-" + id, UserName: id},
	}
	info.SetTokens(tokens)
	require.NoError(t, m.Repository().AddAccount(context.Background(), id, info, true))
}
