package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/crypto"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

// newResourceServer отвечает 200 только на токен a-next или a-valid, остальным 401
func newResourceServer(t *testing.T, seen *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get(pkgapi.HeaderAuthorization) {
		case "Bearer a-next", "Bearer a-valid":
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write([]byte("ok:" + string(body)))
		default:
			if seen != nil {
				seen.Add(1)
			}
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestTransport_AttachesTokenAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a-valid", r.Header.Get(pkgapi.HeaderAuthorization))
		assert.Equal(t, "test", r.Header.Get(pkgapi.HeaderPoweredBy))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	identity := newIdentityMock()
	m, _, _ := newTestManager(t, identity)
	seedAccount(t, m, "alice", models.TokenTriple{AccessToken: "a-valid", RefreshToken: "r", ExpiresAt: fixedNow.UnixMilli() + 1000})

	req, err := http.NewRequest(http.MethodGet, server.URL+"/profile", nil)
	require.NoError(t, err)

	resp, err := m.HTTPClient().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// исходный запрос не изменен
	assert.Empty(t, req.Header.Get(pkgapi.HeaderAuthorization))
	assert.Empty(t, identity.RefreshTokensCalls())
}

func TestTransport_RefreshesExpiredTokenAndReplays(t *testing.T) {
	server := newResourceServer(t, nil)
	identity := newIdentityMock()
	m, _, _ := newTestManager(t, identity)
	seedAccount(t, m, "alice", expiredTokens)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/orders", strings.NewReader(`{"id":1}`))
	require.NoError(t, err)

	resp, err := m.HTTPClient().Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// тело запроса повторено
	assert.Equal(t, `ok:{"id":1}`, readBody(t, resp))
	assert.Len(t, identity.RefreshTokensCalls(), 1)

	tokens, err := m.DefaultUserTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a-next", tokens.AccessToken)
}

func TestTransport_UnauthorizedButNotExpired(t *testing.T) {
	server := newResourceServer(t, nil)
	identity := newIdentityMock()
	m, _, _ := newTestManager(t, identity)
	seedAccount(t, m, "alice", models.TokenTriple{AccessToken: "a-revoked", RefreshToken: "r", ExpiresAt: fixedNow.UnixMilli() + 60_000})

	resp, err := m.HTTPClient().Get(server.URL + "/orders")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, identity.RefreshTokensCalls())
}

func TestTransport_NotLoggedInPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(pkgapi.HeaderAuthorization))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	identity := newIdentityMock()
	m, _, _ := newTestManager(t, identity)

	resp, err := m.HTTPClient().Get(server.URL + "/orders")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, identity.RefreshTokensCalls())
}

func TestTransport_ConcurrentRequestsRefreshOnce(t *testing.T) {
	const n = 8

	var unauthorized atomic.Int32
	server := newResourceServer(t, &unauthorized)

	var refreshCalls atomic.Int32
	identity := newIdentityMock()
	identity.RefreshTokensFunc = func(ctx context.Context, tokens models.TokenTriple) (*api.RefreshResult, error) {
		refreshCalls.Add(1)
		// ждем, пока все запросы получат 401
		deadline := time.Now().Add(time.Second)
		for unauthorized.Load() < n && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		return signedRefresh("a-next", "r-next", fixedNow.UnixMilli()+60_000), nil
	}
	m, _, _ := newTestManager(t, identity)
	seedAccount(t, m, "alice", expiredTokens)

	client := m.HTTPClient()
	statuses := make([]int, n)
	bodies := make([]string, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, server.URL+"/orders", strings.NewReader(strconv.Itoa(i)))
			if !assert.NoError(t, err) {
				return
			}
			resp, err := client.Do(req)
			if !assert.NoError(t, err) {
				return
			}
			defer func() {
				_ = resp.Body.Close()
			}()
			b, _ := io.ReadAll(resp.Body)
			statuses[i] = resp.StatusCode
			bodies[i] = string(b)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(n), unauthorized.Load())
	for i := 0; i < n; i++ {
		assert.Equal(t, http.StatusOK, statuses[i])
		assert.Equal(t, "ok:"+strconv.Itoa(i), bodies[i])
	}
}

func TestTransport_RefreshFailureIsReturned(t *testing.T) {
	server := newResourceServer(t, nil)
	identity := newIdentityMock()
	identity.RefreshTokensFunc = func(ctx context.Context, tokens models.TokenTriple) (*api.RefreshResult, error) {
		return nil, &api.Error{StatusCode: http.StatusUnauthorized, Message: "refresh expired"}
	}
	m, _, _ := newTestManager(t, identity)
	seedAccount(t, m, "alice", expiredTokens)

	resp, err := m.HTTPClient().Get(server.URL + "/orders")
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshRejected)

	loggedIn, err := m.IsLoggedIn(context.Background())
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestTransport_HeaderRotation(t *testing.T) {
	next := models.TokenTriple{AccessToken: "a-rot", RefreshToken: "r-rot", ExpiresAt: fixedNow.UnixMilli() + 90_000}

	tests := []struct {
		name         string
		revision     string
		wantLoggedIn bool
		wantTokens   models.TokenTriple
	}{
		{name: "valid checksum applied", revision: crypto.RevisionChecksum(next, testSecret), wantLoggedIn: true, wantTokens: next},
		{name: "invalid checksum logs out", revision: "forged", wantLoggedIn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(pkgapi.HeaderAuthorization, pkgapi.BearerValue(next.AccessToken))
				w.Header().Set(pkgapi.HeaderRefreshToken, next.RefreshToken)
				w.Header().Set(pkgapi.HeaderExpiresAt, strconv.FormatInt(next.ExpiresAt, 10))
				w.Header().Set(pkgapi.HeaderRevisionChecksum, tt.revision)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			m, _, _ := newTestManager(t, newIdentityMock())
			seedAccount(t, m, "alice", models.TokenTriple{AccessToken: "a-valid", RefreshToken: "r", ExpiresAt: fixedNow.UnixMilli() + 1000})

			resp, err := m.HTTPClient().Get(server.URL + "/anything")
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			loggedIn, err := m.IsLoggedIn(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantLoggedIn, loggedIn)
			if tt.wantLoggedIn {
				tokens, err := m.DefaultUserTokens(context.Background())
				require.NoError(t, err)
				assert.Equal(t, tt.wantTokens, tokens)
			}
		})
	}
}
