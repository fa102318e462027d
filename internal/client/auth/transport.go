package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/identitykeeper/internal/client/account"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

// Transport attaches the current access token to outgoing requests.
// On 401 it asks the manager whether the token is actually expired, refreshes through
// the coordinator and replays the request once with the new token.
// Successful responses carrying rotated tokens in headers are applied as well.
type Transport struct {
	manager *Manager
	next    http.RoundTripper
	logger  *slog.Logger
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport wraps next. nil next означает http.DefaultTransport.
func NewTransport(manager *Manager, next http.RoundTripper, logger *slog.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{manager: manager, next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	sent := t.currentAccessToken(req)
	resp, err := t.next.RoundTrip(t.prepare(req, sent))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || sent == "" {
		t.handleRotation(ctx, resp)
		return resp, nil
	}

	// 401: повторяем только если есть чем повторить тело запроса
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	current, err := t.manager.DefaultUserTokens(ctx)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return resp, nil
		}
		return nil, closeWith(resp, err)
	}

	var next models.TokenTriple
	switch {
	case current.AccessToken != sent:
		// токен уже обновлен другим запросом
		next = current
	default:
		expired, err := t.manager.IsExpired(ctx)
		if err != nil {
			return nil, closeWith(resp, err)
		}
		if !expired {
			// 401 не связан с истечением токена
			return resp, nil
		}
		next, err = t.manager.coord.Refresh(ctx, sent)
		if err != nil {
			return nil, closeWith(resp, fmt.Errorf("failed to refresh tokens: %w", err))
		}
	}

	drain(resp)

	replay, err := t.replayRequest(req, next.AccessToken)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("replaying request after token refresh", slog.String("path", req.URL.Path))

	resp, err = t.next.RoundTrip(replay)
	if err != nil {
		return nil, err
	}
	t.handleRotation(ctx, resp)
	return resp, nil
}

// currentAccessToken возвращает токен, который будет отправлен с запросом
func (t *Transport) currentAccessToken(req *http.Request) string {
	if h := req.Header.Get(pkgapi.HeaderAuthorization); h != "" {
		return strings.TrimPrefix(h, pkgapi.AuthorizationPrefix)
	}
	tokens, err := t.manager.DefaultUserTokens(req.Context())
	if err != nil {
		return ""
	}
	return tokens.AccessToken
}

func (t *Transport) prepare(req *http.Request, accessToken string) *http.Request {
	r := req.Clone(req.Context())
	t.manager.identity.ApplyDefaultHeaders(r.Header)
	if accessToken != "" {
		r.Header.Set(pkgapi.HeaderAuthorization, pkgapi.BearerValue(accessToken))
	}
	return r
}

func (t *Transport) replayRequest(req *http.Request, accessToken string) (*http.Request, error) {
	r := t.prepare(req, accessToken)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		r.Body = body
	}
	return r, nil
}

// handleRotation применяет новые токены из заголовков ответа
func (t *Transport) handleRotation(ctx context.Context, resp *http.Response) {
	h := resp.Header
	authz := h.Get(pkgapi.HeaderAuthorization)
	refresh := h.Get(pkgapi.HeaderRefreshToken)
	rawExpiresAt := h.Get(pkgapi.HeaderExpiresAt)
	revision := h.Get(pkgapi.HeaderRevisionChecksum)
	if authz == "" || refresh == "" || rawExpiresAt == "" || revision == "" {
		return
	}

	expiresAt, err := strconv.ParseInt(rawExpiresAt, 10, 64)
	if err != nil {
		t.logger.Warn("ignoring rotated tokens with malformed expires_at")
		return
	}

	next := models.TokenTriple{
		AccessToken:  strings.TrimPrefix(authz, pkgapi.AuthorizationPrefix),
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}
	if err := t.manager.coord.ApplyRotation(ctx, next, revision); err != nil {
		t.logger.Error("failed to apply rotated tokens", slog.Any("error", err))
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func closeWith(resp *http.Response, err error) error {
	drain(resp)
	return err
}
