package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/identitykeeper/internal/client/account"
	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/crypto"
	"github.com/iudanet/identitykeeper/internal/models"
)

// Status состояние координатора обновления токенов
type Status int32

const (
	StatusIdle Status = iota
	StatusRefreshing
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Coordinator guarantees at most one refresh call per stale access token.
// Callers that arrive while a refresh is in flight share its result.
type Coordinator struct {
	identity IdentityAPI
	repo     *account.Repository
	hub      *account.StateHub
	logger   *slog.Logger
	secret   string

	group singleflight.Group
	// applyMu сериализует проверку и запись новых токенов (refresh и ротация из заголовков)
	applyMu sync.Mutex
	// inflight число выполняемых refresh (по разным access token)
	inflight atomic.Int32
}

// NewCoordinator creates a refresh coordinator
func NewCoordinator(identity IdentityAPI, repo *account.Repository, hub *account.StateHub, secret string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		identity: identity,
		repo:     repo,
		hub:      hub,
		secret:   secret,
		logger:   logger,
	}
}

// Status returns Idle or Refreshing
func (c *Coordinator) Status() Status {
	if c.inflight.Load() > 0 {
		return StatusRefreshing
	}
	return StatusIdle
}

// Refresh exchanges the tokens of the current session for new ones.
// staleAccessToken is the token the caller saw rejected. If the session has already moved past it,
// the current tokens are returned without a remote call.
func (c *Coordinator) Refresh(ctx context.Context, staleAccessToken string) (models.TokenTriple, error) {
	current, err := c.currentTokens(ctx)
	if err != nil {
		return models.TokenTriple{}, err
	}
	if staleAccessToken != "" && current.AccessToken != staleAccessToken {
		return current, nil
	}

	key := current.AccessToken
	// общий вызов не должен отменяться вместе с контекстом первого запроса
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.refresh(flightCtx, key)
	})

	select {
	case <-ctx.Done():
		return models.TokenTriple{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.TokenTriple{}, res.Err
		}
		return res.Val.(models.TokenTriple), nil
	}
}

// refresh выполняется не более одного раза одновременно для одного access token
func (c *Coordinator) refresh(ctx context.Context, staleAccessToken string) (models.TokenTriple, error) {
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	old, err := c.currentTokens(ctx)
	if err != nil {
		return models.TokenTriple{}, err
	}
	// предыдущий refresh для этого токена уже завершился
	if old.AccessToken != staleAccessToken {
		return old, nil
	}

	c.logger.Info("refreshing tokens")

	res, err := c.identity.RefreshTokens(ctx, old)
	if err != nil {
		if isRejected(err) {
			c.logger.Warn("refresh token rejected, logging out")
			if lerr := c.forceLogout(ctx); lerr != nil {
				return models.TokenTriple{}, errors.Join(fmt.Errorf("%w: %w", ErrRefreshRejected, err), lerr)
			}
			return models.TokenTriple{}, fmt.Errorf("%w: %w", ErrRefreshRejected, err)
		}
		c.logger.Error("refresh tokens request failed", slog.Any("error", err))
		return models.TokenTriple{}, err
	}

	if res == nil || res.Tokens == nil || res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		return models.TokenTriple{}, fmt.Errorf("%w: refresh response without access or refresh token", ErrInvalidArgs)
	}

	next := models.TokenTriple{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		ExpiresAt:    res.Tokens.ExpiresAt,
	}
	if err := c.apply(ctx, old, next, res.Revision); err != nil {
		return models.TokenTriple{}, err
	}

	c.logger.Info("tokens refreshed")
	return next, nil
}

// ApplyRotation применяет токены, присланные сервером в заголовках обычного ответа
func (c *Coordinator) ApplyRotation(ctx context.Context, next models.TokenTriple, revision string) error {
	old, err := c.currentTokens(ctx)
	if err != nil {
		return err
	}
	if old.Matches(next) {
		return nil
	}
	if err := c.apply(ctx, old, next, revision); err != nil {
		return err
	}
	c.logger.Info("tokens rotated by server")
	return nil
}

// apply проверяет revision и записывает новые токены в аккаунт, найденный по старым
func (c *Coordinator) apply(ctx context.Context, old, next models.TokenTriple, revision string) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	if !crypto.ValidateRevision(next, c.secret, revision) {
		c.logger.Warn("invalid token revision, logging out")
		if err := c.forceLogout(ctx); err != nil {
			return errors.Join(ErrInvalidRevision, err)
		}
		return ErrInvalidRevision
	}

	if err := c.repo.UpdateUserTokens(ctx, old, next); err != nil {
		return fmt.Errorf("failed to update user tokens: %w", err)
	}
	return nil
}

// forceLogout удаляет аккаунт по умолчанию, требуя повторного входа
func (c *Coordinator) forceLogout(ctx context.Context) error {
	if err := c.repo.RemoveDefaultUser(ctx, true); err != nil {
		return fmt.Errorf("failed to force logout: %w", err)
	}
	return nil
}

func (c *Coordinator) currentTokens(ctx context.Context) (models.TokenTriple, error) {
	state, err := c.hub.CurrentState(ctx)
	if err != nil {
		return models.TokenTriple{}, err
	}
	if !state.IsLoggedIn {
		return models.TokenTriple{}, fmt.Errorf("%w: no default user", account.ErrNotFound)
	}
	return state.Tokens(), nil
}

func isRejected(err error) bool {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
