package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/identitykeeper/internal/client/account"
	"github.com/iudanet/identitykeeper/internal/client/storage"
	"github.com/iudanet/identitykeeper/internal/models"
	"github.com/iudanet/identitykeeper/internal/validation"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

// Manager собирает репозиторий аккаунтов, состояние сессии и координатор refresh
// в один объект, с которым работает приложение.
type Manager struct {
	identity  IdentityAPI
	store     storage.SecureStore
	repo      *account.Repository
	hub       *account.StateHub
	coord     *Coordinator
	logger    *slog.Logger
	now       func() time.Time
	transport http.RoundTripper
	secret    string
}

// Option настраивает Manager
type Option func(*Manager)

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRevisionSecret задает общий секрет для revision checksum
func WithRevisionSecret(secret string) Option {
	return func(m *Manager) {
		m.secret = secret
	}
}

// WithBaseTransport задает транспорт, поверх которого работает HTTPClient
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(m *Manager) {
		m.transport = rt
	}
}

// NewManager creates the session manager on top of the given store and publishes the initial state
func NewManager(ctx context.Context, identity IdentityAPI, store storage.SecureStore, opts ...Option) (*Manager, error) {
	m := &Manager{
		identity: identity,
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.transport == nil {
		m.transport = http.DefaultTransport
	}

	m.repo = account.NewRepository(store)
	m.hub = account.NewStateHub(m.repo, m.logger)
	m.coord = NewCoordinator(identity, m.repo, m.hub, m.secret, m.logger)

	if err := m.hub.RenewState(ctx); err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}
	return m, nil
}

// Repository returns the underlying account repository
func (m *Manager) Repository() *account.Repository {
	return m.repo
}

// Coordinator returns the refresh coordinator
func (m *Manager) Coordinator() *Coordinator {
	return m.coord
}

// Subscribe подписывает на изменения состояния сессии (сразу приходит текущее состояние)
func (m *Manager) Subscribe() (<-chan models.SessionState, func()) {
	return m.hub.Subscribe()
}

// State вычисляет состояние сессии из хранилища
func (m *Manager) State(ctx context.Context) (models.SessionState, error) {
	return m.hub.CurrentState(ctx)
}

// Login выполняет вход и делает аккаунт пользователем по умолчанию.
// Возвращает ErrMustLogout, если сессия уже активна.
func (m *Manager) Login(ctx context.Context, req pkgapi.LoginRequest) (*models.UserAccountInfo, error) {
	if err := m.ensureLoggedOut(ctx); err != nil {
		return nil, err
	}
	return m.signIn(ctx, req, true)
}

// AddAccount выполняет вход еще одним аккаунтом без проверки активной сессии.
// makeDefault переключает сессию на новый аккаунт.
func (m *Manager) AddAccount(ctx context.Context, req pkgapi.LoginRequest, makeDefault bool) (*models.UserAccountInfo, error) {
	return m.signIn(ctx, req, makeDefault)
}

// Authenticate проверяет учетные данные на сервере, ничего не сохраняя локально
func (m *Manager) Authenticate(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error) {
	if err := m.ensureLoggedOut(ctx); err != nil {
		return nil, err
	}
	req, err := m.prepareLogin(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := m.identity.Authenticate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authenticate failed: %w", err)
	}
	return resp, nil
}

// Logout закрывает текущую сессию. Следующий аккаунт (если есть) становится активным.
func (m *Manager) Logout(ctx context.Context) error {
	loggedIn, err := m.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	if !loggedIn {
		return fmt.Errorf("%w: not logged in", ErrNotAllowed)
	}
	if err := m.repo.RemoveDefaultUser(ctx, true); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	m.logger.Info("logged out")
	return nil
}

// IsLoggedIn reports whether a default user exists
func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	def, err := m.repo.GetDefaultUserIdentifier(ctx)
	if err != nil {
		return false, err
	}
	return def != "", nil
}

// IsExpired reports now >= expiresAt (epoch milliseconds) for the default user.
// Returns account.ErrNotFound when nobody is logged in.
func (m *Manager) IsExpired(ctx context.Context) (bool, error) {
	tokens, err := m.DefaultUserTokens(ctx)
	if err != nil {
		return false, err
	}
	return m.now().UnixMilli() >= tokens.ExpiresAt, nil
}

// DefaultUserTokens returns the token triple of the default user
func (m *Manager) DefaultUserTokens(ctx context.Context) (models.TokenTriple, error) {
	def, err := m.repo.GetDefaultUser(ctx)
	if err != nil {
		return models.TokenTriple{}, err
	}
	if def == nil {
		return models.TokenTriple{}, fmt.Errorf("%w: no default user", account.ErrNotFound)
	}
	return def.Tokens(), nil
}

// RetrieveTokens returns tokens from the last published state, nil when logged out
func (m *Manager) RetrieveTokens() *models.TokenTriple {
	state, ok := m.hub.Latest()
	if !ok || !state.IsLoggedIn {
		return nil
	}
	tokens := state.Tokens()
	return &tokens
}

// IsMe сравнивает userID с профилем текущего пользователя
func (m *Manager) IsMe(userID string) bool {
	state, ok := m.hub.Latest()
	if !ok || !state.IsLoggedIn || state.Profile == nil || userID == "" {
		return false
	}
	return state.Profile.UserID == userID
}

// UpdateUserProfile заменяет кэшированный профиль пользователя по умолчанию,
// только если у него уже есть профиль с тем же userId. Иначе ничего не делает.
func (m *Manager) UpdateUserProfile(ctx context.Context, profile *pkgapi.UserProfile) error {
	if profile == nil {
		return nil
	}
	def, err := m.repo.GetDefaultUser(ctx)
	if err != nil {
		return err
	}
	if def == nil || def.Profile == nil || def.Profile.UserID != profile.UserID {
		return nil
	}

	info := def.Clone()
	p := *profile
	info.Profile = &p
	return m.repo.UpdateAccount(ctx, info.UserSelectBy, info, false)
}

// SwitchAccount делает активным другой сохраненный аккаунт
func (m *Manager) SwitchAccount(ctx context.Context, userSelectBy string) error {
	if err := m.repo.SetDefaultUser(ctx, userSelectBy); err != nil {
		return fmt.Errorf("failed to switch account: %w", err)
	}
	return nil
}

// Accounts returns all stored accounts
func (m *Manager) Accounts(ctx context.Context) ([]*models.UserAccountInfo, error) {
	return m.repo.GetAccountsAsList(ctx)
}

// Refresh принудительно обновляет токены текущей сессии
func (m *Manager) Refresh(ctx context.Context) (models.TokenTriple, error) {
	return m.coord.Refresh(ctx, "")
}

// HTTPClient returns a client that authenticates requests with the current session
// and transparently refreshes an expired token on 401.
func (m *Manager) HTTPClient() *http.Client {
	return &http.Client{Transport: NewTransport(m, m.transport, m.logger)}
}

// DeviceID возвращает стабильный идентификатор установки, создавая его при первом вызове
func (m *Manager) DeviceID(ctx context.Context) (string, error) {
	raw, err := m.store.Read(ctx, storage.KeyDeviceID)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return "", fmt.Errorf("failed to read device id: %w", err)
	}

	id := uuid.New().String()
	if err := m.store.Write(ctx, storage.KeyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("failed to save device id: %w", err)
	}
	return id, nil
}

func (m *Manager) ensureLoggedOut(ctx context.Context) error {
	loggedIn, err := m.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	if loggedIn {
		return ErrMustLogout
	}
	return nil
}

func (m *Manager) signIn(ctx context.Context, req pkgapi.LoginRequest, makeDefault bool) (*models.UserAccountInfo, error) {
	req, err := m.prepareLogin(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := m.identity.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp == nil || resp.AccessToken == "" || resp.RefreshToken == "" {
		return nil, fmt.Errorf("%w: login response without access or refresh token", ErrInvalidArgs)
	}

	expiresAt := resp.ExpiresAt
	if expiresAt <= 0 {
		// сервер не прислал expiresAt, берем exp из access token
		if claims, err := ParseAccessClaims(resp.AccessToken); err == nil {
			expiresAt = claims.ExpiresAtMillis()
		}
	}

	info := &models.UserAccountInfo{
		Profile:      resp.Profile,
		UserSelectBy: req.UserSelectBy,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	if err := m.repo.AddOrUpdateAccount(ctx, req.UserSelectBy, info, makeDefault); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	m.logger.Info("logged in", slog.String("user", req.UserSelectBy))
	return info.Clone(), nil
}

// prepareLogin проверяет запрос и заполняет сведения об устройстве
func (m *Manager) prepareLogin(ctx context.Context, req pkgapi.LoginRequest) (pkgapi.LoginRequest, error) {
	req.UserSelectBy = strings.TrimSpace(req.UserSelectBy)
	if err := validation.ValidateIdentifier(req.UserSelectBy); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	if req.Language == "" {
		return req, fmt.Errorf("%w: language cannot be empty", ErrInvalidArgs)
	}

	device := pkgapi.DeviceInfo{
		OS:         runtime.GOOS,
		UserAgent:  "identitykeeper/" + runtime.Version(),
		DeviceType: pkgapi.DeviceDesktop,
	}
	if req.Device != nil {
		device = *req.Device
	}
	if device.Identifier == "" {
		id, err := m.DeviceID(ctx)
		if err != nil {
			return req, err
		}
		device.Identifier = id
	}
	req.Device = &device
	return req, nil
}
