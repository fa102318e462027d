package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iudanet/identitykeeper/internal/models"
	"github.com/iudanet/identitykeeper/internal/validation"
	"github.com/iudanet/identitykeeper/pkg/api"
)

// Названия действий контроллера аккаунтов
const (
	ActionLogin                   = "Login"
	ActionAuthenticate            = "Authenticate"
	ActionRefreshTokens           = "RefreshTokens"
	ActionValidate                = "Validate"
	ActionCanRegisterUserName     = "CanRegisterUserName"
	ActionCanRegisterEmail        = "CanRegisterEmail"
	ActionCanRegisterMobileNumber = "CanRegisterMobileNumber"
)

const maxErrorBody = 512

// RefreshResult ответ RefreshTokens вместе с checksum из заголовка Revision-Checksum
type RefreshResult struct {
	Tokens   *api.TokenResponse
	Revision string
}

// Client представляет HTTP клиент для identity API
type Client struct {
	httpClient *http.Client
	cfg        Config
	baseRoute  string
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient заменяет HTTP клиент целиком
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport задает RoundTripper для HTTP клиента по умолчанию
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// NewClient создает новый API клиент. Возвращает ErrInvalidConfiguration при пустом base path.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		baseRoute: cfg.BaseRoute(),
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get(api.HeaderAuthorization) != "" {
					req.Header.Set(api.HeaderAuthorization, via[0].Header.Get(api.HeaderAuthorization))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the configuration the client was built with
func (c *Client) Config() Config {
	return c.cfg
}

// BaseRoute returns base[/version]/endpoint
func (c *Client) BaseRoute() string {
	return c.baseRoute
}

// ActionRoute returns the absolute URL of an action on the account endpoint
func (c *Client) ActionRoute(action string) string {
	return c.baseRoute + "/" + strings.TrimPrefix(action, "/")
}

// ApplyDefaultHeaders добавляет X-Powered-By и XRegisteredTo, если они настроены
func (c *Client) ApplyDefaultHeaders(h http.Header) {
	if c.cfg.PoweredBy != "" {
		h.Set(api.HeaderPoweredBy, c.cfg.PoweredBy)
	}
	if c.cfg.RegisteredTo != "" {
		h.Set(api.HeaderRegisteredTo, c.cfg.RegisteredTo)
	}
}

// Login выполняет вход пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if _, err := c.doRequest(ctx, http.MethodPost, ActionLogin, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Authenticate проверяет учетные данные и возвращает токены без создания локальной сессии
func (c *Client) Authenticate(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if _, err := c.doRequest(ctx, http.MethodPost, ActionAuthenticate, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("authenticate request failed: %w", err)
	}
	return &resp, nil
}

// RefreshTokens обменивает текущие токены на новые.
// Тело запроса пустое, аутентификация через Authorization и refresh_token.
func (c *Client) RefreshTokens(ctx context.Context, tokens models.TokenTriple) (*RefreshResult, error) {
	h := make(http.Header)
	h.Set(api.HeaderAuthorization, api.BearerValue(tokens.AccessToken))
	h.Set(api.HeaderRefreshToken, tokens.RefreshToken)

	var resp api.TokenResponse
	respHeaders, err := c.doRequest(ctx, http.MethodPost, ActionRefreshTokens, h, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh tokens request failed: %w", err)
	}
	return &RefreshResult{
		Tokens:   &resp,
		Revision: respHeaders.Get(api.HeaderRevisionChecksum),
	}, nil
}

// ValidateRevision просит сервер проверить revision checksum
func (c *Client) ValidateRevision(ctx context.Context, accessToken, revision string) (bool, error) {
	if revision == "" {
		return false, fmt.Errorf("revision cannot be empty")
	}

	h := make(http.Header)
	if accessToken != "" {
		h.Set(api.HeaderAuthorization, api.BearerValue(accessToken))
	}

	var ok bool
	if _, err := c.doRequest(ctx, http.MethodPost, ActionValidate, h, api.RevisionRequest{Revision: revision}, &ok); err != nil {
		return false, fmt.Errorf("validate revision request failed: %w", err)
	}
	return ok, nil
}

// CanRegisterUserName проверяет, свободен ли username.
// Локально некорректное значение дает false без запроса.
func (c *Client) CanRegisterUserName(ctx context.Context, userName string) (bool, error) {
	if err := validation.ValidateUsername(userName); err != nil {
		return false, nil
	}
	h := make(http.Header)
	h.Set(api.HeaderUserName, userName)
	return c.canRegister(ctx, ActionCanRegisterUserName, h)
}

// CanRegisterEmail проверяет, свободен ли email
func (c *Client) CanRegisterEmail(ctx context.Context, email string) (bool, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return false, nil
	}
	h := make(http.Header)
	h.Set(api.HeaderEmail, email)
	return c.canRegister(ctx, ActionCanRegisterEmail, h)
}

// CanRegisterMobileNumber проверяет, свободен ли номер телефона
func (c *Client) CanRegisterMobileNumber(ctx context.Context, mobileNumber, countryCode string) (bool, error) {
	if err := validation.ValidatePhoneNumber(mobileNumber, countryCode); err != nil {
		return false, nil
	}
	h := make(http.Header)
	h.Set(api.HeaderMobileNumber, mobileNumber)
	if countryCode != "" {
		h.Set(api.HeaderCountryCode, strings.ToUpper(countryCode))
	}
	return c.canRegister(ctx, ActionCanRegisterMobileNumber, h)
}

func (c *Client) canRegister(ctx context.Context, action string, h http.Header) (bool, error) {
	var ok bool
	if _, err := c.doRequest(ctx, http.MethodGet, action, h, nil, &ok); err != nil {
		return false, fmt.Errorf("%s request failed: %w", action, err)
	}
	return ok, nil
}

// doRequest выполняет HTTP запрос и возвращает заголовки ответа
func (c *Client) doRequest(ctx context.Context, method, action string, headers http.Header, body, result any) (http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.ActionRoute(action), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.ApplyDefaultHeaders(req.Header)
	req.Header.Set("Accept", "application/json")
	if body != nil || method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, newError(resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

func newError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Code = errResp.Error
		apiErr.Message = errResp.Message
		return apiErr
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	apiErr.Message = text
	return apiErr
}
