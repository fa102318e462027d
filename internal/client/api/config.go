package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint имя контроллера аккаунтов на сервере
	DefaultEndpoint = "Account"
	// DefaultTimeout таймаут HTTP клиента по умолчанию
	DefaultTimeout = 30 * time.Second
)

// Config описывает подключение к identity API
type Config struct {
	BaseURL        string // например https://id.example.com/api
	APIVersion     string // опционально, "v1" или "/v1"
	Endpoint       string // по умолчанию DefaultEndpoint
	PoweredBy      string // значение X-Powered-By
	RegisteredTo   string // значение XRegisteredTo
	RevisionSecret string // общий секрет для revision checksum
	Timeout        time.Duration
	// WithCredentials имеет смысл только в браузере, хранится для совместимости конфигураций
	WithCredentials bool
}

// Validate fails fast on a missing or malformed base path
func (c Config) Validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return fmt.Errorf("%w: base url is empty", ErrInvalidConfiguration)
	}
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base url must be absolute, got %q", ErrInvalidConfiguration, c.BaseURL)
	}
	return nil
}

// BaseRoute returns base[/version]/endpoint with trailing slash of base stripped
func (c Config) BaseRoute() string {
	base := strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	version := strings.ReplaceAll(c.APIVersion, "/", "")
	if version == "" {
		return base + "/" + endpoint
	}
	return base + "/" + version + "/" + endpoint
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
