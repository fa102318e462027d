package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidConfiguration возвращается при пустом или некорректном base path
var ErrInvalidConfiguration = errors.New("invalid api configuration")

// Error is returned for every non-2xx response of the identity API
type Error struct {
	Code       string // код ошибки сервера, если есть
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// IsUnauthorized сообщает, что сервер ответил 401
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
