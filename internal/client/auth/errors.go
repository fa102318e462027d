package auth

import "errors"

// Session manager errors
var (
	// ErrInvalidArgs некорректный запрос или ответ (например, без access/refresh токена)
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrMustLogout login/authenticate при уже активной сессии
	ErrMustLogout = errors.New("already logged in, logout first")

	// ErrNotAllowed logout без активной сессии
	ErrNotAllowed = errors.New("operation not allowed")

	// ErrInvalidRevision checksum ответа не совпал, сессия уже закрыта
	ErrInvalidRevision = errors.New("invalid token revision")

	// ErrRefreshRejected сервер отклонил refresh token, сессия уже закрыта
	ErrRefreshRejected = errors.New("refresh token rejected")
)
