package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims поля access token, которые клиент читает без проверки подписи.
// Подпись проверяет сервер, клиент использует их только для отображения и как запасной expiresAt.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// ParseAccessClaims decodes the JWT payload without verifying the signature
func ParseAccessClaims(accessToken string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token claims: %w", err)
	}
	return claims, nil
}

// ExpiresAtMillis возвращает exp в миллисекундах или 0, если claim отсутствует
func (c *AccessClaims) ExpiresAtMillis() int64 {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.UnixMilli()
}

// AllRoles объединяет role и roles без дубликатов
func (c *AccessClaims) AllRoles() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Roles)+1)
	var out []string
	for _, r := range append([]string{c.Role}, c.Roles...) {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
