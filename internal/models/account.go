package models

import (
	"strings"

	"github.com/iudanet/identitykeeper/pkg/api"
)

// TokenTriple минимальный набор учетных данных сессии
type TokenTriple struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"` // epoch milliseconds
}

// Matches reports whether all three fields are equal.
func (t TokenTriple) Matches(other TokenTriple) bool {
	return t.AccessToken == other.AccessToken &&
		t.RefreshToken == other.RefreshToken &&
		t.ExpiresAt == other.ExpiresAt
}

// UserAccountInfo представляет одну сохраненную сессию пользователя
type UserAccountInfo struct {
	Profile      *api.UserProfile `json:"profile"`
	UserSelectBy string           `json:"userSelectBy"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresAt    int64            `json:"expiresAt"` // epoch milliseconds
}

// Tokens returns the token triple of the account.
func (u *UserAccountInfo) Tokens() TokenTriple {
	return TokenTriple{
		AccessToken:  u.AccessToken,
		RefreshToken: u.RefreshToken,
		ExpiresAt:    u.ExpiresAt,
	}
}

// SetTokens overwrites the token fields, leaving identifier and profile as is.
func (u *UserAccountInfo) SetTokens(t TokenTriple) {
	u.AccessToken = t.AccessToken
	u.RefreshToken = t.RefreshToken
	u.ExpiresAt = t.ExpiresAt
}

// Clone returns a deep copy so callers never share the cached profile.
func (u *UserAccountInfo) Clone() *UserAccountInfo {
	if u == nil {
		return nil
	}
	c := *u
	if u.Profile != nil {
		p := *u.Profile
		p.Roles = append([]string(nil), u.Profile.Roles...)
		p.Avatars = append([]api.Avatar(nil), u.Profile.Avatars...)
		c.Profile = &p
	}
	return &c
}

// AccountIndex отображение нормализованного userSelectBy на сессию.
// Хранится целиком одной записью в SecureStore.
type AccountIndex map[string]*UserAccountInfo

// NormalizeKey приводит идентификатор пользователя к виду для сравнения
func NormalizeKey(userSelectBy string) string {
	return strings.ToLower(strings.TrimSpace(userSelectBy))
}

// SessionState производный снимок: залогинен ли пользователь и его поля.
// Не хранится, всегда восстанавливается из AccountIndex и указателя default user.
type SessionState struct {
	UserAccountInfo
	IsLoggedIn bool `json:"isLoggedIn"`
}

// EmptyAccount значения по умолчанию для состояния без пользователя
func EmptyAccount() UserAccountInfo {
	return UserAccountInfo{ExpiresAt: -1}
}
