package api

import "time"

// Gender пол пользователя в профиле
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

// DeviceType тип устройства, с которого выполняется вход
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DeviceMobile
	DeviceTablet
	DeviceDesktop
)

// DeviceInfo описывает клиентское устройство при логине
type DeviceInfo struct {
	OS         string     `json:"os"`
	OSVersion  string     `json:"osVersion"`
	Browser    string     `json:"browser"`
	UserAgent  string     `json:"userAgent"`
	Identifier string     `json:"identifier,omitempty"` // стабильный UUID установки клиента
	Token      string     `json:"token,omitempty"`      // push token, если есть
	DeviceType DeviceType `json:"deviceType"`
}

// Avatar описывает загруженный аватар пользователя
type Avatar struct {
	CreationDate time.Time `json:"creationDate"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Thumb        string    `json:"thumb"`
	ThumbPath    string    `json:"thumbPath"`
	ID           int64     `json:"id"`
}

// UserProfile кэшируемый профиль пользователя, приходит вместе с токенами
type UserProfile struct {
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty"`
	CreationDate         *time.Time `json:"creationDate,omitempty"`
	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	UserID               string     `json:"userId"`
	UserName             string     `json:"userName"`
	Email                string     `json:"email,omitempty"`
	PhoneNumber          string     `json:"phoneNumber,omitempty"`
	FirstName            string     `json:"firstName,omitempty"`
	LastName             string     `json:"lastName,omitempty"`
	Avatar               string     `json:"avatar,omitempty"`
	Roles                []string   `json:"roles,omitempty"`
	Avatars              []Avatar   `json:"avatars,omitempty"`
	Gender               Gender     `json:"gender"`
	EmailConfirmed       bool       `json:"emailConfirmed,omitempty"`
	PhoneNumberConfirmed bool       `json:"phoneNumberConfirmed,omitempty"`
	IsEnable             bool       `json:"isEnable,omitempty"`
	IsBanned             bool       `json:"isBanned,omitempty"`
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Device       *DeviceInfo `json:"device"`
	UserSelectBy string      `json:"userSelectBy"` // username, email или номер телефона
	Password     string      `json:"password"`
	Language     string      `json:"language"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	Profile      *UserProfile `json:"profile"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    int64        `json:"expiresAt"` // epoch milliseconds
}

// RevisionRequest тело запроса проверки revision checksum на сервере
type RevisionRequest struct {
	Revision string `json:"revision"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // код ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
