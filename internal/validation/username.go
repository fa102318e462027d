package validation

import (
	"fmt"
	"regexp"
)

// UsernamePattern определяет допустимый формат username при регистрации
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
)

// ValidateUsername проверяет username, который пользователь хочет зарегистрировать
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username cannot be empty", ErrInvalid)
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("%w: username must be at least %d characters long", ErrInvalid, MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: username must not exceed %d characters", ErrInvalid, MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)", ErrInvalid)
	}

	return nil
}

// ValidatePassphrase проверяет локальную парольную фразу хранилища
// Минимум 12 символов
func ValidatePassphrase(passphrase string) error {
	const minPassphraseLen = 12

	if passphrase == "" {
		return fmt.Errorf("%w: passphrase cannot be empty", ErrInvalid)
	}

	if len(passphrase) < minPassphraseLen {
		return fmt.Errorf("%w: passphrase must be at least %d characters long", ErrInvalid, minPassphraseLen)
	}

	return nil
}
