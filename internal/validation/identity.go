package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// ErrInvalid возвращается всеми проверками пакета
var ErrInvalid = errors.New("invalid input")

// MaxIdentifierLen ограничение длины userSelectBy
const MaxIdentifierLen = 256

var (
	phonePattern       = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	countryCodePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)
	phoneSeparators    = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// ValidateIdentifier проверяет userSelectBy: username, email или номер телефона
func ValidateIdentifier(userSelectBy string) error {
	id := strings.TrimSpace(userSelectBy)
	if id == "" {
		return fmt.Errorf("%w: user identifier cannot be empty", ErrInvalid)
	}
	if len(id) > MaxIdentifierLen {
		return fmt.Errorf("%w: user identifier must not exceed %d characters", ErrInvalid, MaxIdentifierLen)
	}
	return nil
}

// ValidatePassword проверяет пароль при входе.
// Правила сложности проверяет сервер, здесь только непустое значение.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", ErrInvalid)
	}
	return nil
}

// ValidateEmail accepts a bare address like "user@example.com" (no display name).
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalid)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("%w: malformed email address %q", ErrInvalid, email)
	}
	if at := strings.LastIndex(email, "@"); !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("%w: email domain must contain a dot", ErrInvalid)
	}
	return nil
}

// ValidatePhoneNumber проверяет номер в формате E.164 (разделители допускаются).
// countryCode может быть пустым, иначе это ISO 3166-1 alpha-2.
func ValidatePhoneNumber(number, countryCode string) error {
	if strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: mobile number cannot be empty", ErrInvalid)
	}
	if countryCode != "" && !countryCodePattern.MatchString(countryCode) {
		return fmt.Errorf("%w: country code must be two letters, got %q", ErrInvalid, countryCode)
	}
	if !phonePattern.MatchString(phoneSeparators.Replace(number)) {
		return fmt.Errorf("%w: malformed mobile number", ErrInvalid)
	}
	return nil
}
