package account

import (
	"fmt"

	"github.com/iudanet/identitykeeper/internal/models"
)

// ValidateAccountInfo проверяет запись перед сохранением.
// Для любой сохраненной записи токены не пустые и expiresAt > -1.
func ValidateAccountInfo(info *models.UserAccountInfo) error {
	if info == nil {
		return fmt.Errorf("%w: account info is nil", ErrInvalidAccount)
	}
	if models.NormalizeKey(info.UserSelectBy) == "" {
		return fmt.Errorf("%w: user identifier cannot be empty", ErrInvalidAccount)
	}
	if info.AccessToken == "" {
		return fmt.Errorf("%w: access token cannot be empty", ErrInvalidAccount)
	}
	if info.RefreshToken == "" {
		return fmt.Errorf("%w: refresh token cannot be empty", ErrInvalidAccount)
	}
	if info.ExpiresAt <= -1 {
		return fmt.Errorf("%w: expiresAt must be greater than -1, got %d", ErrInvalidAccount, info.ExpiresAt)
	}
	return nil
}

// prepare копирует info и заполняет идентификатор из ключа, если он пустой
func prepare(userSelectBy string, info *models.UserAccountInfo) (string, *models.UserAccountInfo, error) {
	key := models.NormalizeKey(userSelectBy)
	if key == "" {
		return "", nil, fmt.Errorf("%w: user identifier cannot be empty", ErrInvalidAccount)
	}
	if info == nil {
		return "", nil, fmt.Errorf("%w: account info is nil", ErrInvalidAccount)
	}

	record := info.Clone()
	if record.UserSelectBy == "" {
		record.UserSelectBy = userSelectBy
	}
	if models.NormalizeKey(record.UserSelectBy) != key {
		return "", nil, fmt.Errorf("%w: identifier %q does not match key %q", ErrInvalidAccount, record.UserSelectBy, userSelectBy)
	}

	if err := ValidateAccountInfo(record); err != nil {
		return "", nil, err
	}
	return key, record, nil
}
