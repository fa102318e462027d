package crypto

import (
	"crypto/md5" //nolint:gosec // формат checksum задан сервером
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/iudanet/identitykeeper/internal/models"
)

// RevisionChecksum считает checksum тройки токенов с общим секретом.
// Каноническая строка: access + secret + refresh + secret + expiresAt.
func RevisionChecksum(tokens models.TokenTriple, secret string) string {
	var b strings.Builder
	b.WriteString(tokens.AccessToken)
	b.WriteString(secret)
	b.WriteString(tokens.RefreshToken)
	b.WriteString(secret)
	b.WriteString(strconv.FormatInt(tokens.ExpiresAt, 10))

	sum := md5.Sum([]byte(b.String())) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// ValidateRevision сравнивает полученный checksum с вычисленным.
// Некорректный вход дает false, а не ошибку: проверка выполняется на каждом ответе.
func ValidateRevision(tokens models.TokenTriple, secret, received string) bool {
	if received == "" ||
		tokens.AccessToken == "" ||
		tokens.RefreshToken == "" ||
		tokens.ExpiresAt <= -1 {
		return false
	}

	expected := RevisionChecksum(tokens, secret)
	got := strings.ToLower(strings.TrimSpace(received))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
