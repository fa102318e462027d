package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/identitykeeper/internal/models"
)

func TestRevisionChecksum_Canonical(t *testing.T) {
	tokens := models.TokenTriple{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: 1000}

	// md5("a1" + "s" + "r1" + "s" + "1000")
	assert.Equal(t, "8333cc94e9757078c798f1898bd1cfca", RevisionChecksum(tokens, "s"))
	assert.Len(t, RevisionChecksum(tokens, "secret"), 32)
}

func TestValidateRevision(t *testing.T) {
	const secret = "shared-secret"
	tokens := models.TokenTriple{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: 1700000000000}
	valid := RevisionChecksum(tokens, secret)

	tests := []struct {
		name     string
		tokens   models.TokenTriple
		secret   string
		checksum string
		want     bool
	}{
		{name: "matching checksum", tokens: tokens, secret: secret, checksum: valid, want: true},
		{name: "upper case checksum", tokens: tokens, secret: secret, checksum: strings.ToUpper(valid), want: true},
		{
			name:     "tampered access token",
			tokens:   models.TokenTriple{AccessToken: "access2", RefreshToken: "refresh", ExpiresAt: tokens.ExpiresAt},
			secret:   secret,
			checksum: valid,
		},
		{
			name:     "tampered expiry",
			tokens:   models.TokenTriple{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: tokens.ExpiresAt + 1},
			secret:   secret,
			checksum: valid,
		},
		{name: "wrong secret", tokens: tokens, secret: "other", checksum: valid},
		{name: "empty checksum", tokens: tokens, secret: secret, checksum: ""},
		{
			name:     "empty access token",
			tokens:   models.TokenTriple{AccessToken: "", RefreshToken: "r", ExpiresAt: 5},
			secret:   "secret",
			checksum: "anything",
		},
		{
			name:     "empty refresh token",
			tokens:   models.TokenTriple{AccessToken: "a", RefreshToken: "", ExpiresAt: 5},
			secret:   "secret",
			checksum: "anything",
		},
		{
			name:     "negative expiry",
			tokens:   models.TokenTriple{AccessToken: "a", RefreshToken: "r", ExpiresAt: -1},
			secret:   "secret",
			checksum: RevisionChecksum(models.TokenTriple{AccessToken: "a", RefreshToken: "r", ExpiresAt: -1}, "secret"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, ValidateRevision(tt.tokens, tt.secret, tt.checksum))
			})
		})
	}
}
