package auth

import (
	"context"
	"net/http"

	"github.com/iudanet/identitykeeper/internal/client/api"
	"github.com/iudanet/identitykeeper/internal/models"
	pkgapi "github.com/iudanet/identitykeeper/pkg/api"
)

//go:generate moq -out identity_mock.go . IdentityAPI

// IdentityAPI is the part of the remote identity API the session manager depends on.
// *api.Client implements it.
type IdentityAPI interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Authenticate(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	// RefreshTokens must not go through the retry transport
	RefreshTokens(ctx context.Context, tokens models.TokenTriple) (*api.RefreshResult, error)
	ApplyDefaultHeaders(h http.Header)
}

var _ IdentityAPI = (*api.Client)(nil)
