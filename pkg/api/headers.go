package api

// HTTP headers used by the identity API.
const (
	HeaderAuthorization    = "Authorization"
	HeaderRefreshToken     = "refresh_token"
	HeaderExpiresAt        = "expires_at"
	HeaderRevisionChecksum = "Revision-Checksum"
	HeaderPoweredBy        = "X-Powered-By"
	HeaderRegisteredTo     = "XRegisteredTo"
	HeaderUserName         = "UserName"
	HeaderEmail            = "Email"
	HeaderMobileNumber     = "MobileNumber"
	HeaderCountryCode      = "CountryCode"

	AuthorizationPrefix = "Bearer "
)

// BearerValue formats an access token as an Authorization header value.
func BearerValue(accessToken string) string {
	return AuthorizationPrefix + accessToken
}
