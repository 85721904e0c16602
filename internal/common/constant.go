package common

const (
	// RefreshTokenCookieName is the cookie that carries the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// AuthorizationHeaderName carries "Bearer <access token>".
	AuthorizationHeaderName = "Authorization"
	BearerScheme            = "Bearer"

	// MinPasswordLength is the shortest password accepted at registration.
	MinPasswordLength = 6
)
