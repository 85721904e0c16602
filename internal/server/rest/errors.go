package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried next to the human message.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeAccessTokenExpired = "ACCESS_TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL"
)

const (
	msgCredentialsRequired = "Email and password are required"
	msgPasswordTooShort    = "Password must be at least 6 characters"
	msgPasswordTooLong     = "Password is too long"
	msgInvalidBody         = "Invalid request body"
	msgUserExists          = "User already exists"
	msgInvalidCredentials  = "Invalid credentials"
	msgRefreshNotFound     = "Refresh token not found"
	msgRefreshRevoked      = "Invalid or expired refresh token"
	msgRefreshInvalid      = "Invalid refresh token"
	msgNoToken             = "Access denied. No token provided."
	msgAccessExpired       = "Access token expired. Please refresh your token."
	msgInvalidToken        = "Invalid token."
	msgUserNotFound        = "User not found"
	msgInternal            = "Internal server error"
	msgRouteNotFound       = "Route not found"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

func abortInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, CodeInternal, msgInternal)
}
