package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const identityKey ctxKey = "identity"

// RequireAccessToken admits requests carrying a valid access token and puts
// the caller's auth.Identity into the request context. The store is not
// consulted.
func RequireAccessToken(codec *auth.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, CodeUnauthenticated, msgNoToken)
			return
		}

		id, err := codec.Verify(token, auth.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, CodeAccessTokenExpired, msgAccessExpired)
				return
			}
			abortWithError(c, http.StatusForbidden, CodeInvalidToken, msgInvalidToken)
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by RequireAccessToken.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok && id != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
