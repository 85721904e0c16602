package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the business logic behind the handlers.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user. The password hash never leaves
// the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionResponse answers register and login. The refresh token travels in
// the cookie only.
type SessionResponse struct {
	Message     string       `json:"message"`
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// RefreshResponse answers /auth/refresh.
type RefreshResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// MessageResponse answers logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse answers /me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

type handler struct {
	svc    AuthService
	cookie CookiePolicy
}

func (h *handler) register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	s, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			abortValidation(c, err)
		case errors.Is(err, common.ErrAlreadyExists):
			abortWithError(c, http.StatusConflict, CodeConflict, msgUserExists)
		default:
			abortInternal(c, err)
		}
		return
	}

	h.cookie.setRefreshCookie(c.Writer, s.RefreshToken)
	c.JSON(http.StatusCreated, SessionResponse{
		Message:     "User registered successfully",
		AccessToken: s.AccessToken,
		User:        toUserResponse(s.User),
	})
}

func (h *handler) login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	s, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			abortValidation(c, err)
		case errors.Is(err, common.ErrInvalidCredentials):
			abortWithError(c, http.StatusUnauthorized, CodeInvalidCredentials, msgInvalidCredentials)
		default:
			abortInternal(c, err)
		}
		return
	}

	h.cookie.setRefreshCookie(c.Writer, s.RefreshToken)
	c.JSON(http.StatusOK, SessionResponse{
		Message:     "Login successful",
		AccessToken: s.AccessToken,
		User:        toUserResponse(s.User),
	})
}

func (h *handler) refresh(c *gin.Context) {
	token := refreshCookie(c.Request)
	if token == "" {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthenticated, msgRefreshNotFound)
		return
	}

	access, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRefreshTokenRevoked):
			abortWithError(c, http.StatusForbidden, CodeInvalidToken, msgRefreshRevoked)
		case errors.Is(err, common.ErrInvalidToken):
			abortWithError(c, http.StatusForbidden, CodeInvalidToken, msgRefreshInvalid)
		case errors.Is(err, common.ErrUnauthenticated):
			abortWithError(c, http.StatusUnauthorized, CodeUnauthenticated, msgRefreshNotFound)
		default:
			abortInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Message: "Token refreshed successfully", AccessToken: access})
}

func (h *handler) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), refreshCookie(c.Request)); err != nil {
		abortInternal(c, err)
		return
	}

	h.cookie.clearRefreshCookie(c.Writer)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logout successful"})
}

func (h *handler) me(c *gin.Context) {
	id, ok := IdentityFromContext(c.Request.Context())
	if !ok {
		abortWithError(c, http.StatusUnauthorized, CodeUnauthenticated, msgNoToken)
		return
	}

	u, err := h.svc.Me(c.Request.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			abortWithError(c, http.StatusNotFound, CodeNotFound, msgUserNotFound)
			return
		}
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: toUserResponse(u)})
}

// bindCredentials decodes the body. An empty body counts as empty fields so
// the service reports them as missing.
func bindCredentials(c *gin.Context) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, CodeValidation, msgInvalidBody)
		return req, false
	}
	return req, true
}

func abortValidation(c *gin.Context, err error) {
	msg := msgCredentialsRequired
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		msg = msgPasswordTooShort
	case errors.Is(err, services.ErrPasswordTooLong):
		msg = msgPasswordTooLong
	}
	abortWithError(c, http.StatusBadRequest, CodeValidation, msg)
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
