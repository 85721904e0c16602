package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, request{method: http.MethodPost, path: "/auth/register",
		body: CredentialsRequest{Email: "a@b.com", Password: "secret1"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[SessionResponse](t, w)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.NotContains(t, w.Body.String(), "password")

	c := findRefreshCookie(w)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 2592000, c.MaxAge)
}

func TestRegister_Failures(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "taken@b.com")

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  ErrorResponse
	}{
		{name: "missing password", body: CredentialsRequest{Email: "a@b.com"}, wantCode: http.StatusBadRequest,
			wantErr: ErrorResponse{Error: "Email and password are required", Code: CodeValidation}},
		{name: "empty body", body: nil, wantCode: http.StatusBadRequest,
			wantErr: ErrorResponse{Error: "Email and password are required", Code: CodeValidation}},
		{name: "short password", body: CredentialsRequest{Email: "a@b.com", Password: "12345"}, wantCode: http.StatusBadRequest,
			wantErr: ErrorResponse{Error: "Password must be at least 6 characters", Code: CodeValidation}},
		{name: "malformed json", body: "{", wantCode: http.StatusBadRequest,
			wantErr: ErrorResponse{Error: "Invalid request body", Code: CodeValidation}},
		{name: "duplicate", body: CredentialsRequest{Email: "taken@b.com", Password: "secret1"}, wantCode: http.StatusConflict,
			wantErr: ErrorResponse{Error: "User already exists", Code: CodeConflict}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, request{method: http.MethodPost, path: "/auth/register", body: tt.body})
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantErr, decode[ErrorResponse](t, w))
			assert.Nil(t, findRefreshCookie(w))
		})
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "a@b.com")

	w := e.do(t, request{method: http.MethodPost, path: "/auth/login",
		body: CredentialsRequest{Email: "a@b.com", Password: "secret1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[SessionResponse](t, w)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "a@b.com", resp.User.Email)
	require.NotNil(t, findRefreshCookie(w))
}

func TestLogin_BadCredentialsLookTheSame(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "a@b.com")

	wrongPassword := e.do(t, request{method: http.MethodPost, path: "/auth/login",
		body: CredentialsRequest{Email: "a@b.com", Password: "nope-nope"}})
	unknownEmail := e.do(t, request{method: http.MethodPost, path: "/auth/login",
		body: CredentialsRequest{Email: "ghost@b.com", Password: "secret1"}})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, ErrorResponse{Error: "Invalid credentials", Code: CodeInvalidCredentials}, decode[ErrorResponse](t, unknownEmail))
}

func TestRefresh(t *testing.T) {
	e := newTestEnv(t)
	_, refresh := e.register(t, "a@b.com")

	e.clock.Advance(testAccessTTL + time.Minute)

	for i := 0; i < 2; i++ {
		w := e.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookie: refresh})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[RefreshResponse](t, w)
		assert.Equal(t, "Token refreshed successfully", resp.Message)

		me := e.do(t, request{method: http.MethodGet, path: "/me", bearer: resp.AccessToken})
		require.Equal(t, http.StatusOK, me.Code, me.Body.String())
	}
}

func TestRefresh_Failures(t *testing.T) {
	e := newTestEnv(t)
	access, refresh := e.register(t, "a@b.com")

	w := e.do(t, request{method: http.MethodPost, path: "/auth/refresh"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, ErrorResponse{Error: "Refresh token not found", Code: CodeUnauthenticated}, decode[ErrorResponse](t, w))

	w = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookie: access})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ErrorResponse{Error: "Invalid refresh token", Code: CodeInvalidToken}, decode[ErrorResponse](t, w))

	require.NoError(t, e.repos.RefreshTokens().Delete(context.Background(), refresh))

	w = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookie: refresh})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ErrorResponse{Error: "Invalid or expired refresh token", Code: CodeInvalidToken}, decode[ErrorResponse](t, w))
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	_, refresh := e.register(t, "a@b.com")

	for i := 0; i < 2; i++ {
		w := e.do(t, request{method: http.MethodPost, path: "/auth/logout", cookie: refresh})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MessageResponse{Message: "Logout successful"}, decode[MessageResponse](t, w))

		c := findRefreshCookie(w)
		require.NotNil(t, c, "cookie must be cleared")
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}

	w := e.do(t, request{method: http.MethodPost, path: "/auth/logout"})
	require.Equal(t, http.StatusOK, w.Code, "logout without cookie")

	w = e.do(t, request{method: http.MethodPost, path: "/auth/refresh", cookie: refresh})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	access, _ := e.register(t, "a@b.com")

	w := e.do(t, request{method: http.MethodGet, path: "/me", bearer: access})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[MeResponse](t, w)
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.False(t, resp.User.CreatedAt.IsZero())
}

func TestMe_DeletedUser(t *testing.T) {
	e := newTestEnv(t)

	// valid signature for an account the store never had
	access, err := e.codec.IssueAccessToken("ghost", "ghost@b.com")
	require.NoError(t, err)

	w := e.do(t, request{method: http.MethodGet, path: "/me", bearer: access})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorResponse{Error: "User not found", Code: CodeNotFound}, decode[ErrorResponse](t, w))
}

type failingService struct{ err error }

func (f failingService) Register(context.Context, string, string) (*services.Session, error) {
	return nil, f.err
}
func (f failingService) Login(context.Context, string, string) (*services.Session, error) {
	return nil, f.err
}
func (f failingService) Refresh(context.Context, string) (string, error) { return "", f.err }
func (f failingService) Logout(context.Context, string) error            { return f.err }
func (f failingService) Me(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func TestHandlers_InternalErrorsAreOpaque(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := newTestEnv(t)
	r := NewRouter(RouterConfig{Service: failingService{err: errors.New("pq: connection refused")}, Codec: base.codec})

	access, err := base.codec.IssueAccessToken("u1", "a@b.com")
	require.NoError(t, err)

	reqs := []request{
		{method: http.MethodPost, path: "/auth/register", body: CredentialsRequest{Email: "a@b.com", Password: "secret1"}},
		{method: http.MethodPost, path: "/auth/login", body: CredentialsRequest{Email: "a@b.com", Password: "secret1"}},
		{method: http.MethodPost, path: "/auth/refresh", cookie: "tok"},
		{method: http.MethodPost, path: "/auth/logout", cookie: "tok"},
		{method: http.MethodGet, path: "/me", bearer: access},
	}

	for _, req := range reqs {
		t.Run(req.path, func(t *testing.T) {
			w := serve(t, r, req)
			require.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, ErrorResponse{Error: "Internal server error", Code: CodeInternal}, decode[ErrorResponse](t, w))
			assert.NotContains(t, w.Body.String(), "pq")
		})
	}
}
