package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testAccessTTL  = 15 * time.Minute
	testRefreshTTL = 30 * 24 * time.Hour
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	router *gin.Engine
	codec  *auth.Codec
	clock  *fakeClock
	repos  *repomanager.MemoryRepositoryManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	codec := auth.NewCodec([]byte("access"), []byte("refresh"), testAccessTTL, testRefreshTTL, auth.WithClock(clock.Now))
	repos := repomanager.NewMemoryRepositoryManager()
	svc := services.NewAuthService(repos, codec, logging.Nop(), services.WithClock(clock.Now))

	r := NewRouter(RouterConfig{
		Service:    svc,
		Codec:      codec,
		Cookie:     CookiePolicy{MaxAge: testRefreshTTL},
		CORSOrigin: "http://localhost:4200",
		Store:      repos,
	})
	return &testEnv{router: r, codec: codec, clock: clock, repos: repos}
}

type request struct {
	method string
	path   string
	body   any
	bearer string
	cookie string
	header map[string]string
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.router, r)
}

func serve(t *testing.T, h http.Handler, r request) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	switch b := r.body.(type) {
	case nil:
		body = &bytes.Buffer{}
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	req.Header.Set("Content-Type", "application/json")
	if r.bearer != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+r.bearer)
	}
	if r.cookie != "" {
		req.AddCookie(&http.Cookie{Name: common.RefreshTokenCookieName, Value: r.cookie})
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func findRefreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == common.RefreshTokenCookieName {
			return c
		}
	}
	return nil
}

// register signs up email and returns the access token and refresh cookie value.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(t, request{method: http.MethodPost, path: "/auth/register",
		body: CredentialsRequest{Email: email, Password: "secret1"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[SessionResponse](t, w)
	c := findRefreshCookie(w)
	require.NotNil(t, c)
	return resp.AccessToken, c.Value
}
