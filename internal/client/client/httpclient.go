package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

// Options configure NewHTTPClient.
type Options struct {
	// BaseURL is the server root, e.g. "http://localhost:3000".
	BaseURL string
	// Jar keeps the refresh cookie. A plain in-memory jar is used when nil.
	Jar http.CookieJar
	// Transport carries the actual requests; http.DefaultTransport when nil.
	Transport      http.RoundTripper
	RefreshTimeout time.Duration
	RequestTimeout time.Duration
	ShareRefresh   bool
}

// HTTPClient talks JSON to the REST API. Requests outside /auth/ go through
// the retrying transport once a Session is attached.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	transport *retryTransport
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionBody struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPClient builds a client for the API rooted at opts.BaseURL.
//
// Contract:
//   - BaseURL must be absolute; a trailing slash is ignored;
//   - without opts.Jar cookies live in memory only, so the refresh cookie
//     is lost on exit;
//   - no Session is attached yet, see AttachSession.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", opts.BaseURL)
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = NewPersistentJar(nopCookieRepo{})
		if err != nil {
			return nil, err
		}
	}

	t := newRetryTransport(opts.Transport, opts.RefreshTimeout, opts.ShareRefresh)
	return &HTTPClient{
		baseURL:   u,
		transport: t,
		http: &http.Client{
			Transport: t,
			Jar:       jar,
			Timeout:   opts.RequestTimeout,
		},
	}, nil
}

// AttachSession connects the token holder to the transport. Until it is
// called, requests carry no Authorization header and 401s are not retried.
func (c *HTTPClient) AttachSession(s Session) {
	c.transport.setSession(s)
}

// OnAuthFailure sets a hook called after a failed refresh has logged the
// session out.
func (c *HTTPClient) OnAuthFailure(fn func()) {
	c.transport.setOnAuthFailure(fn)
}

// Close drops idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Register creates an account. The server sets the refresh cookie in the jar.
func (c *HTTPClient) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Login signs in. The server sets the refresh cookie in the jar.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (*AuthResult, error) {
	var out sessionBody
	if err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, fmt.Errorf("%w: incomplete auth response", ErrServer)
	}
	return &AuthResult{AccessToken: out.AccessToken, User: out.User}, nil
}

// Refresh trades the refresh cookie for a new access token. Without the
// cookie the server answers 401, which unwraps to ErrUnauthorized.
func (c *HTTPClient) Refresh(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrServer)
	}
	return out.AccessToken, nil
}

// Logout asks the server to revoke the refresh record and clear the cookie.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me fetches the profile. It is the one call here outside /auth/, so the
// transport refreshes and replays it on a 401.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, fmt.Errorf("%w: empty user", ErrServer)
	}
	return out.User, nil
}

// do sends a JSON request and decodes a 2xx body into out. Other statuses
// become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb); err == nil {
			apiErr.Code, apiErr.Message = eb.Code, eb.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// nopCookieRepo backs a jar that keeps cookies only in memory.
type nopCookieRepo struct{}

func (nopCookieRepo) List(context.Context, string) ([]models.StoredCookie, error) { return nil, nil }
func (nopCookieRepo) Set(context.Context, models.StoredCookie) error              { return nil }
func (nopCookieRepo) Delete(context.Context, string, string) error                { return nil }
func (nopCookieRepo) Clear(context.Context) error                                 { return nil }
