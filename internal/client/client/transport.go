package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"golang.org/x/sync/singleflight"
)

const authPathPrefix = "/auth/"

// DefaultRefreshTimeout bounds one refresh attempt made by the transport.
const DefaultRefreshTimeout = 10 * time.Second

// retryTransport attaches the access token to API requests and, when the
// server answers 401, refreshes the token once and replays the request.
//
// Only one refresh runs at a time per transport. By default a 401 that
// arrives while a refresh is in flight is returned to the caller as is.
// With shareRefresh set, such callers wait for the running refresh and
// replay with its result. A caller whose 401 raced a refresh that already
// finished replays with the new token instead of starting another one.
type retryTransport struct {
	base           http.RoundTripper
	refreshTimeout time.Duration
	shareRefresh   bool

	mu            sync.RWMutex
	session       Session
	onAuthFailure func()

	refreshing atomic.Bool
	group      singleflight.Group
	// generation counts successful shared refreshes.
	generation atomic.Uint64
}

func newRetryTransport(base http.RoundTripper, refreshTimeout time.Duration, shareRefresh bool) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	return &retryTransport{base: base, refreshTimeout: refreshTimeout, shareRefresh: shareRefresh}
}

func (t *retryTransport) setSession(s Session) {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()
}

func (t *retryTransport) setOnAuthFailure(fn func()) {
	t.mu.Lock()
	t.onAuthFailure = fn
	t.mu.Unlock()
}

func (t *retryTransport) state() (Session, func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.session, t.onAuthFailure
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	session, onAuthFailure := t.state()
	if session == nil || strings.HasPrefix(req.URL.Path, authPathPrefix) {
		return t.base.RoundTrip(req)
	}

	gen := t.generation.Load()
	resp, err := t.send(req, session.AccessToken())
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if !replayable(req) {
		return resp, nil
	}

	var (
		token      string
		refreshErr error
	)
	if t.shareRefresh {
		token, refreshErr = t.sharedRefresh(req.Context(), session, gen)
	} else {
		var started bool
		token, started, refreshErr = t.exclusiveRefresh(req.Context(), session)
		if !started {
			return resp, nil
		}
	}

	discard(resp)

	if t.shareRefresh && req.Context().Err() != nil {
		// this caller gave up waiting; the shared refresh goes on for others
		return nil, req.Context().Err()
	}

	if refreshErr != nil {
		t.endSession(req.Context(), session)
		if onAuthFailure != nil {
			onAuthFailure()
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, refreshErr)
	}

	retry, err := rewind(req)
	if err != nil {
		return nil, err
	}
	return t.send(retry, token)
}

// exclusiveRefresh runs a refresh unless one is already in flight, in which
// case started is false.
func (t *retryTransport) exclusiveRefresh(ctx context.Context, s Session) (token string, started bool, err error) {
	if !t.refreshing.CompareAndSwap(false, true) {
		return "", false, nil
	}
	defer t.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(ctx, t.refreshTimeout)
	defer cancel()

	token, err = s.Refresh(ctx)
	return token, true, err
}

// sharedRefresh joins the running refresh or starts one. The refresh is
// detached from the first caller's cancellation since others wait on it.
// seen is the generation the caller sent its request under; if a refresh
// has completed since, the current token is returned as is.
func (t *retryTransport) sharedRefresh(ctx context.Context, s Session, seen uint64) (string, error) {
	ch := t.group.DoChan("refresh", func() (interface{}, error) {
		if t.generation.Load() != seen {
			return s.AccessToken(), nil
		}

		t.refreshing.Store(true)
		defer t.refreshing.Store(false)

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout)
		defer cancel()
		token, err := s.Refresh(rctx)
		if err != nil {
			return "", err
		}
		t.generation.Add(1)
		return token, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// endSession asks the server to revoke whatever refresh record the client
// still holds, then drops local state. The server call is best effort and
// bounded by refreshTimeout; the local state is cleared either way.
func (t *retryTransport) endSession(ctx context.Context, s Session) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout)
	defer cancel()

	_ = s.Logout(ctx)
	s.ForceLogout()
}

// send dispatches a copy of req carrying token.
func (t *retryTransport) send(req *http.Request, token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	} else {
		r.Header.Del(common.AuthorizationHeaderName)
	}
	return t.base.RoundTrip(r)
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// rewind returns a copy of req with a fresh body.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil && req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
