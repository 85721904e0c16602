// Package services contains server-side business logic. This file implements
// AuthService: registration, login, access token refresh, logout and the
// current-user lookup, backed by the credential store and the token codec.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// MinBcryptCost is the lowest work factor accepted for password hashing.
const MinBcryptCost = bcrypt.DefaultCost

var (
	ErrMissingCredentials = fmt.Errorf("%w: email and password are required", common.ErrValidation)
	ErrPasswordTooShort   = fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, common.MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("%w: password is too long", common.ErrValidation)

	// ErrInvalidRefreshToken means the token failed signature, expiry or type checks.
	ErrInvalidRefreshToken = fmt.Errorf("%w: refresh token rejected", common.ErrInvalidToken)
	// ErrRefreshTokenRevoked means the token is well-formed but its record is gone or expired.
	ErrRefreshTokenRevoked = fmt.Errorf("%w: refresh token revoked or expired", common.ErrInvalidToken)
)

// Session is the result of a successful register or login.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService is safe for concurrent use; it keeps no per-request state.
type AuthService struct {
	repos      repomanager.RepositoryManager
	codec      *auth.Codec
	logger     logging.Logger
	bcryptCost int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithClock replaces time.Now for refresh record expiry.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithBcryptCost sets the hashing work factor. Values below MinBcryptCost
// are raised to it.
func WithBcryptCost(cost int) Option {
	return func(s *AuthService) { s.bcryptCost = max(cost, MinBcryptCost) }
}

// NewAuthService wires the service to its store and codec. The bcrypt cost
// defaults to MinBcryptCost.
func NewAuthService(m repomanager.RepositoryManager, codec *auth.Codec, logger logging.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		repos:      m,
		codec:      codec,
		logger:     logger.With("module", "auth_service"),
		bcryptCost: MinBcryptCost,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) < common.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repos.Users().GetByEmail(ctx, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	var session *Session
	err = s.repos.WithinTx(ctx, func(ctx context.Context, ur users.Repository, tr refreshtokens.Repository) error {
		user, err := ur.Create(ctx, email, hash)
		if err != nil {
			return err
		}
		session, err = s.openSession(ctx, tr, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, internal("register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", session.User.ID)
	return session, nil
}

// Login checks credentials and issues a fresh token pair. Unknown email and
// wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.repos.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same time as a real comparison
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, s.repos.RefreshTokens(), user)
	if err != nil {
		return nil, internal("login", err)
	}
	return session, nil
}

// Refresh mints a new access token for a valid refresh token. The refresh
// token itself stays valid until it expires or is logged out.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrUnauthenticated
	}

	id, err := s.codec.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		s.logger.Debug(ctx, "refresh token rejected", "error", err)
		return "", ErrInvalidRefreshToken
	}

	rec, err := s.repos.RefreshTokens().FindValid(ctx, refreshToken, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrRefreshTokenRevoked
		}
		return "", fmt.Errorf("%w: find refresh token: %v", common.ErrorInternal, err)
	}
	if rec.UserID != id.UserID {
		return "", ErrInvalidRefreshToken
	}

	access, err := s.codec.IssueAccessToken(id.UserID, id.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return access, nil
}

// Logout forgets the refresh token. Store failures are logged and swallowed,
// so Logout always succeeds and may be called repeatedly.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repos.RefreshTokens().Delete(ctx, refreshToken); err != nil {
		s.logger.Warn(ctx, "refresh token delete failed", "error", err)
	}
	return nil
}

// Me returns the user identified by a verified access token.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repos.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: lookup user: %v", common.ErrorInternal, err)
	}
	return user, nil
}

// --- helpers below ---

// openSession issues both tokens and records the refresh token.
func (s *AuthService) openSession(ctx context.Context, tr refreshtokens.Repository, user *models.User) (*Session, error) {
	access, err := s.codec.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := tr.Create(ctx, user.ID, refresh, s.now().Add(s.codec.RefreshTTL())); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), s.bcryptCost)
	})
	return s.dummyHash
}

func internal(op string, err error) error {
	if errors.Is(err, common.ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}
