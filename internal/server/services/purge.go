package services

import (
	"context"
	"time"
)

// PurgeExpired deletes refresh token records that can no longer be used.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repos.RefreshTokens().DeleteExpired(ctx, s.now())
}

// RunPurger calls PurgeExpired every interval until ctx is done.
func (s *AuthService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.logger.Error(ctx, "refresh token purge failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired refresh tokens purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
