package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurgeExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tokens := f.repos.RefreshTokens()

	now := f.clock.Now()
	require.NoError(t, tokens.Create(ctx, "u1", "expired", now.Add(-time.Second)))
	require.NoError(t, tokens.Create(ctx, "u1", "boundary", now))
	require.NoError(t, tokens.Create(ctx, "u1", "live", now.Add(time.Hour)))

	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = tokens.FindValid(ctx, "live", now)
	require.NoError(t, err)
}

func TestRunPurger_StopsOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.RunPurger(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purger did not stop after cancel")
	}
}

func TestRunPurger_DisabledReturnsImmediately(t *testing.T) {
	f := newFixture(t)

	done := make(chan struct{})
	go func() {
		f.svc.RunPurger(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero interval must disable the purger")
	}
}
