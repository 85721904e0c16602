package repomanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
)

// undoLog records what a unit of work inserted so that backends without
// transactions can remove it again when the unit fails.
type undoLog struct {
	mu     sync.Mutex
	users  []string
	tokens []string
}

func (l *undoLog) addUser(id string) {
	l.mu.Lock()
	l.users = append(l.users, id)
	l.mu.Unlock()
}

func (l *undoLog) addToken(token string) {
	l.mu.Lock()
	l.tokens = append(l.tokens, token)
	l.mu.Unlock()
}

type undoUsers struct {
	users.Repository
	log *undoLog
}

func (u undoUsers) Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error) {
	user, err := u.Repository.Create(ctx, email, passwordHash)
	if err == nil {
		u.log.addUser(user.ID)
	}
	return user, err
}

type undoTokens struct {
	refreshtokens.Repository
	log *undoLog
}

func (t undoTokens) Create(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	err := t.Repository.Create(ctx, userID, token, expiresAt)
	if err == nil {
		t.log.addToken(token)
	}
	return err
}

// runCompensated runs fn against ur and tr. If fn fails, every token and
// user it created is deleted again, tokens first. Undo failures are joined
// to fn's error.
func runCompensated(ctx context.Context, ur users.Repository, tr refreshtokens.Repository, fn TxFunc) error {
	log := &undoLog{}
	err := fn(ctx, undoUsers{Repository: ur, log: log}, undoTokens{Repository: tr, log: log})
	if err == nil {
		return nil
	}

	// the caller may have given up; the undo still has to run
	ctx = context.WithoutCancel(ctx)

	var undoErrs []error
	for i := len(log.tokens) - 1; i >= 0; i-- {
		if derr := tr.Delete(ctx, log.tokens[i]); derr != nil {
			undoErrs = append(undoErrs, derr)
		}
	}
	for i := len(log.users) - 1; i >= 0; i-- {
		if derr := ur.Delete(ctx, log.users[i]); derr != nil {
			undoErrs = append(undoErrs, derr)
		}
	}

	if len(undoErrs) > 0 {
		return errors.Join(err, fmt.Errorf("repomanager: undo: %w", errors.Join(undoErrs...)))
	}
	return err
}
