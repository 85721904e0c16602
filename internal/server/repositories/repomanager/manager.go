// Package repomanager vends the credential store repositories for one
// storage backend and owns that backend's lifecycle.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// TxFunc receives repositories bound to a single unit of work.
type TxFunc func(ctx context.Context, users users.Repository, tokens refreshtokens.Repository) error

// RepositoryManager is the credential store as the auth service sees it.
type RepositoryManager interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository

	// WithinTx runs fn atomically where the backend supports it.
	WithinTx(ctx context.Context, fn TxFunc) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
