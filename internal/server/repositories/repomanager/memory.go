package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory. Data is lost
// on restart.
type MemoryRepositoryManager struct {
	users  *users.MemoryRepository
	tokens *refreshtokens.MemoryRepository
	// serializes WithinTx callers
	mu sync.Mutex
}

// NewMemoryRepositoryManager returns a manager over empty in-memory stores.
func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		tokens: refreshtokens.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens() refreshtokens.Repository { return m.tokens }

// WithinTx runs fn one caller at a time. Records fn created are removed
// again if it fails.
func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return runCompensated(ctx, m.users, m.tokens, fn)
}

func (m *MemoryRepositoryManager) Ping(context.Context) error  { return nil }
func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
