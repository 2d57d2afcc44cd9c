package integration

import (
	"context"
	"fmt"
	"sync"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Registry Repo ---

type inMemoryRegistryRepo struct {
	mu       sync.RWMutex
	registry *domain.LedgerRegistry
}

func newInMemoryRegistryRepo() *inMemoryRegistryRepo {
	return &inMemoryRegistryRepo{}
}

func (r *inMemoryRegistryRepo) Create(ctx context.Context, reg *domain.LedgerRegistry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registry != nil {
		return fmt.Errorf("registry already exists")
	}
	r.registry = reg
	return nil
}

func (r *inMemoryRegistryRepo) Get(ctx context.Context) (*domain.LedgerRegistry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registry, nil
}

func (r *inMemoryRegistryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerRegistry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.registry == nil || r.registry.ID != id {
		return nil, nil
	}
	return r.registry, nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.ConfidentialAccount
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.ConfidentialAccount)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.ConfidentialAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfidentialAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *inMemoryAccountRepo) GetByOwner(ctx context.Context, owner uuid.UUID) (*domain.ConfidentialAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Owner == owner {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConfidentialAccount, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance domain.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.BalanceHandle = balance
	return nil
}

// --- In-Memory Operation Repo ---

type inMemoryOperationRepo struct {
	mu  sync.RWMutex
	ops map[uuid.UUID]*domain.LedgerOperation
}

func newInMemoryOperationRepo() *inMemoryOperationRepo {
	return &inMemoryOperationRepo{ops: make(map[uuid.UUID]*domain.LedgerOperation)}
}

func (r *inMemoryOperationRepo) Create(ctx context.Context, tx pgx.Tx, op *domain.LedgerOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = op
	return nil
}

func (r *inMemoryOperationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[id]
	if !ok {
		return nil, nil
	}
	copied := *op
	return &copied, nil
}

func (r *inMemoryOperationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.LedgerOperation
	for _, op := range r.ops {
		if op.AccountID == accountID || (op.CounterpartyID != nil && *op.CounterpartyID == accountID) {
			result = append(result, *op)
		}
	}
	if offset >= len(result) {
		return []domain.LedgerOperation{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

// --- In-Memory Holder Repo ---

type inMemoryHolderRepo struct {
	mu      sync.RWMutex
	holders map[uuid.UUID]*domain.Holder
}

func newInMemoryHolderRepo() *inMemoryHolderRepo {
	return &inMemoryHolderRepo{holders: make(map[uuid.UUID]*domain.Holder)}
}

func (r *inMemoryHolderRepo) Create(ctx context.Context, h *domain.Holder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.holders {
		if existing.Username == h.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.holders[h.ID] = h
	return nil
}

func (r *inMemoryHolderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holders[id]
	if !ok {
		return nil, nil
	}
	return h, nil
}

func (r *inMemoryHolderRepo) GetByUsername(ctx context.Context, username string) (*domain.Holder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.holders {
		if h.Username == username {
			return h, nil
		}
	}
	return nil, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu   sync.RWMutex
	logs map[string]*domain.IdempotencyLog
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{logs: make(map[string]*domain.IdempotencyLog)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[log.Key] = log
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[key]
	if !ok {
		return nil, nil
	}
	return l, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
