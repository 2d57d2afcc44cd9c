package ports

import (
	"context"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RegistryRepository defines persistence for the ledger registry.
// One ledger instance tracks exactly one backing asset, so a deployment
// holds at most one registry row.
type RegistryRepository interface {
	Create(ctx context.Context, registry *domain.LedgerRegistry) error
	// Get returns the registry, or nil if none has been initialized.
	Get(ctx context.Context) (*domain.LedgerRegistry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerRegistry, error)
}

// AccountRepository defines persistence for confidential accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic
// locking; the FOR UPDATE row lock is what serializes concurrent mutations
// against the same account.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.ConfidentialAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfidentialAccount, error)
	GetByOwner(ctx context.Context, owner uuid.UUID) (*domain.ConfidentialAccount, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConfidentialAccount, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance domain.Handle) error
}

// OperationRepository defines persistence for the operation audit log.
type OperationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, op *domain.LedgerOperation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerOperation, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerOperation, error)
}

// HolderRepository defines persistence for authenticated holders.
type HolderRepository interface {
	Create(ctx context.Context, holder *domain.Holder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Holder, error)
	GetByUsername(ctx context.Context, username string) (*domain.Holder, error)
}

// IdempotencyRepository defines persistence for idempotency logs (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.IdempotencyLog) error
	Get(ctx context.Context, key string) (*domain.IdempotencyLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
