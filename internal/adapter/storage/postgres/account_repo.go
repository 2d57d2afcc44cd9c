package postgres

import (
	"context"
	"errors"
	"fmt"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, registry_id, owner_id, balance_handle, state, asset_ref, created_at, updated_at`

// Create inserts a new confidential account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.ConfidentialAccount) error {
	query := `INSERT INTO confidential_accounts (id, registry_id, owner_id, balance_handle, state, asset_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.RegistryID, a.Owner, a.BalanceHandle.String(),
		string(a.State), a.AssetRef, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its UUID (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfidentialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM confidential_accounts WHERE id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByOwner fetches the account owned by the given holder.
func (r *AccountRepo) GetByOwner(ctx context.Context, owner uuid.UUID) (*domain.ConfidentialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM confidential_accounts WHERE owner_id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by owner: %w", err)
	}
	return a, nil
}

// GetByIDForUpdate fetches an account with pessimistic locking.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.ConfidentialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM confidential_accounts WHERE id = $1 FOR UPDATE`

	a, err := scanAccount(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// UpdateBalance replaces the account's balance handle within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, balance domain.Handle) error {
	query := `UPDATE confidential_accounts SET balance_handle = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", accountID)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.ConfidentialAccount, error) {
	a := &domain.ConfidentialAccount{}
	var balanceHex, state string
	err := row.Scan(
		&a.ID, &a.RegistryID, &a.Owner, &balanceHex,
		&state, &a.AssetRef, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.State = domain.AccountState(state)
	a.BalanceHandle, err = domain.ParseHandle(balanceHex)
	if err != nil {
		return nil, fmt.Errorf("stored balance handle: %w", err)
	}
	return a, nil
}
