package postgres

import (
	"context"
	"errors"
	"fmt"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OperationRepo implements ports.OperationRepository.
// Amounts are persisted as BIGINT; raw units above the int64 range are not
// representable in the audit log and are rejected at insert.
type OperationRepo struct {
	pool Pool
}

// NewOperationRepo creates a new OperationRepo.
func NewOperationRepo(pool Pool) *OperationRepo {
	return &OperationRepo{pool: pool}
}

const operationColumns = `id, reference_id, account_id, counterparty_id, type, status,
	amount, balance_handle, access_granted, failed_stage, created_at`

// Create inserts an operation row within a database transaction.
func (r *OperationRepo) Create(ctx context.Context, tx pgx.Tx, op *domain.LedgerOperation) error {
	amount, err := amountColumn(op.Amount)
	if err != nil {
		return err
	}

	query := `INSERT INTO ledger_operations (id, reference_id, account_id, counterparty_id, type, status,
		amount, balance_handle, access_granted, failed_stage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, query,
		op.ID, op.ReferenceID, op.AccountID, op.CounterpartyID,
		string(op.Type), string(op.Status), amount, op.BalanceHandle.String(),
		op.AccessGranted, op.FailedStage, op.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

// GetByID fetches an operation by its UUID.
func (r *OperationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerOperation, error) {
	query := `SELECT ` + operationColumns + ` FROM ledger_operations WHERE id = $1`

	op, err := scanOperation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operation by id: %w", err)
	}
	return op, nil
}

// ListByAccount returns the account's operations, newest first.
func (r *OperationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerOperation, error) {
	query := `SELECT ` + operationColumns + ` FROM ledger_operations
		WHERE account_id = $1 OR counterparty_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []domain.LedgerOperation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

func scanOperation(row pgx.Row) (*domain.LedgerOperation, error) {
	op := &domain.LedgerOperation{}
	var opType, status, balanceHex string
	var amount *int64
	err := row.Scan(
		&op.ID, &op.ReferenceID, &op.AccountID, &op.CounterpartyID,
		&opType, &status, &amount, &balanceHex,
		&op.AccessGranted, &op.FailedStage, &op.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	op.Type = domain.OperationType(opType)
	op.Status = domain.OperationStatus(status)
	if amount != nil {
		v := uint64(*amount)
		op.Amount = &v
	}
	op.BalanceHandle, err = domain.ParseHandle(balanceHex)
	if err != nil {
		return nil, fmt.Errorf("stored balance handle: %w", err)
	}
	return op, nil
}

func amountColumn(amount *uint64) (*int64, error) {
	if amount == nil {
		return nil, nil
	}
	if *amount > uint64(1)<<63-1 {
		return nil, fmt.Errorf("amount %d overflows the audit column", *amount)
	}
	v := int64(*amount)
	return &v, nil
}
