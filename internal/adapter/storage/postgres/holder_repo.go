package postgres

import (
	"context"
	"errors"
	"fmt"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HolderRepo implements ports.HolderRepository.
type HolderRepo struct {
	pool Pool
}

// NewHolderRepo creates a new HolderRepo.
func NewHolderRepo(pool Pool) *HolderRepo {
	return &HolderRepo{pool: pool}
}

// Create inserts a new holder.
func (r *HolderRepo) Create(ctx context.Context, h *domain.Holder) error {
	query := `INSERT INTO holders (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, h.ID, h.Username, h.PasswordHash, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert holder: %w", err)
	}
	return nil
}

// GetByID fetches a holder by UUID.
func (r *HolderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Holder, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at FROM holders WHERE id = $1`

	h := &domain.Holder{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&h.ID, &h.Username, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get holder by id: %w", err)
	}
	return h, nil
}

// GetByUsername fetches a holder by username.
func (r *HolderRepo) GetByUsername(ctx context.Context, username string) (*domain.Holder, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at FROM holders WHERE username = $1`

	h := &domain.Holder{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&h.ID, &h.Username, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get holder by username: %w", err)
	}
	return h, nil
}
