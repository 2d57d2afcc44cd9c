package postgres

import (
	"context"
	"errors"
	"fmt"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RegistryRepo implements ports.RegistryRepository.
// Handles are stored in their canonical hex form.
type RegistryRepo struct {
	pool Pool
}

// NewRegistryRepo creates a new RegistryRepo.
func NewRegistryRepo(pool Pool) *RegistryRepo {
	return &RegistryRepo{pool: pool}
}

const registryColumns = `id, authority, backing_asset_ref, vault_ref, vault_authority_tag,
	decimals, initialized, total_supply_handle, created_at, updated_at`

// Create inserts the registry row.
func (r *RegistryRepo) Create(ctx context.Context, reg *domain.LedgerRegistry) error {
	query := `INSERT INTO ledger_registry (id, authority, backing_asset_ref, vault_ref, vault_authority_tag,
		decimals, initialized, total_supply_handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		reg.ID, reg.Authority, reg.BackingAssetRef, reg.VaultRef, reg.VaultAuthorityTag,
		int16(reg.Decimals), reg.Initialized, reg.TotalSupplyHandle.String(),
		reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registry: %w", err)
	}
	return nil
}

// Get fetches the singleton registry, or nil if none has been initialized.
func (r *RegistryRepo) Get(ctx context.Context) (*domain.LedgerRegistry, error) {
	query := `SELECT ` + registryColumns + ` FROM ledger_registry LIMIT 1`

	reg, err := scanRegistry(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registry: %w", err)
	}
	return reg, nil
}

// GetByID fetches a registry by its UUID.
func (r *RegistryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerRegistry, error) {
	query := `SELECT ` + registryColumns + ` FROM ledger_registry WHERE id = $1`

	reg, err := scanRegistry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registry by id: %w", err)
	}
	return reg, nil
}

func scanRegistry(row pgx.Row) (*domain.LedgerRegistry, error) {
	reg := &domain.LedgerRegistry{}
	var decimals int16
	var supplyHex string
	err := row.Scan(
		&reg.ID, &reg.Authority, &reg.BackingAssetRef, &reg.VaultRef, &reg.VaultAuthorityTag,
		&decimals, &reg.Initialized, &supplyHex, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.Decimals = uint8(decimals)
	reg.TotalSupplyHandle, err = domain.ParseHandle(supplyHex)
	if err != nil {
		return nil, fmt.Errorf("stored total supply handle: %w", err)
	}
	return reg, nil
}
