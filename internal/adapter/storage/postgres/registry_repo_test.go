package postgres

import (
	"context"
	"testing"
	"time"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *domain.LedgerRegistry {
	return &domain.LedgerRegistry{
		ID:                uuid.New(),
		Authority:         uuid.New(),
		BackingAssetRef:   "asset-usdx",
		VaultRef:          "vault-main",
		VaultAuthorityTag: "vat-1",
		Decimals:          6,
		Initialized:       true,
		TotalSupplyHandle: domain.ZeroHandle,
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:         time.Now().UTC().Truncate(time.Microsecond),
	}
}

func registryColumnNames() []string {
	return []string{"id", "authority", "backing_asset_ref", "vault_ref", "vault_authority_tag",
		"decimals", "initialized", "total_supply_handle", "created_at", "updated_at"}
}

func registryRow(reg *domain.LedgerRegistry) *pgxmock.Rows {
	return pgxmock.NewRows(registryColumnNames()).AddRow(
		reg.ID, reg.Authority, reg.BackingAssetRef, reg.VaultRef, reg.VaultAuthorityTag,
		int16(reg.Decimals), reg.Initialized, reg.TotalSupplyHandle.String(),
		reg.CreatedAt, reg.UpdatedAt,
	)
}

func TestRegistryRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRegistryRepo(mock)
	reg := newTestRegistry()

	mock.ExpectExec("INSERT INTO ledger_registry").
		WithArgs(reg.ID, reg.Authority, reg.BackingAssetRef, reg.VaultRef, reg.VaultAuthorityTag,
			int16(reg.Decimals), reg.Initialized, reg.TotalSupplyHandle.String(),
			reg.CreatedAt, reg.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), reg)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRegistryRepo(mock)
	reg := newTestRegistry()

	mock.ExpectQuery("SELECT .+ FROM ledger_registry LIMIT 1").
		WillReturnRows(registryRow(reg))

	result, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, reg.ID, result.ID)
	assert.Equal(t, uint8(6), result.Decimals)
	assert.True(t, result.Initialized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepo_Get_NoneInitialized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRegistryRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM ledger_registry LIMIT 1").
		WillReturnRows(pgxmock.NewRows(registryColumnNames()))

	result, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistryRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRegistryRepo(mock)
	reg := newTestRegistry()

	mock.ExpectQuery("SELECT .+ FROM ledger_registry WHERE id").
		WithArgs(reg.ID).
		WillReturnRows(registryRow(reg))

	result, err := repo.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, reg.VaultRef, result.VaultRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}
