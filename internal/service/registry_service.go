package service

import (
	"context"
	"fmt"
	"time"

	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.RegistryService: registry and
// account lifecycle.
type RegistryServiceImpl struct {
	registryRepo ports.RegistryRepository
	accountRepo  ports.AccountRepository
	log          zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl.
func NewRegistryService(
	registryRepo ports.RegistryRepository,
	accountRepo ports.AccountRepository,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		registryRepo: registryRepo,
		accountRepo:  accountRepo,
		log:          log,
	}
}

// InitializeRegistry performs the one-time registry creation. A deployment
// tracks a single backing asset, so a second call is always a conflict.
func (s *RegistryServiceImpl) InitializeRegistry(ctx context.Context, req ports.InitializeRegistryRequest) (*domain.LedgerRegistry, error) {
	if req.BackingAssetRef == "" {
		return nil, apperror.Validation("backing_asset_ref is required")
	}
	if req.VaultRef == "" {
		return nil, apperror.Validation("vault_ref is required")
	}

	existing, err := s.registryRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check registry: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrRegistryAlreadyInitialized()
	}

	now := time.Now().UTC()
	registry := &domain.LedgerRegistry{
		ID:                uuid.New(),
		Authority:         req.Authority,
		BackingAssetRef:   req.BackingAssetRef,
		VaultRef:          req.VaultRef,
		VaultAuthorityTag: req.VaultAuthorityTag,
		Decimals:          req.Decimals,
		Initialized:       true,
		TotalSupplyHandle: domain.ZeroHandle,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.registryRepo.Create(ctx, registry); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create registry: %w", err))
	}

	s.log.Info().
		Str("registry_id", registry.ID.String()).
		Str("backing_asset", registry.BackingAssetRef).
		Msg("ledger registry initialized")

	return registry, nil
}

// InitializeAccount creates a confidential account for a holder. The
// balance starts as the sentinel; no encrypted value exists until the
// first deposit.
func (s *RegistryServiceImpl) InitializeAccount(ctx context.Context, req ports.InitializeAccountRequest) (*domain.ConfidentialAccount, error) {
	if req.AssetRef == "" {
		return nil, apperror.Validation("asset_ref is required")
	}

	registry, err := s.registryRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load registry: %w", err))
	}
	if registry == nil || !registry.Initialized {
		return nil, apperror.ErrUninitializedRegistry()
	}

	existing, err := s.accountRepo.GetByOwner(ctx, req.Owner)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check existing account: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrAccountAlreadyExists()
	}

	now := time.Now().UTC()
	account := &domain.ConfidentialAccount{
		ID:            uuid.New(),
		RegistryID:    registry.ID,
		Owner:         req.Owner,
		BalanceHandle: domain.ZeroHandle,
		State:         domain.AccountStateInitialized,
		AssetRef:      req.AssetRef,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("owner", account.Owner.String()).
		Msg("confidential account initialized")

	return account, nil
}

// GetRegistry returns the singleton registry.
func (s *RegistryServiceImpl) GetRegistry(ctx context.Context) (*domain.LedgerRegistry, error) {
	registry, err := s.registryRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load registry: %w", err))
	}
	if registry == nil {
		return nil, apperror.ErrUninitializedRegistry()
	}
	return registry, nil
}

// GetAccount returns the account, visible only to its owner.
func (s *RegistryServiceImpl) GetAccount(ctx context.Context, caller, accountID uuid.UUID) (*domain.ConfidentialAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if account.Owner != caller {
		return nil, apperror.ErrNotOwner()
	}
	return account, nil
}
