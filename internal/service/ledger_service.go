package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// Stage names recorded when an operation fails after its custody movement
// already settled. They tell an operator where reconciliation must start.
const (
	stageMaterialize   = "materialize_amount"
	stageEncryptedAdd  = "encrypted_add"
	stageUpdateBalance = "update_balance"
	stageRecordOp      = "record_operation"
	stageCommit        = "commit"
)

// LedgerServiceImpl implements ports.LedgerService: the deposit, transfer
// and withdraw orchestration over the external encryption engine and the
// custody service, with pessimistic locking on account rows.
type LedgerServiceImpl struct {
	registryRepo ports.RegistryRepository
	accountRepo  ports.AccountRepository
	opRepo       ports.OperationRepository
	idempRepo    ports.IdempotencyRepository
	idempCache   ports.IdempotencyCache
	encSvc       ports.EncryptedValueService
	custodySvc   ports.CustodyService
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	registryRepo ports.RegistryRepository,
	accountRepo ports.AccountRepository,
	opRepo ports.OperationRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	encSvc ports.EncryptedValueService,
	custodySvc ports.CustodyService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		registryRepo: registryRepo,
		accountRepo:  accountRepo,
		opRepo:       opRepo,
		idempRepo:    idempRepo,
		idempCache:   idempCache,
		encSvc:       encSvc,
		custodySvc:   custodySvc,
		transactor:   transactor,
		log:          log,
	}
}

// Deposit moves backing-asset units into the vault and folds the matching
// ciphertext into the account's encrypted balance. The custody movement is
// the point of no return: every failure after it surfaces as a partial
// completion, never as a silent rollback.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*domain.LedgerOperation, error) {
	if req.Amount.IsNegative() {
		return nil, apperror.ErrInvalidAmount()
	}
	if len(req.EncryptedAmount) == 0 {
		return nil, apperror.Validation("encrypted_amount is required")
	}

	idempKey := domain.BuildOperationKey(req.AccountID, domain.OperationTypeDeposit, req.ReferenceID)
	if cached, err := s.checkIdempotency(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	rawAmount, err := toRawUnits(req.Amount, registry.Decimals)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.lockAccount(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Owner != req.Caller {
		return nil, apperror.ErrNotOwner()
	}
	if account.RegistryID != registry.ID {
		return nil, apperror.ErrRegistryMismatch()
	}

	// Point of no return: asset units move into the vault.
	if err := s.custodySvc.MoveToVault(ctx, rawAmount, account.AssetRef, registry.VaultRef); err != nil {
		return nil, apperror.ErrCustodyTransferFailed(err)
	}

	amountHandle, err := s.encSvc.Materialize(ctx, req.EncryptedAmount)
	if err != nil {
		return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeDeposit, stageMaterialize, err)
	}

	// A fresh account holds the sentinel, which is not a valid operand.
	// The first deposit adopts the materialized handle outright.
	newBalance := amountHandle
	if account.HasBalance() {
		newBalance, err = s.encSvc.EncAdd(ctx, account.BalanceHandle, amountHandle)
		if err != nil {
			return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeDeposit, stageEncryptedAdd, err)
		}
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, account.ID, newBalance); err != nil {
		return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeDeposit, stageUpdateBalance, err)
	}

	accessGranted := s.grantAccess(ctx, newBalance, account.Owner)

	op := &domain.LedgerOperation{
		ID:            uuid.New(),
		ReferenceID:   req.ReferenceID,
		AccountID:     account.ID,
		Type:          domain.OperationTypeDeposit,
		Status:        domain.OperationStatusSuccess,
		Amount:        &rawAmount,
		BalanceHandle: newBalance,
		AccessGranted: accessGranted,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.finalizeOperation(ctx, dbTx, idempKey, op); err != nil {
		return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeDeposit, failedStageOf(err), err)
	}

	s.log.Info().
		Str("op_id", op.ID.String()).
		Str("account_id", account.ID.String()).
		Uint64("amount", rawAmount).
		Str("balance_handle", newBalance.String()).
		Msg("deposit completed")

	return op, nil
}

// Transfer moves an encrypted amount between two accounts of the same
// registry. No custody movement is involved, so any failure rolls the whole
// operation back.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.LedgerOperation, error) {
	if len(req.EncryptedAmount) == 0 {
		return nil, apperror.Validation("encrypted_amount is required")
	}
	if req.SourceID == req.DestinationID {
		return nil, apperror.Validation("source and destination must differ")
	}

	idempKey := domain.BuildOperationKey(req.SourceID, domain.OperationTypeTransfer, req.ReferenceID)
	if cached, err := s.checkIdempotency(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	if _, err := s.loadRegistry(ctx); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock both rows in a deterministic order so concurrent opposing
	// transfers cannot deadlock.
	first, second := req.SourceID, req.DestinationID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*domain.ConfidentialAccount, 2)
	for _, id := range []uuid.UUID{first, second} {
		acc, err := s.lockAccount(ctx, dbTx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	source, dest := locked[req.SourceID], locked[req.DestinationID]

	if source.Owner != req.Caller {
		return nil, apperror.ErrNotOwner()
	}
	if source.RegistryID != dest.RegistryID {
		return nil, apperror.ErrRegistryMismatch()
	}
	// Subtracting from the sentinel would hand the engine an invalid operand.
	if !source.HasBalance() {
		return nil, apperror.ErrEmptyBalance()
	}

	amountHandle, err := s.encSvc.Materialize(ctx, req.EncryptedAmount)
	if err != nil {
		return nil, apperror.ErrInvalidCiphertext(err)
	}

	newSource, err := s.encSvc.EncSub(ctx, source.BalanceHandle, amountHandle)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encrypted subtract: %w", err))
	}

	newDest := amountHandle
	if dest.HasBalance() {
		newDest, err = s.encSvc.EncAdd(ctx, dest.BalanceHandle, amountHandle)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("encrypted add: %w", err))
		}
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, source.ID, newSource); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update source balance: %w", err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, dest.ID, newDest); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update destination balance: %w", err))
	}

	accessGranted := s.grantAccess(ctx, newSource, source.Owner)
	if !s.grantAccess(ctx, newDest, dest.Owner) {
		accessGranted = false
	}

	destID := dest.ID
	op := &domain.LedgerOperation{
		ID:             uuid.New(),
		ReferenceID:    req.ReferenceID,
		AccountID:      source.ID,
		CounterpartyID: &destID,
		Type:           domain.OperationTypeTransfer,
		Status:         domain.OperationStatusSuccess,
		BalanceHandle:  newSource,
		AccessGranted:  accessGranted,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.finalizeOperation(ctx, dbTx, idempKey, op); err != nil {
		return nil, apperror.InternalError(err)
	}

	s.log.Info().
		Str("op_id", op.ID.String()).
		Str("source_id", source.ID.String()).
		Str("destination_id", dest.ID.String()).
		Msg("transfer completed")

	return op, nil
}

// Withdraw releases vault funds against a verified decryption proof and
// resets the balance to the sentinel. The proof and amount checks all run
// before the custody release, so a rejected withdrawal leaves no trace.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.LedgerOperation, error) {
	if len(req.Plaintext) == 0 {
		return nil, apperror.ErrInvalidPlaintext()
	}
	if len(req.Signature) == 0 {
		return nil, apperror.Validation("signature is required")
	}

	idempKey := domain.BuildOperationKey(req.AccountID, domain.OperationTypeWithdraw, req.ReferenceID)
	if cached, err := s.checkIdempotency(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return cached, nil
	}

	registry, err := s.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.lockAccount(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Owner != req.Caller {
		return nil, apperror.ErrNotOwner()
	}
	if account.RegistryID != registry.ID {
		return nil, apperror.ErrRegistryMismatch()
	}
	if !account.HasBalance() {
		return nil, apperror.ErrEmptyBalance()
	}
	// The proof only speaks for the handle it was produced against. A claim
	// over any other handle, even a previously valid one, is rejected.
	if req.BalanceHandle != account.BalanceHandle {
		return nil, apperror.ErrStaleHandle()
	}

	if err := s.encSvc.VerifyProof(ctx, []domain.Handle{req.BalanceHandle}, [][]byte{req.Plaintext}, req.Signature); err != nil {
		return nil, apperror.ErrProofVerificationFailed(err)
	}

	amount := domain.DecodePlaintextAmount(req.Plaintext)
	if amount == 0 {
		return nil, apperror.ErrZeroAmount()
	}

	// Point of no return: vault funds are released to the holder.
	if err := s.custodySvc.MoveFromVault(ctx, amount, registry.VaultRef, account.AssetRef, registry.VaultAuthorityTag); err != nil {
		return nil, apperror.ErrCustodyTransferFailed(err)
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, account.ID, domain.ZeroHandle); err != nil {
		return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeWithdraw, stageUpdateBalance, err)
	}

	op := &domain.LedgerOperation{
		ID:            uuid.New(),
		ReferenceID:   req.ReferenceID,
		AccountID:     account.ID,
		Type:          domain.OperationTypeWithdraw,
		Status:        domain.OperationStatusSuccess,
		Amount:        &amount,
		BalanceHandle: domain.ZeroHandle,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.finalizeOperation(ctx, dbTx, idempKey, op); err != nil {
		return nil, s.partialFailure(ctx, req.AccountID, req.ReferenceID, domain.OperationTypeWithdraw, failedStageOf(err), err)
	}

	s.log.Info().
		Str("op_id", op.ID.String()).
		Str("account_id", account.ID.String()).
		Uint64("amount", amount).
		Msg("withdraw completed")

	return op, nil
}

// checkIdempotency runs the two-layer replay check: Redis fast path, then
// the durable DB log. A hit returns the originally recorded operation.
func (s *LedgerServiceImpl) checkIdempotency(ctx context.Context, key string) (*domain.LedgerOperation, error) {
	cached, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedOperation(cached)
	}

	idempLog, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if idempLog != nil {
		return unmarshalCachedOperation(idempLog.ResponseJSON)
	}
	return nil, nil
}

// loadRegistry fetches the singleton registry and enforces initialization.
func (s *LedgerServiceImpl) loadRegistry(ctx context.Context) (*domain.LedgerRegistry, error) {
	registry, err := s.registryRepo.Get(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load registry: %w", err))
	}
	if registry == nil || !registry.Initialized {
		return nil, apperror.ErrUninitializedRegistry()
	}
	return registry, nil
}

// lockAccount takes the FOR UPDATE row lock and enforces account existence
// and lifecycle state.
func (s *LedgerServiceImpl) lockAccount(ctx context.Context, dbTx pgx.Tx, id uuid.UUID) (*domain.ConfidentialAccount, error) {
	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !account.CanMutate() {
		return nil, apperror.ErrAccountNotInitialized()
	}
	return account, nil
}

// grantAccess asks the engine to let the grantee decrypt the handle. The
// grant is advisory: its outcome is reported on the operation record but
// never fails the operation itself.
func (s *LedgerServiceImpl) grantAccess(ctx context.Context, handle domain.Handle, grantee uuid.UUID) bool {
	if err := s.encSvc.GrantAccess(ctx, handle, grantee, true); err != nil {
		s.log.Warn().Err(err).
			Str("handle", handle.String()).
			Str("grantee", grantee.String()).
			Msg("decryption access grant failed")
		return false
	}
	return true
}

// finalizeOperation persists the audit row and the idempotency log, commits
// the transaction and best-effort caches the response in Redis.
func (s *LedgerServiceImpl) finalizeOperation(ctx context.Context, dbTx pgx.Tx, idempKey string, op *domain.LedgerOperation) error {
	if err := s.opRepo.Create(ctx, dbTx, op); err != nil {
		return &stageError{stage: stageRecordOp, err: fmt.Errorf("create operation: %w", err)}
	}

	respJSON, err := json.Marshal(op)
	if err != nil {
		return &stageError{stage: stageRecordOp, err: fmt.Errorf("marshal response: %w", err)}
	}

	idempEntry := &domain.IdempotencyLog{
		Key:          idempKey,
		OperationID:  op.ID,
		ResponseJSON: respJSON,
		CreatedAt:    op.CreatedAt,
	}
	if err := s.idempRepo.Create(ctx, dbTx, idempEntry); err != nil {
		return &stageError{stage: stageRecordOp, err: fmt.Errorf("save idempotency log: %w", err)}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return &stageError{stage: stageCommit, err: fmt.Errorf("commit tx: %w", err)}
	}

	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
	}
	return nil
}

// partialFailure records a PARTIAL audit row in a fresh transaction (the
// original one is rolled back) and returns the LED_012 error. The asset
// side effect has already settled, so losing the marker row is only a
// logging failure, not a correctness one.
func (s *LedgerServiceImpl) partialFailure(ctx context.Context, accountID uuid.UUID, referenceID string, opType domain.OperationType, stage string, cause error) error {
	s.log.Error().Err(cause).
		Str("account_id", accountID.String()).
		Str("stage", stage).
		Str("type", string(opType)).
		Msg("operation partially completed after custody settlement")

	markerTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to open transaction for partial marker")
		return apperror.ErrPartialCompletion(stage, cause)
	}
	defer markerTx.Rollback(ctx) //nolint:errcheck

	failedStage := stage
	marker := &domain.LedgerOperation{
		ID:          uuid.New(),
		ReferenceID: referenceID,
		AccountID:   accountID,
		Type:        opType,
		Status:      domain.OperationStatusPartial,
		FailedStage: &failedStage,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.opRepo.Create(ctx, markerTx, marker); err != nil {
		s.log.Error().Err(err).Msg("failed to record partial operation marker")
	} else if err := markerTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to commit partial operation marker")
	}

	return apperror.ErrPartialCompletion(stage, cause)
}

// stageError carries the pipeline stage a finalize failure occurred in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func failedStageOf(err error) string {
	if se, ok := err.(*stageError); ok {
		return se.stage
	}
	return stageCommit
}

// toRawUnits converts an asset-denominated decimal amount into raw units
// using the registry's scale. The result must be a whole non-negative
// number of raw units.
func toRawUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := amount.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return 0, apperror.Validation("amount has more precision than the asset supports")
	}
	bi := scaled.BigInt()
	if bi.Sign() < 0 || !bi.IsUint64() {
		return 0, apperror.ErrInvalidAmount()
	}
	return bi.Uint64(), nil
}

// unmarshalCachedOperation deserializes a previously recorded operation.
func unmarshalCachedOperation(data []byte) (*domain.LedgerOperation, error) {
	op := &domain.LedgerOperation{}
	if err := json.Unmarshal(data, op); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached operation: %w", err))
	}
	return op, nil
}
