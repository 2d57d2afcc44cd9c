package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"confidential-ledger/internal/adapter/http/dto"
	"confidential-ledger/internal/adapter/http/middleware"
	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/internal/core/ports/mocks"
	"confidential-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	holderID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), "testholder", "password123").Return(&domain.Holder{
		ID:       holderID,
		Username: "testholder",
	}, nil)

	w, c := postJSON(t, dto.RegisterRequest{
		Username: "testholder",
		Password: "password123",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, holderID.String(), data["holder_id"])
	assert.Equal(t, "testholder", data["username"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w, c := postJSON(t, map[string]string{})

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "taken", "password123").Return(nil, apperror.ErrUsernameExists())

	w, c := postJSON(t, dto.RegisterRequest{
		Username: "taken",
		Password: "password123",
	})

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testholder", "password123").Return("jwt-token-123", expiry, nil)

	w, c := postJSON(t, dto.LoginRequest{
		Username: "testholder",
		Password: "password123",
	})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "badpassword").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w, c := postJSON(t, dto.LoginRequest{
		Username: "bad",
		Password: "badpassword",
	})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Registry Handler Tests ---

func TestInitializeRegistry_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	h := NewRegistryHandler(mockRegistry)

	holderID := uuid.New()
	registryID := uuid.New()

	mockRegistry.EXPECT().InitializeRegistry(gomock.Any(), ports.InitializeRegistryRequest{
		Authority:         holderID,
		BackingAssetRef:   "asset-usd",
		VaultRef:          "vault-main",
		VaultAuthorityTag: "vault-auth-tag",
		Decimals:          2,
	}).Return(&domain.LedgerRegistry{
		ID:                registryID,
		Authority:         holderID,
		BackingAssetRef:   "asset-usd",
		VaultRef:          "vault-main",
		Decimals:          2,
		Initialized:       true,
		TotalSupplyHandle: domain.ZeroHandle,
		CreatedAt:         time.Now(),
	}, nil)

	w, c := postJSON(t, dto.InitializeRegistryRequest{
		BackingAssetRef:   "asset-usd",
		VaultRef:          "vault-main",
		VaultAuthorityTag: "vault-auth-tag",
		Decimals:          2,
	})
	c.Set(middleware.CtxHolderID, holderID)

	h.InitializeRegistry(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, registryID.String(), data["id"])
	assert.Equal(t, true, data["initialized"])
	assert.Equal(t, domain.ZeroHandle.String(), data["total_supply_handle"])
}

func TestInitializeRegistry_AlreadyInitialized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	h := NewRegistryHandler(mockRegistry)

	mockRegistry.EXPECT().InitializeRegistry(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrRegistryAlreadyInitialized())

	w, c := postJSON(t, dto.InitializeRegistryRequest{
		BackingAssetRef:   "asset-usd",
		VaultRef:          "vault-main",
		VaultAuthorityTag: "vault-auth-tag",
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.InitializeRegistry(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInitializeAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	h := NewRegistryHandler(mockRegistry)

	holderID := uuid.New()
	accountID := uuid.New()

	mockRegistry.EXPECT().InitializeAccount(gomock.Any(), ports.InitializeAccountRequest{
		Owner:    holderID,
		AssetRef: "holder-asset-acct",
	}).Return(&domain.ConfidentialAccount{
		ID:            accountID,
		RegistryID:    uuid.New(),
		Owner:         holderID,
		BalanceHandle: domain.ZeroHandle,
		State:         domain.AccountStateInitialized,
		AssetRef:      "holder-asset-acct",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil)

	w, c := postJSON(t, dto.InitializeAccountRequest{
		AssetRef: "holder-asset-acct",
	})
	c.Set(middleware.CtxHolderID, holderID)

	h.InitializeAccount(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, accountID.String(), data["id"])
	assert.Equal(t, domain.ZeroHandle.String(), data["balance_handle"])
	assert.Equal(t, "INITIALIZED", data["state"])
}

func TestGetAccount_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	h := NewRegistryHandler(mockRegistry)

	holderID := uuid.New()
	accountID := uuid.New()
	mockRegistry.EXPECT().GetAccount(gomock.Any(), holderID, accountID).Return(nil, apperror.ErrNotOwner())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: accountID.String()}}
	c.Set(middleware.CtxHolderID, holderID)

	h.GetAccount(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAccount_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	h := NewRegistryHandler(mockRegistry)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	c.Set(middleware.CtxHolderID, uuid.New())

	h.GetAccount(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Ledger Handler Tests ---

func testOperation(accountID uuid.UUID, opType domain.OperationType) *domain.LedgerOperation {
	amount := uint64(15025)
	return &domain.LedgerOperation{
		ID:            uuid.New(),
		ReferenceID:   "REF-001",
		AccountID:     accountID,
		Type:          opType,
		Status:        domain.OperationStatusSuccess,
		Amount:        &amount,
		BalanceHandle: domain.Handle{0x0A, 0x0B},
		AccessGranted: true,
		CreatedAt:     time.Now(),
	}
}

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	holderID := uuid.New()
	accountID := uuid.New()
	op := testOperation(accountID, domain.OperationTypeDeposit)

	mockLedger.EXPECT().Deposit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.DepositRequest) (*domain.LedgerOperation, error) {
			assert.Equal(t, holderID, req.Caller)
			assert.Equal(t, accountID, req.AccountID)
			assert.Equal(t, "REF-001", req.ReferenceID)
			assert.Equal(t, "150.25", req.Amount.String())
			assert.Equal(t, []byte{0x01, 0x02, 0x03}, req.EncryptedAmount)
			return op, nil
		})

	w, c := postJSON(t, dto.DepositRequest{
		AccountID:       accountID.String(),
		ReferenceID:     "REF-001",
		Amount:          "150.25",
		EncryptedAmount: []byte{0x01, 0x02, 0x03},
	})
	c.Set(middleware.CtxHolderID, holderID)

	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, op.ID.String(), data["id"])
	assert.Equal(t, "DEPOSIT", data["type"])
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, float64(15025), data["amount"])
	assert.Equal(t, true, data["access_granted"])
}

func TestDeposit_MissingHolder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	w, c := postJSON(t, dto.DepositRequest{
		AccountID:       uuid.New().String(),
		ReferenceID:     "REF-001",
		Amount:          "10",
		EncryptedAmount: []byte{0x01},
	})

	h.Deposit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeposit_InvalidAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	w, c := postJSON(t, dto.DepositRequest{
		AccountID:       uuid.New().String(),
		ReferenceID:     "REF-001",
		Amount:          "not-a-number",
		EncryptedAmount: []byte{0x01},
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.Deposit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_013", resp["error_code"])
}

func TestDeposit_UninitializedRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	mockLedger.EXPECT().Deposit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUninitializedRegistry())

	w, c := postJSON(t, dto.DepositRequest{
		AccountID:       uuid.New().String(),
		ReferenceID:     "REF-001",
		Amount:          "10",
		EncryptedAmount: []byte{0x01},
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.Deposit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_001", resp["error_code"])
}

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	holderID := uuid.New()
	sourceID := uuid.New()
	destID := uuid.New()

	op := testOperation(sourceID, domain.OperationTypeTransfer)
	op.Amount = nil
	op.CounterpartyID = &destID

	mockLedger.EXPECT().Transfer(gomock.Any(), ports.TransferRequest{
		Caller:          holderID,
		SourceID:        sourceID,
		DestinationID:   destID,
		ReferenceID:     "TRF-001",
		EncryptedAmount: []byte{0xAA, 0xBB},
	}).Return(op, nil)

	w, c := postJSON(t, dto.TransferRequest{
		SourceID:        sourceID.String(),
		DestinationID:   destID.String(),
		ReferenceID:     "TRF-001",
		EncryptedAmount: []byte{0xAA, 0xBB},
	})
	c.Set(middleware.CtxHolderID, holderID)

	h.Transfer(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "TRANSFER", data["type"])
	assert.Equal(t, destID.String(), data["counterparty_id"])
	// Encrypted transfers never expose an amount
	_, hasAmount := data["amount"]
	assert.False(t, hasAmount)
}

func TestTransfer_EmptyBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrEmptyBalance())

	w, c := postJSON(t, dto.TransferRequest{
		SourceID:        uuid.New().String(),
		DestinationID:   uuid.New().String(),
		ReferenceID:     "TRF-002",
		EncryptedAmount: []byte{0x01},
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.Transfer(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_011", resp["error_code"])
}

func TestWithdraw_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	holderID := uuid.New()
	accountID := uuid.New()
	handle := domain.Handle{0xDE, 0xAD, 0xBE, 0xEF}

	op := testOperation(accountID, domain.OperationTypeWithdraw)
	op.BalanceHandle = domain.ZeroHandle

	mockLedger.EXPECT().Withdraw(gomock.Any(), ports.WithdrawRequest{
		Caller:        holderID,
		AccountID:     accountID,
		ReferenceID:   "WDR-001",
		BalanceHandle: handle,
		Plaintext:     []byte{0xC1, 0x3A, 0x00, 0x00},
		Signature:     []byte{0x99},
	}).Return(op, nil)

	w, c := postJSON(t, dto.WithdrawRequest{
		AccountID:     accountID.String(),
		ReferenceID:   "WDR-001",
		BalanceHandle: handle.String(),
		Plaintext:     []byte{0xC1, 0x3A, 0x00, 0x00},
		Signature:     []byte{0x99},
	})
	c.Set(middleware.CtxHolderID, holderID)

	h.Withdraw(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "WITHDRAW", data["type"])
	assert.Equal(t, domain.ZeroHandle.String(), data["balance_handle"])
}

func TestWithdraw_MalformedHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	w, c := postJSON(t, dto.WithdrawRequest{
		AccountID:     uuid.New().String(),
		ReferenceID:   "WDR-002",
		BalanceHandle: "zzzz", // not hex, wrong length
		Plaintext:     []byte{0x01},
		Signature:     []byte{0x02},
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.Withdraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithdraw_ProofRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger, nil, nil)

	mockLedger.EXPECT().Withdraw(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrProofVerificationFailed(errors.New("signature mismatch")))

	w, c := postJSON(t, dto.WithdrawRequest{
		AccountID:     uuid.New().String(),
		ReferenceID:   "WDR-003",
		BalanceHandle: domain.Handle{0x01}.String(),
		Plaintext:     []byte{0x01},
		Signature:     []byte{0x02},
	})
	c.Set(middleware.CtxHolderID, uuid.New())

	h.Withdraw(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_009", resp["error_code"])
}

// --- Operation Read Surface Tests ---

func TestListOperations_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	mockOpRepo := mocks.NewMockOperationRepository(ctrl)
	h := NewLedgerHandler(nil, mockRegistry, mockOpRepo)

	holderID := uuid.New()
	accountID := uuid.New()

	mockRegistry.EXPECT().GetAccount(gomock.Any(), holderID, accountID).
		Return(&domain.ConfidentialAccount{ID: accountID, Owner: holderID}, nil)
	mockOpRepo.EXPECT().ListByAccount(gomock.Any(), accountID, 10, 0).
		Return([]domain.LedgerOperation{
			*testOperation(accountID, domain.OperationTypeDeposit),
			*testOperation(accountID, domain.OperationTypeWithdraw),
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	c.Params = gin.Params{{Key: "id", Value: accountID.String()}}
	c.Set(middleware.CtxHolderID, holderID)

	h.ListOperations(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, float64(10), data["limit"])
	assert.Equal(t, float64(0), data["offset"])
}

func TestListOperations_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	mockOpRepo := mocks.NewMockOperationRepository(ctrl)
	h := NewLedgerHandler(nil, mockRegistry, mockOpRepo)

	holderID := uuid.New()
	accountID := uuid.New()

	mockRegistry.EXPECT().GetAccount(gomock.Any(), holderID, accountID).Return(nil, apperror.ErrNotOwner())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: accountID.String()}}
	c.Set(middleware.CtxHolderID, holderID)

	h.ListOperations(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetOperation_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	mockOpRepo := mocks.NewMockOperationRepository(ctrl)
	h := NewLedgerHandler(nil, mockRegistry, mockOpRepo)

	opID := uuid.New()
	mockOpRepo.EXPECT().GetByID(gomock.Any(), opID).Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: opID.String()}}
	c.Set(middleware.CtxHolderID, uuid.New())

	h.GetOperation(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOperation_CounterpartyCanRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockRegistryService(ctrl)
	mockOpRepo := mocks.NewMockOperationRepository(ctrl)
	h := NewLedgerHandler(nil, mockRegistry, mockOpRepo)

	holderID := uuid.New()
	sourceID := uuid.New()
	destID := uuid.New()

	op := testOperation(sourceID, domain.OperationTypeTransfer)
	op.CounterpartyID = &destID

	mockOpRepo.EXPECT().GetByID(gomock.Any(), op.ID).Return(op, nil)
	mockRegistry.EXPECT().GetAccount(gomock.Any(), holderID, sourceID).Return(nil, apperror.ErrNotOwner())
	mockRegistry.EXPECT().GetAccount(gomock.Any(), holderID, destID).
		Return(&domain.ConfidentialAccount{ID: destID, Owner: holderID}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: op.ID.String()}}
	c.Set(middleware.CtxHolderID, holderID)

	h.GetOperation(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(failingChecker{})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}

type failingChecker struct{}

func (failingChecker) Ping(ctx context.Context) error { return errors.New("connection refused") }
func (failingChecker) Name() string                   { return "postgresql" }
