package handler

import (
	"strconv"
	"time"

	"confidential-ledger/internal/adapter/http/dto"
	"confidential-ledger/internal/adapter/http/middleware"
	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/pkg/apperror"
	"confidential-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// LedgerHandler handles the balance operation endpoints and the
// operation audit log read surface.
type LedgerHandler struct {
	ledgerSvc   ports.LedgerService
	registrySvc ports.RegistryService
	opRepo      ports.OperationRepository
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService, registrySvc ports.RegistryService, opRepo ports.OperationRepository) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, registrySvc: registrySvc, opRepo: opRepo}
}

// Deposit handles POST /api/v1/ledger/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	op, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Caller:          holderID.(uuid.UUID),
		AccountID:       uuid.MustParse(req.AccountID),
		ReferenceID:     req.ReferenceID,
		Amount:          amount,
		EncryptedAmount: req.EncryptedAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toOperationResponse(op))
}

// Transfer handles POST /api/v1/ledger/transfer.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	op, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		Caller:          holderID.(uuid.UUID),
		SourceID:        uuid.MustParse(req.SourceID),
		DestinationID:   uuid.MustParse(req.DestinationID),
		ReferenceID:     req.ReferenceID,
		EncryptedAmount: req.EncryptedAmount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toOperationResponse(op))
}

// Withdraw handles POST /api/v1/ledger/withdraw.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	handle, err := domain.ParseHandle(req.BalanceHandle)
	if err != nil {
		response.Error(c, apperror.Validation("balance_handle must be 32 hex characters"))
		return
	}

	op, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		Caller:        holderID.(uuid.UUID),
		AccountID:     uuid.MustParse(req.AccountID),
		ReferenceID:   req.ReferenceID,
		BalanceHandle: handle,
		Plaintext:     req.Plaintext,
		Signature:     req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toOperationResponse(op))
}

// ListOperations handles GET /api/v1/accounts/:id/operations. Owner-only;
// returns operations where the account is either side.
func (h *LedgerHandler) ListOperations(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("account id must be a UUID"))
		return
	}

	// Ownership check before exposing the audit trail.
	if _, err := h.registrySvc.GetAccount(c.Request.Context(), holderID.(uuid.UUID), accountID); err != nil {
		response.Error(c, err)
		return
	}

	limit := parseQueryInt(c, "limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := parseQueryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ops, err := h.opRepo.ListByAccount(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.OperationResponse, 0, len(ops))
	for i := range ops {
		items = append(items, toOperationResponse(&ops[i]))
	}

	response.OK(c, dto.OperationListResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	})
}

// GetOperation handles GET /api/v1/operations/:id. Visible to the owner of
// either account involved.
func (h *LedgerHandler) GetOperation(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	opID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("operation id must be a UUID"))
		return
	}

	op, err := h.opRepo.GetByID(c.Request.Context(), opID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if op == nil {
		response.Error(c, apperror.ErrNotFound("operation"))
		return
	}

	caller := holderID.(uuid.UUID)
	if _, err := h.registrySvc.GetAccount(c.Request.Context(), caller, op.AccountID); err != nil {
		if op.CounterpartyID == nil {
			response.Error(c, err)
			return
		}
		if _, err2 := h.registrySvc.GetAccount(c.Request.Context(), caller, *op.CounterpartyID); err2 != nil {
			response.Error(c, err)
			return
		}
	}

	response.OK(c, toOperationResponse(op))
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// toOperationResponse converts domain.LedgerOperation to DTO.
func toOperationResponse(op *domain.LedgerOperation) dto.OperationResponse {
	resp := dto.OperationResponse{
		ID:            op.ID.String(),
		ReferenceID:   op.ReferenceID,
		AccountID:     op.AccountID.String(),
		Type:          string(op.Type),
		Status:        string(op.Status),
		Amount:        op.Amount,
		BalanceHandle: op.BalanceHandle.String(),
		AccessGranted: op.AccessGranted,
		FailedStage:   op.FailedStage,
		CreatedAt:     op.CreatedAt.Format(time.RFC3339),
	}
	if op.CounterpartyID != nil {
		s := op.CounterpartyID.String()
		resp.CounterpartyID = &s
	}
	return resp
}
