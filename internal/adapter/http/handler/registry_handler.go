package handler

import (
	"time"

	"confidential-ledger/internal/adapter/http/dto"
	"confidential-ledger/internal/adapter/http/middleware"
	"confidential-ledger/internal/core/domain"
	"confidential-ledger/internal/core/ports"
	"confidential-ledger/pkg/apperror"
	"confidential-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegistryHandler handles registry and account lifecycle endpoints.
type RegistryHandler struct {
	registrySvc ports.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler.
func NewRegistryHandler(registrySvc ports.RegistryService) *RegistryHandler {
	return &RegistryHandler{registrySvc: registrySvc}
}

// InitializeRegistry handles POST /api/v1/registry. The authenticated holder
// becomes the registry authority.
func (h *RegistryHandler) InitializeRegistry(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InitializeRegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	registry, err := h.registrySvc.InitializeRegistry(c.Request.Context(), ports.InitializeRegistryRequest{
		Authority:         holderID.(uuid.UUID),
		BackingAssetRef:   req.BackingAssetRef,
		VaultRef:          req.VaultRef,
		VaultAuthorityTag: req.VaultAuthorityTag,
		Decimals:          req.Decimals,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toRegistryResponse(registry))
}

// GetRegistry handles GET /api/v1/registry.
func (h *RegistryHandler) GetRegistry(c *gin.Context) {
	registry, err := h.registrySvc.GetRegistry(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toRegistryResponse(registry))
}

// InitializeAccount handles POST /api/v1/accounts. The account is created for
// the authenticated holder with the sentinel balance handle.
func (h *RegistryHandler) InitializeAccount(c *gin.Context) {
	holderID, ok := c.Get(middleware.CtxHolderID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InitializeAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	account, err := h.registrySvc.InitializeAccount(c.Request.Context(), ports.InitializeAccountRequest{
		Owner:    holderID.(uuid.UUID),
		AssetRef: req.AssetRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// GetAccount handles GET /api/v1/accounts/:id. Owner-only.
func (h *RegistryHandler) GetAccount(c *gin.Context) {
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

	account, err := h.registrySvc.GetAccount(c.Request.Context(), holderID.(uuid.UUID), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

func toRegistryResponse(r *domain.LedgerRegistry) dto.RegistryResponse {
	return dto.RegistryResponse{
		ID:                r.ID.String(),
		Authority:         r.Authority.String(),
		BackingAssetRef:   r.BackingAssetRef,
		VaultRef:          r.VaultRef,
		Decimals:          r.Decimals,
		Initialized:       r.Initialized,
		TotalSupplyHandle: r.TotalSupplyHandle.String(),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func toAccountResponse(a *domain.ConfidentialAccount) dto.AccountResponse {
	return dto.AccountResponse{
		ID:            a.ID.String(),
		RegistryID:    a.RegistryID.String(),
		Owner:         a.Owner.String(),
		BalanceHandle: a.BalanceHandle.String(),
		State:         string(a.State),
		AssetRef:      a.AssetRef,
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
	}
}
