package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationType represents the kind of balance mutation.
type OperationType string

const (
	OperationTypeDeposit  OperationType = "DEPOSIT"
	OperationTypeTransfer OperationType = "TRANSFER"
	OperationTypeWithdraw OperationType = "WITHDRAW"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	OperationStatusSuccess OperationStatus = "SUCCESS"
	// OperationStatusPartial marks an operation that committed an external
	// side effect (custody movement) before a later step failed. These rows
	// exist for operator reconciliation.
	OperationStatusPartial OperationStatus = "PARTIAL"
)

// LedgerOperation is the immutable audit record of one mutating operation.
// Amounts are recorded only where the caller supplied a plaintext (deposit,
// withdraw); transfer amounts are known to the ledger only as ciphertext.
type LedgerOperation struct {
	ID             uuid.UUID       `json:"id"`
	ReferenceID    string          `json:"reference_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	CounterpartyID *uuid.UUID      `json:"counterparty_id,omitempty"` // Destination account for transfers
	Type           OperationType   `json:"type"`
	Status         OperationStatus `json:"status"`
	Amount         *uint64         `json:"amount,omitempty"` // Raw asset units; nil for transfers
	BalanceHandle  Handle          `json:"balance_handle"`   // Account balance handle after the operation
	AccessGranted  bool            `json:"access_granted"`   // Outcome of the best-effort decryption grant
	FailedStage    *string         `json:"failed_stage,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BuildOperationKey constructs the idempotency key for a mutating operation.
func BuildOperationKey(accountID uuid.UUID, opType OperationType, referenceID string) string {
	return accountID.String() + ":" + string(opType) + ":" + referenceID
}
