package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountState is the lifecycle state of a confidential account.
type AccountState string

const (
	AccountStateUninitialized AccountState = "UNINITIALIZED"
	AccountStateInitialized   AccountState = "INITIALIZED"
	// AccountStateFrozen is terminal for mutation. Reserved for a future
	// administrative freeze; no operation transitions into it today.
	AccountStateFrozen AccountState = "FROZEN"
)

// ConfidentialAccount is a per-holder record under one registry. Its balance
// is an opaque handle; the ledger never sees the plaintext value.
type ConfidentialAccount struct {
	ID            uuid.UUID    `json:"id"`
	RegistryID    uuid.UUID    `json:"registry_id"`
	Owner         uuid.UUID    `json:"owner"` // Immutable after creation
	BalanceHandle Handle       `json:"balance_handle"`
	State         AccountState `json:"state"`
	AssetRef      string       `json:"asset_ref"` // Holder's custody-service account for the backing asset
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CanMutate returns true if the account accepts deposit/transfer/withdraw.
func (a *ConfidentialAccount) CanMutate() bool {
	return a.State == AccountStateInitialized
}

// HasBalance reports whether an encrypted value has ever been assigned.
// A sentinel balance is logically zero-valued.
func (a *ConfidentialAccount) HasBalance() bool {
	return !a.BalanceHandle.IsZero()
}
