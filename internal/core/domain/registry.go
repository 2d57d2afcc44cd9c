package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerRegistry is the single configuration record for one backing asset.
// It is created once by an explicit initialize operation and never
// re-initialized.
type LedgerRegistry struct {
	ID                uuid.UUID `json:"id"`
	Authority         uuid.UUID `json:"authority"`         // Holder permitted to administer the registry
	BackingAssetRef   string    `json:"backing_asset_ref"` // External identity of the custodied asset
	VaultRef          string    `json:"vault_ref"`         // Custody-service reference to the pooled vault
	VaultAuthorityTag string    `json:"-"`                 // Opaque binding authorizing vault releases
	Decimals          uint8     `json:"decimals"`          // Informational only; never used in encrypted arithmetic
	Initialized       bool      `json:"initialized"`
	TotalSupplyHandle Handle    `json:"total_supply_handle"` // Best-effort encrypted aggregate
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
