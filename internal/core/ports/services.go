package ports

import (
	"context"
	"time"

	"confidential-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- External Collaborators ---

// EncryptedValueService is the contract with the external homomorphic
// encryption engine. The engine owns ciphertext storage; the ledger only
// ever holds the opaque handles it returns. The sentinel handle must never
// be passed as an operand.
type EncryptedValueService interface {
	// Materialize turns caller-supplied ciphertext into a fresh handle.
	Materialize(ctx context.Context, ciphertext []byte) (domain.Handle, error)
	// EncAdd returns a handle for the encrypted sum of a and b.
	EncAdd(ctx context.Context, a, b domain.Handle) (domain.Handle, error)
	// EncSub returns a handle for the encrypted difference a minus b.
	EncSub(ctx context.Context, a, b domain.Handle) (domain.Handle, error)
	// GrantAccess gives grantee decryption rights on the handle.
	GrantAccess(ctx context.Context, handle domain.Handle, grantee uuid.UUID, persist bool) error
	// VerifyProof checks that the signature proves each claimed plaintext is
	// the true decryption of the corresponding handle. This is the sole gate
	// separating the opaque ledger from plaintext release.
	VerifyProof(ctx context.Context, handles []domain.Handle, claimedPlaintexts [][]byte, signature []byte) error
}

// CustodyService is the contract with the external asset custody service,
// which moves units of the backing asset between holders and the pooled vault.
type CustodyService interface {
	MoveToVault(ctx context.Context, amount uint64, from string, vaultRef string) error
	// MoveFromVault releases vault funds to a holder on the authority of the
	// registry's vault binding, not the holder's.
	MoveFromVault(ctx context.Context, amount uint64, vaultRef string, to string, vaultAuthorityProof string) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the balance operation orchestrator: the three mutating
// operations of the confidential balance state machine.
type LedgerService interface {
	Deposit(ctx context.Context, req DepositRequest) (*domain.LedgerOperation, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.LedgerOperation, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.LedgerOperation, error)
}

// DepositRequest holds validated input for a deposit.
type DepositRequest struct {
	Caller          uuid.UUID
	AccountID       uuid.UUID
	ReferenceID     string
	Amount          decimal.Decimal // Asset-denominated; converted to raw units via registry decimals
	EncryptedAmount []byte          // Same value encrypted off-band by the caller
}

// TransferRequest holds validated input for an encrypted transfer.
type TransferRequest struct {
	Caller          uuid.UUID
	SourceID        uuid.UUID
	DestinationID   uuid.UUID
	ReferenceID     string
	EncryptedAmount []byte
}

// WithdrawRequest holds validated input for a proof-gated withdrawal.
type WithdrawRequest struct {
	Caller        uuid.UUID
	AccountID     uuid.UUID
	ReferenceID   string
	BalanceHandle domain.Handle
	Plaintext     []byte // Claimed plaintext, little-endian, at most 8 significant bytes
	Signature     []byte // Decryption-proof signature artifact
}

// RegistryService covers registry and account lifecycle.
type RegistryService interface {
	InitializeRegistry(ctx context.Context, req InitializeRegistryRequest) (*domain.LedgerRegistry, error)
	InitializeAccount(ctx context.Context, req InitializeAccountRequest) (*domain.ConfidentialAccount, error)
	GetRegistry(ctx context.Context) (*domain.LedgerRegistry, error)
	// GetAccount returns the account only to its owner.
	GetAccount(ctx context.Context, caller, accountID uuid.UUID) (*domain.ConfidentialAccount, error)
}

// InitializeRegistryRequest holds input for one-time registry creation.
type InitializeRegistryRequest struct {
	Authority         uuid.UUID
	BackingAssetRef   string
	VaultRef          string
	VaultAuthorityTag string
	Decimals          uint8
}

// InitializeAccountRequest holds input for account creation.
type InitializeAccountRequest struct {
	Owner    uuid.UUID
	AssetRef string // Holder's custody-service account for the backing asset
}

// AuthService defines holder authentication.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Holder, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(holderID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	HolderID uuid.UUID
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
