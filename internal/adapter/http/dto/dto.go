package dto

// RegisterRequest is the request body for holder registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for holder login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	HolderID string `json:"holder_id"`
	Username string `json:"username"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// InitializeRegistryRequest is the request body for one-time registry creation.
type InitializeRegistryRequest struct {
	BackingAssetRef   string `json:"backing_asset_ref" binding:"required,max=100,safe_id"`
	VaultRef          string `json:"vault_ref" binding:"required,max=100,safe_id"`
	VaultAuthorityTag string `json:"vault_authority_tag" binding:"required,max=200"`
	Decimals          uint8  `json:"decimals" binding:"lte=18"`
}

// InitializeAccountRequest is the request body for account creation.
type InitializeAccountRequest struct {
	AssetRef string `json:"asset_ref" binding:"required,max=100,safe_id"`
}

// DepositRequest is the request body for a confidential deposit.
// Amount is a decimal string in asset denomination; EncryptedAmount is the
// same value encrypted off-band by the caller (base64 in JSON).
type DepositRequest struct {
	AccountID       string `json:"account_id" binding:"required,uuid"`
	ReferenceID     string `json:"reference_id" binding:"required,max=100,safe_id"`
	Amount          string `json:"amount" binding:"required,max=40"`
	EncryptedAmount []byte `json:"encrypted_amount" binding:"required"`
}

// TransferRequest is the request body for an encrypted transfer.
type TransferRequest struct {
	SourceID        string `json:"source_id" binding:"required,uuid"`
	DestinationID   string `json:"destination_id" binding:"required,uuid"`
	ReferenceID     string `json:"reference_id" binding:"required,max=100,safe_id"`
	EncryptedAmount []byte `json:"encrypted_amount" binding:"required"`
}

// WithdrawRequest is the request body for a proof-gated withdrawal.
// BalanceHandle is the 32-char hex form of the claimed balance handle.
type WithdrawRequest struct {
	AccountID     string `json:"account_id" binding:"required,uuid"`
	ReferenceID   string `json:"reference_id" binding:"required,max=100,safe_id"`
	BalanceHandle string `json:"balance_handle" binding:"required,len=32,hexadecimal"`
	Plaintext     []byte `json:"plaintext" binding:"required"`
	Signature     []byte `json:"signature" binding:"required"`
}

// RegistryResponse is the response body for registry queries.
type RegistryResponse struct {
	ID                string `json:"id"`
	Authority         string `json:"authority"`
	BackingAssetRef   string `json:"backing_asset_ref"`
	VaultRef          string `json:"vault_ref"`
	Decimals          uint8  `json:"decimals"`
	Initialized       bool   `json:"initialized"`
	TotalSupplyHandle string `json:"total_supply_handle"`
	CreatedAt         string `json:"created_at"`
}

// AccountResponse is the response body for account queries. The balance is
// exposed only as its opaque handle; plaintext never leaves the ledger.
type AccountResponse struct {
	ID            string `json:"id"`
	RegistryID    string `json:"registry_id"`
	Owner         string `json:"owner"`
	BalanceHandle string `json:"balance_handle"`
	State         string `json:"state"`
	AssetRef      string `json:"asset_ref"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// OperationResponse is the response body for ledger operation results.
type OperationResponse struct {
	ID             string  `json:"id"`
	ReferenceID    string  `json:"reference_id"`
	AccountID      string  `json:"account_id"`
	CounterpartyID *string `json:"counterparty_id,omitempty"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	Amount         *uint64 `json:"amount,omitempty"`
	BalanceHandle  string  `json:"balance_handle"`
	AccessGranted  bool    `json:"access_granted"`
	FailedStage    *string `json:"failed_stage,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// OperationListResponse wraps a paginated operation list.
type OperationListResponse struct {
	Items  []OperationResponse `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
