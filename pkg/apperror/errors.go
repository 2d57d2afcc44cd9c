package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Operations (LED) ----

func ErrUninitializedRegistry() *AppError {
	return New("LED_001", "Ledger registry is not initialized", http.StatusConflict)
}

func ErrAccountNotInitialized() *AppError {
	return New("LED_002", "Account is not initialized", http.StatusConflict)
}

func ErrNotOwner() *AppError {
	return New("LED_003", "Not the owner of this account", http.StatusForbidden)
}

func ErrRegistryMismatch() *AppError {
	return New("LED_004", "Source and destination belong to different registries", http.StatusBadRequest)
}

func ErrZeroAmount() *AppError {
	return New("LED_005", "Cannot withdraw zero amount", http.StatusBadRequest)
}

func ErrInvalidPlaintext() *AppError {
	return New("LED_006", "Invalid plaintext format", http.StatusBadRequest)
}

func ErrInvalidCiphertext(err error) *AppError {
	return Wrap("LED_007", "Ciphertext rejected by encryption engine", http.StatusBadRequest, err)
}

func ErrCustodyTransferFailed(err error) *AppError {
	return Wrap("LED_008", "Custody transfer failed", http.StatusBadGateway, err)
}

func ErrProofVerificationFailed(err error) *AppError {
	return Wrap("LED_009", "Decryption proof verification failed", http.StatusForbidden, err)
}

func ErrAccessGrantFailed(err error) *AppError {
	return Wrap("LED_010", "Decryption access grant failed", http.StatusBadGateway, err)
}

func ErrEmptyBalance() *AppError {
	return New("LED_011", "Account holds no encrypted balance", http.StatusConflict)
}

func ErrStaleHandle() *AppError {
	return New("LED_011", "Claimed handle does not match the current balance", http.StatusConflict)
}

// ErrPartialCompletion marks an operation that committed an external side
// effect before a later step failed. Requires manual reconciliation.
func ErrPartialCompletion(stage string, err error) *AppError {
	return Wrap("LED_012", fmt.Sprintf("Operation partially completed at stage %q", stage), http.StatusBadGateway, err)
}

func ErrInvalidAmount() *AppError {
	return New("LED_013", "Invalid amount", http.StatusBadRequest)
}

// ---- Registry & Account Lifecycle (REG) ----

func ErrRegistryAlreadyInitialized() *AppError {
	return New("REG_001", "Ledger registry is already initialized", http.StatusConflict)
}

func ErrAccountAlreadyExists() *AppError {
	return New("REG_002", "Account already exists for this holder", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("REG_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LED_013-style validation error.
func Validation(message string) *AppError {
	return New("LED_013", message, http.StatusBadRequest)
}
