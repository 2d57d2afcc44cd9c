package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyLog represents a cached operation result to prevent
// double-processing of replayed requests.
type IdempotencyLog struct {
	Key          string    `json:"key"` // Format: "account_id:type:reference_id"
	OperationID  uuid.UUID `json:"operation_id"`
	ResponseJSON []byte    `json:"response_json"` // Cached response to return
	CreatedAt    time.Time `json:"created_at"`
}
