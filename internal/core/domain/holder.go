package domain

import (
	"time"

	"github.com/google/uuid"
)

// Holder is an authenticated identity that can own confidential accounts.
type Holder struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
