package domain

import (
	"encoding/hex"
	"fmt"
)

// Handle is an opaque reference to a ciphertext held by the external
// encryption engine. It is a 128-bit identifier; the ledger never learns
// anything about the hidden plaintext from it.
//
// The zero value is a reserved sentinel meaning "no encrypted value has been
// assigned yet". It is never a real ciphertext handle and must never be sent
// to the encryption engine as an operand.
type Handle [16]byte

// ZeroHandle is the sentinel for an unset balance.
var ZeroHandle Handle

// IsZero reports whether h is the unset-balance sentinel.
func (h Handle) IsZero() bool {
	return h == ZeroHandle
}

// String returns the canonical 32-character lowercase hex form.
func (h Handle) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHandle parses the canonical hex form produced by String.
func ParseHandle(s string) (Handle, error) {
	var h Handle
	if len(s) != 32 {
		return ZeroHandle, fmt.Errorf("handle must be 32 hex characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroHandle, fmt.Errorf("parsing handle: %w", err)
	}
	copy(h[:], b)
	return h, nil
}

// MarshalText implements encoding.TextMarshaler (JSON uses the hex form).
func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
