package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Password: "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := InitializeRegistryRequest{
		BackingAssetRef:   "asset-usd",
		VaultRef:          "vault-main",
		VaultAuthorityTag: "tag <script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.VaultAuthorityTag, "&lt;script&gt;")
	assert.NotContains(t, req.VaultAuthorityTag, "<script>")
}

func TestSanitizeStruct_DepositRequest(t *testing.T) {
	req := DepositRequest{
		AccountID:   "  f47ac10b-58cc-4372-a567-0e02b2c3d479  ",
		ReferenceID: " DEP-001 ",
		Amount:      " 100.50 ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", req.AccountID)
	assert.Equal(t, "DEP-001", req.ReferenceID)
	assert.Equal(t, "100.50", req.Amount)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"DEP-001",
		"REF_002",
		"a.b.c",
		"simple123",
		"vault:main:1",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"ref 001",     // space
		"ref<001>",    // angle brackets
		"ref;DROP",    // semicolon
		"",            // empty
		"hello world", // space
		"ref\n001",    // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
