// Package encvalue is the HTTP client for the external encrypted-value
// engine. The engine owns all ciphertext material; this client only moves
// opaque handles and ciphertext blobs across the wire.
package encvalue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"confidential-ledger/internal/core/domain"
	"confidential-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.EncryptedValueService over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a new encrypted-value engine client.
func NewClient(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

type materializeRequest struct {
	Ciphertext []byte `json:"ciphertext"`
}

type binaryOpRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type handleResponse struct {
	Handle domain.Handle `json:"handle"`
}

type grantRequest struct {
	Grantee string `json:"grantee"`
	Persist bool   `json:"persist"`
}

type verifyProofRequest struct {
	Handles    []domain.Handle `json:"handles"`
	Plaintexts [][]byte        `json:"plaintexts"`
	Signature  []byte          `json:"signature"`
}

// Materialize turns caller-supplied ciphertext into a fresh handle.
func (c *Client) Materialize(ctx context.Context, ciphertext []byte) (domain.Handle, error) {
	var resp handleResponse
	err := c.post(ctx, "/v1/values", materializeRequest{Ciphertext: ciphertext}, &resp)
	if err != nil {
		return domain.ZeroHandle, fmt.Errorf("materialize: %w", err)
	}
	if resp.Handle.IsZero() {
		return domain.ZeroHandle, fmt.Errorf("materialize: engine returned the sentinel handle")
	}
	return resp.Handle, nil
}

// EncAdd returns a handle for the encrypted sum of a and b.
func (c *Client) EncAdd(ctx context.Context, a, b domain.Handle) (domain.Handle, error) {
	var resp handleResponse
	err := c.post(ctx, "/v1/values/add", binaryOpRequest{A: a.String(), B: b.String()}, &resp)
	if err != nil {
		return domain.ZeroHandle, fmt.Errorf("encrypted add: %w", err)
	}
	return resp.Handle, nil
}

// EncSub returns a handle for the encrypted difference a minus b.
func (c *Client) EncSub(ctx context.Context, a, b domain.Handle) (domain.Handle, error) {
	var resp handleResponse
	err := c.post(ctx, "/v1/values/sub", binaryOpRequest{A: a.String(), B: b.String()}, &resp)
	if err != nil {
		return domain.ZeroHandle, fmt.Errorf("encrypted sub: %w", err)
	}
	return resp.Handle, nil
}

// GrantAccess gives the grantee decryption rights on the handle.
func (c *Client) GrantAccess(ctx context.Context, handle domain.Handle, grantee uuid.UUID, persist bool) error {
	path := "/v1/values/" + handle.String() + "/grants"
	if err := c.post(ctx, path, grantRequest{Grantee: grantee.String(), Persist: persist}, nil); err != nil {
		return apperror.ErrAccessGrantFailed(err)
	}
	return nil
}

// VerifyProof checks the decryption-proof signature over the claimed
// plaintexts. A non-2xx response means the proof was rejected.
func (c *Client) VerifyProof(ctx context.Context, handles []domain.Handle, claimedPlaintexts [][]byte, signature []byte) error {
	req := verifyProofRequest{
		Handles:    handles,
		Plaintexts: claimedPlaintexts,
		Signature:  signature,
	}
	if err := c.post(ctx, "/v1/proofs/verify", req, nil); err != nil {
		return fmt.Errorf("verify proof: %w", err)
	}
	return nil
}

// post sends a JSON POST and decodes the response into out (if non-nil).
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Msg("encrypted-value engine returned error")
		return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
