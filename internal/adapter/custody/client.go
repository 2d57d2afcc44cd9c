// Package custody is the HTTP client for the external asset custody
// service, which moves backing-asset units between holder accounts and
// the pooled vault.
package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.CustodyService over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a new custody service client.
func NewClient(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

type moveToVaultRequest struct {
	Amount   uint64 `json:"amount"`
	From     string `json:"from"`
	VaultRef string `json:"vault_ref"`
}

type moveFromVaultRequest struct {
	Amount              uint64 `json:"amount"`
	VaultRef            string `json:"vault_ref"`
	To                  string `json:"to"`
	VaultAuthorityProof string `json:"vault_authority_proof"`
}

// MoveToVault transfers asset units from a holder account into the vault.
func (c *Client) MoveToVault(ctx context.Context, amount uint64, from string, vaultRef string) error {
	req := moveToVaultRequest{Amount: amount, From: from, VaultRef: vaultRef}
	if err := c.post(ctx, "/v1/transfers/to-vault", req); err != nil {
		return fmt.Errorf("move to vault: %w", err)
	}
	return nil
}

// MoveFromVault releases vault funds to a holder account on the vault
// authority's proof.
func (c *Client) MoveFromVault(ctx context.Context, amount uint64, vaultRef string, to string, vaultAuthorityProof string) error {
	req := moveFromVaultRequest{
		Amount:              amount,
		VaultRef:            vaultRef,
		To:                  to,
		VaultAuthorityProof: vaultAuthorityProof,
	}
	if err := c.post(ctx, "/v1/transfers/from-vault", req); err != nil {
		return fmt.Errorf("move from vault: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
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
			Msg("custody service returned error")
		return fmt.Errorf("custody returned status %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
