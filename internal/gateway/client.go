// Package gateway is the JSON-over-HTTP client for the external payment
// collaborator. Responses are validated into typed results at this boundary;
// nothing above it ever sees a raw response body.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kursline/kursline/internal/app/model"
)

var (
	// ErrGatewayUnavailable covers transport failures and non-200 responses.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrBadGatewayResponse covers 200 responses whose body fails validation.
	ErrBadGatewayResponse = errors.New("malformed payment gateway response")
)

const defaultTimeout = 10 * time.Second

// Session is the provider payment session returned by checkout.
type Session struct {
	TransactionID string
	PayURL        string
}

// Client talks to the payment gateway.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a gateway client for the given base URL.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type createSessionRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type createSessionResponse struct {
	PayURL string `json:"pay_url"`
}

// CreateSession opens a payment session for the given pending transaction.
func (c *Client) CreateSession(ctx context.Context, txn *model.Transaction) (*Session, error) {
	var resp createSessionResponse
	err := c.post(ctx, "/v1/sessions", createSessionRequest{
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.PayURL == "" {
		return nil, fmt.Errorf("%w: missing pay_url", ErrBadGatewayResponse)
	}
	return &Session{TransactionID: txn.ID, PayURL: resp.PayURL}, nil
}

type statusRequest struct {
	TransactionID string `json:"transaction_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// Status returns the current settlement status for a transaction.
func (c *Client) Status(ctx context.Context, transactionID string) (model.SettlementStatus, error) {
	var resp statusResponse
	if err := c.post(ctx, "/v1/status", statusRequest{TransactionID: transactionID}, &resp); err != nil {
		return "", err
	}

	status := model.SettlementStatus(resp.Status)
	switch status {
	case model.SettlementPending, model.SettlementCaptured, model.SettlementFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrBadGatewayResponse, resp.Status)
	}
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	// Success vs failure only; no per-code branching above this point.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadGatewayResponse, err)
	}
	return nil
}
