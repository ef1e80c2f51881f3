// Package gateway is the client for the Flutterwave payment provider.
// The rest of the system only sees the Gateway interface: initiate a
// charge, verify a charge by the provider's transaction id.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 10 * time.Second

	// verifyAttempts bounds the retry loop on transient transport
	// failures. A definitive provider response is never retried.
	verifyAttempts = 3
	verifyBackoff  = 500 * time.Millisecond
)

// Provider verdicts for a charge, as reported by verify.
const (
	ChargeStatusPending    = "pending"
	ChargeStatusSuccessful = "successful"
	ChargeStatusFailed     = "failed"
)

var ErrGateway = errors.New("payment gateway request failed")

type Gateway interface {
	Initiate(ctx context.Context, charge *ChargeRequest) (*Charge, error)
	Verify(ctx context.Context, providerTransactionID string) (*Verification, error)
}

type ChargeRequest struct {
	TxRef       string
	Amount      decimal.Decimal
	Currency    string
	RedirectURL string
	Customer    Customer
	Title       string
}

type Customer struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
}

// Charge is the provider's answer to an initiate call: the hosted
// payment link the customer must be redirected to.
type Charge struct {
	PaymentLink string
}

// Verification is the provider's authoritative answer about a charge.
type Verification struct {
	Status      string
	ProviderRef string
	Amount      decimal.Decimal
	Currency    string
}

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Initiate(ctx context.Context, charge *ChargeRequest) (*Charge, error) {
	payload := map[string]any{
		"tx_ref":       charge.TxRef,
		"amount":       charge.Amount.String(),
		"currency":     charge.Currency,
		"redirect_url": charge.RedirectURL,
		"customer":     charge.Customer,
		"customizations": map[string]string{
			"title": charge.Title,
		},
	}

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Link string `json:"link"`
		} `json:"data"`
	}

	err := c.do(ctx, http.MethodPost, c.baseURL+"/payments", payload, &body)
	if err != nil {
		return nil, err
	}

	if body.Status != "success" || body.Data.Link == "" {
		return nil, ErrGateway
	}

	return &Charge{PaymentLink: body.Data.Link}, nil
}

// Verify re-confirms a charge with the provider. The webhook's own
// status parameter is never trusted for the success path; this call is
// the authority. Transport errors are retried a fixed number of times
// with a short backoff before surfacing a gateway error.
func (c *Client) Verify(ctx context.Context, providerTransactionID string) (*Verification, error) {
	url := fmt.Sprintf("%s/transactions/%s/verify", c.baseURL, providerTransactionID)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Status   string          `json:"status"`
			FlwRef   string          `json:"flw_ref"`
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"data"`
	}

	var err error
	for attempt := 1; attempt <= verifyAttempts; attempt++ {
		err = c.do(ctx, http.MethodGet, url, nil, &body)
		if err == nil {
			break
		}

		if attempt != verifyAttempts {
			select {
			case <-time.After(time.Duration(attempt) * verifyBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if body.Status != "success" {
		return nil, ErrGateway
	}

	return &Verification{
		Status:      body.Data.Status,
		ProviderRef: body.Data.FlwRef,
		Amount:      body.Data.Amount,
		Currency:    body.Data.Currency,
	}, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload, dst any) error {
	var reqBody io.Reader
	if payload != nil {
		js, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(js)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: provider returned %d", ErrGateway, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
