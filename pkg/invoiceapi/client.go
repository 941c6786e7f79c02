// Package invoiceapi talks to the retail invoice provider that issues the
// purchase codes customers enter on the wheel. The provider is treated as an
// opaque data source: the core only ever reads purchase records through it.
package invoiceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
)

// ErrNotFound is returned when the provider has no invoice for the code.
var ErrNotFound = errors.New("invoice not found")

// PurchaseSource is the read-only contract the wheel core depends on.
type PurchaseSource interface {
	GetPurchase(ctx context.Context, code string) (*models.Purchase, error)
}

// Client is an invoice provider API client. Access tokens are cached on the
// client instance and refreshed on expiry; the token never lives in package
// state.
type Client struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Mock      bool
	client    *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new invoice provider client.
func NewClient(baseURL, apiKey, apiSecret string, mock bool) *Client {
	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		APISecret: apiSecret,
		Mock:      mock,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type invoiceResponse struct {
	Code       string `json:"code"`
	Total      int64  `json:"total"`
	BranchCode string `json:"branch_code"`
	IssuedAt   string `json:"issued_at"`
	Items      []struct {
		ProductCode string `json:"product_code"`
		ProductName string `json:"product_name"`
		Quantity    int    `json:"quantity"`
		Amount      int64  `json:"amount"`
	} `json:"items"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body := url.Values{}
	body.Set("api_key", c.APIKey)
	body.Set("api_secret", c.APISecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/oauth/token", strings.NewReader(body.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	c.token = tr.AccessToken
	// Renew a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// GetPurchase fetches the invoice for a purchase code.
func (c *Client) GetPurchase(ctx context.Context, code string) (*models.Purchase, error) {
	if c.Mock {
		return c.mockGetPurchase(code)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/invoices/"+url.PathEscape(code), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("invoice request returned status %d", resp.StatusCode)
	}

	var ir invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}
	return ir.toPurchase()
}

func (ir *invoiceResponse) toPurchase() (*models.Purchase, error) {
	issuedAt, err := time.Parse(time.RFC3339, ir.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid issued_at in invoice response: %w", err)
	}
	purchase := &models.Purchase{
		Code:        ir.Code,
		Total:       ir.Total,
		BranchCode:  ir.BranchCode,
		PurchasedAt: issuedAt,
	}
	for _, item := range ir.Items {
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			ProductCode: item.ProductCode,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
		})
	}
	return purchase, nil
}

// mockGetPurchase fabricates deterministic invoices for local development.
// Codes starting with "HD" resolve; anything else is not found.
func (c *Client) mockGetPurchase(code string) (*models.Purchase, error) {
	if !strings.HasPrefix(code, "HD") {
		return nil, ErrNotFound
	}
	total := int64(100000)
	for _, ch := range code {
		total += int64(ch) * 1000
	}
	return &models.Purchase{
		Code:        code,
		Total:       total,
		BranchCode:  "CN01",
		PurchasedAt: time.Now().Add(-1 * time.Hour),
		Items: []models.PurchaseItem{
			{ProductCode: "SKU001", ProductName: "Sample product", Quantity: 1, Amount: total},
		},
	}, nil
}
