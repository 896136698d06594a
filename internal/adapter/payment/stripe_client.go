package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gb112302/agriconnect/internal/app/config"
	"github.com/gb112302/agriconnect/internal/platform/logger"
)

// stripeClient talks to a Stripe-compatible REST API with form-encoded
// requests and bearer auth.
type stripeClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	log        logger.Logger
}

func NewStripeGateway(cfg config.PaymentConfig, log logger.Logger) Gateway {
	return &stripeClient{
		baseURL:   strings.TrimRight(cfg.GatewayURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *stripeClient) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	// The API expects the amount in the smallest currency unit.
	form.Set("amount", strconv.FormatInt(int64(math.Round(amount*100)), 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var resp intentResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", form, &resp); err != nil {
		return nil, err
	}
	return intentFromResponse(&resp), nil
}

func (c *stripeClient) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	var resp intentResponse
	path := "/v1/payment_intents/" + url.PathEscape(intentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return intentFromResponse(&resp), nil
}

func (c *stripeClient) Refund(ctx context.Context, intentID string) (string, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", form, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *stripeClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(data, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			c.log.Warnf("Payment gateway returned %d: %s", resp.StatusCode, apiErr.Error.Message)
			return fmt.Errorf("payment gateway error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func intentFromResponse(resp *intentResponse) *Intent {
	return &Intent{
		ID:           resp.ID,
		ClientSecret: resp.ClientSecret,
		Status:       resp.Status,
		Amount:       resp.Amount,
		Currency:     resp.Currency,
	}
}
