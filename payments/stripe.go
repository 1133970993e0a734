package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// LineItem is one cart line priced for the processor. UnitAmount is in the
// currency's smallest unit (cents).
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int
}

// Session is a created checkout session: the id the success redirect hands
// back and the hosted payment page URL the buyer is sent to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway is the payment-session contract checkout depends on. Create
// failures abort checkout before confirmation; Verify is the authoritative
// answer on whether a session was actually paid.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (Session, error)
	VerifySession(ctx context.Context, sessionID string) (bool, error)
}

// Client talks to the Stripe Checkout Sessions API.
type Client struct {
	secretKey  string
	apiURL     string
	currency   string
	httpClient *http.Client
}

// NewClient builds a client from the environment. STRIPE_API_URL is only
// set in tests, to point at a stub server.
func NewClient() (*Client, error) {
	secret := os.Getenv("STRIPE_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("stripe configuration missing")
	}
	apiURL := os.Getenv("STRIPE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.stripe.com"
	}
	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "hkd"
	}
	return &Client{
		secretKey:  secret,
		apiURL:     strings.TrimRight(apiURL, "/"),
		currency:   currency,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	Error         *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for i, item := range items {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", c.currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, err
	}
	if resp.Error != nil {
		return Session{}, fmt.Errorf("stripe error: %s", resp.Error.Message)
	}
	if resp.ID == "" || resp.URL == "" {
		return Session{}, fmt.Errorf("stripe returned incomplete session")
	}
	return Session{ID: resp.ID, URL: resp.URL}, nil
}

// VerifySession asks the processor for its own record of the session and
// reports whether it is paid. A redirect to the success URL proves nothing
// on its own.
func (c *Client) VerifySession(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("session id is empty")
	}
	resp, err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return false, err
	}
	if resp.Error != nil {
		return false, fmt.Errorf("stripe error: %s", resp.Error.Message)
	}
	return resp.PaymentStatus == "paid", nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*sessionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.secretKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach stripe: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var parsed sessionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse stripe response (%d): %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 400 && parsed.Error == nil {
		return nil, fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(raw))
	}
	return &parsed, nil
}
