// Package payments talks to the hosted-checkout payment processor: creating
// checkout sessions and verifying the signatures on its webhook callbacks.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Error wraps any processor-side failure. It is retriable by the caller and
// never accompanies a local state change.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment processor error: %v", e.Err)
	}
	return fmt.Sprintf("payment processor error: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// CheckoutRequest describes a checkout session to create. Amounts are integer
// minor currency units.
type CheckoutRequest struct {
	AmountCents     int64
	Currency        string
	ItemName        string
	ItemDescription string
	BuyerEmail      string
	ListingID       int
	SuccessURL      string
	CancelURL       string

	// Fee-split routing; both set only when the platform takes a cut and
	// forwards the remainder to the seller's sub-account.
	ApplicationFeeCents int64
	DestinationAccount  string
}

// Session is the processor's view of a created checkout intent.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client is a thin client for the processor's checkout API.
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given API base (the production
// processor endpoint in main, an httptest server in tests).
func NewClient(secretKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		secretKey:  secretKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateCheckoutSession creates a hosted checkout session and returns it.
// The listing ID travels as opaque metadata so the webhook can correlate the
// completed payment back to a listing.
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", req.BuyerEmail)
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][product_data][name]", req.ItemName)
	if req.ItemDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", req.ItemDescription)
	}
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[listing_id]", strconv.Itoa(req.ListingID))
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)

	if req.DestinationAccount != "" {
		form.Set("payment_intent_data[application_fee_amount]", strconv.FormatInt(req.ApplicationFeeCents, 10))
		form.Set("payment_intent_data[transfer_data][destination]", req.DestinationAccount)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[PAYMENTS] Checkout session request failed: %v", err)
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1_048_576))
	if err != nil {
		return nil, &Error{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[PAYMENTS] Processor rejected checkout session: status %d", resp.StatusCode)
		return nil, &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, &Error{Err: fmt.Errorf("malformed session response: %w", err)}
	}
	if session.URL == "" {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "session response missing redirect url"}
	}
	return &session, nil
}
