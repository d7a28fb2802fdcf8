package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorKind classifies why a gateway call failed.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindUnavailable ErrorKind = "unavailable"
	KindRejected    ErrorKind = "rejected"
)

// GatewayError is returned for every failed gateway call.
type GatewayError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment gateway %s: %s", e.Kind, e.Message)
}

// Amount is a decimal money value as the gateway expects it.
type Amount struct {
	Value    json.Number `json:"value"`
	Currency string      `json:"currency"`
}

// NewAmount converts integer cents to the gateway's decimal form.
func NewAmount(cents int64, currency string) Amount {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return Amount{Value: json.Number(fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)), Currency: currency}
}

type Contact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Buyer struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Contact   Contact `json:"contact"`
}

type Item struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`
	TotalAmount Amount `json:"totalAmount"`
}

type RedirectURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Cancel  string `json:"cancel"`
}

// CheckoutRequest is the body of POST /v1/checkouts.
type CheckoutRequest struct {
	TotalAmount            Amount            `json:"totalAmount"`
	Buyer                  Buyer             `json:"buyer"`
	Items                  []Item            `json:"items"`
	RedirectURL            RedirectURLs      `json:"redirectUrl"`
	RequestReferenceNumber string            `json:"requestReferenceNumber"`
	Metadata               map[string]string `json:"metadata,omitempty"`
}

type CheckoutResponse struct {
	CheckoutID  string `json:"checkoutId"`
	RedirectURL string `json:"redirectUrl"`
}

// CheckoutStatus is the subset of GET /v1/checkouts/{id} the bridge reads.
type CheckoutStatus struct {
	ID                     string `json:"id"`
	Status                 string `json:"status"`
	RequestReferenceNumber string `json:"requestReferenceNumber"`
}

// Client talks to the hosted checkout API. It makes exactly one attempt per
// call; the caller decides what a failure means for the order.
type Client struct {
	baseURL    string
	publicKey  string
	secretKey  string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(baseURL, publicKey, secretKey string, timeout time.Duration, logger *log.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicKey:  publicKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CreateCheckout opens a hosted checkout session.
func (c *Client) CreateCheckout(ctx context.Context, in CheckoutRequest) (*CheckoutResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode checkout request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", basicAuth(c.publicKey))

	var out CheckoutResponse
	if err := c.do(req, &out); err != nil {
		c.logger.Printf("payment gateway: create checkout failed reference=%s err=%v", in.RequestReferenceNumber, err)
		return nil, err
	}
	if out.CheckoutID == "" || out.RedirectURL == "" {
		return nil, &GatewayError{Kind: KindRejected, StatusCode: http.StatusOK, Message: "response is missing checkoutId or redirectUrl"}
	}
	return &out, nil
}

// GetCheckout fetches the current status of a checkout session.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*CheckoutStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/checkouts/"+url.PathEscape(checkoutID), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	key := c.secretKey
	if key == "" {
		key = c.publicKey
	}
	req.Header.Set("Authorization", basicAuth(key))

	var out CheckoutStatus
	if err := c.do(req, &out); err != nil {
		c.logger.Printf("payment gateway: status poll failed checkout_id=%s err=%v", checkoutID, err)
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return classifyTransport(err)
	}
	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &GatewayError{Kind: KindRejected, StatusCode: resp.StatusCode, Message: "unreadable response: " + err.Error()}
	}
	return nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GatewayError{Kind: KindTimeout, Message: "request timed out"}
	}
	return &GatewayError{Kind: KindUnavailable, Message: err.Error()}
}

func classifyStatus(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	switch {
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return &GatewayError{Kind: KindTimeout, StatusCode: code, Message: msg}
	case code == http.StatusTooManyRequests || code >= 500:
		return &GatewayError{Kind: KindUnavailable, StatusCode: code, Message: msg}
	default:
		return &GatewayError{Kind: KindRejected, StatusCode: code, Message: msg}
	}
}

func basicAuth(key string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"))
}
