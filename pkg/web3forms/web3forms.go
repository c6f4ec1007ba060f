package web3forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const DefaultEndpoint = "https://api.web3forms.com/submit"

// maxResponseBytes caps how much of the relay reply is read.
const maxResponseBytes = 64 << 10

var (
	ErrNotConfigured     = errors.New("web3forms: access key not configured")
	ErrMalformedResponse = errors.New("web3forms: malformed response")
)

// Payload holds the form fields posted to the relay.
type Payload struct {
	Name         string
	Email        string
	EmailSubject string // subject typed by the sender
	Subject      string // composite subject line shown in the inbox
	Message      string
}

// Response is the relay reply. Message is optional.
type Response struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"-"`
}

// Config configures a Client.
type Config struct {
	Endpoint  string
	AccessKey string
	Timeout   time.Duration
}

// Client posts contact submissions to the Web3Forms API.
type Client struct {
	endpoint   string
	accessKey  string
	httpClient *http.Client
}

// NewClient creates a client. A zero Timeout means 10 seconds.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		accessKey:  cfg.AccessKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// IsConfigured reports whether an access key is present.
func (c *Client) IsConfigured() bool {
	return c.accessKey != ""
}

// Send issues a single POST with the payload and decodes the JSON reply.
// The reply is decoded whatever the HTTP status; a body that is not JSON
// yields ErrMalformedResponse.
func (c *Client) Send(ctx context.Context, p Payload) (*Response, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	body, contentType, err := c.encode(p)
	if err != nil {
		return nil, fmt.Errorf("web3forms: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("web3forms: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web3forms: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("web3forms: read response: %w", err)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w (status %d): %v", ErrMalformedResponse, resp.StatusCode, err)
	}
	out.StatusCode = resp.StatusCode
	return &out, nil
}

func (c *Client) encode(p Payload) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"access_key", c.accessKey},
		{"name", p.Name},
		{"email", p.Email},
		{"email_subject", p.EmailSubject},
		{"subject", p.Subject},
		{"message", p.Message},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
