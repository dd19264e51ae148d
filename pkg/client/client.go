// Package client is a small HTTP client for the registry API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Report is the body of a lost or found submission.
type Report struct {
	SerialNumber string   `json:"serial_number"`
	Status       string   `json:"status"`
	Email        string   `json:"email"`
	Model        string   `json:"model,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	DateReported string   `json:"date_reported"`
}

type SubmitResult struct {
	Matched       bool   `json:"matched"`
	Message       string `json:"message"`
	FinderContact string `json:"finder_contact,omitempty"`
	LoserContact  string `json:"loser_contact,omitempty"`
}

type MapPoint struct {
	Status       string    `json:"status"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	DateReported time.Time `json:"date_reported"`
	Model        string    `json:"model"`
}

type Stats struct {
	Lost     int64 `json:"lost"`
	Found    int64 `json:"found"`
	Reunited int64 `json:"reunited"`
}

type LookupResult struct {
	Match  bool      `json:"match"`
	Report *MapPoint `json:"report,omitempty"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Kind    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// Client talks to one registry server.
type Client struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	HTTP  *http.Client
}

// NewClient 创建客户端实例
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Submit(ctx context.Context, r Report) (*SubmitResult, error) {
	var out SubmitResult
	if err := c.do(ctx, http.MethodPost, "/reports", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the public map points. status may be empty, "lost" or "found".
func (c *Client) List(ctx context.Context, status string) ([]MapPoint, error) {
	path := "/reports"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []MapPoint
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Lookup(ctx context.Context, serial string) (*LookupResult, error) {
	var out LookupResult
	if err := c.do(ctx, http.MethodGet, "/reports/lookup?serial_number="+url.QueryEscape(serial), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
