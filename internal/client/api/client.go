// Package api is the HTTP client the terminal tools use to talk to the
// tracker backend. Backend error envelopes are mapped back to sentinel errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError is any failure other than not-found or unauthorized: the
// request never completed, or the backend answered with an unexpected status.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("transport: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("HTTP %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is a small JSON client for the tracker API. The zero value is not
// usable; build one with New.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New returns a client for baseURL. A non-positive timeout means no timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return "", nil, err
	}
	return out.Token, out.User, nil
}

// Track looks a shipment up by tracking number. No token is required.
func (c *Client) Track(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	var out struct {
		Shipment *domain.Shipment `json:"shipment"`
	}
	if err := c.do(ctx, http.MethodGet, "/shipments/track/"+url.PathEscape(trackingNumber), nil, &out); err != nil {
		return nil, err
	}
	if out.Shipment == nil {
		return nil, ErrNotFound
	}
	return out.Shipment, nil
}

// Route fetches the server-side resolution of a shipment's route.
func (c *Client) Route(ctx context.Context, trackingNumber string) (*tracking.Resolution, error) {
	var out tracking.Resolution
	if err := c.do(ctx, http.MethodGet, "/shipments/track/"+url.PathEscape(trackingNumber)+"/route", nil, &out); err != nil {
		return nil, err
	}
	out.Presentation = out.Status.Presentation()
	return &out, nil
}

// ListOptions narrows a shipments listing.
type ListOptions struct {
	// Mine lists only the caller's shipments; otherwise the admin listing is used.
	Mine   bool
	Status string
	Search string
}

// Shipments lists shipments, newest first.
func (c *Client) Shipments(ctx context.Context, opts ListOptions) ([]domain.Shipment, error) {
	path := "/shipments"
	if opts.Mine {
		path += "/mine"
	}
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Shipments []domain.Shipment `json:"shipments"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Shipments, nil
}

// Notifications returns the caller's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]domain.Notification, error) {
	var out struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/notification", nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// MarkRead flags one notification as read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/notification/"+url.PathEscape(id)+"/read", nil, nil)
}

type messageEnvelope struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env messageEnvelope
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		default:
			return &TransportError{Status: resp.StatusCode, Message: env.Message}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
