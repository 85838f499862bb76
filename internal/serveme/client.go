// Package serveme wraps the serveme.tf reservation HTTP API: availability
// search, booking creation and booking termination.
package serveme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const callTimeout = 10 * time.Second

// ErrRateLimited marks an upstream 429. The bot never retries these
// automatically; the user is told to wait.
var ErrRateLimited = errors.New("booking API rate limited")

// ServiceError carries a non-success upstream response. The message is shown
// to the user verbatim.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("booking API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the booking API. It is stateless and safe for concurrent
// use.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: callTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FindServers asks the API which servers are free for the given window.
// The search is a two step dance: fetch a prefilled reservation, then POST
// the window to the find_servers action URL it names.
func (c *Client) FindServers(ctx context.Context, start, end time.Time) (*FindResult, error) {
	var prefilled prefilledResponse
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/new", nil, &prefilled); err != nil {
		return nil, err
	}
	if prefilled.Actions.FindServers == "" {
		return nil, &ServiceError{StatusCode: http.StatusOK, Message: "prefilled reservation has no find_servers action"}
	}

	body := map[string]reservationBody{
		"reservation": {
			StartsAt: start.Format(time.RFC3339),
			EndsAt:   end.Format(time.RFC3339),
		},
	}
	var result FindResult
	if err := c.do(ctx, http.MethodPost, prefilled.Actions.FindServers, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateReservation books a server. Success is exactly HTTP 200; a 429 maps
// to ErrRateLimited; any other status becomes a ServiceError whose message is
// extracted from the nested errors field when present. The raw status code is
// returned alongside the error for handler-level logging.
func (c *Client) CreateReservation(ctx context.Context, req CreateRequest) (*Reservation, int, error) {
	body := reservationBody{
		StartsAt: req.StartsAt.Format(time.RFC3339),
		EndsAt:   req.EndsAt.Format(time.RFC3339),
		ServerID: req.ServerID,
		Password: req.Password,
		RCON:     req.RCON,
		FirstMap: req.FirstMap,
	}
	if req.ServerConfigID != 0 {
		id := req.ServerConfigID
		body.ServerConfigID = &id
	}

	status, raw, err := c.raw(ctx, http.MethodPost, c.baseURL, map[string]reservationBody{"reservation": body})
	if err != nil {
		return nil, 0, err
	}
	switch {
	case status == http.StatusOK:
		var envelope reservationEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Reservation == nil || envelope.Reservation.ID == 0 {
			return nil, status, &ServiceError{StatusCode: status, Message: "malformed reservation payload"}
		}
		return envelope.Reservation, status, nil
	case status == http.StatusTooManyRequests:
		return nil, status, ErrRateLimited
	default:
		return nil, status, &ServiceError{StatusCode: status, Message: extractErrorMessage(raw)}
	}
}

// EndReservation terminates a booking. Success is 200 or 204.
func (c *Client) EndReservation(ctx context.Context, id int64) (string, int, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, id)
	status, raw, err := c.raw(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return string(raw), status, &ServiceError{StatusCode: status, Message: extractErrorMessage(raw)}
	}
	return string(raw), status, nil
}

// do performs a request and decodes a 2xx JSON response into out.
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	status, raw, err := c.raw(ctx, method, url, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		if status == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		return &ServiceError{StatusCode: status, Message: extractErrorMessage(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding booking API response: %w", err)
		}
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding booking API request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, method, url+sep+"api_key="+c.apiKey, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("booking API call failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading booking API response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

// extractErrorMessage pulls the human-readable message out of an upstream
// error payload; falls back to the raw body.
func extractErrorMessage(raw []byte) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		var parts []string
		for field, errs := range envelope.Reservation.Errors {
			for _, e := range errs {
				parts = append(parts, fmt.Sprintf("%s %s", field, e.Error))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = "unknown error"
	}
	return msg
}
