// Package petclient issues the GET against the pet service and extracts the
// "Pets" array from its response body.
package petclient

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

// PetsField is the response body key holding the row records.
const PetsField = "Pets"

// errorBodyLimit caps how much of a non-2xx body is kept in HTTPError.
const errorBodyLimit = 4 << 10

// ErrEmptyURL is returned when FetchPets is called before a URL is known.
var ErrEmptyURL = errors.New("petclient: empty url")

// ErrBodyTooLarge is returned when a response exceeds Client.MaxBody.
var ErrBodyTooLarge = errors.New("petclient: response body too large")

// Pet is one opaque row record, exactly as the service returned it.
type Pet = map[string]any

// Result is what one fetch produced.
type Result struct {
	Pets []Pet
	// FieldPresent is false when the body had no "Pets" key at all.
	FieldPresent bool
}

// Client wraps *http.Client for the pet service.
type Client struct {
	HTTP *http.Client
	// MaxBody bounds a successful response body in bytes. Zero reads it all.
	MaxBody int64
}

// New returns a Client. A timeout of zero leaves requests unbounded.
func New(timeout time.Duration) *Client {
	return NewWithTransport(timeout, nil)
}

// NewWithTransport lets tests inject a RoundTripper.
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	if timeout < 0 {
		timeout = 0
	}
	if tr == nil {
		tr = http.DefaultTransport
	}
	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// FetchPets issues one GET to url and extracts the "Pets" field.
// No query parameters or pagination are sent.
func (c *Client) FetchPets(ctx context.Context, url string) (Result, error) {
	if c == nil || c.HTTP == nil {
		return Result{}, errors.New("petclient: nil client")
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("petclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("petclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return Result{}, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	raw, err := readBody(resp.Body, c.MaxBody)
	if err != nil {
		return Result{}, err
	}
	return Decode(raw)
}

// Decode extracts the "Pets" array from a response body. The body must be a
// JSON object; a missing field yields an empty Result with FieldPresent unset.
// Numbers are kept as json.Number so large integers survive unchanged.
func Decode(raw []byte) (Result, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return Result{}, fmt.Errorf("petclient: decode body: %w", err)
	}

	field, ok := body[PetsField]
	if !ok {
		return Result{}, nil
	}

	res := Result{FieldPresent: true}
	if trimmed := bytes.TrimSpace(field); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return res, nil
	}
	dec := json.NewDecoder(bytes.NewReader(field))
	dec.UseNumber()
	if err := dec.Decode(&res.Pets); err != nil {
		return Result{}, fmt.Errorf("petclient: decode %q field: %w", PetsField, err)
	}
	return res, nil
}

// readBody reads r to the end, or fails with ErrBodyTooLarge once more than
// max bytes arrive.
func readBody(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("petclient: read body: %w", err)
		}
		return raw, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("petclient: read body: %w", err)
	}
	if int64(len(raw)) > max {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, max)
	}
	return raw, nil
}
