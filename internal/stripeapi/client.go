package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://api.stripe.com"
	apiVersion     = "2020-08-27"
	pageLimit      = 100
)

// Config is the transport configuration. Retry behavior is plain data so a
// policy change never requires touching the client code.
type Config struct {
	APIKey  string
	BaseURL string
	// MaxRetries bounds retry attempts beyond the first try.
	MaxRetries uint64
	// RetryableStatus decides which HTTP statuses are worth retrying.
	// Defaults to 429 and all 5xx.
	RetryableStatus func(status int) bool
	HTTPClient      *http.Client
}

// Client is a thin form-encoded client for the payment API. Both accounts in
// a migration get their own Client, differing only in API key.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a client from cfg, filling in defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("stripeapi: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RetryableStatus == nil {
		cfg.RetryableStatus = func(status int) bool {
			return status == http.StatusTooManyRequests || status >= 500
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 80 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

// Do performs one API call and decodes the response body. Mutating calls
// carry an idempotency key held stable across retries of the same call.
func (c *Client) Do(ctx context.Context, method, path string, params Record) (Record, error) {
	idempotencyKey := ""
	if method == http.MethodPost || method == http.MethodDelete {
		idempotencyKey = uuid.NewString()
	}

	op := func() (Record, error) {
		rec, err := c.roundTrip(ctx, method, path, params, idempotencyKey)
		if err != nil {
			if apiErr, ok := apiError(err); ok && !c.cfg.RetryableStatus(apiErr.Status) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return rec, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	return backoff.RetryWithData(op, policy)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, params Record, idempotencyKey string) (Record, error) {
	endpoint := c.cfg.BaseURL + path
	var body io.Reader
	if len(params) > 0 {
		encoded := encodeForm(params).Encode()
		if method == http.MethodGet || method == http.MethodDelete {
			endpoint += "?" + encoded
		} else {
			body = strings.NewReader(encoded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Stripe-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	if resp.StatusCode >= 400 {
		return nil, decodeError(dec, resp)
	}

	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return Record(rec), nil
}

func decodeError(dec *json.Decoder, resp *http.Response) error {
	apiErr := &Error{
		Status:    resp.StatusCode,
		Message:   resp.Status,
		RequestID: resp.Header.Get("Request-Id"),
	}
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := dec.Decode(&envelope); err == nil {
		apiErr.Type = envelope.Error.Type
		apiErr.Code = envelope.Error.Code
		if envelope.Error.Message != "" {
			apiErr.Message = envelope.Error.Message
		}
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, params Record) (Record, error) {
	return c.Do(ctx, http.MethodGet, path, params)
}

func (c *Client) post(ctx context.Context, path string, params Record) (Record, error) {
	return c.Do(ctx, http.MethodPost, path, params)
}

func (c *Client) delete(ctx context.Context, path string) (Record, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// forEach walks a paginated list endpoint in stable pagination order,
// invoking fn once per record. An error from fn stops the walk.
func (c *Client) forEach(ctx context.Context, path string, params Record, fn func(Record) error) error {
	startingAfter := ""
	for {
		page := Record{"limit": pageLimit}
		for k, v := range params {
			page[k] = v
		}
		if startingAfter != "" {
			page["starting_after"] = startingAfter
		}
		resp, err := c.get(ctx, path, page)
		if err != nil {
			return err
		}
		data := resp.Data()
		for _, rec := range data {
			if err := fn(rec); err != nil {
				return err
			}
		}
		if !resp.Bool("has_more") || len(data) == 0 {
			return nil
		}
		startingAfter = data[len(data)-1].String("id")
	}
}
