package tuvibe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultUploadRoot prefixes relative asset paths returned by the backend.
const DefaultUploadRoot = "/uploads/"

const unexpectedResponse = "Unexpected response from server"

// Config configures the backend client.
type Config struct {
	BaseURL    string
	UploadRoot string
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit caps outbound requests per second; zero disables limiting.
	RateLimit rate.Limit
	Burst     int
	Logger    *slog.Logger
}

// Client talks to the TuVibe REST backend.
type Client struct {
	baseURL    string
	uploadRoot string
	client     *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a client for the configured backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tuvibe: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("tuvibe: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	uploadRoot := cfg.UploadRoot
	if uploadRoot == "" {
		uploadRoot = DefaultUploadRoot
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		uploadRoot: uploadRoot,
		client:     httpClient,
		logger:     logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(cfg.RateLimit, burst)
	}
	return c, nil
}

// BaseURL returns the backend origin the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveAsset applies the shared asset rule using the configured upload root.
func (c *Client) ResolveAsset(path string) string {
	return ResolveAssetURL(c.uploadRoot, path)
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Outcome is the decoded success branch of an envelope.
type Outcome struct {
	Message    string
	Pagination *Pagination
}

func (c *Client) do(ctx context.Context, sess Session, method, path string, query url.Values, payload any, target any) (Outcome, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Outcome{}, fmt.Errorf("tuvibe: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, sess, method, path, query, body, contentType, target)
}

func (c *Client) doMultipart(ctx context.Context, sess Session, method, path string, form *multipartForm, target any) (Outcome, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return Outcome{}, err
	}
	return c.send(ctx, sess, method, path, nil, body, contentType, target)
}

func (c *Client) send(ctx context.Context, sess Session, method, path string, query url.Values, body io.Reader, contentType string, target any) (Outcome, error) {
	if !sess.Valid() {
		return Outcome{}, ErrMissingCredential
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Outcome{}, &RequestError{Kind: KindNetwork, Method: method, Path: path, Err: err}
		}
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return Outcome{}, fmt.Errorf("tuvibe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return Outcome{}, &RequestError{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "backend request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}, &RequestError{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && env.message() != "" {
			msg = env.message()
		}
		return Outcome{}, &RequestError{Kind: KindRejected, Method: method, Path: path, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return Outcome{}, &RequestError{Kind: KindRejected, Method: method, Path: path, Status: resp.StatusCode, Message: unexpectedResponse, Err: decodeErr}
	}
	if !env.Success {
		msg := env.message()
		if msg == "" {
			msg = "Request was not successful"
		}
		return Outcome{}, &RequestError{Kind: KindRejected, Method: method, Path: path, Status: resp.StatusCode, Message: msg}
	}
	if target != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return Outcome{}, &RequestError{Kind: KindRejected, Method: method, Path: path, Status: resp.StatusCode, Message: unexpectedResponse, Err: err}
		}
	}
	return Outcome{Message: env.Message, Pagination: env.Pagination}, nil
}

func pageFrom[T any](items []T, outcome Outcome) Page[T] {
	total := len(items)
	if outcome.Pagination != nil && outcome.Pagination.Total > 0 {
		total = outcome.Pagination.Total
	}
	return Page[T]{Items: items, Total: total, Paginated: outcome.Pagination != nil}
}
