// Package gemini talks to the Google Generative Language REST API.
package gemini

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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gramgyan/gramgyan/internal/domain"
	"github.com/gramgyan/gramgyan/internal/metrics"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

const (
	providerName   = "gemini"
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 4 << 10
	apiKeyHeader   = "x-goog-api-key"
)

// Config holds the Gemini provider settings.
type Config struct {
	BaseURL string
	// APIKeys are tried in order; a 429 moves to the next key.
	APIKeys    []string
	Model      string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// upstreamError is a 5xx or 408 answer from the API.
type upstreamError struct {
	status int
	msg    string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("gemini upstream %d: %s", e.status, e.msg)
}

func (e *upstreamError) Unwrap() error { return domain.ErrProviderError }

// Temporary reports whether the failure is worth retrying later.
func (e *upstreamError) Temporary() bool { return e.status/100 == 5 }

// temporary is implemented by errors that may clear up on their own.
type temporary interface {
	Temporary() bool
}

// keyRing hands out API keys and rotates past rate-limited ones.
type keyRing struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

func (r *keyRing) current() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.idx], r.idx
}

// rotate advances past the key at position from. Concurrent callers that saw
// the same exhausted key rotate only once.
func (r *keyRing) rotate(from int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx == from {
		r.idx = (r.idx + 1) % len(r.keys)
	}
}

type client struct {
	hc      *http.Client
	baseURL string
	model   string
	keys    *keyRing
	logger  *zap.Logger
}

func newClient(cfg *Config) (*client, error) {
	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("gemini: at least one API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: model is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &client{
		hc:      &http.Client{Timeout: timeout},
		baseURL: baseURL,
		model:   strings.TrimPrefix(cfg.Model, "models/"),
		keys:    &keyRing{keys: keys},
		logger:  logger,
	}, nil
}

func (c *client) modelURL(action string) string {
	u := c.baseURL + "/v1beta/models/" + url.PathEscape(c.model)
	if action != "" {
		u += ":" + action
	}
	return u
}

// do sends one API call, moving to the next key on 429 until every key has
// been tried once.
func (c *client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	for attempt := 0; attempt < len(c.keys.keys); attempt++ {
		key, idx := c.keys.current()

		status, err := c.send(ctx, method, endpoint, key, body, out)
		if err == nil {
			return nil
		}
		if status != http.StatusTooManyRequests {
			return err
		}

		c.keys.rotate(idx)
		metrics.ProviderKeyRotationsTotal.WithLabelValues(providerName).Inc()
		c.logger.Warn("Gemini key rate limited, rotating",
			zap.Int("key_index", idx),
			zap.Int("attempt", attempt+1),
		)
	}
	return fmt.Errorf("all %d gemini keys exhausted: %w", len(c.keys.keys), domain.ErrRateLimited)
}

func (c *client) send(ctx context.Context, method, endpoint, key string, body []byte, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	// The key must stay out of the URL, which transport errors quote.
	req.Header.Set(apiKeyHeader, key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("gemini request: %s: %w", redact(transportCause(err), key), domain.ErrProviderError)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, domain.ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := redact(apiErrorMessage(slurp), key)
		if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode/100 == 5 {
			return resp.StatusCode, &upstreamError{status: resp.StatusCode, msg: msg}
		}
		return resp.StatusCode, fmt.Errorf("gemini API error %d: %s: %w", resp.StatusCode, msg, domain.ErrProviderError)
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %v: %w", err, domain.ErrProviderError)
	}
	return resp.StatusCode, nil
}

// apiErrorMessage extracts error.message from a Google API error body.
func apiErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// transportCause strips the method and URL that *url.Error prepends.
func transportCause(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}

func redact(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "[redacted]")
}

func (c *client) healthCheck(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, c.modelURL(""), nil, nil); err != nil {
		return fmt.Errorf("get model %s: %w", c.model, err)
	}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case isTemporary(err):
		return "upstream_unavailable"
	default:
		return "api_error"
	}
}

func isTemporary(err error) bool {
	var t temporary
	return errors.As(err, &t) && t.Temporary()
}
