package gramgyan

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
)

const maxErrorBody = 64 << 10

// Client is the GramGyan SDK entry point.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a Client for a running gramgyan server.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL == "" {
		return nil, errors.New("gramgyan: base URL required (use WithBaseURL)")
	}
	u, err := url.Parse(cfg.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("gramgyan: invalid base URL %q", cfg.baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.baseURL, "/"),
		apiKey:  cfg.apiKey,
		http:    hc,
		obs:     obs,
	}, nil
}

// ProcessReport runs a report through the server pipeline and returns its English text.
func (c *Client) ProcessReport(ctx context.Context, r Report) (res ProcessResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("report.process", start, err) }()

	if err = c.do(ctx, http.MethodPost, "/process-report", r, &res); err != nil {
		return ProcessResult{}, fmt.Errorf("process report %s: %w", r.ID, err)
	}
	return res, nil
}

// TranscribeAudio transcribes the recording at audioURL.
func (c *Client) TranscribeAudio(ctx context.Context, audioURL string) (t Transcript, err error) {
	start := time.Now()
	defer func() { c.obs.observe("audio.transcribe", start, err) }()

	if err = c.do(ctx, http.MethodPost, "/transcribe-audio", transcribeRequest{AudioURL: audioURL}, &t); err != nil {
		return Transcript{}, fmt.Errorf("transcribe audio: %w", err)
	}
	return t, nil
}

// ValidateAnswer records a reviewer-approved answer for a report, making it
// eligible for reuse by similar questions.
func (c *Client) ValidateAnswer(ctx context.Context, reportID, answer string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("report.validate", start, err) }()

	path := "/reports/" + url.PathEscape(reportID) + "/validated-answer"
	if err = c.do(ctx, http.MethodPost, path, validatedAnswerRequest{Answer: answer}, nil); err != nil {
		return fmt.Errorf("validate report %s: %w", reportID, err)
	}
	return nil
}

// GetReport returns the stored report with the given ID.
func (c *Client) GetReport(ctx context.Context, reportID string) (rep StoredReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("report.get", start, err) }()

	if err = c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(reportID), nil, &rep); err != nil {
		return StoredReport{}, fmt.Errorf("get report %s: %w", reportID, err)
	}
	return rep, nil
}

// GetSolution returns the stored solution with the given ID.
func (c *Client) GetSolution(ctx context.Context, solutionID string) (sol Solution, err error) {
	start := time.Now()
	defer func() { c.obs.observe("solution.get", start, err) }()

	if err = c.do(ctx, http.MethodGet, "/solutions/"+url.PathEscape(solutionID), nil, &sol); err != nil {
		return Solution{}, fmt.Errorf("get solution %s: %w", solutionID, err)
	}
	return sol, nil
}

// VerifyKnowledge checks whether text is an accurate farming tip fit to share.
func (c *Client) VerifyKnowledge(ctx context.Context, text string) (v Verdict, err error) {
	start := time.Now()
	defer func() { c.obs.observe("knowledge.verify", start, err) }()

	if err = c.do(ctx, http.MethodPost, "/knowledge/verify", verifyRequest{Text: text}, &v); err != nil {
		return Verdict{}, fmt.Errorf("verify knowledge: %w", err)
	}
	return v, nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return readAPIError(resp)
	}
	return decodeBody(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeBody(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
