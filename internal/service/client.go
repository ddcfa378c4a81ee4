// Package service talks to the remote calculation service.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexiusacademia/civcalc/internal/drawing"
	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

// Service paths.
const (
	PathProbe       = "/"
	PathGeneratePDF = "/api/reports/generate_pdf"
	PathDrawings    = "/api/drawings/generate"
)

// DefaultTimeout bounds a single call. Zero in ClientConfig means no limit.
const DefaultTimeout = 60 * time.Second

// ClientConfig holds the settings for a Client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Capabilities is what the liveness probe reports.
type Capabilities struct {
	Status  string
	Service string
	PDF     bool
}

// Client calls the calculation service. It is safe for concurrent use.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient validates the base URL and builds a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("service base URL is required")
	}
	lower := strings.ToLower(base)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, fmt.Errorf("service base URL must start with http:// or https://, got %q", base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:      base,
		userAgent: cfg.UserAgent,
		http:      hc,
		logger:    logger,
	}, nil
}

// BaseURL is the service origin links are resolved against.
func (c *Client) BaseURL() string { return c.base }

// Link resolves a service path against the configured origin.
func (c *Client) Link(path string) (string, bool) {
	return ResolveLink(c.base, path)
}

// Probe reads the root document and its PDF capability flag.
func (c *Client) Probe(ctx context.Context) (Capabilities, error) {
	v, err := c.do(ctx, http.MethodGet, c.base+PathProbe, nil)
	if err != nil {
		return Capabilities{}, err
	}
	caps := Capabilities{}
	caps.Status, _ = v.Get("status").AsString()
	caps.Service, _ = v.Get("service").AsString()
	caps.PDF, _ = v.Get("weasyprint").AsBool()
	return caps, nil
}

// Design submits a normalized form for one category.
func (c *Client) Design(ctx context.Context, cat form.Category, payload form.Payload) (tree.Value, error) {
	return c.postJSON(ctx, cat.Endpoint(), payload)
}

// GeneratePDF asks the service to render an existing HTML report as PDF.
func (c *Client) GeneratePDF(ctx context.Context, reportPath string) (tree.Value, error) {
	return c.postJSON(ctx, PathGeneratePDF, map[string]string{"report_path": reportPath})
}

// GenerateDrawings requests drawing files for derived parameters.
func (c *Client) GenerateDrawings(ctx context.Context, req drawing.Request) (tree.Value, error) {
	return c.postJSON(ctx, PathDrawings, req)
}

// Fetch downloads a binary asset. link may be relative to the service.
func (c *Client) Fetch(ctx context.Context, link string) ([]byte, error) {
	abs, ok := c.Link(link)
	if !ok {
		return nil, fmt.Errorf("empty asset link")
	}
	resp, err := c.send(ctx, http.MethodGet, abs, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (tree.Value, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return tree.Value{}, fmt.Errorf("encode request for %s: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, c.base+path, raw)
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (tree.Value, error) {
	resp, err := c.send(ctx, method, url, body)
	if err != nil {
		return tree.Value{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return tree.Value{}, fmt.Errorf("read response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp.StatusCode, data)
		c.logger.Debug("service returned an error",
			zap.String("url", url),
			zap.String("status", apiErr.StatusText()),
			zap.String("message", apiErr.Message))
		return tree.Value{}, apiErr
	}

	v, err := tree.Decode(data)
	if err != nil {
		return tree.Value{}, fmt.Errorf("response from %s: %w", url, err)
	}
	return v, nil
}

func (c *Client) send(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, */*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("service call failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, err
	}
	c.logger.Debug("service call",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}
