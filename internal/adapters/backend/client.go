// Package backend talks to the service that runs the scraping and embedding jobs: JSON control
// calls over HTTP and the per-job server-sent event log streams.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/target/grailed-admin/internal/domain/job"
	"github.com/target/grailed-admin/internal/ports"
	"golang.org/x/net/publicsuffix"
)

const maxErrorBody = 2048

// Config controls how the client reaches the backend.
type Config struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:8000/api/.
	BaseURL string
	// Timeout bounds control calls. Log streams are bounded only by their context.
	Timeout   time.Duration
	UserAgent string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client implements ports.JobBackend and ports.LogStreamer.
type Client struct {
	base      *url.URL
	control   *http.Client
	stream    *http.Client
	userAgent string
	logger    *slog.Logger
}

var (
	_ ports.JobBackend  = (*Client)(nil)
	_ ports.LogStreamer = (*Client)(nil)
)

// NewClient validates cfg and builds a client. Both HTTP clients share a cookie jar so a
// session cookie set by the backend is replayed on the stream requests.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http or https, got %q", base.Scheme)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		control:   &http.Client{Timeout: timeout, Jar: jar, Transport: transport},
		stream:    &http.Client{Jar: jar, Transport: transport},
		userAgent: cfg.UserAgent,
		logger:    logger.With("component", "backend_client"),
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) resolve(path string) string {
	return c.base.ResolveReference(&url.URL{Path: path}).String()
}

func endpoint(kind job.Kind, op operation) (string, error) {
	paths, ok := endpoints[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", job.ErrUnknownKind, kind)
	}
	return paths[op], nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// Start asks the backend to start kind.
func (c *Client) Start(ctx context.Context, kind job.Kind) (ports.Ack, error) {
	return c.kindCall(ctx, kind, opStart, http.MethodPost)
}

// Stop asks the backend to stop kind.
func (c *Client) Stop(ctx context.Context, kind job.Kind) (ports.Ack, error) {
	return c.kindCall(ctx, kind, opStop, http.MethodPost)
}

func (c *Client) kindCall(ctx context.Context, kind job.Kind, op operation, method string) (ports.Ack, error) {
	path, err := endpoint(kind, op)
	if err != nil {
		return ports.Ack{}, err
	}
	var resp messageResponse
	if err := c.doJSON(ctx, method, path, nil, &resp); err != nil {
		return ports.Ack{}, err
	}
	return ports.Ack{Message: resp.Message}, nil
}

// Status fetches the current job status. Only message is required; the summary fields are read
// when present.
func (c *Client) Status(ctx context.Context, kind job.Kind) (job.StatusReport, error) {
	path, err := endpoint(kind, opStatus)
	if err != nil {
		return job.StatusReport{}, err
	}
	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return job.StatusReport{}, err
	}
	return statusReportFrom(raw), nil
}

func statusReportFrom(raw map[string]any) job.StatusReport {
	field := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := raw[k]; ok && v != nil {
				return stringify(v)
			}
		}
		return ""
	}
	return job.StatusReport{
		Message:            field("message"),
		TotalItems:         field("total_items"),
		LastBrandScraped:   field("last_brand_scrapped", "last_brand_scraped"),
		LastScrollCount:    field("last_scroll_count"),
		LastScrapeTime:     field("last_scrape_time"),
		RemainingDesigners: field("remaining_designer", "remaining_designers"),
		StorageUsed:        field("mongodb_storage", "storage_used"),
		IndexTotalRecords:  field("index_total_record", "index_total_records"),
		LastEmbedTime:      field("last_embed_time"),
		IndexSize:          field("index_size"),
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// DeleteBySubstrings removes every item whose title contains one of substrings.
func (c *Client) DeleteBySubstrings(ctx context.Context, substrings []string) (ports.Ack, error) {
	return c.postMessage(ctx, pathDeleteBySubstring, map[string]any{"substrings": substrings})
}

// DeleteByDesigners removes every item from the given designers.
func (c *Client) DeleteByDesigners(ctx context.Context, designers []string) (ports.Ack, error) {
	return c.postMessage(ctx, pathDeleteByDesigners, map[string]any{"designers": designers})
}

// DeleteLowCountDesigners removes designers with fewer items than threshold.
func (c *Client) DeleteLowCountDesigners(ctx context.Context, threshold int) (ports.Ack, error) {
	return c.postMessage(ctx, pathDeleteLowCount, map[string]any{"threshold": threshold})
}

func (c *Client) postMessage(ctx context.Context, path string, body any) (ports.Ack, error) {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return ports.Ack{}, err
	}
	return ports.Ack{Message: resp.Message}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.control.Do(req)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &transportError{op: op, err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
