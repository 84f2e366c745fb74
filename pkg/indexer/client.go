// Package indexer is an HTTP client for the Blockfrost-compatible blockchain
// indexing API, either called directly with a project id or through the
// daemon's credential-injecting proxy.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// ProjectIDHeader carries the indexer credential.
	ProjectIDHeader = "project_id"
	// BaseParam selects the upstream indexer when talking to the proxy.
	BaseParam = "base"

	defaultPageSize = 100
	defaultMaxPages = 50
	maxErrorBody    = 4 << 10
)

// ErrNotFound is returned when the indexer answers 404.
var ErrNotFound = errors.New("not found")

// UpstreamError describes a failed indexer call. StatusCode is zero when no
// HTTP response was received (transport failure, timeout, cancellation).
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("indexer %s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("indexer %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("indexer %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsTransport reports whether err is an UpstreamError without an HTTP response.
func IsTransport(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == 0
}

// Client talks to the indexing API.
type Client struct {
	baseURL      string
	projectID    string
	credential   func() (string, error)
	upstreamBase string
	httpClient   *http.Client
	limiter      *rate.Limiter
	pageSize     int
	maxPages     int
}

// Option configures a Client.
type Option func(*Client)

// WithProjectID sends key in the project_id header (direct indexer access).
func WithProjectID(key string) Option {
	return func(c *Client) { c.projectID = key }
}

// WithCredential reads the project id from fn before every request. An fn
// error fails the request before anything is sent.
func WithCredential(fn func() (string, error)) Option {
	return func(c *Client) { c.credential = fn }
}

// WithUpstreamBase adds ?base=<base> to every request (proxy access).
func WithUpstreamBase(base string) Option {
	return func(c *Client) { c.upstreamBase = base }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit limits requests to r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithPageSize sets the page size used for list endpoints.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages caps the number of pages read from a list endpoint.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// NewClient returns a client for the indexer (or proxy) at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
		pageSize:   defaultPageSize,
		maxPages:   defaultMaxPages,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// AddressAssets lists the asset units held by address, following pagination.
// It returns ErrNotFound when the address is unknown to the indexer.
func (c *Client) AddressAssets(ctx context.Context, address string) ([]model.AddressAsset, error) {
	path := "/addresses/" + url.PathEscape(address) + "/assets"
	var all []model.AddressAsset
	err := c.paginate(ctx, "address assets", path, func(body []byte) (int, error) {
		var page []model.AddressAsset
		if err := json.Unmarshal(body, &page); err != nil {
			return 0, err
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// AddressUTXOs lists the unspent outputs at address, following pagination.
// Both a bare JSON array and a {"value": [...]} envelope are accepted.
func (c *Client) AddressUTXOs(ctx context.Context, address string) ([]model.UTXO, error) {
	path := "/addresses/" + url.PathEscape(address) + "/utxos"
	var all []model.UTXO
	err := c.paginate(ctx, "address utxos", path, func(body []byte) (int, error) {
		page, err := decodeUTXOs(body)
		if err != nil {
			return 0, err
		}
		all = append(all, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Asset fetches the detail document for unit.
func (c *Client) Asset(ctx context.Context, unit string) (*model.AssetDetail, error) {
	body, err := c.get(ctx, "asset", "/assets/"+url.PathEscape(unit), nil)
	if err != nil {
		return nil, err
	}
	var detail model.AssetDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, &UpstreamError{Op: "asset", StatusCode: http.StatusOK, Err: fmt.Errorf("decode: %w", err)}
	}
	if detail.Fingerprint == "" {
		if fp, err := cardano.Fingerprint(detail.Asset); err == nil {
			detail.Fingerprint = fp
		}
	}
	return &detail, nil
}

// Health reports whether the indexer considers itself healthy.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.get(ctx, "health", "/health", nil)
	if err != nil {
		return err
	}
	var h struct {
		IsHealthy bool `json:"is_healthy"`
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return &UpstreamError{Op: "health", StatusCode: http.StatusOK, Err: fmt.Errorf("decode: %w", err)}
	}
	if !h.IsHealthy {
		return &UpstreamError{Op: "health", StatusCode: http.StatusOK, Body: "indexer reports unhealthy"}
	}
	return nil
}

// paginate reads pages until a short page, a 404 past the first page, or
// the page cap. A 404 on the first page is returned as ErrNotFound.
func (c *Client) paginate(ctx context.Context, op, path string, consume func([]byte) (int, error)) error {
	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("count", strconv.Itoa(c.pageSize))

		body, err := c.get(ctx, op, path, q)
		if err != nil {
			if page > 1 && errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		n, err := consume(body)
		if err != nil {
			return &UpstreamError{Op: op, StatusCode: http.StatusOK, Err: fmt.Errorf("decode page %d: %w", page, err)}
		}
		if n < c.pageSize {
			return nil
		}
	}
	zap.L().Warn("indexer pagination cap reached", zap.String("op", op), zap.Int("maxPages", c.maxPages))
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	key := c.projectID
	if c.credential != nil {
		k, err := c.credential()
		if err != nil {
			return nil, fmt.Errorf("indexer %s: %w", op, err)
		}
		key = k
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &UpstreamError{Op: op, Err: err}
		}
	}

	if q == nil {
		q = url.Values{}
	}
	if c.upstreamBase != "" {
		q.Set(BaseParam, c.upstreamBase)
	}
	target := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		target += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if key != "" {
		req.Header.Set(ProjectIDHeader, key)
	}

	zap.L().Debug("indexer request", zap.String("op", op), zap.String("path", path))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			zap.L().Error("error closing indexer response", zap.String("op", op), zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("indexer %s: %w", op, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	return body, nil
}

func decodeUTXOs(body []byte) ([]model.UTXO, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Value []model.UTXO `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		return envelope.Value, nil
	}
	var utxos []model.UTXO
	if err := json.Unmarshal(trimmed, &utxos); err != nil {
		return nil, err
	}
	return utxos, nil
}
