// Package proxy forwards indexing-API requests to an allow-listed upstream,
// injecting the server-held project id so browsers never see it.
//
// A request to {prefix}/assets/{unit}?base={upstream} is forwarded to
// {upstream}/assets/{unit} with the remaining query, the method and the
// body unchanged.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/indexer"
	"go.uber.org/zap"
)

// ErrBaseNotAllowed is reported when the requested upstream is not allow-listed.
var ErrBaseNotAllowed = errors.New("indexer base not allowed")

// strippedHeaders are removed from upstream responses; the body is re-framed
// and already decoded by the time it reaches the client.
var strippedHeaders = []string{"Content-Encoding", "Transfer-Encoding", "Content-Length"}

type targetKey struct{}

// Handler is the indexing-API reverse proxy.
type Handler struct {
	prefix      string
	bases       map[string]*url.URL
	defaultBase string
	credential  func() (string, error)
	proxy       *httputil.ReverseProxy
}

// Option configures a Handler.
type Option func(*Handler)

// WithPrefix sets the mount path stripped from incoming requests.
func WithPrefix(prefix string) Option {
	return func(h *Handler) { h.prefix = strings.TrimRight(prefix, "/") }
}

// WithTransport replaces the upstream round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(h *Handler) {
		if rt != nil {
			h.proxy.Transport = rt
		}
	}
}

// New builds a proxy for the bases allowed by cfg. The credential is read
// from cfg on every request, so a missing key fails on use rather than here.
func New(cfg *config.Config, opts ...Option) (*Handler, error) {
	h := &Handler{
		bases:      map[string]*url.URL{},
		credential: cfg.RequireIndexerKey,
	}
	for _, raw := range cfg.IndexerBases() {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid indexer base %q", raw)
		}
		if h.defaultBase == "" {
			h.defaultBase = raw
		}
		h.bases[raw] = u
	}
	if h.defaultBase == "" {
		return nil, errors.New("no indexer base configured")
	}

	h.proxy = &httputil.ReverseProxy{
		Director:       h.direct,
		ModifyResponse: stripHeaders,
		ErrorHandler:   upstreamError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimRight(r.URL.Query().Get(indexer.BaseParam), "/")
	if base == "" {
		base = h.defaultBase
	}
	target, ok := h.bases[base]
	if !ok {
		zap.L().Warn("rejected indexer base", zap.String("base", base))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%v: %s", ErrBaseNotAllowed, base))
		return
	}

	key, err := h.credential()
	if err != nil {
		zap.L().Error("indexer proxy misconfigured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := context.WithValue(r.Context(), targetKey{}, forward{base: target, key: key})
	h.proxy.ServeHTTP(w, r.WithContext(ctx))
}

type forward struct {
	base *url.URL
	key  string
}

func (h *Handler) direct(req *http.Request) {
	f := req.Context().Value(targetKey{}).(forward)

	rest := strings.TrimPrefix(req.URL.Path, h.prefix)
	if rest != "" && !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	q := req.URL.Query()
	q.Del(indexer.BaseParam)

	req.URL.Scheme = f.base.Scheme
	req.URL.Host = f.base.Host
	req.URL.Path = strings.TrimRight(f.base.Path, "/") + rest
	req.URL.RawPath = ""
	req.URL.RawQuery = q.Encode()
	req.Host = f.base.Host

	req.Header.Set(indexer.ProjectIDHeader, f.key)
	// let the transport negotiate and decode compression itself
	req.Header.Del("Accept-Encoding")

	zap.L().Debug("proxying indexer request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path))
}

func stripHeaders(resp *http.Response) error {
	for _, h := range strippedHeaders {
		resp.Header.Del(h)
	}
	return nil
}

func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		zap.L().Debug("indexer proxy request cancelled", zap.String("path", r.URL.Path))
		return
	}
	zap.L().Error("indexer upstream unreachable", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusBadGateway, "indexer upstream unreachable")
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
