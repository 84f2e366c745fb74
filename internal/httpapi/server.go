// Package httpapi serves the registry over HTTP: the indexer proxy, gallery
// and asset lookups, IPFS pinning, mint records, the 3D viewer script and a
// health endpoint.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shamank/artpass-sdk-go/pkg/sdk"
	"github.com/shamank/artpass-sdk-go/pkg/storage"
	"github.com/shamank/artpass-sdk-go/pkg/viewer"
)

// Route prefixes.
const (
	IndexerPrefix = "/api/indexer"
	ViewerPath    = "/viewer/model-viewer.js"
)

// Server routes HTTP requests to a Registry.
type Server struct {
	registry  sdk.Registry
	proxy     http.Handler
	maxUpload int64
	mux       *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithProxy mounts h under IndexerPrefix.
func WithProxy(h http.Handler) Option {
	return func(s *Server) { s.proxy = h }
}

// WithMaxUpload caps pinned file uploads. Default storage.MaxPinSize.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New returns a server for reg.
func New(reg sdk.Registry, opts ...Option) *Server {
	s := &Server{registry: reg, maxUpload: storage.MaxPinSize, mux: http.NewServeMux()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.routes()
	return s
}

// Handler returns the routes wrapped in request id and access log middleware.
func (s *Server) Handler() http.Handler {
	return RequestID(AccessLog(s.mux))
}

func (s *Server) routes() {
	if s.proxy != nil {
		s.mux.Handle(IndexerPrefix+"/", s.proxy)
	}
	s.mux.HandleFunc("GET /api/gallery/{address}", s.handleGallery)
	s.mux.HandleFunc("GET /api/assets/{unit}", s.handleAsset)
	s.mux.HandleFunc("POST /api/pin/file", s.handlePinFile)
	s.mux.HandleFunc("POST /api/pin/json", s.handlePinJSON)
	s.mux.HandleFunc("GET /api/mints", s.handleMints)
	s.mux.HandleFunc("GET /api/mints/{tx}/metadata", s.handleMintMetadata)
	s.mux.HandleFunc("GET "+ViewerPath, s.handleViewer)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	previews, err := s.registry.Gallery(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := map[string]any{"assets": previews, "count": len(previews)}
	for _, p := range previews {
		if viewer.Needed(p.MediaType) {
			resp["viewer"] = ViewerPath
			break
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	p, err := s.registry.Asset(r.Context(), r.PathValue("unit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
	URI      string `json:"uri"`
}

func (s *Server) handlePinFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
			return
		}
		writeError(w, r, fmt.Errorf("%w: file: %v", errBadRequest, err))
		return
	}
	defer file.Close()

	name := header.Filename
	if v := strings.TrimSpace(r.FormValue("name")); v != "" {
		name = v
	}
	if err := (storage.PinRequest{Name: name, Size: header.Size}).Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	cid, err := s.registry.PinFile(r.Context(), name, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pinResponse{IpfsHash: cid, URI: storage.IpfsPrefix + cid})
}

type pinJSONRequest struct {
	Name    string `json:"name"`
	Content any    `json:"content"`
}

func (s *Server) handlePinJSON(w http.ResponseWriter, r *http.Request) {
	var req pinJSONRequest
	if err := decodeJSON(r, &req, 1<<20); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Content == nil {
		writeError(w, r, fmt.Errorf("%w: content is required", errBadRequest))
		return
	}
	cid, err := s.registry.PinJSON(r.Context(), req.Name, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pinResponse{IpfsHash: cid, URI: storage.IpfsPrefix + cid})
}

func (s *Server) handleMints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("tx") != "":
		rec, err := s.registry.MintRecord(q.Get("tx"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case q.Get("unit") != "":
		recs, err := s.registry.MintRecordsByUnit(q.Get("unit"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	default:
		writeError(w, r, fmt.Errorf("%w: tx or unit query parameter is required", errBadRequest))
	}
}

func (s *Server) handleMintMetadata(w http.ResponseWriter, r *http.Request) {
	doc, err := s.registry.MintMetadata(r.Context(), r.PathValue("tx"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	script, err := s.registry.Viewer().Load(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(script)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := s.registry.Health(r.Context())
	code := http.StatusOK
	if err != nil {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func decodeJSON(r *http.Request, v any, limit int64) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if int64(len(body)) > limit {
		return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, limit)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
