// Package indexerstub serves an in-process fake of the indexing API for
// tests. Fixtures and failure codes are configured per path and every hit
// is recorded.
package indexerstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/model"
)

// Server is a fake indexing API.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	assets     map[string][]model.AddressAsset
	utxos      map[string][]model.UTXO
	details    map[string]*model.AssetDetail
	status     map[string]int
	drop       map[string]bool
	hits       map[string]int
	headers    []http.Header
	envelope   bool
	delay      time.Duration
	requireKey string
	healthy    bool
}

// New starts a stub and closes it when the test ends. Networking failures
// in restricted sandboxes skip the test.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		assets:  map[string][]model.AddressAsset{},
		utxos:   map[string][]model.UTXO{},
		details: map[string]*model.AssetDetail{},
		status:  map[string]int{},
		drop:    map[string]bool{},
		hits:    map[string]int{},
		healthy: true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /addresses/{address}/assets", s.handleAssets)
	mux.HandleFunc("GET /addresses/{address}/utxos", s.handleUTXOs)
	mux.HandleFunc("GET /assets/{unit}", s.handleDetail)
	mux.HandleFunc("GET /health", s.handleHealth)

	func() {
		defer func() {
			if r := recover(); r != nil {
				if strings.Contains(fmt.Sprint(r), "operation not permitted") {
					t.Skip("network operations not permitted in sandbox")
				}
				panic(r)
			}
		}()
		s.Server = httptest.NewServer(s.wrap(mux))
	}()
	t.Cleanup(s.Close)
	return s
}

// AddressPath, UTXOPath and AssetPath return the request paths used as keys
// for Fail, Drop and Hits.
func AddressPath(address string) string { return "/addresses/" + address + "/assets" }
func UTXOPath(address string) string    { return "/addresses/" + address + "/utxos" }
func AssetPath(unit string) string      { return "/assets/" + unit }

// SetAddressAssets sets the units listed for address.
func (s *Server) SetAddressAssets(address string, units ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]model.AddressAsset, 0, len(units))
	for _, u := range units {
		list = append(list, model.AddressAsset{Unit: u, Quantity: "1"})
	}
	s.assets[address] = list
}

// SetUTXOs sets the unspent outputs at address.
func (s *Server) SetUTXOs(address string, utxos ...model.UTXO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utxos[address] = utxos
}

// SetAsset registers the detail document served for d.Asset.
func (s *Server) SetAsset(d *model.AssetDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[d.Asset] = d
}

// Fail makes path answer with code.
func (s *Server) Fail(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[path] = code
}

// Drop makes path close the connection without responding.
func (s *Server) Drop(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop[path] = true
}

// UseEnvelope wraps UTXO pages in {"value": [...]}.
func (s *Server) UseEnvelope(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = on
}

// SetDelay delays every response by d or until the request is cancelled.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RequireProjectID rejects requests without the given project_id header
// with 403, as the real indexer does.
func (s *Server) RequireProjectID(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireKey = key
}

// SetHealthy controls the /health answer.
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = ok
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Headers returns the headers of every request received so far.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]http.Header, len(s.headers))
	copy(out, s.headers)
	return out
}

func (s *Server) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.headers = append(s.headers, r.Header.Clone())
		code, failing := s.status[r.URL.Path]
		dropping := s.drop[r.URL.Path]
		delay := s.delay
		key := s.requireKey
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if dropping {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}
		if key != "" && r.Header.Get("project_id") != key {
			writeError(w, http.StatusForbidden, "Invalid project token.")
			return
		}
		if failing {
			writeError(w, code, http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list, ok := s.assets[r.PathValue("address")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "The requested component has not been found.")
		return
	}
	writeJSON(w, paginate(r, list))
}

func (s *Server) handleUTXOs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	list, ok := s.utxos[r.PathValue("address")]
	envelope := s.envelope
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "The requested component has not been found.")
		return
	}
	page := paginate(r, list)
	if envelope {
		writeJSON(w, map[string]any{"value": page})
		return
	}
	writeJSON(w, page)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	d, ok := s.details[r.PathValue("unit")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "The requested component has not been found.")
		return
	}
	writeJSON(w, d)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	ok := s.healthy
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"is_healthy": ok})
}

func paginate[T any](r *http.Request, list []T) []T {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if page <= 0 {
		page = 1
	}
	if count <= 0 {
		count = 100
	}
	start := (page - 1) * count
	if start >= len(list) {
		return []T{}
	}
	end := start + count
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status_code": code,
		"error":       http.StatusText(code),
		"message":     msg,
	})
}
