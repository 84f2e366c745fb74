// Package mintstore persists which pinned metadata document belongs to which
// mint transaction and units. Records live in a single JSON array file that
// is only ever appended to and is rewritten atomically.
package mintstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("mint record not found")
	// ErrDuplicate is returned when a transaction hash is already recorded.
	ErrDuplicate = errors.New("mint record already exists")
	// ErrInvalidRecord wraps validation failures of a record.
	ErrInvalidRecord = errors.New("invalid mint record")
)

var txHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Record links a mint transaction to its units and metadata CID.
type Record struct {
	ID       string    `json:"id"`
	TxHash   string    `json:"txHash"`
	Units    []string  `json:"units"`
	IpfsHash string    `json:"ipfsHash"`
	PinnedAt time.Time `json:"pinned_at"`
}

// Validate checks a record before it is stored.
func (r Record) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.TxHash, validation.Required, validation.Match(txHashPattern)),
		validation.Field(&r.Units, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.IpfsHash, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return nil
}

// Options configures a Store.
type Options struct {
	FileMode os.FileMode
	DirMode  os.FileMode
	// Now stamps records without a PinnedAt.
	Now func() time.Time
}

// OptionFunc is a functional option for Open.
type OptionFunc func(opts *Options)

// WithFileMode sets the permission bits of the records file. Default 0644.
func WithFileMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) { opts.FileMode = mode }
}

// WithDirMode sets the permission bits of created directories. Default 0755.
func WithDirMode(mode os.FileMode) OptionFunc {
	return func(opts *Options) { opts.DirMode = mode }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) OptionFunc {
	return func(opts *Options) { opts.Now = now }
}

// Store is the records file. It is safe for concurrent use within one
// process.
type Store struct {
	path string
	opts Options
	mu   sync.Mutex
}

// Open returns a store backed by path. A missing file is an empty store;
// it is created on the first Append.
func Open(path string, options ...OptionFunc) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("mint store path is empty")
	}
	opts := Options{FileMode: 0o644, DirMode: 0o755, Now: time.Now}
	for _, o := range options {
		if o != nil {
			o(&opts)
		}
	}
	return &Store{path: path, opts: opts}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append stores rec. Units are canonicalized, and ID and PinnedAt are filled
// when empty. The stored record is returned.
func (s *Store) Append(rec Record) (Record, error) {
	rec.TxHash = strings.ToLower(strings.TrimSpace(rec.TxHash))
	units := make([]string, 0, len(rec.Units))
	seen := map[string]bool{}
	for _, u := range rec.Units {
		u = unit.Normalize(strings.TrimSpace(u))
		if u != "" && !seen[u] {
			seen[u] = true
			units = append(units, u)
		}
	}
	rec.Units = units
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PinnedAt.IsZero() {
		rec.PinnedAt = s.opts.Now().UTC()
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return Record{}, err
	}
	for _, existing := range records {
		if existing.TxHash == rec.TxHash {
			return Record{}, fmt.Errorf("tx %s: %w", rec.TxHash, ErrDuplicate)
		}
	}
	records = append(records, rec)
	if err := s.write(records); err != nil {
		return Record{}, err
	}

	zap.L().Info("mint record stored",
		zap.String("tx", rec.TxHash),
		zap.Strings("units", rec.Units),
		zap.String("cid", rec.IpfsHash))
	return rec, nil
}

// FindByTxHash returns the record of a transaction.
func (s *Store) FindByTxHash(txHash string) (Record, error) {
	txHash = strings.ToLower(strings.TrimSpace(txHash))
	records, err := s.All()
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.TxHash == txHash {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("tx %s: %w", txHash, ErrNotFound)
}

// FindByUnit returns every record whose units include u, oldest first.
func (s *Store) FindByUnit(u string) ([]Record, error) {
	u = unit.Normalize(strings.TrimSpace(u))
	records, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range records {
		for _, ru := range r.Units {
			if ru == u {
				out = append(out, r)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unit %s: %w", u, ErrNotFound)
	}
	return out, nil
}

// All returns every record in insertion order.
func (s *Store) All() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mint store: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse mint store %s: %w", s.path, err)
	}
	return records, nil
}

// write replaces the file through a temp file and rename so readers never
// observe a partial array.
func (s *Store) write(records []Record) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, s.opts.DirMode); err != nil {
		return fmt.Errorf("create mint store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err = enc.Encode(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode mint store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), s.opts.FileMode); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit mint store: %w", err)
	}
	return nil
}
