package mintstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/unit"
)

const (
	policy = "d5e6bf0500378d4f0da4e8dde6becec7621cd8cbf5cbb9b87013d4cc"
	cid    = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

func txHash(i int) string { return fmt.Sprintf("%064x", i+1) }

func openTemp(t *testing.T) *Store {
	t.Helper()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := Open(filepath.Join(t.TempDir(), "nested", "mints.json"), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestStore_EmptyWhenMissing(t *testing.T) {
	s := openTemp(t)
	all, err := s.All()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty store, got %v %v", all, err)
	}
	if _, err := s.FindByTxHash(txHash(0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AppendAndFind(t *testing.T) {
	s := openTemp(t)

	rec, err := s.Append(Record{
		TxHash:   strings.ToUpper(txHash(0)),
		Units:    []string{policy + ".Dune_1", strings.ToUpper(policy) + unit.EncodeName("Dune_2"), policy + ".Dune_1"},
		IpfsHash: cid,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID == "" || rec.PinnedAt.IsZero() {
		t.Fatalf("ID and PinnedAt must be filled: %+v", rec)
	}
	if len(rec.Units) != 2 || rec.Units[0] != policy+unit.EncodeName("Dune_1") {
		t.Fatalf("units not canonical: %v", rec.Units)
	}

	got, err := s.FindByTxHash(txHash(0))
	if err != nil || got.ID != rec.ID {
		t.Fatalf("FindByTxHash: %+v %v", got, err)
	}

	byUnit, err := s.FindByUnit(policy + ".Dune_2")
	if err != nil || len(byUnit) != 1 || byUnit[0].TxHash != txHash(0) {
		t.Fatalf("FindByUnit: %+v %v", byUnit, err)
	}
	if _, err := s.FindByUnit(policy + ".Other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_RejectsDuplicatesAndInvalid(t *testing.T) {
	s := openTemp(t)
	base := Record{TxHash: txHash(0), Units: []string{policy + "00"}, IpfsHash: cid}
	if _, err := s.Append(base); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := s.Append(base); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	invalid := []Record{
		{TxHash: "abc", Units: []string{policy + "00"}, IpfsHash: cid},
		{TxHash: txHash(1), IpfsHash: cid},
		{TxHash: txHash(1), Units: []string{policy + "00"}},
	}
	for i, r := range invalid {
		if _, err := s.Append(r); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("case %d: expected ErrInvalidRecord, got %v", i, err)
		}
	}
}

func TestStore_FileFormat(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Append(Record{TxHash: txHash(0), Units: []string{policy + "01"}, IpfsHash: cid}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var arr []map[string]any
	if err := json.Unmarshal(raw, &arr); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
	for _, key := range []string{"txHash", "units", "ipfsHash", "pinned_at"} {
		if _, ok := arr[0][key]; !ok {
			t.Fatalf("missing key %q in %s", key, raw)
		}
	}

	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	s := openTemp(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not an array"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.All(); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := s.Append(Record{TxHash: txHash(0), Units: []string{policy + "01"}, IpfsHash: cid}); err == nil {
		t.Fatal("append must not overwrite a corrupt store")
	}
}

func TestStore_ConcurrentAppend(t *testing.T) {
	s := openTemp(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Append(Record{TxHash: txHash(i), Units: []string{fmt.Sprintf("%s%02x", policy, i)}, IpfsHash: cid}); err != nil {
				t.Errorf("Append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	all, err := s.All()
	if err != nil || len(all) != 20 {
		t.Fatalf("expected 20 records, got %d %v", len(all), err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
