//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/sdk"
)

func newRegistry(t *testing.T) *sdk.Core {
	t.Helper()
	key := os.Getenv("ARTPASS_BLOCKFROST_PROJECT_ID")
	if key == "" {
		t.Skip("ARTPASS_BLOCKFROST_PROJECT_ID not set")
	}
	cfg := &config.Config{
		Network:          config.Preprod,
		IndexerProjectID: key,
		StorePath:        filepath.Join(t.TempDir(), "mints.json"),
	}
	core, err := sdk.NewSDK(cfg)
	if err != nil {
		t.Fatalf("NewSDK error: %v", err)
	}
	t.Cleanup(core.Close)
	return core
}

func TestIndexerHealth(t *testing.T) {
	core := newRegistry(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	report, err := core.Health(ctx)
	if err != nil {
		t.Fatalf("Health error: %v (%+v)", err, report)
	}
}

func TestGallery(t *testing.T) {
	address := os.Getenv("ARTPASS_E2E_ADDRESS")
	if address == "" {
		t.Skip("ARTPASS_E2E_ADDRESS not set")
	}
	core := newRegistry(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	previews, err := core.Gallery(ctx, address)
	if err != nil {
		t.Fatalf("Gallery error: %v", err)
	}
	for _, p := range previews {
		if len(p.Units) == 0 {
			t.Fatalf("preview %q without units", p.Title)
		}
	}
}
