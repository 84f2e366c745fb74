package mint

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shamank/artpass-sdk-go/pkg/metadata"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
)

func assetDoc(t *testing.T, doc map[string]any, name string) map[string]any {
	t.Helper()
	raw, err := json.Marshal(doc[walletPol])
	if err != nil {
		t.Fatal(err)
	}
	var assets map[string]map[string]any
	if err := json.Unmarshal(raw, &assets); err != nil {
		t.Fatal(err)
	}
	a, ok := assets[name]
	if !ok {
		t.Fatalf("asset %q missing in %s", name, raw)
	}
	return a
}

func TestBuildMetadata_ReadBackByReconciler(t *testing.T) {
	req := validRequest()
	req.Description = strings.Repeat("A long description. ", 8)
	req.Edition = "1/1"

	doc, err := BuildMetadata(walletPol, []string{"Dune"}, req)
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if doc["version"] != MetadataVersion {
		t.Fatalf("missing version: %v", doc)
	}

	onchain := assetDoc(t, doc, "Dune")
	if _, chunked := onchain["description"].([]any); !chunked {
		t.Fatalf("long description must be chunked: %v", onchain["description"])
	}

	u, _ := unit.New(walletPol, "Dune")
	p := metadata.NewReconciler(nil).Reconcile(u.String(), &model.AssetDetail{OnchainMetadata: onchain})
	if p == nil {
		t.Fatal("minted metadata must be recognized")
	}
	if p.Title != "Dune" || p.Artist != "Ada" || p.Medium != model.DefaultMedium || p.Edition != "1/1" {
		t.Fatalf("unexpected preview: %+v", p)
	}
	if p.Description != req.Description {
		t.Fatalf("description not rejoined: %q", p.Description)
	}
	if p.AssetURL != "https://ipfs.io/ipfs/"+fileCID || p.MediaType != "video/mp4" {
		t.Fatalf("unexpected media: %s %s", p.AssetURL, p.MediaType)
	}
}

func TestBuildMetadata_Fractions(t *testing.T) {
	req := validRequest()
	req.RoyaltyPercent = "5"
	names := []string{"Dune_1", "Dune_2"}
	doc, err := BuildMetadata(walletPol, names, req)
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	for i, n := range names {
		a := assetDoc(t, doc, n)
		if a["fraction"] != []string{"1/2", "2/2"}[i] || a["royalty_percent"] != "5" {
			t.Fatalf("unexpected asset %s: %v", n, a)
		}
		files := a["files"].([]any)
		if files[0].(map[string]any)["name"] != model.SentinelMediaFile {
			t.Fatalf("media file must carry the sentinel name: %v", files)
		}
	}
}

func TestBuildMetadata_DefaultMediaType(t *testing.T) {
	req := validRequest()
	req.FileName = "artwork"
	doc, err := BuildMetadata(walletPol, []string{"Dune"}, req)
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if got := assetDoc(t, doc, "Dune")["mediaType"]; got != defaultFileMediaType {
		t.Fatalf("mediaType = %v", got)
	}
}

func TestBuildMetadata_Rejects(t *testing.T) {
	if _, err := BuildMetadata(walletPol, nil, validRequest()); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}
	if _, err := BuildMetadata("not-a-policy", []string{"Dune"}, validRequest()); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata for bad policy key, got %v", err)
	}
}

func TestValidateMetadata(t *testing.T) {
	missingPiece := map[string]any{
		walletPol: map[string]any{
			"Dune": map[string]any{
				"name":  "Dune",
				"image": "ipfs://" + fileCID,
				"files": []any{map[string]any{"name": "x", "src": "y", "mediaType": "image/png"}},
			},
		},
	}
	if err := ValidateMetadata(missingPiece); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}

	longName := map[string]any{
		walletPol: map[string]any{
			"Dune": map[string]any{
				"name":      strings.Repeat("n", 65),
				"image":     "ipfs://" + fileCID,
				"files":     []any{map[string]any{"name": "x", "src": "y", "mediaType": "image/png"}},
				"art_piece": map[string]any{"title": "t", "artist_name": "a", "medium": "m", "file_url": "f"},
			},
		},
	}
	if err := ValidateMetadata(longName); !errors.Is(err, ErrInvalidMetadata) {
		t.Fatalf("unchunked long string must be rejected, got %v", err)
	}
}
