package model

import (
	"encoding/json"
	"testing"
)

func TestAssetPreview_AddUnit(t *testing.T) {
	p := &AssetPreview{Units: []string{"a"}}

	if p.AddUnit("a") {
		t.Fatal("expected duplicate unit to be ignored")
	}
	if !p.AddUnit("b") {
		t.Fatal("expected new unit to be added")
	}
	if len(p.Units) != 2 || p.Units[0] != "a" || p.Units[1] != "b" {
		t.Fatalf("unexpected units: %v", p.Units)
	}
	if !p.HasUnit("b") || p.HasUnit("c") {
		t.Fatal("HasUnit mismatch")
	}
}

func TestIsSentinelFile(t *testing.T) {
	tests := map[string]bool{
		SentinelMediaFile:       true,
		SentinelCertificateFile: true,
		"art passport media":    false,
		"":                      false,
	}
	for name, want := range tests {
		if got := IsSentinelFile(name); got != want {
			t.Fatalf("IsSentinelFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestAssetDetail_DecodesIndexerJSON(t *testing.T) {
	body := []byte(`{
		"asset": "abc",
		"policy_id": "p",
		"asset_name": "4e",
		"quantity": "1",
		"onchain_metadata": {"name": "Dune", "files": [{"name": "x", "src": ["ipfs://", "bafy"]}]},
		"onchain_metadata_standard": "CIP25v1"
	}`)
	var d AssetDetail
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Asset != "abc" || d.OnchainMetadataStandard != "CIP25v1" {
		t.Fatalf("unexpected detail: %#v", d)
	}
	files, ok := d.OnchainMetadata["files"].([]any)
	if !ok || len(files) != 1 {
		t.Fatalf("expected files array, got %#v", d.OnchainMetadata["files"])
	}
}

func TestAssetPreview_JSONNullsUnknownMedia(t *testing.T) {
	b, err := json.Marshal(AssetPreview{AssetID: "u", Title: "t", Units: []string{"u"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"assetUrl", "mediaType"} {
		if v, ok := m[key]; !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v (present %v)", key, v, ok)
		}
	}
	if _, ok := m["units"]; !ok {
		t.Fatal("expected units to be present")
	}

	b, err = json.Marshal(AssetPreview{AssetURL: "https://gw/ipfs/x", MediaType: "video/mp4"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back AssetPreview
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.AssetURL != "https://gw/ipfs/x" || back.MediaType != "video/mp4" {
		t.Fatalf("known media lost: %s", b)
	}
}
