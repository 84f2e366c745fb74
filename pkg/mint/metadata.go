package mint

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/gateway"
	"github.com/shamank/artpass-sdk-go/pkg/media"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/storage"
)

// MetadataVersion is the CIP-25 version tag written into documents.
const MetadataVersion = "1.0"

const defaultFileMediaType = "application/octet-stream"

// ErrInvalidMetadata is returned when a built document does not satisfy the
// platform's CIP-25 schema.
var ErrInvalidMetadata = errors.New("invalid mint metadata")

//go:embed schema/cip25.schema.json
var metadataSchemaJSON string

const metadataSchemaURL = "https://artpass.schemas.local/cip25.schema.json"

var compileMetadataSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(metadataSchemaURL, strings.NewReader(metadataSchemaJSON)); err != nil {
		return nil, fmt.Errorf("metadata schema load failed: %w", err)
	}
	return c.Compile(metadataSchemaURL)
})

// BuildMetadata returns the label 721 document minting names under policyID.
// Every asset carries the art_piece block and a sentinel-named media file so
// the registry recognizes it later.
func BuildMetadata(policyID string, names []string, req Request) (map[string]any, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no asset names", ErrInvalidMetadata)
	}
	fileURL := gateway.IpfsPrefix + storage.FormatHash(req.FileCID)
	mediaType := media.Infer(req.FileName, req.FileMediaType)
	if mediaType == "" {
		mediaType = defaultFileMediaType
	}

	assets := make(map[string]any, len(names))
	for i, name := range names {
		piece := map[string]any{
			"title":       cardano.MetadataString(req.Title),
			"artist_name": cardano.MetadataString(req.ArtistName),
			"medium":      cardano.MetadataString(firstNonEmpty(req.Medium, model.DefaultMedium)),
			"file_url":    cardano.MetadataString(fileURL),
		}
		optional(piece, "description", req.Description)
		optional(piece, "edition", req.Edition)
		optional(piece, "duration_or_dimensions", req.DurationOrDimensions)

		asset := map[string]any{
			"name":      cardano.MetadataString(req.Title),
			"image":     cardano.MetadataString(fileURL),
			"mediaType": mediaType,
			"files": []any{map[string]any{
				"name":      model.SentinelMediaFile,
				"src":       cardano.MetadataString(fileURL),
				"mediaType": mediaType,
			}},
			"art_piece": piece,
		}
		optional(asset, "description", req.Description)
		if req.RoyaltyPercent != "" {
			asset["royalty_percent"] = strings.TrimSpace(req.RoyaltyPercent)
		}
		if len(names) > 1 {
			asset["fraction"] = fmt.Sprintf("%d/%d", i+1, len(names))
		}
		assets[name] = asset
	}

	doc := map[string]any{
		policyID:  assets,
		"version": MetadataVersion,
	}
	if err := ValidateMetadata(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateMetadata checks doc against the embedded CIP-25 schema.
func ValidateMetadata(doc map[string]any) error {
	schema, err := compileMetadataSchema()
	if err != nil {
		return err
	}
	// the validator only understands decoded JSON values
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	return nil
}

func optional(m map[string]any, key, value string) {
	if strings.TrimSpace(value) != "" {
		m[key] = cardano.MetadataString(value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
