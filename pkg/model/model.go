// Package model defines the data structures shared by the registry: the
// indexing API's asset and UTXO documents, the three on-chain metadata
// schemas minted by the platform, and the normalized AssetPreview shown in
// galleries. JSON tags mirror the indexer and CIP-25 documents.
package model

import "encoding/json"

const (
	// DefaultArtist is shown when metadata carries no artist name.
	DefaultArtist = "Unknown artist"
	// DefaultMedium is used for legacy and generic assets without a medium tag.
	DefaultMedium = "Video Art"

	// SentinelMediaFile names the primary media file in platform metadata.
	SentinelMediaFile = "Art Passport Media"
	// SentinelCertificateFile names the certificate file in platform metadata.
	SentinelCertificateFile = "Art Passport Certificate"

	// MetadataLabel is the transaction metadata label for NFT metadata (CIP-25).
	MetadataLabel = 721
)

// IsSentinelFile reports whether name identifies a file minted by the platform.
func IsSentinelFile(name string) bool {
	return name == SentinelMediaFile || name == SentinelCertificateFile
}

// AddressAsset is one entry of the assets-by-address listing.
type AddressAsset struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity,omitempty"`
}

// AmountEntry is one asset amount inside a UTXO.
type AmountEntry struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// UTXO is an unspent output at an address.
type UTXO struct {
	TxHash      string        `json:"tx_hash"`
	OutputIndex int           `json:"output_index"`
	Amount      []AmountEntry `json:"amount"`
}

// AssetDetail is the indexing API's response for a single unit.
type AssetDetail struct {
	Asset                   string         `json:"asset"`
	PolicyID                string         `json:"policy_id"`
	AssetName               string         `json:"asset_name"`
	Fingerprint             string         `json:"fingerprint,omitempty"`
	Quantity                string         `json:"quantity,omitempty"`
	InitialMintTxHash       string         `json:"initial_mint_tx_hash,omitempty"`
	OnchainMetadata         map[string]any `json:"onchain_metadata"`
	OnchainMetadataStandard string         `json:"onchain_metadata_standard,omitempty"`
}

// File is an entry of the CIP-25 "files" array.
type File struct {
	Name      string `json:"name"`
	Src       any    `json:"src"`
	MediaType string `json:"mediaType,omitempty"`
}

// ArtPiece is the current (V2) platform metadata block.
type ArtPiece struct {
	Title                string `json:"title"`
	ArtistName           string `json:"artist_name"`
	Description          string `json:"description"`
	Medium               string `json:"medium"`
	FileURL              string `json:"file_url"`
	Edition              string `json:"edition,omitempty"`
	DurationOrDimensions string `json:"duration_or_dimensions,omitempty"`
}

// CoreData is the descriptive half of a legacy certificate.
type CoreData struct {
	Title        string `json:"title"`
	ArtistName   string `json:"artist_name"`
	Description  string `json:"description,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// DigitalAsset is the media half of a legacy certificate.
type DigitalAsset struct {
	HighResFileURL string `json:"high_res_file_url,omitempty"`
	FileType       string `json:"file_type,omitempty"`
}

// Certificate is the legacy (V1) platform metadata block.
type Certificate struct {
	CoreData     CoreData     `json:"core_data"`
	DigitalAsset DigitalAsset `json:"digital_asset"`
}

// GenericImage is the flat (V0) metadata shape.
type GenericImage struct {
	Name                 string `json:"name,omitempty"`
	Image                any    `json:"image,omitempty"`
	Description          string `json:"description,omitempty"`
	ArtistName           string `json:"artist_name,omitempty"`
	Edition              string `json:"edition,omitempty"`
	DurationOrDimensions string `json:"duration_or_dimensions,omitempty"`
	Medium               string `json:"medium,omitempty"`
}

// AssetPreview is the normalized gallery record. Units lists, without
// duplicates and in discovery order, every unit that represents a share of
// the same artwork. Empty AssetURL or MediaType means unknown and is
// encoded as null.
type AssetPreview struct {
	AssetID              string   `json:"assetId"`
	Title                string   `json:"title"`
	Artist               string   `json:"artist"`
	Medium               string   `json:"medium"`
	Description          string   `json:"description,omitempty"`
	AssetURL             string   `json:"assetUrl,omitempty"`
	MediaType            string   `json:"mediaType,omitempty"`
	Edition              string   `json:"edition,omitempty"`
	DurationOrDimensions string   `json:"duration_or_dimensions,omitempty"`
	Units                []string `json:"units"`
}

// AddUnit appends u to Units unless already present. It reports whether
// the set grew.
func (p *AssetPreview) AddUnit(u string) bool {
	if p.HasUnit(u) {
		return false
	}
	p.Units = append(p.Units, u)
	return true
}

// HasUnit reports whether u belongs to the preview.
func (p *AssetPreview) HasUnit(u string) bool {
	for _, existing := range p.Units {
		if existing == u {
			return true
		}
	}
	return false
}

// MarshalJSON encodes unknown AssetURL and MediaType as null.
func (p AssetPreview) MarshalJSON() ([]byte, error) {
	type plain AssetPreview
	return json.Marshal(struct {
		plain
		AssetURL  *string `json:"assetUrl"`
		MediaType *string `json:"mediaType"`
	}{
		plain:     plain(p),
		AssetURL:  nullable(p.AssetURL),
		MediaType: nullable(p.MediaType),
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
