// Package metadata recognizes the on-chain metadata schemas minted by the
// platform and reconciles them into model.AssetPreview records.
//
// Detection is an ordered priority chain producing a tagged variant:
//
//	ArtPieceV2    "art_piece" object present
//	CertificateV1 "certificate.core_data" and "certificate.digital_asset" present
//	GenericV0     flat "image" field present
//	Unrecognized  anything else
//
// Each variant has its own pure mapping to a preview. An eligibility
// allow-list runs first so assets from unrelated platforms never surface.
package metadata

import (
	"strconv"
	"strings"

	"github.com/shamank/artpass-sdk-go/pkg/model"
)

// Kind enumerates the recognized metadata schemas.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindGenericV0
	KindCertificateV1
	KindArtPieceV2
)

func (k Kind) String() string {
	switch k {
	case KindArtPieceV2:
		return "art_piece/v2"
	case KindCertificateV1:
		return "certificate/v1"
	case KindGenericV0:
		return "generic/v0"
	}
	return "unrecognized"
}

// Schema is the detected shape of a metadata document.
type Schema interface {
	Kind() Kind
}

// ArtPieceV2 is a document carrying an art_piece block.
type ArtPieceV2 struct {
	Piece model.ArtPiece
	Files []model.File
}

// CertificateV1 is a legacy certificate document.
type CertificateV1 struct {
	Certificate model.Certificate
	Files       []model.File
}

// GenericV0 is a flat image document.
type GenericV0 struct {
	Generic model.GenericImage
	Files   []model.File
}

// Unrecognized is any document matching none of the schemas.
type Unrecognized struct{}

func (ArtPieceV2) Kind() Kind    { return KindArtPieceV2 }
func (CertificateV1) Kind() Kind { return KindCertificateV1 }
func (GenericV0) Kind() Kind     { return KindGenericV0 }
func (Unrecognized) Kind() Kind  { return KindUnrecognized }

// Eligible reports whether doc was produced by the platform's minting flow:
// it carries an art_piece object, or a files entry named with one of the
// sentinel file names.
func Eligible(doc map[string]any) bool {
	if doc == nil {
		return false
	}
	if _, ok := doc["art_piece"].(map[string]any); ok {
		return true
	}
	for _, f := range Files(doc) {
		if model.IsSentinelFile(f.Name) {
			return true
		}
	}
	return false
}

// Detect returns the first schema in priority order that doc matches.
func Detect(doc map[string]any) Schema {
	if doc == nil {
		return Unrecognized{}
	}
	files := Files(doc)

	if piece, ok := doc["art_piece"].(map[string]any); ok {
		return ArtPieceV2{
			Piece: model.ArtPiece{
				Title:                Text(piece["title"]),
				ArtistName:           Text(piece["artist_name"]),
				Description:          Text(piece["description"]),
				Medium:               Text(piece["medium"]),
				FileURL:              Text(piece["file_url"]),
				Edition:              Text(piece["edition"]),
				DurationOrDimensions: Text(piece["duration_or_dimensions"]),
			},
			Files: files,
		}
	}

	if cert, ok := doc["certificate"].(map[string]any); ok {
		core, coreOK := cert["core_data"].(map[string]any)
		digital, digitalOK := cert["digital_asset"].(map[string]any)
		if coreOK && digitalOK {
			return CertificateV1{
				Certificate: model.Certificate{
					CoreData: model.CoreData{
						Title:        Text(core["title"]),
						ArtistName:   Text(core["artist_name"]),
						Description:  Text(core["description"]),
						ThumbnailURL: Text(core["thumbnail_url"]),
					},
					DigitalAsset: model.DigitalAsset{
						HighResFileURL: Text(digital["high_res_file_url"]),
						FileType:       Text(digital["file_type"]),
					},
				},
				Files: files,
			}
		}
	}

	if image, ok := doc["image"]; ok && image != nil {
		return GenericV0{
			Generic: model.GenericImage{
				Name:                 Text(doc["name"]),
				Image:                image,
				Description:          Text(doc["description"]),
				ArtistName:           Text(doc["artist_name"]),
				Edition:              Text(doc["edition"]),
				DurationOrDimensions: Text(doc["duration_or_dimensions"]),
				Medium:               Text(doc["medium"]),
			},
			Files: files,
		}
	}

	return Unrecognized{}
}

// Files decodes the CIP-25 "files" array, skipping malformed entries.
func Files(doc map[string]any) []model.File {
	raw, ok := doc["files"].([]any)
	if !ok {
		return nil
	}
	files := make([]model.File, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		files = append(files, model.File{
			Name:      Text(m["name"]),
			Src:       m["src"],
			MediaType: Text(m["mediaType"]),
		})
	}
	return files
}

// Text renders a metadata value as a string. CIP-25 chunked arrays are
// joined and numbers are formatted; anything else yields "".
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		var b strings.Builder
		for _, part := range t {
			s, ok := part.(string)
			if !ok {
				return ""
			}
			b.WriteString(s)
		}
		return b.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}
