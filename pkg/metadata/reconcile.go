package metadata

import (
	"github.com/shamank/artpass-sdk-go/pkg/gateway"
	"github.com/shamank/artpass-sdk-go/pkg/media"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
)

// Reconciler maps asset details to previews. It performs no I/O.
type Reconciler struct {
	resolver *gateway.Resolver
}

// NewReconciler returns a Reconciler resolving media through resolver.
// A nil resolver uses the default gateway.
func NewReconciler(resolver *gateway.Resolver) *Reconciler {
	if resolver == nil {
		resolver = gateway.NewResolver("")
	}
	return &Reconciler{resolver: resolver}
}

// Reconcile returns the preview for u, or nil when the detail is not an
// eligible platform asset or matches no supported schema. The preview's
// Units holds exactly u in canonical form.
func (r *Reconciler) Reconcile(u string, detail *model.AssetDetail) *model.AssetPreview {
	if detail == nil || !Eligible(detail.OnchainMetadata) {
		return nil
	}
	canonical := unit.Normalize(u)
	name := rawAssetName(canonical, detail)

	var p *model.AssetPreview
	switch s := Detect(detail.OnchainMetadata).(type) {
	case ArtPieceV2:
		p = r.previewV2(s, name)
	case CertificateV1:
		p = r.previewV1(s, name)
	case GenericV0:
		p = r.previewV0(s, name)
	default:
		return nil
	}
	if p == nil {
		return nil
	}
	p.AssetID = canonical
	p.Units = []string{canonical}
	return p
}

func (r *Reconciler) previewV2(s ArtPieceV2, name string) *model.AssetPreview {
	piece := s.Piece
	file, found := r.primaryFile(s.Files, piece.FileURL)

	var assetURL, mediaType string
	if found {
		assetURL = r.resolver.Resolve(file.Src)
		mediaType = file.MediaType
	} else {
		assetURL = r.resolver.Resolve(piece.FileURL)
	}
	mediaType = media.Infer(piece.FileURL, mediaType)

	return &model.AssetPreview{
		Title:                firstNonEmpty(piece.Title, name),
		Artist:               firstNonEmpty(piece.ArtistName, model.DefaultArtist),
		Medium:               firstNonEmpty(piece.Medium, model.DefaultMedium),
		Description:          piece.Description,
		AssetURL:             assetURL,
		MediaType:            mediaType,
		Edition:              piece.Edition,
		DurationOrDimensions: piece.DurationOrDimensions,
	}
}

func (r *Reconciler) previewV1(s CertificateV1, name string) *model.AssetPreview {
	core := s.Certificate.CoreData
	digital := s.Certificate.DigitalAsset

	assetURL := r.resolver.Resolve(digital.HighResFileURL)
	if assetURL == "" {
		assetURL = r.resolver.Resolve(core.ThumbnailURL)
	}

	return &model.AssetPreview{
		Title:       firstNonEmpty(core.Title, name),
		Artist:      firstNonEmpty(core.ArtistName, model.DefaultArtist),
		Medium:      model.DefaultMedium,
		Description: core.Description,
		AssetURL:    assetURL,
		MediaType:   media.Infer(assetURL, digital.FileType),
	}
}

func (r *Reconciler) previewV0(s GenericV0, name string) *model.AssetPreview {
	g := s.Generic
	assetURL := r.resolver.Resolve(g.Image)
	if assetURL == "" {
		return nil
	}

	var declared string
	for _, f := range s.Files {
		if r.resolver.Resolve(f.Src) == assetURL {
			declared = f.MediaType
			break
		}
	}

	return &model.AssetPreview{
		Title:                firstNonEmpty(g.Name, name),
		Artist:               firstNonEmpty(g.ArtistName, model.DefaultArtist),
		Medium:               firstNonEmpty(g.Medium, model.DefaultMedium),
		Description:          g.Description,
		AssetURL:             assetURL,
		MediaType:            media.Infer(assetURL, declared),
		Edition:              g.Edition,
		DurationOrDimensions: g.DurationOrDimensions,
	}
}

// primaryFile returns the file whose resolved src equals the resolved
// fileURL, else the first file with any src.
func (r *Reconciler) primaryFile(files []model.File, fileURL string) (model.File, bool) {
	if want := r.resolver.Resolve(fileURL); want != "" {
		for _, f := range files {
			if r.resolver.Resolve(f.Src) == want {
				return f, true
			}
		}
	}
	for _, f := range files {
		if r.resolver.Resolve(f.Src) != "" {
			return f, true
		}
	}
	return model.File{}, false
}

// rawAssetName is the display form of the on-chain asset name.
func rawAssetName(u string, detail *model.AssetDetail) string {
	if detail.AssetName != "" {
		if name, ok := unit.DecodeName(detail.AssetName); ok && name != "" {
			return name
		}
		return detail.AssetName
	}
	if name, ok := unit.Unit(u).AssetName(); ok && name != "" {
		return name
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
