// Package model defines data structures representing art passport assets as
// seen through the blockchain indexing API and as shown in galleries.
//
// # Indexer Documents
//
// AssetDetail, UTXO and AddressAsset mirror the Blockfrost-compatible JSON
// returned by the indexing API (directly or through the daemon's proxy).
// OnchainMetadata is kept untyped because three historical schemas coexist.
//
// # Metadata Schemas
//
// Platform metadata is published under transaction metadata label 721:
//
//	V2  art_piece {title, artist_name, description, medium, file_url, ...}
//	V1  certificate {core_data {...}, digital_asset {...}}   (legacy)
//	V0  flat {name, image, description, artist_name, ...}    (fallback)
//
// ArtPiece, Certificate and GenericImage are their typed forms. Platform files
// are tagged with SentinelMediaFile or SentinelCertificateFile so unrelated
// assets can be filtered out.
//
// # Previews
//
// AssetPreview is the normalized record produced by the metadata package and
// grouped by the discovery package. Units grows as fractional shares of the
// same artwork are discovered:
//
//	p := model.AssetPreview{Title: "Dune", Units: []string{u1}}
//	p.AddUnit(u2) // true
//	p.AddUnit(u1) // false, already present
package model
