// Package storage publishes and retrieves content-addressed data on IPFS.
//
// Artworks and their CIP-25 metadata documents are pinned before minting,
// and later read back when a gallery or a mint record needs them.
//
// # Pinning
//
// Two Pinner implementations are provided:
//
// Pinata (hosted pinning service):
//   - pinFileToIPFS for raw files (multipart upload)
//   - pinJSONToIPFS for JSON documents
//   - authenticated with a bearer JWT; a missing JWT surfaces as
//     config.ErrMissingCredential on first upload
//
// Kubo (self-hosted node):
//   - the RPC "add" command with pinning enabled
//   - selected when Config.IpfsURL is set
//
// Both return the bare CID string. Uploads are validated with PinRequest
// before any network call:
//
//	pinner := storage.NewPinataClient(cfg.PinataURL, cfg.PinataJWT, cfg.Timeouts.Pin)
//	cid, err := pinner.PinJSON(ctx, "dune-metadata.json", doc)
//	if errors.Is(err, config.ErrMissingCredential) {
//		// configure ARTPASS_PINATA_JWT
//	}
//
// # Reading
//
// Client.ReadFile accepts ipfs:// URIs, "ipfs/<cid>" paths and bare CIDs,
// optionally followed by a file path. The root CID is parsed with go-cid
// before anything is fetched. Content comes from the Kubo node when one is
// configured and from the HTTP gateway otherwise; gateway answers outside
// 2xx are errors.
//
//	client, err := storage.NewStorage(cfg.IpfsURL, cfg.GatewayURL, cfg.Timeouts.Request)
//	var doc map[string]any
//	err = client.ReadJSON(ctx, "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", &doc)
//
// # CID Formats
//
// CIDv0 (legacy):
//   - Starts with "Qm"
//   - Example: QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG
//
// CIDv1:
//   - Starts with "bafy" or similar
//   - Example: bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi
package storage
