// Package sdk provides the high-level entry point for the art passport registry.
//
// The SDK hides the indexing API, IPFS and the mint record store behind one
// Registry value: list the artworks a wallet holds, inspect a single asset,
// pin media and mint or burn certificates through a caller-supplied wallet.
//
// # Quick Start
//
// Create an SDK instance with configuration, then browse a wallet:
//
//	import (
//		"github.com/shamank/artpass-sdk-go/pkg/config"
//		"github.com/shamank/artpass-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			Network:          config.Preprod,
//			IndexerProjectID: "preprodXXXXXXXX",
//			Debug:            true,
//		}
//
//		registry, err := sdk.NewSDK(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer registry.Close()
//
//		previews, err := registry.Gallery(context.Background(), "addr_test1...")
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, p := range previews {
//			fmt.Printf("%s by %s (%d units)\n", p.Title, p.Artist, len(p.Units))
//		}
//	}
//
// # Architecture
//
// The SDK coordinates several subsystems:
//
//   - Indexer: Blockfrost-compatible client, direct or through the daemon proxy
//   - Discovery: lists units, reconciles metadata schemas and groups fractions
//   - Storage: IPFS gateway reads and pinning through Pinata or a Kubo node
//   - Mint: CIP-25 metadata, native-script policy and wallet submission
//   - Mint store: append-only JSON file linking transactions to metadata CIDs
//   - Viewer: on-demand loader for the 3D model viewer script
//
// # Core Components
//
// Registry Interface:
//   - Gallery: grouped artworks held by an address
//   - Asset: preview of a single unit
//   - PinFile, PinJSON: publish content to IPFS
//   - Mint, Burn: require WithWallet
//   - MintRecord, MintRecordsByUnit: look up persisted mints
//   - Viewer: 3D viewer script loader
//   - Health: indexer and gateway reachability
//   - Close: release resources
//
// # Minting
//
// Minting needs a wallet able to report its change address and to sign and
// submit a transaction. The minting policy is derived from the wallet's
// payment key hash:
//
//	registry, err := sdk.NewSDK(cfg, sdk.WithWallet(w))
//	...
//	cid, err := registry.PinFile(ctx, "dune.mp4", file)
//	res, err := registry.Mint(ctx, mint.Request{
//		Title:      "Dune",
//		ArtistName: "Ama",
//		FileCID:    cid,
//		FileName:   "dune.mp4",
//		Fractions:  10,
//	})
//
// # Configuration
//
// Every field has a default except the credentials:
//   - IndexerProjectID: required for direct indexer access and by the proxy
//   - PinataJWT: required for pinning unless IpfsURL points at a Kubo node
//
// Missing credentials do not fail NewSDK; the dependent operation returns
// config.ErrMissingCredential when first used.
//
// # Error Handling
//
// Errors wrap sentinels that callers classify with errors.Is and errors.As:
//   - indexer.ErrNotFound and *indexer.UpstreamError for the indexing API
//   - mint.ErrInvalidRequest and storage.ErrInvalidPin for rejected input
//   - storage.ErrPinFailed for pinning failures
//   - mintstore.ErrNotFound for unknown records
//   - ErrWalletRequired when minting without a wallet
//
// # Thread Safety
//
// Core is safe for concurrent use. Share a single instance across goroutines.
//
// # See Also
//
// For detailed examples, see the examples/ directory in the repository:
//   - examples/gallery: Browse a wallet's artworks
//   - examples/mint: Pin media and mint a certificate
package sdk
