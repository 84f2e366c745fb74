// Package config provides configuration management for the art passport SDK.
//
// This package defines the Config structure that controls SDK and daemon
// behavior: the Cardano network, the indexing API endpoint and credential,
// IPFS gateway and pinning settings, the mint-record store, discovery tuning
// and timeouts.
//
// # Basic Configuration
//
// The zero Config is usable for read-only gallery browsing once validated,
// except that the indexer credential must be supplied:
//
//	cfg := &config.Config{
//		Network:          config.Preprod,
//		IndexerProjectID: "preprodXXXXXXXX",
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// # Networks
//
// Three predefined networks are available:
//
//	config.Mainnet - https://cardano-mainnet.blockfrost.io/api/v0
//	config.Preprod - https://cardano-preprod.blockfrost.io/api/v0
//	config.Preview - https://cardano-preview.blockfrost.io/api/v0
//
// # Proxy Mode
//
// Browser-facing deployments keep the indexer credential on the server. Set
// IndexerURL to the daemon's proxy prefix and IndexerViaProxy to true; the
// client then sends ?base=<network indexer> and no credential header:
//
//	cfg.IndexerURL = "http://localhost:8080/api/indexer"
//	cfg.IndexerViaProxy = true
//
// # Credentials
//
// Credentials are never required by Validate. Operations that need them
// (proxying, pinning) return an error wrapping ErrMissingCredential when
// first used, so a gallery-only deployment can run without a pinning JWT.
//
// # Files and Environment
//
// Load reads YAML and overlays ARTPASS_* environment variables:
//
//	ARTPASS_NETWORK                 mainnet | preprod | preview
//	ARTPASS_BLOCKFROST_PROJECT_ID   indexer credential
//	ARTPASS_PINATA_JWT              pinning credential
//	ARTPASS_GATEWAY_URL             IPFS HTTP gateway prefix
//	ARTPASS_INDEXER_URL             indexer or proxy endpoint
//	ARTPASS_IPFS_URL                Kubo RPC endpoint
//	ARTPASS_STORE_PATH              mint record file
//
// # Timeouts
//
// Zero values are replaced with defaults via WithDefaults(): 20s per request,
// 120s per gallery scan, 60s per pin and 15s for the viewer script.
package config
