// Package config defines the runtime configuration for the SDK and daemon,
// including the Cardano network, indexing API endpoints, IPFS gateway and
// pinning credentials, the mint-record store location, discovery tuning and
// operation timeouts. It also provides validation and defaulting helpers.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned on first use of an operation whose
// credential (indexer project id, pinning JWT) was never configured.
var ErrMissingCredential = errors.New("missing credential")

// DefaultGatewayURL is the public IPFS HTTP gateway used when none is configured.
const DefaultGatewayURL = "https://ipfs.io/ipfs/"

// DefaultPinataURL is the base URL of the Pinata pinning API.
const DefaultPinataURL = "https://api.pinata.cloud"

// DefaultViewerScriptURL is the 3D model viewer bundle served to clients.
const DefaultViewerScriptURL = "https://ajax.googleapis.com/ajax/libs/model-viewer/3.4.0/model-viewer.min.js"

// Config holds all settings required to initialize the registry SDK.
// Use Validate to fill implicit defaults and to check field shapes.
type Config struct {
	// Network selects the Cardano network and its default indexer base URL.
	Network Network `json:"network" yaml:"network"`
	// IndexerURL is the endpoint the SDK talks to. It may be the indexer itself
	// or a local proxy (see IndexerViaProxy). Defaults to Network.IndexerBase.
	IndexerURL string `json:"indexer_url" yaml:"indexer_url"`
	// IndexerViaProxy makes the client send requests in proxy form
	// (?base=<Network.IndexerBase>) without a credential header.
	IndexerViaProxy bool `json:"indexer_via_proxy" yaml:"indexer_via_proxy"`
	// IndexerProjectID is the Blockfrost project id injected as a header.
	IndexerProjectID string `json:"indexer_project_id" yaml:"indexer_project_id"`
	// AllowedIndexerBases lists extra upstream bases the proxy may forward to.
	AllowedIndexerBases []string `json:"allowed_indexer_bases" yaml:"allowed_indexer_bases"`
	// GatewayURL is the HTTP gateway prefix for ipfs:// URIs.
	// Default: https://ipfs.io/ipfs/
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`
	// IpfsURL is an optional Kubo RPC endpoint. When set, pinning and reads go
	// through the node instead of Pinata and the HTTP gateway.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// PinataURL is the pinning service base URL. Default: https://api.pinata.cloud
	PinataURL string `json:"pinata_url" yaml:"pinata_url"`
	// PinataJWT authenticates pinning requests.
	PinataJWT string `json:"pinata_jwt" yaml:"pinata_jwt"`
	// StorePath is the JSON file holding mint-to-CID records.
	StorePath string `json:"store_path" yaml:"store_path"`
	// ViewerScriptURL is where the 3D viewer script is loaded from.
	ViewerScriptURL string `json:"viewer_script_url" yaml:"viewer_script_url"`
	// ListenAddr is the daemon HTTP listen address.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`

	Discovery Discovery `json:"discovery" yaml:"discovery"`
	Mint      Mint      `json:"mint" yaml:"mint"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a Cardano network and the indexer serving it.
type Network struct {
	Name        string `json:"name" yaml:"name"`
	IndexerBase string `json:"indexer_base" yaml:"indexer_base"`
}

// Mainnet is the Cardano main network served by Blockfrost.
var Mainnet = Network{
	Name:        "mainnet",
	IndexerBase: "https://cardano-mainnet.blockfrost.io/api/v0",
}

// Preprod is the Cardano pre-production testnet.
var Preprod = Network{
	Name:        "preprod",
	IndexerBase: "https://cardano-preprod.blockfrost.io/api/v0",
}

// Preview is the Cardano preview testnet.
var Preview = Network{
	Name:        "preview",
	IndexerBase: "https://cardano-preview.blockfrost.io/api/v0",
}

// NetworkByName returns the predefined network with the given name.
func NetworkByName(name string) (Network, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Mainnet.Name:
		return Mainnet, true
	case Preprod.Name:
		return Preprod, true
	case Preview.Name:
		return Preview, true
	}
	return Network{}, false
}

// FallbackPolicy decides when discovery falls back to scanning UTXOs after
// the assets-by-address call fails.
type FallbackPolicy string

const (
	// FallbackOnAnyError falls back on every failure except a clean 404.
	FallbackOnAnyError FallbackPolicy = "any"
	// FallbackOnTransportError falls back only when no HTTP response was received.
	FallbackOnTransportError FallbackPolicy = "transport"
)

// Discovery tunes the gallery scan.
type Discovery struct {
	// Concurrency bounds parallel asset-detail requests. 1 means sequential.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// RatePerSecond limits requests to the indexer. Zero disables limiting.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second"`
	Burst         int     `json:"burst" yaml:"burst"`
	// MaxPages caps pagination of list endpoints.
	MaxPages int            `json:"max_pages" yaml:"max_pages"`
	Fallback FallbackPolicy `json:"fallback" yaml:"fallback"`
}

// Mint holds minting defaults.
type Mint struct {
	// MinOutputADA is the ADA attached to the output carrying minted units.
	MinOutputADA string `json:"min_output_ada" yaml:"min_output_ada"`
}

// Timeouts controls operation deadlines.
// Zero values will be replaced by defaults in WithDefaults.
type Timeouts struct {
	Request   time.Duration `json:"request" yaml:"request"`     // single indexer/gateway request
	Discovery time.Duration `json:"discovery" yaml:"discovery"` // whole gallery scan
	Pin       time.Duration `json:"pin" yaml:"pin"`             // pinning upload
	Viewer    time.Duration `json:"viewer" yaml:"viewer"`       // viewer script load
}

// Validate normalizes the configuration by applying implicit defaults and
// checks URL fields. Credentials are not required here: operations that need
// them fail with ErrMissingCredential when first used.
func (c *Config) Validate() error {
	if c.Network.Name == "" && c.Network.IndexerBase == "" {
		c.Network = Mainnet
	}
	if c.Network.IndexerBase == "" {
		n, ok := NetworkByName(c.Network.Name)
		if !ok {
			return fmt.Errorf("unknown network %q", c.Network.Name)
		}
		c.Network = n
	}

	if c.IndexerURL == "" {
		c.IndexerURL = c.Network.IndexerBase
	}

	if c.GatewayURL == "" {
		c.GatewayURL = DefaultGatewayURL
	}
	if !strings.HasSuffix(c.GatewayURL, "/") {
		c.GatewayURL += "/"
	}

	if c.PinataURL == "" {
		c.PinataURL = DefaultPinataURL
	}

	if c.ViewerScriptURL == "" {
		c.ViewerScriptURL = DefaultViewerScriptURL
	}

	if c.StorePath == "" {
		c.StorePath = "data/mints.json"
	}

	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}

	if c.Mint.MinOutputADA == "" {
		c.Mint.MinOutputADA = "1.5"
	}

	c.Discovery = c.Discovery.WithDefaults()
	if c.Discovery.Fallback != FallbackOnAnyError && c.Discovery.Fallback != FallbackOnTransportError {
		return fmt.Errorf("unknown discovery fallback policy %q", c.Discovery.Fallback)
	}

	for name, raw := range map[string]string{
		"indexer_url":       c.IndexerURL,
		"network.indexer":   c.Network.IndexerBase,
		"gateway_url":       c.GatewayURL,
		"pinata_url":        c.PinataURL,
		"viewer_script_url": c.ViewerScriptURL,
	} {
		if err := checkURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.IpfsURL != "" {
		if err := checkURL(c.IpfsURL); err != nil {
			return fmt.Errorf("ipfs_url: %w", err)
		}
	}

	return nil
}

// RequireIndexerKey returns the indexer project id or ErrMissingCredential.
func (c *Config) RequireIndexerKey() (string, error) {
	if strings.TrimSpace(c.IndexerProjectID) == "" {
		return "", fmt.Errorf("indexer project id: %w", ErrMissingCredential)
	}
	return c.IndexerProjectID, nil
}

// RequirePinataJWT returns the pinning JWT or ErrMissingCredential.
func (c *Config) RequirePinataJWT() (string, error) {
	if strings.TrimSpace(c.PinataJWT) == "" {
		return "", fmt.Errorf("pinata jwt: %w", ErrMissingCredential)
	}
	return c.PinataJWT, nil
}

// IndexerBases returns every upstream base the proxy may forward to.
func (c *Config) IndexerBases() []string {
	bases := []string{strings.TrimRight(c.Network.IndexerBase, "/")}
	for _, b := range c.AllowedIndexerBases {
		if b = strings.TrimRight(strings.TrimSpace(b), "/"); b != "" {
			bases = append(bases, b)
		}
	}
	return bases
}

// WithDefaults returns a copy of d with zero values replaced by defaults:
//
//	Concurrency: 1
//	Burst:       10 (only when RatePerSecond > 0)
//	MaxPages:    50
//	Fallback:    any
func (d Discovery) WithDefaults() Discovery {
	dd := d
	if dd.Concurrency <= 0 {
		dd.Concurrency = 1
	}
	if dd.RatePerSecond > 0 && dd.Burst <= 0 {
		dd.Burst = 10
	}
	if dd.MaxPages <= 0 {
		dd.MaxPages = 50
	}
	if dd.Fallback == "" {
		dd.Fallback = FallbackOnAnyError
	}
	return dd
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Request:   20s
//	Discovery: 120s
//	Pin:       60s
//	Viewer:    15s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Request == 0 {
		tt.Request = 20 * time.Second
	}
	if tt.Discovery == 0 {
		tt.Discovery = 120 * time.Second
	}
	if tt.Pin == 0 {
		tt.Pin = 60 * time.Second
	}
	if tt.Viewer == 0 {
		tt.Viewer = 15 * time.Second
	}
	return tt
}

// Load reads a YAML configuration file and overlays environment variables.
// The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv overrides fields from ARTPASS_* environment variables when set.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		"ARTPASS_BLOCKFROST_PROJECT_ID": &c.IndexerProjectID,
		"ARTPASS_PINATA_JWT":            &c.PinataJWT,
		"ARTPASS_GATEWAY_URL":           &c.GatewayURL,
		"ARTPASS_INDEXER_URL":           &c.IndexerURL,
		"ARTPASS_IPFS_URL":              &c.IpfsURL,
		"ARTPASS_STORE_PATH":            &c.StorePath,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("ARTPASS_NETWORK"); v != "" {
		if n, ok := NetworkByName(v); ok {
			c.Network = n
		}
	}
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
