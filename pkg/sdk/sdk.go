// Package sdk exposes the high-level art passport registry entry points. It
// wires together the indexing API client, gallery discovery, IPFS storage
// and pinning, minting through a caller-supplied wallet and the mint record
// store.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/discovery"
	"github.com/shamank/artpass-sdk-go/pkg/gateway"
	"github.com/shamank/artpass-sdk-go/pkg/indexer"
	"github.com/shamank/artpass-sdk-go/pkg/mint"
	"github.com/shamank/artpass-sdk-go/pkg/mintstore"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/storage"
	"github.com/shamank/artpass-sdk-go/pkg/viewer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrWalletRequired is returned by Mint and Burn when no wallet was supplied.
var ErrWalletRequired = errors.New("wallet required")

// Registry is the public interface of the SDK.
type Registry interface {
	// Gallery returns the grouped platform artworks held by address.
	Gallery(ctx context.Context, address string) ([]model.AssetPreview, error)
	// Asset returns the preview of a single unit.
	Asset(ctx context.Context, unit string) (*model.AssetPreview, error)

	// PinFile uploads a media file to IPFS and returns its CID.
	PinFile(ctx context.Context, name string, r io.Reader) (string, error)
	// PinJSON uploads a JSON document to IPFS and returns its CID.
	PinJSON(ctx context.Context, name string, doc any) (string, error)

	// Mint mints an artwork with the configured wallet.
	Mint(ctx context.Context, req mint.Request) (*mint.Result, error)
	// Burn burns one unit minted under the wallet's policy.
	Burn(ctx context.Context, unit string) (string, error)
	// MintRecord returns the record of a mint transaction.
	MintRecord(txHash string) (mintstore.Record, error)
	// MintRecordsByUnit returns every mint record mentioning unit.
	MintRecordsByUnit(unit string) ([]mintstore.Record, error)
	// MintMetadata fetches the metadata document pinned for a mint.
	MintMetadata(ctx context.Context, txHash string) (map[string]any, error)

	// Viewer returns the 3D viewer script loader.
	Viewer() *viewer.Loader
	// Health checks the indexer and the IPFS gateway.
	Health(ctx context.Context) (*HealthReport, error)

	// Close releases resources associated with the SDK instance.
	Close()
}

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	logger, err := newLogger(zapcore.InfoLevel)
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return c.Build()
}

// Option configures NewSDK.
type Option func(*options)

type options struct {
	wallet mint.Wallet
	pinner storage.Pinner
	index  discovery.Indexer
}

// WithWallet enables minting and burning with w.
func WithWallet(w mint.Wallet) Option {
	return func(o *options) { o.wallet = w }
}

// WithPinner replaces the pinning backend chosen from the configuration.
func WithPinner(p storage.Pinner) Option {
	return func(o *options) { o.pinner = p }
}

// WithIndexer replaces the indexing API client used by discovery.
func WithIndexer(idx discovery.Indexer) Option {
	return func(o *options) { o.index = idx }
}

// Core is the concrete SDK implementation.
type Core struct {
	*config.Config

	indexer  *indexer.Client
	engine   *discovery.Engine
	storage  *storage.Client
	pinner   storage.Pinner
	store    *mintstore.Store
	viewer   *viewer.Loader
	minter   *mint.Minter
	resolver *gateway.Resolver
}

var _ Registry = (*Core)(nil)

// NewSDK validates cfg and wires the SDK components. Missing credentials
// are not an error here; the operations needing them fail on first use
// with config.ErrMissingCredential.
func NewSDK(cfg *config.Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	if cfg.Debug {
		if logger, err := newLogger(zapcore.DebugLevel); err == nil {
			zap.ReplaceGlobals(logger)
		}
	}

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	c := &Core{
		Config:   cfg,
		resolver: gateway.NewResolver(cfg.GatewayURL),
	}

	idxOpts := []indexer.Option{
		indexer.WithTimeout(cfg.Timeouts.Request),
		indexer.WithRateLimit(cfg.Discovery.RatePerSecond, cfg.Discovery.Burst),
		indexer.WithMaxPages(cfg.Discovery.MaxPages),
	}
	if cfg.IndexerViaProxy {
		idxOpts = append(idxOpts, indexer.WithUpstreamBase(cfg.Network.IndexerBase))
	} else {
		idxOpts = append(idxOpts, indexer.WithCredential(cfg.RequireIndexerKey))
	}
	c.indexer = indexer.NewClient(cfg.IndexerURL, idxOpts...)

	var idx discovery.Indexer = c.indexer
	if o.index != nil {
		idx = o.index
	}
	c.engine = discovery.NewEngine(idx,
		discovery.WithResolver(c.resolver),
		discovery.WithConcurrency(cfg.Discovery.Concurrency),
		discovery.WithFallback(cfg.Discovery.Fallback),
		discovery.WithTimeout(cfg.Timeouts.Discovery),
	)

	st, err := storage.NewStorage(cfg.IpfsURL, cfg.GatewayURL, cfg.Timeouts.Request)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	c.storage = st

	switch {
	case o.pinner != nil:
		c.pinner = o.pinner
	case st.HttpApi != nil:
		c.pinner = storage.NewKuboPinner(st.HttpApi)
	default:
		c.pinner = storage.NewPinataClient(cfg.PinataURL, cfg.PinataJWT, cfg.Timeouts.Pin)
	}

	c.store, err = mintstore.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open mint store: %w", err)
	}

	c.viewer = viewer.NewLoader(cfg.ViewerScriptURL, nil, cfg.Timeouts.Viewer)

	if o.wallet != nil {
		minOutput, err := cardano.AdaToLovelace(cfg.Mint.MinOutputADA)
		if err != nil {
			return nil, fmt.Errorf("mint.min_output_ada: %w", err)
		}
		c.minter = mint.NewMinter(o.wallet, c.pinner,
			mint.WithRecorder(c.store),
			mint.WithMinOutput(minOutput),
			mint.WithPinTimeout(cfg.Timeouts.Pin),
		)
	}

	zap.L().Debug("sdk initialized",
		zap.String("network", cfg.Network.Name),
		zap.String("indexer", cfg.IndexerURL),
		zap.Bool("via_proxy", cfg.IndexerViaProxy),
		zap.String("gateway", cfg.GatewayURL),
		zap.Bool("ipfs_node", st.HttpApi != nil),
		zap.Bool("wallet", c.minter != nil))
	return c, nil
}

// Gallery returns the grouped platform artworks held by address.
func (c *Core) Gallery(ctx context.Context, address string) ([]model.AssetPreview, error) {
	return c.engine.Discover(ctx, address)
}

// Asset returns the preview of a single unit.
func (c *Core) Asset(ctx context.Context, u string) (*model.AssetPreview, error) {
	return c.engine.Preview(ctx, u)
}

// PinFile uploads a media file to IPFS and returns its CID.
func (c *Core) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	return c.pinner.PinFile(ctx, name, r)
}

// PinJSON uploads a JSON document to IPFS and returns its CID.
func (c *Core) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	return c.pinner.PinJSON(ctx, name, doc)
}

// Mint mints an artwork. It fails with ErrWalletRequired without a wallet.
func (c *Core) Mint(ctx context.Context, req mint.Request) (*mint.Result, error) {
	if c.minter == nil {
		return nil, ErrWalletRequired
	}
	return c.minter.Mint(ctx, req)
}

// Burn burns one unit. It fails with ErrWalletRequired without a wallet.
func (c *Core) Burn(ctx context.Context, u string) (string, error) {
	if c.minter == nil {
		return "", ErrWalletRequired
	}
	return c.minter.Burn(ctx, u)
}

// MintRecord returns the record of a mint transaction.
func (c *Core) MintRecord(txHash string) (mintstore.Record, error) {
	return c.store.FindByTxHash(txHash)
}

// MintRecordsByUnit returns every mint record mentioning unit.
func (c *Core) MintRecordsByUnit(u string) ([]mintstore.Record, error) {
	return c.store.FindByUnit(u)
}

// MintMetadata reads the metadata document pinned for a recorded mint
// through the IPFS node or gateway.
func (c *Core) MintMetadata(ctx context.Context, txHash string) (map[string]any, error) {
	rec, err := c.store.FindByTxHash(txHash)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := c.storage.ReadJSON(ctx, rec.IpfsHash, &doc); err != nil {
		return nil, fmt.Errorf("mint %s metadata: %w", rec.TxHash, err)
	}
	return doc, nil
}

// Viewer returns the 3D viewer script loader.
func (c *Core) Viewer() *viewer.Loader { return c.viewer }

// Storage returns the content reader for ipfs:// URIs.
func (c *Core) Storage() *storage.Client { return c.storage }

// Resolver returns the gateway resolver used for media URLs.
func (c *Core) Resolver() *gateway.Resolver { return c.resolver }

// Close flushes the global logger.
func (c *Core) Close() {
	_ = zap.L().Sync()
}
