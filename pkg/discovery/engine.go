// Package discovery finds the platform artworks held by a wallet address.
//
// Discover lists the address's units (falling back to a UTXO scan when the
// listing fails), fetches and reconciles each unit's detail, and groups
// fractional units of one artwork into a single preview. A 404 on the
// listing means an empty wallet and a 404 on a unit skips it; any other
// indexer failure aborts the whole scan without partial results.
//
// Detail fetches may run concurrently up to the configured limit. Grouping
// always happens afterwards in listing order, so the result order is the
// first-discovery order regardless of concurrency.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/config"
	"github.com/shamank/artpass-sdk-go/pkg/gateway"
	"github.com/shamank/artpass-sdk-go/pkg/indexer"
	"github.com/shamank/artpass-sdk-go/pkg/media"
	"github.com/shamank/artpass-sdk-go/pkg/metadata"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotRecognized is returned by Preview when the unit exists but is not
// a platform artwork.
var ErrNotRecognized = errors.New("asset not recognized")

// Indexer is the subset of the indexing API used by discovery.
// *indexer.Client implements it.
type Indexer interface {
	AddressAssets(ctx context.Context, address string) ([]model.AddressAsset, error)
	AddressUTXOs(ctx context.Context, address string) ([]model.UTXO, error)
	Asset(ctx context.Context, unit string) (*model.AssetDetail, error)
}

// Engine runs gallery discovery against an Indexer.
type Engine struct {
	indexer     Indexer
	resolver    *gateway.Resolver
	reconciler  *metadata.Reconciler
	concurrency int
	fallback    config.FallbackPolicy
	timeout     time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver sets the gateway used for media URLs.
func WithResolver(r *gateway.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithConcurrency bounds parallel detail fetches. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithFallback selects when the UTXO scan replaces a failed listing.
func WithFallback(p config.FallbackPolicy) Option {
	return func(e *Engine) {
		if p != "" {
			e.fallback = p
		}
	}
}

// WithTimeout bounds a whole Discover call. Zero means no extra deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine returns an engine reading from idx.
func NewEngine(idx Indexer, opts ...Option) *Engine {
	e := &Engine{
		indexer:     idx,
		resolver:    gateway.NewResolver(""),
		concurrency: 1,
		fallback:    config.FallbackOnAnyError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.reconciler = metadata.NewReconciler(e.resolver)
	return e
}

// Discover returns the grouped previews of every platform artwork held by
// address, in first-discovery order.
func (e *Engine) Discover(ctx context.Context, address string) ([]model.AssetPreview, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	units, err := e.listUnits(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", address, err)
	}

	previews := make([]*model.AssetPreview, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.preview(gctx, u)
			if err != nil {
				return err
			}
			previews[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("discover %s: %w", address, err)
	}

	var groups Collection
	for i, p := range previews {
		if p == nil {
			continue
		}
		groups.Merge(KeyFor(units[i], p), p)
	}

	zap.L().Info("discovery finished",
		zap.String("address", address),
		zap.Int("units", len(units)),
		zap.Int("groups", groups.Len()))
	return groups.Previews(), nil
}

// Preview reconciles a single unit. The unit may be given in any form
// accepted by unit.Normalize.
func (e *Engine) Preview(ctx context.Context, raw string) (*model.AssetPreview, error) {
	u := unit.Normalize(raw)
	p, err := e.preview(ctx, u)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("asset %s: %w", u, ErrNotRecognized)
	}
	return p, nil
}

// listUnits returns the distinct canonical units held by address.
func (e *Engine) listUnits(ctx context.Context, address string) ([]string, error) {
	assets, err := e.indexer.AddressAssets(ctx, address)
	if err == nil {
		units := make([]string, 0, len(assets))
		for _, a := range assets {
			units = append(units, a.Unit)
		}
		return distinctUnits(units), nil
	}
	if errors.Is(err, indexer.ErrNotFound) {
		zap.L().Debug("address has no assets", zap.String("address", address))
		return nil, nil
	}
	if !e.shouldFallback(ctx, err) {
		return nil, err
	}

	zap.L().Warn("asset listing failed, scanning utxos",
		zap.String("address", address), zap.Error(err))
	utxos, uerr := e.indexer.AddressUTXOs(ctx, address)
	if uerr != nil {
		if errors.Is(uerr, indexer.ErrNotFound) {
			return nil, nil
		}
		return nil, uerr
	}
	var units []string
	for _, o := range utxos {
		for _, amt := range o.Amount {
			units = append(units, amt.Unit)
		}
	}
	return distinctUnits(units), nil
}

func (e *Engine) shouldFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, config.ErrMissingCredential) {
		return false
	}
	if e.fallback == config.FallbackOnTransportError {
		return indexer.IsTransport(err)
	}
	return true
}

// preview fetches and reconciles u. A nil preview with a nil error means
// the unit is skipped.
func (e *Engine) preview(ctx context.Context, u string) (*model.AssetPreview, error) {
	detail, err := e.indexer.Asset(ctx, u)
	if err != nil {
		if errors.Is(err, indexer.ErrNotFound) {
			zap.L().Debug("asset detail not found", zap.String("unit", u))
			return nil, nil
		}
		return nil, fmt.Errorf("asset %s: %w", u, err)
	}

	p := e.reconciler.Reconcile(u, detail)
	if p == nil {
		zap.L().Debug("asset skipped", zap.String("unit", u))
		return nil, nil
	}

	if p.AssetURL == "" {
		p.AssetURL = e.fallbackURL(detail.OnchainMetadata)
	}
	p.MediaType = media.Infer(p.AssetURL, p.MediaType)
	return p, nil
}

// fallbackURL resolves the raw top-level image, else the first file's src.
func (e *Engine) fallbackURL(doc map[string]any) string {
	if doc == nil {
		return ""
	}
	if url := e.resolver.Resolve(doc["image"]); url != "" {
		return url
	}
	if files := metadata.Files(doc); len(files) > 0 {
		return e.resolver.Resolve(files[0].Src)
	}
	return ""
}

// distinctUnits canonicalizes units, drops the native currency and keeps
// the first occurrence of each.
func distinctUnits(units []string) []string {
	seen := make(map[string]struct{}, len(units))
	out := make([]string, 0, len(units))
	for _, raw := range units {
		if raw == "" || raw == unit.Lovelace {
			continue
		}
		u := unit.Normalize(raw)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
