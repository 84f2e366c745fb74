// Package mint builds mint and burn transactions for platform artworks and
// hands them to an opaque signing wallet. Metadata is pinned to IPFS before
// submission and the resulting transaction is recorded in the mint store.
package mint

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/mintstore"
	"github.com/shamank/artpass-sdk-go/pkg/model"
	"github.com/shamank/artpass-sdk-go/pkg/storage"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"go.uber.org/zap"
)

var (
	// ErrScriptWallet is returned when the wallet's payment credential is a
	// script, so no signature policy can be derived from it.
	ErrScriptWallet = errors.New("wallet payment credential is a script")
	// ErrForeignPolicy is returned when burning a unit minted under another policy.
	ErrForeignPolicy = errors.New("unit does not belong to the wallet policy")
	// ErrNetworkMismatch is returned when the recipient is on another network
	// than the wallet.
	ErrNetworkMismatch = errors.New("recipient network differs from wallet network")
)

// Wallet is a signing-capable wallet. Signing, fee and change computation
// happen inside Submit.
type Wallet interface {
	ChangeAddress(ctx context.Context) (string, error)
	Submit(ctx context.Context, tx *Transaction) (txHash string, err error)
}

// Recorder persists mint records.
type Recorder interface {
	Append(rec mintstore.Record) (mintstore.Record, error)
}

// Asset is a quantity of one unit. Negative quantities burn.
type Asset struct {
	Unit     string `json:"unit"`
	Quantity int64  `json:"quantity"`
}

// Output pays Lovelace and Assets to Address.
type Output struct {
	Address  string   `json:"address"`
	Lovelace *big.Int `json:"lovelace"`
	Assets   []Asset  `json:"assets,omitempty"`
}

// Transaction is the unsigned intent handed to the wallet.
type Transaction struct {
	Mints    []Asset              `json:"mints"`
	Outputs  []Output             `json:"outputs,omitempty"`
	Metadata map[uint64]any       `json:"metadata,omitempty"`
	Script   cardano.NativeScript `json:"script"`
}

// Result describes a submitted mint.
type Result struct {
	TxHash   string   `json:"txHash"`
	PolicyID string   `json:"policyId"`
	Units    []string `json:"units"`
	// Fingerprints holds the CIP-14 fingerprint of each unit, in order.
	Fingerprints []string `json:"fingerprints"`
	IpfsHash     string   `json:"ipfsHash"`
	// Metadata is the label 721 document attached to the transaction.
	Metadata map[string]any `json:"metadata"`
}

// Minter mints and burns artworks with one wallet.
type Minter struct {
	wallet     Wallet
	pinner     storage.Pinner
	recorder   Recorder
	minOutput  *big.Int
	lockSlot   uint64
	pinTimeout time.Duration
}

// Option configures a Minter.
type Option func(*Minter)

// WithRecorder stores a record for every successful mint.
func WithRecorder(r Recorder) Option {
	return func(m *Minter) { m.recorder = r }
}

// WithMinOutput sets the lovelace sent along with minted units.
func WithMinOutput(lovelace *big.Int) Option {
	return func(m *Minter) {
		if lovelace != nil && lovelace.Sign() > 0 {
			m.minOutput = new(big.Int).Set(lovelace)
		}
	}
}

// WithPolicyLock closes the minting policy after slot.
func WithPolicyLock(slot uint64) Option {
	return func(m *Minter) { m.lockSlot = slot }
}

// WithPinTimeout bounds the metadata upload.
func WithPinTimeout(d time.Duration) Option {
	return func(m *Minter) { m.pinTimeout = d }
}

// NewMinter returns a Minter signing with w and pinning with p.
func NewMinter(w Wallet, p storage.Pinner, opts ...Option) *Minter {
	m := &Minter{
		wallet:    w,
		pinner:    p,
		minOutput: big.NewInt(cardano.MinUTxOLovelace),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Policy returns the wallet's minting policy and its id.
func (m *Minter) Policy(ctx context.Context) (cardano.NativeScript, string, error) {
	script, _, err := m.policy(ctx)
	if err != nil {
		return cardano.NativeScript{}, "", err
	}
	id, err := script.PolicyID()
	if err != nil {
		return cardano.NativeScript{}, "", err
	}
	return script, id, nil
}

func (m *Minter) policy(ctx context.Context) (cardano.NativeScript, cardano.Address, error) {
	raw, err := m.wallet.ChangeAddress(ctx)
	if err != nil {
		return cardano.NativeScript{}, cardano.Address{}, fmt.Errorf("wallet change address: %w", err)
	}
	addr, err := cardano.ParseAddress(raw)
	if err != nil {
		return cardano.NativeScript{}, cardano.Address{}, fmt.Errorf("wallet change address: %w", err)
	}
	if addr.PaymentIsScript || addr.PaymentKeyHash == "" {
		return cardano.NativeScript{}, cardano.Address{}, ErrScriptWallet
	}
	if m.lockSlot > 0 {
		return cardano.LockedPolicy(addr.PaymentKeyHash, m.lockSlot), addr, nil
	}
	return cardano.SigPolicy(addr.PaymentKeyHash), addr, nil
}

// Mint validates req, pins its metadata, submits a transaction minting one of
// each asset name and records it. When the transaction was submitted but
// recording failed, both the result and the error are returned.
func (m *Minter) Mint(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	script, change, err := m.policy(ctx)
	if err != nil {
		return nil, err
	}
	policyID, err := script.PolicyID()
	if err != nil {
		return nil, err
	}

	recipient := change.Raw
	if req.Recipient != "" {
		to, err := cardano.ParseAddress(req.Recipient)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		if to.Network != change.Network {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrNetworkMismatch)
		}
		recipient = to.Raw
	}

	names := req.AssetNames()
	units := make([]string, 0, len(names))
	fingerprints := make([]string, 0, len(names))
	for _, name := range names {
		u, err := unit.New(policyID, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		fp, err := cardano.Fingerprint(u.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		units = append(units, u.String())
		fingerprints = append(fingerprints, fp)
	}

	doc, err := BuildMetadata(policyID, names, req)
	if err != nil {
		return nil, err
	}

	pinCtx := ctx
	if m.pinTimeout > 0 {
		var cancel context.CancelFunc
		pinCtx, cancel = context.WithTimeout(ctx, m.pinTimeout)
		defer cancel()
	}
	cid, err := m.pinner.PinJSON(pinCtx, names[0]+".json", doc)
	if err != nil {
		return nil, fmt.Errorf("pin metadata: %w", err)
	}

	tx := &Transaction{
		Metadata: map[uint64]any{model.MetadataLabel: doc},
		Script:   script,
	}
	out := Output{Address: recipient, Lovelace: new(big.Int).Set(m.minOutput)}
	for _, u := range units {
		tx.Mints = append(tx.Mints, Asset{Unit: u, Quantity: 1})
		out.Assets = append(out.Assets, Asset{Unit: u, Quantity: 1})
	}
	tx.Outputs = []Output{out}

	txHash, err := m.wallet.Submit(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("submit mint: %w", err)
	}
	zap.L().Info("artwork minted",
		zap.String("tx", txHash),
		zap.String("policy", policyID),
		zap.Strings("units", units),
		zap.String("cid", cid))

	res := &Result{
		TxHash:       txHash,
		PolicyID:     policyID,
		Units:        units,
		Fingerprints: fingerprints,
		IpfsHash:     cid,
		Metadata:     doc,
	}
	if m.recorder != nil {
		if _, err := m.recorder.Append(mintstore.Record{TxHash: txHash, Units: units, IpfsHash: cid}); err != nil {
			zap.L().Error("failed to record mint", zap.String("tx", txHash), zap.Error(err))
			return res, fmt.Errorf("record mint %s: %w", txHash, err)
		}
	}
	return res, nil
}

// Burn submits a transaction minting -1 of u. The unit must belong to the
// wallet's policy.
func (m *Minter) Burn(ctx context.Context, u string) (string, error) {
	parsed, err := unit.Parse(unit.Normalize(u))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	script, _, err := m.policy(ctx)
	if err != nil {
		return "", err
	}
	policyID, err := script.PolicyID()
	if err != nil {
		return "", err
	}
	if parsed.PolicyID() != policyID {
		return "", fmt.Errorf("%s: %w", parsed, ErrForeignPolicy)
	}

	txHash, err := m.wallet.Submit(ctx, &Transaction{
		Mints:  []Asset{{Unit: parsed.String(), Quantity: -1}},
		Script: script,
	})
	if err != nil {
		return "", fmt.Errorf("submit burn: %w", err)
	}
	zap.L().Info("artwork burned", zap.String("tx", txHash), zap.String("unit", parsed.String()))
	return txHash, nil
}
