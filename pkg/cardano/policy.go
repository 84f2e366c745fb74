package cardano

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/fxamacker/cbor/v2"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"golang.org/x/crypto/blake2b"
)

// Native script types, named as in cardano-cli JSON.
const (
	ScriptSig    = "sig"
	ScriptAll    = "all"
	ScriptAny    = "any"
	ScriptAfter  = "after"
	ScriptBefore = "before"
)

// ErrInvalidScript is returned for native scripts that cannot be serialized.
var ErrInvalidScript = errors.New("invalid native script")

// NativeScript is a timelock/multisig minting policy.
type NativeScript struct {
	Type    string         `json:"type"`
	KeyHash string         `json:"keyHash,omitempty"`
	Scripts []NativeScript `json:"scripts,omitempty"`
	Slot    uint64         `json:"slot,omitempty"`
}

// SigPolicy returns the single-signature policy of a payment key hash.
func SigPolicy(keyHash string) NativeScript {
	return NativeScript{Type: ScriptSig, KeyHash: keyHash}
}

// LockedPolicy returns a policy requiring keyHash and closing after slot.
func LockedPolicy(keyHash string, slot uint64) NativeScript {
	return NativeScript{Type: ScriptAll, Scripts: []NativeScript{SigPolicy(keyHash), {Type: ScriptBefore, Slot: slot}}}
}

// scriptEncMode emits the deterministic core encoding used for script hashes.
var scriptEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// CBOR returns the script's ledger serialization.
func (s NativeScript) CBOR() ([]byte, error) {
	v, err := s.ledgerValue()
	if err != nil {
		return nil, err
	}
	out, err := scriptEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	return out, nil
}

// PolicyID is the hex blake2b-224 hash of the script tagged as native (0x00).
func (s NativeScript) PolicyID() (string, error) {
	body, err := s.CBOR()
	if err != nil {
		return "", err
	}
	h, err := blake2b.New(KeyHashLength, nil)
	if err != nil {
		return "", err
	}
	h.Write([]byte{0x00})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ledgerValue maps the script onto its ledger array form:
// [0, keyhash], [1|2, [scripts]], [4|5, slot].
func (s NativeScript) ledgerValue() ([]any, error) {
	switch s.Type {
	case ScriptSig:
		kh, err := hex.DecodeString(s.KeyHash)
		if err != nil || len(kh) != KeyHashLength {
			return nil, fmt.Errorf("%w: key hash %q", ErrInvalidScript, s.KeyHash)
		}
		return []any{uint64(0), kh}, nil
	case ScriptAll, ScriptAny:
		if len(s.Scripts) == 0 {
			return nil, fmt.Errorf("%w: %s without scripts", ErrInvalidScript, s.Type)
		}
		tag := uint64(1)
		if s.Type == ScriptAny {
			tag = 2
		}
		subs := make([]any, 0, len(s.Scripts))
		for _, sub := range s.Scripts {
			v, err := sub.ledgerValue()
			if err != nil {
				return nil, err
			}
			subs = append(subs, v)
		}
		return []any{tag, subs}, nil
	case ScriptAfter, ScriptBefore:
		tag := uint64(4)
		if s.Type == ScriptBefore {
			tag = 5
		}
		return []any{tag, s.Slot}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidScript, s.Type)
}

// Fingerprint returns the CIP-14 asset fingerprint of a unit.
func Fingerprint(u string) (string, error) {
	parsed, err := unit.Parse(unit.Normalize(u))
	if err != nil {
		return "", err
	}
	payload, err := hex.DecodeString(parsed.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", unit.ErrInvalidUnit, err)
	}
	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", err
	}
	h.Write(payload)
	conv, err := bech32.ConvertBits(h.Sum(nil), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode("asset", conv)
}
