// Package unit converts user or UI supplied asset identifiers into canonical
// Cardano asset units (56-char policy id hex followed by the asset name hex)
// and provides accessors for the parts of a unit.
package unit

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// PolicyIDLength is the length of a policy id in hex characters.
	PolicyIDLength = 56
	// MaxAssetNameBytes is the ledger limit for an asset name.
	MaxAssetNameBytes = 32
	// Lovelace is the reserved unit of the native currency.
	Lovelace = "lovelace"
)

// ErrInvalidUnit is returned by Parse for strings that are not asset units.
var ErrInvalidUnit = errors.New("invalid asset unit")

var fractionSuffix = regexp.MustCompile(`_[0-9]+$`)

// Unit is a canonical asset unit: lower-case policy id hex + asset name hex.
type Unit string

// Parse validates s as an asset unit and returns its canonical form.
// The policy part must be exactly 56 hex characters and the name part an
// even number of hex digits no longer than MaxAssetNameBytes bytes.
func Parse(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < PolicyIDLength {
		return "", fmt.Errorf("%w: %q is shorter than a policy id", ErrInvalidUnit, s)
	}
	if !IsHex(s) {
		return "", fmt.Errorf("%w: %q is not hex", ErrInvalidUnit, s)
	}
	name := s[PolicyIDLength:]
	if len(name)%2 != 0 {
		return "", fmt.Errorf("%w: odd-length asset name in %q", ErrInvalidUnit, s)
	}
	if len(name)/2 > MaxAssetNameBytes {
		return "", fmt.Errorf("%w: asset name longer than %d bytes", ErrInvalidUnit, MaxAssetNameBytes)
	}
	return Unit(s), nil
}

// New builds a unit from a policy id and a display asset name.
func New(policyID, name string) (Unit, error) {
	return Parse(policyID + EncodeName(name))
}

func (u Unit) String() string { return string(u) }

// PolicyID returns the 56-char policy id part.
func (u Unit) PolicyID() string {
	if len(u) < PolicyIDLength {
		return string(u)
	}
	return string(u[:PolicyIDLength])
}

// AssetNameHex returns the hex-encoded asset name part.
func (u Unit) AssetNameHex() string {
	if len(u) < PolicyIDLength {
		return ""
	}
	return string(u[PolicyIDLength:])
}

// AssetName decodes the asset name as UTF-8. ok is false when the name is
// not valid hex or not valid UTF-8.
func (u Unit) AssetName() (name string, ok bool) {
	return DecodeName(u.AssetNameHex())
}

// Normalize converts raw into the canonical unit representation. The
// optional policyID hint is used when raw starts with it.
//
//   - empty or whitespace-only input is returned unchanged
//   - hex of at least 56 chars is lower-cased
//   - "policy.name" with a 56-char policy becomes policy + hex(name)
//   - input starting with the hint becomes hint + hex(rest)
//   - anything else is hex-encoded byte by byte
//
// Name parts that are already even-length hex pass through unencoded.
// Normalize is idempotent on units (results of 56 or more hex chars). A
// bare display string is not: its hex form is shorter than a policy id and
// is encoded again.
func Normalize(raw string, policyID ...string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	if len(raw) >= PolicyIDLength && IsHex(raw) {
		return strings.ToLower(raw)
	}

	if idx := strings.Index(raw, "."); idx == PolicyIDLength && IsHex(raw[:idx]) {
		return strings.ToLower(raw[:idx] + encodePart(raw[idx+1:]))
	}

	if len(policyID) > 0 && policyID[0] != "" {
		hint := policyID[0]
		if len(raw) >= len(hint) && strings.EqualFold(raw[:len(hint)], hint) {
			return strings.ToLower(hint + encodePart(raw[len(hint):]))
		}
	}

	return EncodeName(raw)
}

// EncodeName hex-encodes the UTF-8 bytes of name.
func EncodeName(name string) string {
	return hex.EncodeToString([]byte(name))
}

// DecodeName decodes a hex asset name into a UTF-8 string.
func DecodeName(nameHex string) (string, bool) {
	b, err := hex.DecodeString(nameHex)
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// IsHex reports whether s is non-empty and consists only of hex digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// BaseName strips a trailing "_<digits>" fraction suffix from name.
func BaseName(name string) string {
	return fractionSuffix.ReplaceAllString(name, "")
}

// encodePart passes even-length hex through and hex-encodes anything else.
func encodePart(s string) string {
	if s == "" || (len(s)%2 == 0 && IsHex(s)) {
		return s
	}
	return EncodeName(s)
}
