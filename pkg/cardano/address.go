// Package cardano holds the chain primitives needed to mint platform
// artworks: Shelley address parsing, native-script minting policies, asset
// fingerprints, ADA amounts and CIP-25 metadata string chunking.
package cardano

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// KeyHashLength is the byte length of payment and stake credentials.
const KeyHashLength = 28

// ErrMalformedAddress is returned for anything that is not a Shelley address.
var ErrMalformedAddress = errors.New("malformed address")

// AddressType is the header nibble of a Shelley address.
type AddressType byte

const (
	AddressBase             AddressType = 0
	AddressBaseScriptKey    AddressType = 1
	AddressBaseKeyScript    AddressType = 2
	AddressBaseScriptScript AddressType = 3
	AddressPointer          AddressType = 4
	AddressPointerScript    AddressType = 5
	AddressEnterprise       AddressType = 6
	AddressEnterpriseScript AddressType = 7
	AddressReward           AddressType = 14
	AddressRewardScript     AddressType = 15
)

// Network ids carried in the address header.
const (
	NetworkTestnet byte = 0
	NetworkMainnet byte = 1
)

// Address is a decoded Shelley address.
type Address struct {
	Raw     string
	HRP     string
	Network byte
	Type    AddressType
	// PaymentKeyHash is the hex payment credential; empty for reward addresses.
	PaymentKeyHash  string
	PaymentIsScript bool
	// StakeKeyHash is the hex stake credential of base and reward addresses.
	StakeKeyHash string
}

// IsMainnet reports whether the address belongs to the main network.
func (a Address) IsMainnet() bool { return a.Network == NetworkMainnet }

// CanHoldAssets reports whether outputs may be sent to the address.
func (a Address) CanHoldAssets() bool {
	return a.Type != AddressReward && a.Type != AddressRewardScript
}

// ParseAddress decodes a bech32 Shelley address and checks that its prefix
// matches the network id in the header.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(raw) < 1+KeyHashLength {
		return Address{}, fmt.Errorf("%w: payload too short", ErrMalformedAddress)
	}

	header := raw[0]
	a := Address{
		Raw:     strings.ToLower(s),
		HRP:     hrp,
		Type:    AddressType(header >> 4),
		Network: header & 0x0f,
	}

	wantHRP := "addr"
	if a.Type == AddressReward || a.Type == AddressRewardScript {
		wantHRP = "stake"
	}
	if a.Network != NetworkMainnet {
		wantHRP += "_test"
	}
	if hrp != wantHRP {
		return Address{}, fmt.Errorf("%w: prefix %q does not match network %d", ErrMalformedAddress, hrp, a.Network)
	}

	first := hex.EncodeToString(raw[1 : 1+KeyHashLength])
	switch a.Type {
	case AddressBase, AddressBaseScriptKey, AddressBaseKeyScript, AddressBaseScriptScript:
		if len(raw) != 1+2*KeyHashLength {
			return Address{}, fmt.Errorf("%w: base address length %d", ErrMalformedAddress, len(raw))
		}
		a.PaymentKeyHash = first
		a.StakeKeyHash = hex.EncodeToString(raw[1+KeyHashLength:])
	case AddressPointer, AddressPointerScript:
		a.PaymentKeyHash = first
	case AddressEnterprise, AddressEnterpriseScript:
		if len(raw) != 1+KeyHashLength {
			return Address{}, fmt.Errorf("%w: enterprise address length %d", ErrMalformedAddress, len(raw))
		}
		a.PaymentKeyHash = first
	case AddressReward, AddressRewardScript:
		if len(raw) != 1+KeyHashLength {
			return Address{}, fmt.Errorf("%w: reward address length %d", ErrMalformedAddress, len(raw))
		}
		a.StakeKeyHash = first
	default:
		return Address{}, fmt.Errorf("%w: unsupported address type %d", ErrMalformedAddress, a.Type)
	}
	switch a.Type {
	case AddressBaseScriptKey, AddressBaseScriptScript, AddressPointerScript, AddressEnterpriseScript:
		a.PaymentIsScript = true
	}
	return a, nil
}

// IsAddress reports whether s parses as a Shelley address.
func IsAddress(s string) bool {
	_, err := ParseAddress(s)
	return err == nil
}
