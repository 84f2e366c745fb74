package cardano

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

const keyHash = "5e2f1c8e0f4e4bfa9ea2c5a4e3d1f0c9b8a7f6e5d4c3b2a1908f7e6d"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		typ       AddressType
		network   byte
		script    bool
		stakeHash string
	}{
		{
			name:    "enterprise testnet",
			addr:    "addr_test1vp0z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg4tmehr",
			typ:     AddressEnterprise,
			network: NetworkTestnet,
		},
		{
			name:      "base mainnet",
			addr:      "addr1q90z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zygsxfyx33",
			typ:       AddressBase,
			network:   NetworkMainnet,
			stakeHash: strings.Repeat("11", KeyHashLength),
		},
		{
			name:    "script enterprise mainnet",
			addr:    "addr1w90z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg8tn90x",
			typ:     AddressEnterpriseScript,
			network: NetworkMainnet,
			script:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAddress("  " + tt.addr + "\n")
			if err != nil {
				t.Fatalf("ParseAddress: %v", err)
			}
			if a.Type != tt.typ || a.Network != tt.network || a.PaymentIsScript != tt.script {
				t.Fatalf("unexpected header: %+v", a)
			}
			if a.PaymentKeyHash != keyHash {
				t.Fatalf("payment key hash = %s", a.PaymentKeyHash)
			}
			if a.StakeKeyHash != tt.stakeHash {
				t.Fatalf("stake key hash = %s", a.StakeKeyHash)
			}
			if !a.CanHoldAssets() {
				t.Fatal("payment address must hold assets")
			}
		})
	}
}

func TestParseAddress_Rejects(t *testing.T) {
	valid := "addr_test1vp0z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg4tmehr"
	for name, in := range map[string]string{
		"empty":             "",
		"bad checksum":      valid[:len(valid)-1] + "q",
		"not bech32":        "DdzFFzCqrhs",
		"network mismatch":  "addr1vp0z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humgw3l5cp",
		"asset fingerprint": "asset1rjklcrnsdzqp65wjgrg55sy9723kw09mlgvlc3",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAddress(in); !errors.Is(err, ErrMalformedAddress) {
				t.Fatalf("expected ErrMalformedAddress, got %v", err)
			}
			if IsAddress(in) {
				t.Fatal("IsAddress must be false")
			}
		})
	}
}

func TestPolicyID(t *testing.T) {
	id, err := SigPolicy(keyHash).PolicyID()
	if err != nil {
		t.Fatalf("PolicyID: %v", err)
	}
	if id != "a36e21603bbac3ab143afe15f339c719be98a6bd8ca75b87392b270a" {
		t.Fatalf("sig policy id = %s", id)
	}

	id, err = LockedPolicy(keyHash, 1000).PolicyID()
	if err != nil {
		t.Fatalf("PolicyID: %v", err)
	}
	if id != "dcb5ac87607db76499a40bf5ca6e96cba55b786a046e656ba439742b" {
		t.Fatalf("locked policy id = %s", id)
	}
}

func TestNativeScript_Invalid(t *testing.T) {
	for name, s := range map[string]NativeScript{
		"short key": SigPolicy("abcd"),
		"not hex":   SigPolicy(strings.Repeat("zz", KeyHashLength)),
		"empty all": {Type: ScriptAll},
		"unknown":   {Type: "atLeast"},
		"nested":    {Type: ScriptAny, Scripts: []NativeScript{{Type: "x"}}},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.PolicyID(); !errors.Is(err, ErrInvalidScript) {
				t.Fatalf("expected ErrInvalidScript, got %v", err)
			}
		})
	}
}

func TestNativeScript_CBOR(t *testing.T) {
	kh, _ := hex.DecodeString(keyHash)
	sig := append([]byte{0x82, 0x00, 0x58, 0x1c}, kh...)

	got, err := SigPolicy(keyHash).CBOR()
	if err != nil {
		t.Fatalf("CBOR: %v", err)
	}
	if !bytes.Equal(got, sig) {
		t.Fatalf("sig script = %x, want %x", got, sig)
	}

	want := append([]byte{0x82, 0x01, 0x82}, sig...)
	want = append(want, 0x82, 0x05, 0x19, 0x03, 0xe8)
	got, err = LockedPolicy(keyHash, 1000).CBOR()
	if err != nil {
		t.Fatalf("CBOR: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("locked script = %x, want %x", got, want)
	}
}

func TestFingerprint(t *testing.T) {
	got, err := Fingerprint("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if got != "asset1rjklcrnsdzqp65wjgrg55sy9723kw09mlgvlc3" {
		t.Fatalf("fingerprint = %s", got)
	}
	if _, err := Fingerprint("nope"); err == nil {
		t.Fatal("expected error for invalid unit")
	}
}

func TestAdaToLovelace(t *testing.T) {
	d := decimal.RequireFromString("0.5")
	tests := []struct {
		in   any
		want string
	}{
		{in: "2", want: "2000000"},
		{in: "1.234567", want: "1234567"},
		{in: 3.5, want: "3500000"},
		{in: int64(7), want: "7000000"},
		{in: 1, want: "1000000"},
		{in: d, want: "500000"},
		{in: &d, want: "500000"},
	}
	for _, tt := range tests {
		got, err := AdaToLovelace(tt.in)
		if err != nil {
			t.Fatalf("AdaToLovelace(%v): %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Fatalf("AdaToLovelace(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []any{"abc", "-1", "0.0000001", uint8(1), (*decimal.Decimal)(nil)} {
		if _, err := AdaToLovelace(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("AdaToLovelace(%v): expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestLovelaceToAda(t *testing.T) {
	for _, in := range []any{"1500000", big.NewInt(1500000), int64(1500000), 1500000} {
		got, err := LovelaceToAda(in)
		if err != nil {
			t.Fatalf("LovelaceToAda(%v): %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString("1.5")) {
			t.Fatalf("LovelaceToAda(%v) = %s", in, got)
		}
	}
	for _, bad := range []any{"1.5", 1.5, (*big.Int)(nil)} {
		if _, err := LovelaceToAda(bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("LovelaceToAda(%v): expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestChunkString(t *testing.T) {
	if got := ChunkString("short", 64); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short string split: %v", got)
	}
	long := strings.Repeat("ab", 70)
	got := ChunkString(long, 64)
	if len(got) != 3 || len(got[0]) != 64 || len(got[2]) != 12 {
		t.Fatalf("unexpected chunks: %v", got)
	}
	if s, ok := MetadataString(long).([]string); !ok || strings.Join(s, "") != long {
		t.Fatalf("MetadataString must chunk long values")
	}
	if s, ok := MetadataString("ipfs://x").(string); !ok || s != "ipfs://x" {
		t.Fatalf("MetadataString must keep short values")
	}
}

func TestChunkString_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("chunks rejoin, fit and stay valid UTF-8", prop.ForAll(
		func(s string, size int) bool {
			chunks := ChunkString(s, size)
			if strings.Join(chunks, "") != s {
				return false
			}
			for _, c := range chunks {
				if len(c) > size || !utf8.ValidString(c) {
					return false
				}
			}
			return true
		},
		gen.UnicodeString(unicode.Han),
		gen.IntRange(4, 64),
	))

	properties.TestingRun(t)
}
