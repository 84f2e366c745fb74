package mint

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/gateway"
	"github.com/shamank/artpass-sdk-go/pkg/unit"
	"github.com/shopspring/decimal"
)

// MaxFractions caps how many fractional units one artwork is minted as.
const MaxFractions = 100

// ErrInvalidRequest wraps validation failures of a mint request.
var ErrInvalidRequest = errors.New("invalid mint request")

var (
	nameUnsafe  = regexp.MustCompile(`[^A-Za-z0-9]+`)
	maxRoyalty  = decimal.NewFromInt(100)
	defaultName = "ArtPassport"
)

// Request describes an artwork to mint. FileCID points at the already
// pinned media file.
type Request struct {
	Title                string `json:"title"`
	ArtistName           string `json:"artist_name"`
	Description          string `json:"description,omitempty"`
	Medium               string `json:"medium,omitempty"`
	Edition              string `json:"edition,omitempty"`
	DurationOrDimensions string `json:"duration_or_dimensions,omitempty"`
	FileCID              string `json:"file_cid"`
	FileName             string `json:"file_name,omitempty"`
	FileMediaType        string `json:"file_media_type,omitempty"`
	// Recipient receives the minted units. Empty means the wallet's change address.
	Recipient string `json:"recipient,omitempty"`
	// RoyaltyPercent is a decimal in [0,100]. Empty means no royalty tag.
	RoyaltyPercent string `json:"royalty_percent,omitempty"`
	// AssetName is the on-chain name. Derived from Title when empty.
	AssetName string `json:"asset_name,omitempty"`
	// Fractions mints the artwork as N units named AssetName_1..AssetName_N.
	// Zero or one mints a single unit.
	Fractions int `json:"fractions,omitempty"`
}

// Validate checks the request without touching the network.
func (r Request) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.By(notBlank("title"))),
		validation.Field(&r.ArtistName, validation.Required, validation.By(notBlank("artist_name"))),
		validation.Field(&r.FileCID, validation.Required, validation.By(isCID)),
		validation.Field(&r.Recipient, validation.By(isPaymentAddress)),
		validation.Field(&r.RoyaltyPercent, validation.By(isRoyalty)),
		validation.Field(&r.Fractions, validation.Min(0), validation.Max(MaxFractions)),
		validation.Field(&r.AssetName, validation.By(r.fitsAssetName)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// AssetNames returns the display names of the units to mint.
func (r Request) AssetNames() []string {
	n := r.fractions()
	base := r.AssetName
	if base == "" {
		base = deriveAssetName(r.Title, n)
	}
	if n == 1 {
		return []string{base}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", base, i+1)
	}
	return names
}

func (r Request) fractions() int {
	if r.Fractions < 1 {
		return 1
	}
	return r.Fractions
}

func (r Request) fitsAssetName(value any) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if len(name)+suffixLen(r.fractions()) > unit.MaxAssetNameBytes {
		return validation.NewError("mint.asset_name_too_long",
			fmt.Sprintf("asset name must fit %d bytes including the fraction suffix", unit.MaxAssetNameBytes))
	}
	return nil
}

// suffixLen is the byte length of "_N" for the largest fraction index.
func suffixLen(n int) int {
	if n <= 1 {
		return 0
	}
	return 1 + len(strconv.Itoa(n))
}

func deriveAssetName(title string, fractions int) string {
	name := nameUnsafe.ReplaceAllString(title, "")
	if name == "" {
		name = defaultName
	}
	if limit := unit.MaxAssetNameBytes - suffixLen(fractions); len(name) > limit {
		name = name[:limit]
	}
	return name
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError("mint."+field+"_required", "cannot be blank")
		}
		return nil
	}
}

func isCID(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := gateway.CID(s); !ok {
		return validation.NewError("mint.file_cid_invalid", "must be an IPFS content identifier")
	}
	return nil
}

func isPaymentAddress(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	addr, err := cardano.ParseAddress(s)
	if err != nil {
		return validation.NewError("mint.recipient_invalid", "must be a bech32 Cardano address")
	}
	if !addr.CanHoldAssets() {
		return validation.NewError("mint.recipient_reward", "must not be a reward address")
	}
	return nil
}

func isRoyalty(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThan(maxRoyalty) {
		return validation.NewError("mint.royalty_range", "must be a number between 0 and 100")
	}
	return nil
}
