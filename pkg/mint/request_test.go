package mint

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	walletAddr  = "addr_test1vp0z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg4tmehr"
	mainnetAddr = "addr1q90z78ywpa8yh7575tz6fc737rym3flkuh2v8v4pjz8humg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zygsxfyx33"
	walletKey   = "5e2f1c8e0f4e4bfa9ea2c5a4e3d1f0c9b8a7f6e5d4c3b2a1908f7e6d"
	walletPol   = "a36e21603bbac3ab143afe15f339c719be98a6bd8ca75b87392b270a"
	fileCID     = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

func validRequest() Request {
	return Request{
		Title:      "Dune",
		ArtistName: "Ada",
		FileCID:    fileCID,
		FileName:   "dune.mp4",
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr bool
	}{
		{name: "ok", mutate: func(r *Request) {}},
		{name: "ipfs uri", mutate: func(r *Request) { r.FileCID = "ipfs://" + fileCID }},
		{name: "recipient", mutate: func(r *Request) { r.Recipient = walletAddr }},
		{name: "royalty", mutate: func(r *Request) { r.RoyaltyPercent = "12.5" }},
		{name: "royalty bounds", mutate: func(r *Request) { r.RoyaltyPercent = "100" }},
		{name: "fractions", mutate: func(r *Request) { r.Fractions = MaxFractions }},
		{name: "missing title", mutate: func(r *Request) { r.Title = "" }, wantErr: true},
		{name: "blank artist", mutate: func(r *Request) { r.ArtistName = "  " }, wantErr: true},
		{name: "missing cid", mutate: func(r *Request) { r.FileCID = "" }, wantErr: true},
		{name: "bad cid", mutate: func(r *Request) { r.FileCID = "not-a-cid" }, wantErr: true},
		{name: "bad recipient", mutate: func(r *Request) { r.Recipient = "addr1xyz" }, wantErr: true},
		{name: "royalty over", mutate: func(r *Request) { r.RoyaltyPercent = "100.01" }, wantErr: true},
		{name: "royalty negative", mutate: func(r *Request) { r.RoyaltyPercent = "-1" }, wantErr: true},
		{name: "royalty text", mutate: func(r *Request) { r.RoyaltyPercent = "ten" }, wantErr: true},
		{name: "too many fractions", mutate: func(r *Request) { r.Fractions = MaxFractions + 1 }, wantErr: true},
		{name: "negative fractions", mutate: func(r *Request) { r.Fractions = -1 }, wantErr: true},
		{name: "long name", mutate: func(r *Request) { r.AssetName = strings.Repeat("a", 33) }, wantErr: true},
		{name: "long name with suffix", mutate: func(r *Request) {
			r.AssetName = strings.Repeat("a", 30)
			r.Fractions = 10
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation.Errors, got %T", err)
			}
		})
	}
}

func TestAssetNames(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{name: "derived", req: Request{Title: "Dune: Part 2!"}, want: []string{"DunePart2"}},
		{name: "explicit", req: Request{Title: "x", AssetName: "Dune"}, want: []string{"Dune"}},
		{name: "fractions", req: Request{AssetName: "Dune", Fractions: 3}, want: []string{"Dune_1", "Dune_2", "Dune_3"}},
		{name: "single fraction", req: Request{AssetName: "Dune", Fractions: 1}, want: []string{"Dune"}},
		{name: "no usable title", req: Request{Title: "???"}, want: []string{"ArtPassport"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.req.AssetNames()
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("AssetNames() = %v, want %v", got, tt.want)
			}
		})
	}

	long := Request{Title: strings.Repeat("b", 40), Fractions: 12}
	for _, n := range long.AssetNames() {
		if len(n) > 32 {
			t.Fatalf("derived name %q exceeds the ledger limit", n)
		}
	}
}
