package indexer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shamank/artpass-sdk-go/internal/testutil/indexerstub"
	"github.com/shamank/artpass-sdk-go/pkg/cardano"
	"github.com/shamank/artpass-sdk-go/pkg/model"
)

const testAddr = "addr_test1qz2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzer3jcu5d8ps7zex2k2xt3uqxgjqnnj83ws8lhrn648jjxtwq2ytjqp"

func units(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%056x%02x", i, i)
	}
	return out
}

func TestAddressAssets_Paginates(t *testing.T) {
	stub := indexerstub.New(t)
	stub.SetAddressAssets(testAddr, units(5)...)

	c := NewClient(stub.URL, WithPageSize(2))
	got, err := c.AddressAssets(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d assets, want 5", len(got))
	}
	if hits := stub.Hits(indexerstub.AddressPath(testAddr)); hits != 3 {
		t.Fatalf("expected 3 page requests, got %d", hits)
	}
}

func TestAddressAssets_StopsAtExactPageBoundary(t *testing.T) {
	stub := indexerstub.New(t)
	stub.SetAddressAssets(testAddr, units(4)...)

	c := NewClient(stub.URL, WithPageSize(2))
	got, err := c.AddressAssets(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d assets, want 4", len(got))
	}
	// pages 1, 2 full and page 3 empty
	if hits := stub.Hits(indexerstub.AddressPath(testAddr)); hits != 3 {
		t.Fatalf("expected 3 page requests, got %d", hits)
	}
}

func TestAddressAssets_MaxPages(t *testing.T) {
	stub := indexerstub.New(t)
	stub.SetAddressAssets(testAddr, units(10)...)

	c := NewClient(stub.URL, WithPageSize(2), WithMaxPages(2))
	got, err := c.AddressAssets(context.Background(), testAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d assets, want 4", len(got))
	}
}

func TestAddressAssets_NotFound(t *testing.T) {
	stub := indexerstub.New(t)

	c := NewClient(stub.URL)
	_, err := c.AddressAssets(context.Background(), testAddr)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if IsTransport(err) {
		t.Fatal("404 must not be a transport error")
	}
}

func TestAddressAssets_ServerError(t *testing.T) {
	stub := indexerstub.New(t)
	stub.Fail(indexerstub.AddressPath(testAddr), http.StatusInternalServerError)

	c := NewClient(stub.URL)
	_, err := c.AddressAssets(context.Background(), testAddr)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.StatusCode != http.StatusInternalServerError || ue.Op != "address assets" {
		t.Fatalf("unexpected error fields: %+v", ue)
	}
	if !strings.Contains(ue.Body, "Internal Server Error") {
		t.Fatalf("expected body snippet, got %q", ue.Body)
	}
}

func TestAddressAssets_Transport(t *testing.T) {
	stub := indexerstub.New(t)
	stub.Drop(indexerstub.AddressPath(testAddr))

	c := NewClient(stub.URL)
	_, err := c.AddressAssets(context.Background(), testAddr)
	if err == nil || !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestAddressUTXOs_BareAndEnvelope(t *testing.T) {
	utxo := model.UTXO{
		TxHash: "abc",
		Amount: []model.AmountEntry{{Unit: "lovelace", Quantity: "1000000"}, {Unit: units(1)[0], Quantity: "1"}},
	}
	for _, envelope := range []bool{false, true} {
		t.Run(fmt.Sprintf("envelope=%v", envelope), func(t *testing.T) {
			stub := indexerstub.New(t)
			stub.SetUTXOs(testAddr, utxo)
			stub.UseEnvelope(envelope)

			got, err := NewClient(stub.URL).AddressUTXOs(context.Background(), testAddr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 || len(got[0].Amount) != 2 || got[0].Amount[1].Unit != units(1)[0] {
				t.Fatalf("unexpected utxos: %+v", got)
			}
		})
	}
}

func TestAsset_DetailAndHeaders(t *testing.T) {
	stub := indexerstub.New(t)
	stub.RequireProjectID("secret")
	u := units(1)[0]
	stub.SetAsset(&model.AssetDetail{
		Asset:           u,
		PolicyID:        u[:56],
		AssetName:       u[56:],
		OnchainMetadata: map[string]any{"name": "x"},
	})

	c := NewClient(stub.URL+"/", WithProjectID("secret"))
	d, err := c.Asset(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Asset != u || d.OnchainMetadata["name"] != "x" {
		t.Fatalf("unexpected detail: %+v", d)
	}
	if fp, _ := cardano.Fingerprint(u); d.Fingerprint != fp || !strings.HasPrefix(fp, "asset1") {
		t.Fatalf("fingerprint not derived: %q", d.Fingerprint)
	}

	_, err = NewClient(stub.URL).Asset(context.Background(), u)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without key, got %v", err)
	}
}

func TestAsset_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Asset(context.Background(), "x")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusOK || ue.Err == nil {
		t.Fatalf("expected decode UpstreamError, got %v", err)
	}
}

func TestClient_ProxyMode(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get(BaseParam))
		if r.Header.Get(ProjectIDHeader) != "" {
			t.Errorf("proxy requests must not carry a credential")
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/indexer", WithUpstreamBase("https://cardano-preprod.blockfrost.io/api/v0"))
	if _, err := c.AddressAssets(context.Background(), testAddr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "https://cardano-preprod.blockfrost.io/api/v0" {
		t.Fatalf("unexpected base params: %v", seen)
	}
}

func TestClient_ContextCancel(t *testing.T) {
	stub := indexerstub.New(t)
	stub.SetDelay(2 * time.Second)
	stub.SetAddressAssets(testAddr, units(1)...)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(stub.URL).AddressAssets(ctx, testAddr)
	if !IsTransport(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline transport error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancellation was not honoured")
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithRateLimit(0.001, 1))
	c.limiter.Allow() // drain the single token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Asset(ctx, "x"); !IsTransport(err) {
		t.Fatalf("expected limiter error, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	stub := indexerstub.New(t)
	c := NewClient(stub.URL)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stub.SetHealthy(false)
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("expected unhealthy error")
	}
}

func TestCredential_CheckedBeforeRequest(t *testing.T) {
	stub := indexerstub.New(t)
	stub.RequireProjectID("secret")
	errNoKey := errors.New("no key")

	_, err := NewClient(stub.URL, WithCredential(func() (string, error) { return "", errNoKey })).
		AddressAssets(context.Background(), testAddr)
	if !errors.Is(err, errNoKey) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if hits := stub.Hits(indexerstub.AddressPath(testAddr)); hits != 0 {
		t.Fatalf("request sent without credential: %d hits", hits)
	}

	u := units(1)[0]
	stub.SetAsset(&model.AssetDetail{Asset: u, PolicyID: u[:56], AssetName: u[56:]})
	c := NewClient(stub.URL, WithCredential(func() (string, error) { return "secret", nil }))
	if _, err := c.Asset(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
