package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
const IpfsPrefix = "ipfs://"

var (
	// ErrInvalidCID is returned when a URI does not start with a valid CID.
	ErrInvalidCID = errors.New("invalid cid")
	// ErrPinFailed is returned when the pinning backend rejects an upload.
	ErrPinFailed = errors.New("pin failed")
)

// Pinner publishes content to IPFS and returns its CID.
type Pinner interface {
	PinFile(ctx context.Context, name string, r io.Reader) (string, error)
	PinJSON(ctx context.Context, name string, doc any) (string, error)
}

// GatewayFetcher fetches content from an HTTP gateway.
type GatewayFetcher interface {
	Fetch(ctx context.Context, endpoint, path string) ([]byte, error)
}

// IPFSFetcher fetches content addressed by CID from an IPFS node.
type IPFSFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Client reads content-addressed data. Reads go through the Kubo node when
// one is configured and through the HTTP gateway otherwise.
type Client struct {
	// HttpApi is a Kubo RPC client, nil when no node is configured.
	*rpc.HttpApi
	// GatewayURL is the HTTP gateway prefix, ending in "/".
	GatewayURL string

	gatewayFetcher GatewayFetcher
	ipfsFetcher    IPFSFetcher
}

// NewStorage constructs a Client. ipfsURL may be empty to read through the
// gateway only.
func NewStorage(ipfsURL, gatewayURL string, timeout time.Duration) (*Client, error) {
	s := &Client{
		GatewayURL:     gatewayURL,
		gatewayFetcher: httpGatewayFetcher{client: &http.Client{Timeout: timeout}},
	}
	if ipfsURL != "" {
		api, err := NewIPFSClient(ipfsURL, timeout)
		if err != nil {
			return nil, err
		}
		s.HttpApi = api
		s.ipfsFetcher = newIPFSFetcher(api)
	}
	return s, nil
}

// ReadFile fetches the content behind uri, which may be an ipfs:// URI, an
// "ipfs/<cid>" path or a bare CID, optionally followed by a file path.
func (s *Client) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	path := FormatHash(uri)
	if _, err := RootCID(path); err != nil {
		return nil, err
	}

	if s.ipfsFetcher != nil {
		return s.ipfsFetcher.Fetch(ctx, path)
	}
	if s.gatewayFetcher == nil {
		s.gatewayFetcher = httpGatewayFetcher{client: http.DefaultClient}
	}
	return s.gatewayFetcher.Fetch(ctx, s.GatewayURL, path)
}

// ReadJSON fetches uri and decodes it into v.
func (s *Client) ReadJSON(ctx context.Context, uri string, v any) error {
	raw, err := s.ReadFile(ctx, uri)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", uri, err)
	}
	return nil
}

// FormatHash strips the ipfs:// scheme or a leading "ipfs/" segment and any
// character not valid in a CID path.
func FormatHash(hash string) string {
	hash = strings.TrimSpace(hash)
	if len(hash) >= len(IpfsPrefix) && strings.EqualFold(hash[:len(IpfsPrefix)], IpfsPrefix) {
		hash = hash[len(IpfsPrefix):]
	}
	hash = strings.TrimPrefix(hash, "/")
	hash = strings.TrimPrefix(hash, "ipfs/")
	return removeSpecialCharacters(hash)
}

// RootCID parses the first path segment of a formatted hash.
func RootCID(path string) (cid.Cid, error) {
	root, _, _ := strings.Cut(path, "/")
	c, err := cid.Decode(root)
	if err != nil {
		zap.L().Debug("rejected content path", zap.String("path", path), zap.Error(err))
		return cid.Undef, fmt.Errorf("%w: %q", ErrInvalidCID, root)
	}
	return c, nil
}

var specialCharacters = regexp.MustCompile(`[^a-zA-Z0-9=/._-]`)

// removeSpecialCharacters keeps ASCII letters, digits and the path
// characters "=/._-".
func removeSpecialCharacters(pString string) string {
	return specialCharacters.ReplaceAllString(pString, "")
}
