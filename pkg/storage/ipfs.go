package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// ipfsFetcher reads content through the Kubo RPC "cat" command.
type ipfsFetcher struct {
	api *rpc.HttpApi
}

func newIPFSFetcher(api *rpc.HttpApi) IPFSFetcher {
	return &ipfsFetcher{api: api}
}

// Fetch returns the content at path ("<cid>" or "<cid>/<file>").
func (f *ipfsFetcher) Fetch(ctx context.Context, path string) (content []byte, err error) {
	if f.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}
	zap.L().Debug("Hash used to retrieve from IPFS", zap.String("path", path))

	resp, err := f.api.Request("cat", "/ipfs/"+path).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing response in ipfs", zap.String("path", path), zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs cat returned error", zap.String("path", path), zap.Error(resp.Error))
		return nil, resp.Error
	}
	content, err = io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs content", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// KuboPinner pins content on a Kubo node through its RPC "add" command.
type KuboPinner struct {
	api *rpc.HttpApi
}

// NewKuboPinner returns a pinner for the node behind api.
func NewKuboPinner(api *rpc.HttpApi) *KuboPinner {
	return &KuboPinner{api: api}
}

// PinFile adds and pins the content of r, returning its CID.
func (p *KuboPinner) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if p.api == nil {
		return "", fmt.Errorf("ipfs client not configured")
	}

	resp, err := p.api.Request("add").
		Option("pin", true).
		FileBody(r).
		Send(ctx)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrPinFailed, err)
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing ipfs response", zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs add command returned error", zap.Error(resp.Error))
		return "", fmt.Errorf("%w: %w", ErrPinFailed, resp.Error)
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		return "", err
	}
	var addResp struct {
		Name string `json:"Name"`
		Hash string `json:"Hash"`
		Size string `json:"Size"`
	}
	if err := json.Unmarshal(body, &addResp); err != nil {
		zap.L().Error("error unmarshaling ipfs add response", zap.Error(err))
		return "", fmt.Errorf("%w: decode add response: %w", ErrPinFailed, err)
	}
	c, err := cid.Decode(addResp.Hash)
	if err != nil {
		return "", fmt.Errorf("%w: node returned %q: %w", ErrPinFailed, addResp.Hash, err)
	}

	zap.L().Debug("Successfully pinned to IPFS", zap.String("name", name), zap.String("cid", c.String()))
	return c.String(), nil
}

// PinJSON marshals doc and pins it.
func (p *KuboPinner) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		zap.L().Error("error marshaling data to json", zap.Error(err))
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return p.PinFile(ctx, name, bytes.NewReader(data))
}

// NewIPFSClient constructs a Kubo RPC client pointed at url.
func NewIPFSClient(url string, timeout time.Duration) (*rpc.HttpApi, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client, err := rpc.NewURLApiWithClient(url, &http.Client{Timeout: timeout})
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("ipfs client %s: %w", url, err)
	}
	return client, nil
}
