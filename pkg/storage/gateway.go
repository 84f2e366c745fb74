package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxGatewayRead caps the size of a single gateway download.
const maxGatewayRead = 64 << 20

type httpGatewayFetcher struct {
	client *http.Client
}

func (f httpGatewayFetcher) Fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	return GetGatewayFile(ctx, f.client, endpoint, path)
}

// GetGatewayFile fetches {endpoint}{path} from an IPFS HTTP gateway. The
// path is appended verbatim, so endpoint should end in "/". Non-2xx answers
// are errors.
func GetGatewayFile(ctx context.Context, client *http.Client, endpoint, path string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	zap.L().Debug("Getting gateway file", zap.String("path", path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway get %s: %w", path, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			zap.L().Error("error closing gateway response", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway get %s: status %d", path, resp.StatusCode)
	}

	file, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayRead+1))
	if err != nil {
		return nil, err
	}
	if len(file) > maxGatewayRead {
		return nil, fmt.Errorf("gateway get %s: content exceeds %d bytes", path, maxGatewayRead)
	}
	return file, nil
}
