package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/shamank/artpass-sdk-go/pkg/config"
	"go.uber.org/zap"
)

// PinResponse is the pinning service's answer to an upload.
type PinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

// PinataClient pins files and JSON documents through the Pinata API.
type PinataClient struct {
	baseURL    string
	jwt        string
	httpClient *http.Client
}

// NewPinataClient returns a client for the pinning API at baseURL. An empty
// jwt is accepted; uploads then fail with config.ErrMissingCredential.
func NewPinataClient(baseURL, jwt string, timeout time.Duration) *PinataClient {
	if baseURL == "" {
		baseURL = config.DefaultPinataURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PinataClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		jwt:        jwt,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PinFile uploads r as a file named name and returns its CID.
func (p *PinataClient) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := (PinRequest{Name: name}).Validate(); err != nil {
		return "", err
	}
	if err := p.requireJWT(); err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeFileForm(mw, name, r)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		_ = pw.CloseWithError(err)
	}()

	return p.pin(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), pr)
}

// PinJSON uploads doc as a JSON document named name and returns its CID.
func (p *PinataClient) PinJSON(ctx context.Context, name string, doc any) (string, error) {
	if err := (PinRequest{Name: name}).Validate(); err != nil {
		return "", err
	}
	body, err := json.Marshal(struct {
		Content  any         `json:"pinataContent"`
		Metadata pinMetadata `json:"pinataMetadata"`
	}{Content: doc, Metadata: pinMetadata{Name: name}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return p.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(body))
}

func (p *PinataClient) requireJWT() error {
	if strings.TrimSpace(p.jwt) == "" {
		return fmt.Errorf("pinata jwt: %w", config.ErrMissingCredential)
	}
	return nil
}

func (p *PinataClient) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if err := p.requireJWT(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.jwt)
	req.Header.Set("Content-Type", contentType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		zap.L().Error("pinning request failed", zap.String("path", path), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrPinFailed, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			zap.L().Error("error closing pinning response", zap.Error(err))
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrPinFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Error("pinning service rejected upload",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: status %d: %s", ErrPinFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out PinResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrPinFailed, err)
	}
	c, err := cid.Decode(out.IpfsHash)
	if err != nil {
		return "", fmt.Errorf("%w: service returned %q: %w", ErrPinFailed, out.IpfsHash, err)
	}

	zap.L().Info("content pinned", zap.String("cid", c.String()), zap.Int64("size", out.PinSize))
	return c.String(), nil
}

func writeFileForm(mw *multipart.Writer, name string, r io.Reader) error {
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	meta, err := json.Marshal(pinMetadata{Name: name})
	if err != nil {
		return err
	}
	return mw.WriteField("pinataMetadata", string(meta))
}
