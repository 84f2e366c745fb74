// Package gateway maps content-addressed URIs (ipfs://) found in on-chain
// metadata to fetchable HTTP URLs through a configurable IPFS gateway.
package gateway

import (
	"strings"

	"github.com/ipfs/go-cid"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// DefaultGateway is used when no gateway is configured.
	DefaultGateway = "https://ipfs.io/ipfs/"
)

// Resolver turns metadata media references into HTTP URLs.
type Resolver struct {
	base string
}

// NewResolver returns a Resolver using base as the gateway prefix.
// An empty base selects DefaultGateway; a trailing slash is added if missing.
func NewResolver(base string) *Resolver {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultGateway
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Resolver{base: base}
}

// Base returns the gateway prefix.
func (r *Resolver) Base() string { return r.base }

var defaultResolver = NewResolver("")

// Resolve resolves v with the default gateway.
func Resolve(v any) string {
	return defaultResolver.Resolve(v)
}

// Resolve returns an HTTP URL for v, or "" when v cannot be resolved.
//
// v may be a string, a CIP-25 chunked string array, or an object carrying
// the reference under "src". Only one level of object indirection is
// followed. ipfs:// URIs (including the redundant ipfs://ipfs/ form) and bare
// CIDs are rewritten onto the gateway; other URLs are returned unchanged.
func (r *Resolver) Resolve(v any) string {
	if obj, ok := v.(map[string]any); ok {
		src := obj["src"]
		if _, nested := src.(map[string]any); nested {
			return ""
		}
		v = src
	}
	return r.resolveString(joinChunks(v))
}

func (r *Resolver) resolveString(uri string) string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return ""
	}

	if len(uri) >= len(IpfsPrefix) && strings.EqualFold(uri[:len(IpfsPrefix)], IpfsPrefix) {
		path := strings.TrimLeft(uri[len(IpfsPrefix):], "/")
		path = strings.TrimPrefix(path, "ipfs/")
		if path == "" {
			return ""
		}
		return r.base + path
	}

	if strings.Contains(uri, ":") {
		return uri
	}

	head, _, _ := strings.Cut(uri, "/")
	if _, err := cid.Decode(head); err == nil {
		return r.base + uri
	}
	return uri
}

// joinChunks flattens the values metadata uses for media references.
// CIP-25 splits strings longer than 64 bytes into arrays of chunks.
func joinChunks(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, "")
	case []any:
		var b strings.Builder
		for _, part := range t {
			s, ok := part.(string)
			if !ok {
				return ""
			}
			b.WriteString(s)
		}
		return b.String()
	}
	return ""
}

// CID extracts the content identifier from an ipfs:// URI, a gateway URL
// containing /ipfs/, or a bare CID. ok is false when none is found.
func CID(uri string) (c cid.Cid, ok bool) {
	uri = strings.TrimSpace(uri)
	switch {
	case strings.HasPrefix(strings.ToLower(uri), IpfsPrefix):
		uri = strings.TrimPrefix(strings.TrimLeft(uri[len(IpfsPrefix):], "/"), "ipfs/")
	case strings.Contains(uri, "/ipfs/"):
		_, uri, _ = strings.Cut(uri, "/ipfs/")
	}
	head, _, _ := strings.Cut(uri, "/")
	head, _, _ = strings.Cut(head, "?")
	parsed, err := cid.Decode(head)
	if err != nil {
		return cid.Undef, false
	}
	return parsed, true
}
