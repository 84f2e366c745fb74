// Package media infers MIME-like media types for asset URLs when on-chain
// metadata does not declare one.
package media

import (
	"path"
	"strings"
)

var suffixTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"glb":  "model/gltf-binary",
	"gltf": "model/gltf+json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
}

// Infer returns declared when it is non-empty, otherwise the media type
// implied by the URL's file extension. Matching is case-insensitive and
// ignores query strings and fragments. It returns "" when nothing matches.
func Infer(url, declared string) string {
	if declared != "" {
		return declared
	}
	if url == "" {
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	ext := strings.TrimPrefix(path.Ext(url), ".")
	return suffixTypes[strings.ToLower(ext)]
}

// IsModel reports whether mediaType is a 3D model type.
func IsModel(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), "model/")
}
