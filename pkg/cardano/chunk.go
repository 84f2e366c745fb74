package cardano

import "unicode/utf8"

// MaxMetadataString is the ledger limit for a metadata text value in bytes.
const MaxMetadataString = 64

// ChunkString splits s into pieces of at most size bytes without cutting a
// UTF-8 sequence. Strings that fit are returned as a single element.
func ChunkString(s string, size int) []string {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	if len(s) <= size {
		return []string{s}
	}
	var out []string
	for len(s) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// MetadataString returns s as a plain string when it fits the ledger limit,
// or as a list of chunks otherwise.
func MetadataString(s string) any {
	chunks := ChunkString(s, MaxMetadataString)
	if len(chunks) == 1 {
		return chunks[0]
	}
	return chunks
}
