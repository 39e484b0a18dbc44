// Package cardid derives stable identifiers from card content. The same
// front and back text always yields the same ID, across syncs and across
// machines, so scheduling state survives deck files being moved or
// re-ordered.
package cardid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize cleans the card content before hashing: each side is
// lowercased, trimmed, and has its line endings normalized, then the
// sides are joined with a newline so that field boundaries survive.
func Normalize(front, back string) string {
	clean := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}
	return clean(front) + "\n" + clean(back)
}

// FromContent returns the card ID for the given content: the SHA-256 of
// the normalized front and back, hex encoded.
func FromContent(front, back string) string {
	sum := sha256.Sum256([]byte(Normalize(front, back)))
	return hex.EncodeToString(sum[:])
}
