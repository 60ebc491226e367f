package textutil

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mattn/go-runewidth"
)

// wide counts East Asian ambiguous characters such as ① and · as two
// columns, the way CJK terminals and editors render them.
var wide = &runewidth.Condition{EastAsianWidth: true}

// Width is the display width of s in terminal columns.
func Width(s string) int {
	return wide.StringWidth(s)
}

// Hash computes a SHA-256 hex hash of a string for change detection.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens s to at most maxWidth columns, appending "..." if truncated.
func Truncate(s string, maxWidth int) string {
	if Width(s) <= maxWidth {
		return s
	}
	return wide.Truncate(s, maxWidth, "...")
}
