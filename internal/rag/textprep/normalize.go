// Package textprep turns raw extracted document text into retrievable chunks.
package textprep

import "strings"

// Normalize keeps printable ASCII and newlines, drops carriage returns,
// turns tabs into spaces and collapses newline runs into one newline.
// An empty result means the document had no usable text.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastWasNewline := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\r':
			continue
		case c == '\t':
			c = ' '
		case c == '\n':
			if lastWasNewline {
				continue
			}
			lastWasNewline = true
			b.WriteByte(c)
			continue
		}
		//bytes of multi-byte runes are all >= 0x80 so they drop here too
		if c < 0x20 || c > 0x7E {
			continue
		}
		lastWasNewline = false
		b.WriteByte(c)
	}
	return b.String()
}

// IsBlank reports whether normalized text carries no content.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
