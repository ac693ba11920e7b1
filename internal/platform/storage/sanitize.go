package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxFilenameLen = 100

var keyReplacer = strings.NewReplacer(" ", "_")

// SanitizeFilename normalizes a user-supplied filename for use inside
// an object key: accents are stripped, anything outside
// [a-zA-Z0-9._-] becomes an underscore and the result is length-capped.
func SanitizeFilename(name string) string {
	// Decompose and drop combining marks: "ação.pdf" -> "acao.pdf".
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = keyReplacer.Replace(stripped)

	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "arquivo"
	}
	if len(out) > maxFilenameLen {
		// Keep the extension when truncating.
		if dot := strings.LastIndex(out, "."); dot > 0 && len(out)-dot <= 10 {
			ext := out[dot:]
			out = out[:maxFilenameLen-len(ext)] + ext
		} else {
			out = out[:maxFilenameLen]
		}
	}
	return out
}

// ObjectKey builds a collision-resistant storage key of the form
// <setor>_<timestamp>_<random>_<sanitized-filename>.
func ObjectKey(setor, random, filename string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s", strings.ToLower(setor), now.Unix(), random, SanitizeFilename(filename))
}
