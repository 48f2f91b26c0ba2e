package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var transliterate = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n", "ß", "ss",
)

// Generate creates a URL-friendly slug, folding accented Latin letters to
// ASCII.
//
// Examples:
//   - "Scarpe Uomo" → "scarpe-uomo"
//   - "Perché sì!" → "perche-si"
//   - "Più   Venduti" → "piu-venduti"
func Generate(name string) string {
	s := transliterate.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Segment lowercases a category label and swaps each space for a hyphen.
// Other characters are kept, so the result matches the group paths the
// storefront menus already link to.
func Segment(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}
