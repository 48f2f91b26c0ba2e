package query

import (
	"strconv"
	"strings"
)

// Serialize renders clauses joined with " AND ".
func Serialize(clauses []Clause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if s := serializeClause(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return TextField + ":*"
	}
	return strings.Join(parts, " AND ")
}

func serializeClause(c Clause) string {
	switch c := c.(type) {
	case Text:
		return serializeText(c.Term)
	case Term:
		return c.Field + ":" + Escape(c.Value)
	case AnyOf:
		if len(c.Values) == 0 {
			return ""
		}
		terms := make([]string, len(c.Values))
		for i, v := range c.Values {
			terms[i] = c.Field + ":" + Escape(v)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	case Range:
		return c.Field + ":[" + bound(c.Lower) + " TO " + bound(c.Upper) + "]"
	default:
		return ""
	}
}

func serializeText(term string) string {
	words := strings.Fields(term)
	switch len(words) {
	case 0:
		return TextField + ":*"
	case 1:
		if words[0] == "*" {
			return TextField + ":*"
		}
		return TextField + ":" + Escape(words[0])
	default:
		escaped := make([]string, len(words))
		for i, w := range words {
			escaped[i] = Escape(w)
		}
		return TextField + ":(" + strings.Join(escaped, " ") + ")"
	}
}

func bound(b *float64) string {
	if b == nil {
		return "*"
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

// Escape backslash-escapes Lucene special characters and whitespace so the
// value is read as a single literal term.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '+', '-', '&', '|', '!', '(', ')', '{', '}', '[', ']', '^', '"', '~', '*', '?', ':', '\\', '/', ' ', '\t', '\n':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
