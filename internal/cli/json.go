package cli

import (
	"regexp"
	"strings"
)

// jsonToken matches keys with their colon, string values, literals and numbers.
var jsonToken = regexp.MustCompile(`("(\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(\s*:)?|\b(true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?)`)

// Palette assigns a color to each kind of JSON token.
type Palette struct {
	Key    string
	String string
	Bool   string
	Null   string
	Number string

	// Values overrides the string color for specific quoted values.
	Values map[string]string
}

// LogPalette colors structured log fields. Provider states stand out so a
// failing upstream is visible at a glance.
var LogPalette = Palette{
	Key:    Cyan,
	String: Green,
	Bool:   Yellow,
	Null:   Dim,
	Number: Purple,
	Values: map[string]string{
		`"online"`:  Green + Bold,
		`"offline"`: Red + Bold,
	},
}

// HighlightJSON colors a JSON document with LogPalette.
func HighlightJSON(doc string) string {
	return LogPalette.Highlight(doc)
}

// Highlight colors doc, or returns it untouched when color is disabled.
func (p Palette) Highlight(doc string) string {
	if !Enabled() {
		return doc
	}
	return jsonToken.ReplaceAllStringFunc(doc, p.paint)
}

func (p Palette) paint(tok string) string {
	switch {
	case strings.HasSuffix(tok, ":"):
		return p.Key + strings.TrimSuffix(tok, ":") + Reset + ":"
	case strings.HasPrefix(tok, `"`):
		if c, ok := p.Values[tok]; ok {
			return c + tok + Reset
		}
		return p.String + tok + Reset
	case tok == "true", tok == "false":
		return p.Bool + tok + Reset
	case tok == "null":
		return p.Null + tok + Reset
	default:
		return p.Number + tok + Reset
	}
}
