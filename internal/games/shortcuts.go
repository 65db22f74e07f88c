package games

import "strings"

// nameShortcuts maps short tokens to canonical display names. The table is
// fixed; entries are looked up case-insensitively on trimmed input.
var nameShortcuts = map[string]string{
	"max":    "Max",
	"koekje": "Koekje",
	"timo":   "Slobbie",
	"hayo":   "Har",
	"daan-b": "Daantje B",
	"daan-v": "Daantje V",
	"jur":    "Jur",
	"wessel": "Wessel",
	"luuk":   "Luuk",
	"joris":  "Joris",
}

// Shortcut pairs a token with the display name it expands to.
type Shortcut struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Shortcuts returns the shortcut table in a stable order.
func Shortcuts() []Shortcut {
	out := make([]Shortcut, 0, len(nameShortcuts))
	for _, token := range []string{
		"max", "koekje", "timo", "hayo", "daan-b",
		"daan-v", "jur", "wessel", "luuk", "joris",
	} {
		out = append(out, Shortcut{Token: token, Name: nameShortcuts[token]})
	}
	return out
}

// ResolveName trims raw input and expands a shortcut token into its display
// name. Input that matches no shortcut is returned trimmed and otherwise
// unchanged. Empty input resolves to the empty string.
func ResolveName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if name, ok := nameShortcuts[strings.ToLower(trimmed)]; ok {
		return name
	}
	return trimmed
}
