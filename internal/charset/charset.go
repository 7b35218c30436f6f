// Package charset provides the glyph palettes used for luminance
// mapping. Every palette is ordered darkest to lightest.
package charset

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in palettes.
const (
	// Standard balances detail and terminal compatibility.
	Standard = "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'. "

	// Simple keeps conversion cheap with a short ramp.
	Simple = "@%#*+=-:. "

	// Detailed extends the standard ramp for higher quality output.
	Detailed = "$@B%8&WM#*oahkbdpqwmZO0QLCJUYXzcvunxrjft/\\|()1{}[]?-_+~<>i!lI;:,\"^`'.,~-+_=*%@$#"

	// Block uses Unicode block elements.
	Block = "█▓▒░ " // █ ▓ ▒ ░ (space)

	// Minimal is a short ASCII-only ramp.
	Minimal = "@#*+=-:. "

	// Binary gives extreme contrast with two steps plus space.
	Binary = "@. "
)

var charsets = map[string]string{
	"standard": Standard,
	"simple":   Simple,
	"detailed": Detailed,
	"block":    Block,
	"minimal":  Minimal,
	"binary":   Binary,
}

// Get returns the palette registered under name (case-insensitive).
func Get(name string) (string, error) {
	cs, ok := charsets[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown charset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return cs, nil
}

// Names returns all registered palette names, sorted.
func Names() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
