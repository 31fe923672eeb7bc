package types

import "slices"

// Style holds the cosmetic preview parameters. It is ephemeral UI state and
// never part of the Document.
type Style struct {
	Color string `json:"color"`
	Font  string `json:"font"`
}

var (
	colors = []string{"blue", "green", "gray", "purple", "pink"}
	fonts  = []string{"sans-serif", "serif", "monospace", "cursive", "fantasy"}
)

// DefaultStyle is blue on sans-serif.
func DefaultStyle() Style {
	return Style{Color: colors[0], Font: fonts[0]}
}

// Colors lists the selectable accent colors.
func Colors() []string { return slices.Clone(colors) }

// Fonts lists the selectable font families.
func Fonts() []string { return slices.Clone(fonts) }

// IsColor reports whether c is a selectable accent color.
func IsColor(c string) bool { return slices.Contains(colors, c) }

// IsFont reports whether f is a selectable font family.
func IsFont(f string) bool { return slices.Contains(fonts, f) }

// Merge overlays the non-empty fields of other onto s.
func (s Style) Merge(other Style) Style {
	if other.Color != "" {
		s.Color = other.Color
	}
	if other.Font != "" {
		s.Font = other.Font
	}
	return s
}
