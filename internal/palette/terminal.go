package palette

import (
	"github.com/fatih/color"
)

// Colorize wraps s in the terminal escape sequence for the hex color.
// Invalid colors and disabled color output (color.NoColor) return s unchanged.
func Colorize(hex, s string) string {
	if color.NoColor {
		return s
	}
	r, g, b, err := ParseHex(hex)
	if err != nil {
		return s
	}
	return color.RGB(int(r), int(g), int(b)).Sprint(s)
}
