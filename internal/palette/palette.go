// Package palette assigns display colors to generated sets.
//
// Colors carry no meaning: there is no uniqueness or contrast guarantee.
// Each shell picks a strategy and may swap it freely.
package palette

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/splg/internal/config"
)

// Palette returns a "#rrggbb" color for the set at the given 0-based index.
// Implementations are not safe for concurrent use.
type Palette interface {
	Color(i int) string
}

// Random picks an independent random color for every set.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a Random palette. A zero seed seeds from the clock.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))}
}

// Color implements Palette.
func (p *Random) Color(int) string {
	return fmt.Sprintf("#%02x%02x%02x", p.rng.IntN(256), p.rng.IntN(256), p.rng.IntN(256))
}

// tab10 is the matplotlib "tab10" qualitative palette.
var tab10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Fixed cycles through a fixed list of colors.
type Fixed struct {
	colors []string
}

// NewFixed creates a Fixed palette. With no colors it uses tab10.
func NewFixed(colors ...string) *Fixed {
	if len(colors) == 0 {
		colors = tab10
	}
	return &Fixed{colors: colors}
}

// Color implements Palette.
func (p *Fixed) Color(i int) string {
	n := len(p.colors)
	return p.colors[((i%n)+n)%n]
}

// New returns the palette named by name ("random" or "fixed").
func New(name string, seed int64) (Palette, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.PaletteRandom:
		return NewRandom(seed), nil
	case config.PaletteFixed:
		return NewFixed(), nil
	default:
		return nil, fmt.Errorf("unknown palette %q (want %q or %q)", name, config.PaletteRandom, config.PaletteFixed)
	}
}

// ParseHex parses a "#rrggbb" color into its components.
func ParseHex(hex string) (r, g, b uint8, err error) {
	s, ok := strings.CutPrefix(hex, "#")
	if !ok || len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", hex)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
