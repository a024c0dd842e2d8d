// Package sets validates a comma-separated list of names and enumerates
// every non-empty subset of it.
//
// Both operations are pure: they hold no state between calls and never
// touch rendering, colors or files. Callers (CLI, web UI, MCP server) own
// whatever result they keep around.
package sets

import (
	"math"
	"math/bits"
	"strings"
)

// LabelSeparator joins the items of a subset into its display label.
const LabelSeparator = ", "

// ItemList is a validated, ordered list of trimmed names.
// Order is the order of first appearance in the raw input; duplicates are kept.
type ItemList []string

// Enumeration holds the subset labels and their sizes in enumeration order.
// Labels[i] has Sizes[i] items.
type Enumeration struct {
	Labels []string `json:"labels"`
	Sizes  []int    `json:"sizes"`
}

// Len returns the number of enumerated subsets.
func (e *Enumeration) Len() int {
	return len(e.Labels)
}

// Count returns the number of non-empty subsets of n items (2^n - 1).
// It saturates at math.MaxInt when the result does not fit in an int.
func Count(n int) int {
	if n <= 0 {
		return 0
	}
	if n >= bits.UintSize-1 {
		return math.MaxInt
	}
	return 1<<n - 1
}

// Label joins the items at the given indices with LabelSeparator.
func Label(items ItemList, idx []int) string {
	var b strings.Builder
	for i, j := range idx {
		if i > 0 {
			b.WriteString(LabelSeparator)
		}
		b.WriteString(items[j])
	}
	return b.String()
}
