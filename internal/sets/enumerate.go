package sets

import (
	"github.com/hpungsan/splg/internal/errors"
)

// preallocLimit caps the up-front slice capacity in Enumerate. Beyond it the
// slices grow by append.
const preallocLimit = 1 << 20

// Enumerate returns every non-empty subset of items with its size.
//
// Order: subset size ascending (1..n); within a size, index tuples in
// lexicographic order with the rightmost index advancing fastest. For
// ["a", "b", "c"] that is a, b, c, "a, b", "a, c", "b, c", "a, b, c".
//
// The result has 2^n - 1 entries and n is not bounded here. Callers that
// take n from users should cap it first (see ops.Generate).
func Enumerate(items ItemList) (*Enumeration, error) {
	n := Count(len(items))
	if n > preallocLimit {
		n = preallocLimit
	}
	out := &Enumeration{
		Labels: make([]string, 0, n),
		Sizes:  make([]int, 0, n),
	}

	err := Each(items, func(idx []int) bool {
		out.Labels = append(out.Labels, Label(items, idx))
		out.Sizes = append(out.Sizes, len(idx))
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Each calls fn with the index tuple of every non-empty subset, in the order
// documented on Enumerate. The idx slice is reused between calls; copy it to
// keep it. Returning false from fn stops the walk early.
func Each(items ItemList, fn func(idx []int) bool) error {
	n := len(items)
	if n == 0 {
		return errors.NewEmptyItemList()
	}

	idx := make([]int, n)
	for r := 1; r <= n; r++ {
		combo := idx[:r]
		for i := range combo {
			combo[i] = i
		}

		for {
			if !fn(combo) {
				return nil
			}

			// Rightmost position that can still move.
			i := r - 1
			for i >= 0 && combo[i] == n-r+i {
				i--
			}
			if i < 0 {
				break
			}

			combo[i]++
			for j := i + 1; j < r; j++ {
				combo[j] = combo[j-1] + 1
			}
		}
	}
	return nil
}
