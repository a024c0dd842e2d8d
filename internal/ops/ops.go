package ops

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Result is one successful generate: the validated items and every set
// derived from them. A Result is never modified after Generate returns;
// a new generate produces a new Result.
type Result struct {
	ID        string   `json:"id"`
	Items     []string `json:"items"`
	Sets      []Set    `json:"sets"`
	Sizes     []int    `json:"sizes"`
	CreatedAt int64    `json:"created_at"`
}

// Set is a single enumerated subset with its display color.
type Set struct {
	Index int    `json:"index"` // 1-based position in enumeration order
	Label string `json:"label"`
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// Line formats the set the way it is listed to users: "Set 3: { German }".
func (s Set) Line() string {
	return fmt.Sprintf("Set %d: { %s }", s.Index, s.Label)
}

// Labels returns the set labels in enumeration order.
func (r *Result) Labels() []string {
	labels := make([]string, len(r.Sets))
	for i, s := range r.Sets {
		labels[i] = s.Label
	}
	return labels
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
