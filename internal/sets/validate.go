package sets

import (
	"strings"
	"unicode"

	"github.com/hpungsan/splg/internal/errors"
)

// Rule is one input check. Check returns nil when the input passes.
type Rule struct {
	Code  errors.ErrorCode
	Check func(input string) *errors.SplgError
}

// Rules lists the input checks in priority order. Validate stops at the
// first rule that fails, so the order here is the precedence contract.
var Rules = []Rule{
	{Code: errors.ErrMissingInput, Check: checkMissingInput},
	{Code: errors.ErrNumericOnly, Check: checkNumericOnly},
	{Code: errors.ErrMissingCommas, Check: checkMissingCommas},
	{Code: errors.ErrDoubleSpace, Check: checkDoubleSpace},
	{Code: errors.ErrDoubleComma, Check: checkDoubleComma},
	{Code: errors.ErrMultiWordEntry, Check: checkMultiWordEntry},
}

// Validate classifies raw input as an ItemList or exactly one rejection.
// Leading and trailing whitespace is ignored before any rule runs.
func Validate(raw string) (ItemList, error) {
	input := strings.TrimSpace(raw)

	for _, rule := range Rules {
		if err := rule.Check(input); err != nil {
			return nil, err
		}
	}

	items := splitItems(input)
	if len(items) == 0 {
		// Only separators survived (e.g. ", ,").
		return nil, errors.NewMissingInput()
	}
	return items, nil
}

// splitItems splits on commas, trims each piece and drops empty pieces.
func splitItems(input string) ItemList {
	parts := strings.Split(input, ",")
	items := make(ItemList, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func checkMissingInput(input string) *errors.SplgError {
	if input == "" {
		return errors.NewMissingInput()
	}
	return nil
}

// checkNumericOnly fires only when something other than commas and spaces
// is left and all of it is numeric.
func checkNumericOnly(input string) *errors.SplgError {
	rest := strings.NewReplacer(",", "", " ", "").Replace(input)
	if rest == "" {
		return nil
	}
	for _, r := range rest {
		if !unicode.IsNumber(r) {
			return nil
		}
	}
	return errors.NewNumericOnly()
}

func checkMissingCommas(input string) *errors.SplgError {
	if strings.Contains(input, " ") && !strings.Contains(input, ",") {
		return errors.NewMissingCommas()
	}
	return nil
}

func checkDoubleSpace(input string) *errors.SplgError {
	if strings.Contains(input, "  ") {
		return errors.NewDoubleSpace()
	}
	return nil
}

func checkDoubleComma(input string) *errors.SplgError {
	if strings.Contains(input, ",,") {
		return errors.NewDoubleComma()
	}
	return nil
}

// checkMultiWordEntry reports the first piece, in split order, that still
// holds more than one whitespace-separated word.
func checkMultiWordEntry(input string) *errors.SplgError {
	for _, item := range splitItems(input) {
		if len(strings.Fields(item)) > 1 {
			return errors.NewMultiWordEntry(item)
		}
	}
	return nil
}
