package ops

import (
	"time"

	"github.com/hpungsan/splg/internal/config"
	"github.com/hpungsan/splg/internal/errors"
	"github.com/hpungsan/splg/internal/palette"
	"github.com/hpungsan/splg/internal/sets"
)

// ValidateInput contains parameters for the Validate operation.
type ValidateInput struct {
	Input string
}

// ValidateOutput contains the result of the Validate operation.
type ValidateOutput struct {
	Items    []string `json:"items"`
	SetCount int      `json:"set_count"`
}

// Validate checks raw input without enumerating. The item cap from config
// applies here too, so a passing Validate means Generate will not reject
// the same input.
func Validate(cfg *config.Config, input ValidateInput) (*ValidateOutput, error) {
	items, err := validateItems(cfg, input.Input)
	if err != nil {
		return nil, err
	}
	return &ValidateOutput{
		Items:    items,
		SetCount: sets.Count(len(items)),
	}, nil
}

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Input string

	// Palette colors the sets. nil uses the palette named in config.
	Palette palette.Palette
}

// Generate validates the input, enumerates every non-empty subset and
// colors each one. It returns a fresh Result; callers decide whether to
// keep it (see Session).
func Generate(cfg *config.Config, input GenerateInput) (*Result, error) {
	items, err := validateItems(cfg, input.Input)
	if err != nil {
		return nil, err
	}

	pal := input.Palette
	if pal == nil {
		pal, err = palette.New(cfg.Palette, cfg.Seed)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
	}

	enum, err := sets.Enumerate(items)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	result := &Result{
		ID:        id,
		Items:     items,
		Sets:      make([]Set, enum.Len()),
		Sizes:     enum.Sizes,
		CreatedAt: time.Now().Unix(),
	}
	for i, label := range enum.Labels {
		result.Sets[i] = Set{
			Index: i + 1,
			Label: label,
			Size:  enum.Sizes[i],
			Color: pal.Color(i),
		}
	}

	return result, nil
}

// validateItems runs the input rules, then the configured item cap.
func validateItems(cfg *config.Config, raw string) (sets.ItemList, error) {
	items, err := sets.Validate(raw)
	if err != nil {
		return nil, err
	}
	if cfg != nil && cfg.MaxItems > 0 && len(items) > cfg.MaxItems {
		return nil, errors.NewTooManyItems(cfg.MaxItems, len(items))
	}
	return items, nil
}
