package source

import (
	"context"
	"errors"
	"fmt"
)

// Chain tries each loader in order and returns the first hit. Only
// ErrNotFound moves on to the next loader; any other error stops the search.
type Chain []Loader

// LoadTemplate loads a template from the first loader that has it
func (c Chain) LoadTemplate(ctx context.Context, ref string) (string, error) {
	for _, loader := range c {
		tmpl, err := loader.LoadTemplate(ctx, ref)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return tmpl, err
	}
	return "", fmt.Errorf("template %q: %w", ref, ErrNotFound)
}

// LoadData loads a data context from the first loader that has it
func (c Chain) LoadData(ctx context.Context, ref string) (map[string]interface{}, error) {
	for _, loader := range c {
		data, err := loader.LoadData(ctx, ref)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return data, err
	}
	return nil, fmt.Errorf("data %q: %w", ref, ErrNotFound)
}
