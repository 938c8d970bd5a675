package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Resolver dispatches selectors to the URL loader or the named loader
type Resolver struct {
	remote Loader
	named  Loader
	logger *zap.Logger
}

// NewResolver creates a new resolver. Either loader may be nil, in which case
// selectors of that kind fail.
func NewResolver(remote, named Loader, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		remote: remote,
		named:  named,
		logger: logger,
	}
}

// Template loads the template a selector points to
func (r *Resolver) Template(ctx context.Context, selector string) (string, error) {
	sel, loader, err := r.route(selector)
	if err != nil {
		return "", err
	}

	tmpl, err := loader.LoadTemplate(ctx, sel.Value)
	if err != nil {
		return "", fmt.Errorf("failed to load template %s: %w", sel, err)
	}

	r.logger.Debug("template loaded",
		zap.String("selector", sel.String()),
		zap.String("kind", string(sel.Kind)),
		zap.Int("bytes", len(tmpl)),
	)
	return tmpl, nil
}

// Data loads the data context a selector points to
func (r *Resolver) Data(ctx context.Context, selector string) (map[string]interface{}, error) {
	sel, loader, err := r.route(selector)
	if err != nil {
		return nil, err
	}

	data, err := loader.LoadData(ctx, sel.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to load data %s: %w", sel, err)
	}

	r.logger.Debug("data loaded",
		zap.String("selector", sel.String()),
		zap.String("kind", string(sel.Kind)),
		zap.Int("keys", len(data)),
	)
	return data, nil
}

// LoadData lets a Resolver back a CachedData, taking the raw selector as ref
func (r *Resolver) LoadData(ctx context.Context, selector string) (map[string]interface{}, error) {
	return r.Data(ctx, selector)
}

func (r *Resolver) route(selector string) (Selector, Loader, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return Selector{}, nil, err
	}

	switch sel.Kind {
	case KindURL:
		if r.remote == nil {
			return sel, nil, fmt.Errorf("selector %s: url sources are not enabled", sel)
		}
		return sel, r.remote, nil
	default:
		if r.named == nil {
			return sel, nil, fmt.Errorf("selector %s: named sources are not enabled", sel)
		}
		return sel, r.named, nil
	}
}
