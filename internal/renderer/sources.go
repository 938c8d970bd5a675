package renderer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// resolveTemplate returns the template text for the request mode
func (r *Renderer) resolveTemplate(ctx context.Context, req *Request) (string, error) {
	if req.Mode == ModeInline {
		return req.Template, nil
	}

	r.logger.Debug("loading template",
		zap.String("request_id", req.ID),
		zap.String("selector", req.TemplateSelector),
	)

	tmpl, err := r.templates.Template(ctx, req.TemplateSelector)
	if err != nil {
		return "", fmt.Errorf("failed to resolve template: %w", err)
	}
	return tmpl, nil
}

// resolveData returns the data context: inline, loaded, or empty
func (r *Renderer) resolveData(ctx context.Context, req *Request) (map[string]interface{}, error) {
	switch {
	case req.Data != nil:
		return req.Data, nil
	case req.DataSelector == "":
		return map[string]interface{}{}, nil
	}

	r.logger.Debug("loading data",
		zap.String("request_id", req.ID),
		zap.String("selector", req.DataSelector),
	)

	data, err := r.data.LoadData(ctx, req.DataSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data: %w", err)
	}
	return data, nil
}
