package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/source"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode represents where the template of a request comes from
type Mode string

const (
	// ModeInline renders template text carried in the request
	ModeInline Mode = "inline"

	// ModeSelector loads the template through a source selector
	ModeSelector Mode = "selector"
)

// Request represents a single render request
type Request struct {
	ID               string                 `json:"id,omitempty"`
	Mode             Mode                   `json:"mode,omitempty"`
	Template         string                 `json:"template,omitempty"`
	TemplateSelector string                 `json:"template_selector,omitempty"`
	Data             map[string]interface{} `json:"data,omitempty"`
	DataSelector     string                 `json:"data_selector,omitempty"`
}

// Result represents the outcome of a render request
type Result struct {
	ID       string        `json:"id"`
	Output   string        `json:"output"`
	Mode     string        `json:"mode"`
	Duration time.Duration `json:"duration"`
}

// TemplateSource loads the template a selector points to
type TemplateSource interface {
	Template(ctx context.Context, selector string) (string, error)
}

// Renderer handles render requests
type Renderer struct {
	engine    *template.Engine
	templates TemplateSource
	data      source.DataLoader
	logger    *zap.Logger
}

// NewRenderer creates a new renderer. templates and data may be nil when only
// inline requests are served.
func NewRenderer(engine *template.Engine, templates TemplateSource, data source.DataLoader, logger *zap.Logger) *Renderer {
	if engine == nil {
		engine = template.NewEngine(template.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		engine:    engine,
		templates: templates,
		data:      data,
		logger:    logger,
	}
}

// Render performs a render request
func (r *Renderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	// Detect mode if not specified
	if req.Mode == "" {
		req.Mode = r.detectMode(req)
	}

	r.logger.Info("render request",
		zap.String("request_id", req.ID),
		zap.String("mode", string(req.Mode)),
	)

	if err := r.validateRequest(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := time.Now()

	tmpl, err := r.resolveTemplate(ctx, req)
	if err != nil {
		return nil, r.failed(req, err)
	}

	data, err := r.resolveData(ctx, req)
	if err != nil {
		return nil, r.failed(req, err)
	}

	output, err := r.engine.Render(tmpl, data)
	if err != nil {
		return nil, r.failed(req, err)
	}

	result := &Result{
		ID:       req.ID,
		Output:   output,
		Mode:     string(req.Mode),
		Duration: time.Since(start),
	}

	r.logger.Info("render completed",
		zap.String("request_id", req.ID),
		zap.String("mode", result.Mode),
		zap.Int("bytes", len(output)),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// Validate checks a request and, for inline templates, the template itself
// without rendering anything
func (r *Renderer) Validate(req *Request) error {
	if req.Mode == "" {
		req.Mode = r.detectMode(req)
	}
	if err := r.validateRequest(req); err != nil {
		return err
	}
	if req.Mode == ModeInline {
		return r.engine.Validate(req.Template)
	}
	return nil
}

func (r *Renderer) failed(req *Request, err error) error {
	r.logger.Error("render failed",
		zap.String("request_id", req.ID),
		zap.String("mode", string(req.Mode)),
		zap.Error(err),
	)
	return err
}

// detectMode detects the template mode from the request
func (r *Renderer) detectMode(req *Request) Mode {
	if req.TemplateSelector != "" && req.Template == "" {
		return ModeSelector
	}
	return ModeInline
}

// validateRequest validates the render request
func (r *Renderer) validateRequest(req *Request) error {
	switch req.Mode {
	case ModeInline:
		if req.TemplateSelector != "" {
			return fmt.Errorf("inline mode does not take a template_selector")
		}

	case ModeSelector:
		if req.TemplateSelector == "" {
			return fmt.Errorf("selector mode requires template_selector")
		}
		if req.Template != "" {
			return fmt.Errorf("selector mode does not take an inline template")
		}
		if r.templates == nil {
			return fmt.Errorf("selector mode is not available: no template source configured")
		}

	default:
		return fmt.Errorf("unknown render mode: %s", req.Mode)
	}

	if req.Data != nil && req.DataSelector != "" {
		return fmt.Errorf("data and data_selector are mutually exclusive")
	}
	if req.DataSelector != "" && r.data == nil {
		return fmt.Errorf("data_selector is not available: no data source configured")
	}

	return nil
}
