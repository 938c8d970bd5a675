package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aescanero/dago-node-render/internal/component"
	"github.com/aescanero/dago-node-render/internal/eval/template"
	"github.com/aescanero/dago-node-render/internal/events"
	"github.com/aescanero/dago-node-render/internal/source"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Run renders (or validates) according to opts. Rendered output goes to the
// -o file or to stdout. With a watch interval it blocks until ctx is done.
func Run(ctx context.Context, opts *Options, stdout io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpLoader := source.NewHTTPLoader(opts.HTTPTimeout, logger)
	defer func() { _ = httpLoader.Close() }()

	resolver := source.NewResolver(httpLoader, pathLoader{}, logger)
	engine := template.NewEngine(template.WithLogger(logger))

	if opts.Validate {
		return validate(ctx, resolver, engine, opts.Template, stdout)
	}

	bus := events.NewLocalBus(logger)
	defer func() { _ = bus.Close() }()
	bus.Subscribe("", func(ev events.Event) {
		logger.Debug("event", zap.String("type", ev.Type), zap.Any("payload", ev.Payload))
	})

	var sink component.Sink = component.NewWriterSink(stdout)
	if opts.Output != "" {
		sink = component.NewFileSink(opts.Output)
	}

	c, err := component.New(filepath.Base(opts.Template), component.Deps{
		Templates: resolver,
		Data:      source.NewCachedData(resolver, 0, logger),
		Engine:    engine,
		Sink:      sink,
		Bus:       bus,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if err := c.SetAttribute(ctx, component.AttrSelector, opts.Template); err != nil {
		return err
	}
	if err := c.SetAttribute(ctx, component.AttrSrc, opts.Data); err != nil {
		return err
	}
	if err := c.Attach(ctx); err != nil {
		return err
	}

	if opts.Watch <= 0 {
		return nil
	}

	logger.Info("watching data source",
		zap.String("data", opts.Data),
		zap.Duration("interval", opts.Watch),
	)
	if err := c.Watch(ctx, opts.Watch); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func validate(ctx context.Context, resolver *source.Resolver, engine *template.Engine, selector string, stdout io.Writer) error {
	tmpl, err := resolver.Template(ctx, selector)
	if err != nil {
		return err
	}

	errs := multierr.Errors(engine.Validate(tmpl))
	if len(errs) == 0 {
		fmt.Fprintf(stdout, "%s: ok\n", selector)
		return nil
	}

	for _, e := range errs {
		fmt.Fprintf(stdout, "%s: %v\n", selector, e)
	}
	return &ExitError{Code: 1, Message: fmt.Sprintf("%s: %d problem(s) found", selector, len(errs))}
}

// pathLoader reads templates and data from arbitrary file paths
type pathLoader struct{}

func (pathLoader) LoadTemplate(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(content), nil
}

func (pathLoader) LoadData(ctx context.Context, path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	data, err := source.DecodeData(content, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}
