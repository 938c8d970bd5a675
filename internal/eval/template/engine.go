package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aescanero/dago-node-render/internal/eval/condition"
	"github.com/aescanero/dago-node-render/internal/eval/lookup"
	"github.com/aymerick/raymond"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Engine renders templates against data contexts
type Engine struct {
	evaluator *condition.Evaluator
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for debug diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEvaluator shares a condition evaluator (and its cache) between engines
func WithEvaluator(evaluator *condition.Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// NewEngine creates a new template engine
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		evaluator: condition.NewEvaluator(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	p := &pass{engine: e}

	result, err := p.render(p.guard(templateStr), data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return p.expand(result), nil
}

// Validate checks every condition in a template and reports unbalanced
// blocks. It never evaluates anything against data.
func (e *Engine) Validate(templateStr string) error {
	var errs error

	for _, match := range ifBlock.open.FindAllStringSubmatch(templateStr, -1) {
		errs = multierr.Append(errs, e.evaluator.Validate(match[1]))
	}

	for _, kind := range []*blockKind{eachBlock, ifBlock} {
		for _, unbalanced := range kind.unbalanced(templateStr) {
			errs = multierr.Append(errs, unbalanced)
		}
	}

	return errs
}

// ClearCache clears the parsed condition cache
func (e *Engine) ClearCache() {
	e.evaluator.ClearCache()
}

// marker delimits a reference to resolved text inside the working string.
// Resolved text is stored aside so enclosing passes never scan it again.
const marker = "\x00"

// pass holds the resolved fragments of a single Render call.
type pass struct {
	engine   *Engine
	resolved []string
}

// guard moves any marker bytes already present in the template aside so
// they survive expansion unchanged.
func (p *pass) guard(s string) string {
	if !strings.Contains(s, marker) {
		return s
	}
	return strings.ReplaceAll(s, marker, p.store(marker))
}

func (p *pass) store(text string) string {
	p.resolved = append(p.resolved, text)
	return marker + strconv.Itoa(len(p.resolved)-1) + marker
}

// seal stores rendered output, which may itself hold references.
func (p *pass) seal(rendered string) string {
	return p.store(p.expand(rendered))
}

func (p *pass) expand(s string) string {
	if !strings.Contains(s, marker) {
		return s
	}

	var sb strings.Builder
	for {
		i := strings.Index(s, marker)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])

		rest := s[i+len(marker):]
		j := strings.Index(rest, marker)
		if j < 0 {
			sb.WriteString(s[i:])
			return sb.String()
		}
		idx, err := strconv.Atoi(rest[:j])
		if err != nil || idx < 0 || idx >= len(p.resolved) {
			sb.WriteString(s[i : i+len(marker)+j+len(marker)])
		} else {
			sb.WriteString(p.resolved[idx])
		}
		s = rest[j+len(marker):]
	}
}

func (p *pass) render(tmpl string, data interface{}) (string, error) {
	out, err := p.resolveBlocks(tmpl, eachBlock, func(b block) (string, error) {
		return p.renderEach(b, data)
	})
	if err != nil {
		return "", err
	}

	out, err = p.resolveBlocks(out, ifBlock, func(b block) (string, error) {
		return p.renderIf(b, data)
	})
	if err != nil {
		return "", err
	}

	return p.resolvePlaceholders(out, data), nil
}

func (p *pass) resolveBlocks(s string, kind *blockKind, fn func(block) (string, error)) (string, error) {
	var sb strings.Builder
	written := 0
	from := 0

	for from < len(s) {
		b, ok := kind.find(s, from)
		if !ok {
			break
		}
		if !b.matched {
			p.engine.logger.Debug("unbalanced block left as text",
				zap.String("block", kind.name),
				zap.Int("offset", b.start),
			)
			from = b.openEnd
			continue
		}

		rendered, err := fn(b)
		if err != nil {
			return "", err
		}
		sb.WriteString(s[written:b.start])
		sb.WriteString(p.seal(rendered))
		written = b.end
		from = b.end
	}

	if written == 0 {
		return s, nil
	}
	sb.WriteString(s[written:])
	return sb.String(), nil
}

func (p *pass) renderEach(b block, data interface{}) (string, error) {
	value, found := lookup.Path(data, b.arg)
	items, ok := lookup.Sequence(value)
	if !found || !ok {
		p.engine.logger.Debug("each target is not a sequence",
			zap.String("path", strings.TrimSpace(b.arg)),
			zap.Bool("found", found),
		)
		return "", nil
	}

	var sb strings.Builder
	for _, item := range items {
		out, err := p.render(b.body, item)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (p *pass) renderIf(b block, data interface{}) (string, error) {
	matched, err := p.engine.evaluator.Evaluate(b.arg, data)
	if err != nil {
		return "", err
	}

	p.engine.logger.Debug("condition evaluated",
		zap.String("condition", strings.TrimSpace(b.arg)),
		zap.Bool("result", matched),
	)

	if matched {
		return p.render(b.then, data)
	}
	if b.hasElse {
		return p.render(b.orElse, data)
	}
	return "", nil
}

func (p *pass) resolvePlaceholders(s string, data interface{}) string {
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var sb strings.Builder
	written := 0
	for _, m := range matches {
		path := s[m[2]:m[3]]
		value, ok := lookup.Path(data, path)
		if !ok {
			p.engine.logger.Debug("unresolved placeholder left in output",
				zap.String("path", strings.TrimSpace(path)),
			)
			continue
		}
		sb.WriteString(s[written:m[0]])
		sb.WriteString(p.store(stringify(value)))
		written = m[1]
	}
	sb.WriteString(s[written:])
	return sb.String()
}

// stringify renders a resolved value as text. Mappings are written as JSON;
// everything else follows Handlebars (null is empty, sequences concatenate).
func stringify(value interface{}) string {
	if lookup.IsMapping(value) {
		if encoded, err := json.Marshal(value); err == nil {
			return string(encoded)
		}
	}
	return raymond.Str(value)
}
