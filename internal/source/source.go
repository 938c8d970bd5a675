package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a named template or data context does not exist
var ErrNotFound = errors.New("not found")

// SelectorKind tells where a selector points
type SelectorKind string

const (
	// KindURL is fetched over HTTP
	KindURL SelectorKind = "url"

	// KindNamed is looked up in a named registry
	KindNamed SelectorKind = "named"
)

// Selector is a parsed template or data selector
type Selector struct {
	Kind  SelectorKind
	Value string
}

func (s Selector) String() string {
	if s.Kind == KindURL {
		return "@" + s.Value
	}
	return s.Value
}

// ParseSelector parses "@<url>" or "<name>"
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("selector is empty")
	}

	if strings.HasPrefix(raw, "@") {
		url := strings.TrimSpace(raw[1:])
		if url == "" {
			return Selector{}, fmt.Errorf("selector %q has no url", raw)
		}
		return Selector{Kind: KindURL, Value: url}, nil
	}

	return Selector{Kind: KindNamed, Value: raw}, nil
}

// TemplateLoader loads template text by reference
type TemplateLoader interface {
	LoadTemplate(ctx context.Context, ref string) (string, error)
}

// DataLoader loads a data context by reference
type DataLoader interface {
	LoadData(ctx context.Context, ref string) (map[string]interface{}, error)
}

// Loader loads both templates and data contexts
type Loader interface {
	TemplateLoader
	DataLoader
}

// FetchError reports a non-2xx response from a remote source
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
