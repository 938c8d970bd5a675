package condition

import (
	"strings"
	"sync"
)

// Evaluator evaluates conditions, caching parsed expressions
type Evaluator struct {
	cache map[string]Node
	mu    sync.RWMutex
}

// NewEvaluator creates a new condition evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]Node),
	}
}

// Evaluate evaluates a condition against data and reports its truthiness
func (e *Evaluator) Evaluate(expression string, data interface{}) (bool, error) {
	node, err := e.Compile(expression)
	if err != nil {
		return false, err
	}
	return Truthy(node.Eval(data)), nil
}

// Compile gets a parsed expression from cache or parses it
func (e *Evaluator) Compile(expression string) (Node, error) {
	key := strings.TrimSpace(expression)

	// Check cache first (read lock)
	e.mu.RLock()
	if node, ok := e.cache[key]; ok {
		e.mu.RUnlock()
		return node, nil
	}
	e.mu.RUnlock()

	node, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache[key] = node

	return node, nil
}

// Validate validates a condition without evaluating it
func (e *Evaluator) Validate(expression string) error {
	_, err := e.Compile(expression)
	return err
}

// ClearCache clears the parsed expression cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]Node)
}
