package condition

import "fmt"

// SyntaxError reports a condition that cannot be parsed or that uses an
// operator outside the supported set.
type SyntaxError struct {
	Expression string
	Pos        int
	Message    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("condition syntax error at position %d in %q: %s", e.Pos, e.Expression, e.Message)
}

func syntaxError(expression string, pos int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		Expression: expression,
		Pos:        pos,
		Message:    fmt.Sprintf(format, args...),
	}
}
