package template

import (
	"fmt"

	"github.com/aescanero/dago-node-render/internal/eval/condition"
)

// ConditionSyntaxError is returned when an {{#if}} condition cannot be parsed
// or uses an unsupported operator.
type ConditionSyntaxError = condition.SyntaxError

// UnbalancedBlockError reports an opener without a closer, or a closer
// without an opener. Rendering tolerates both; only Validate reports them.
type UnbalancedBlockError struct {
	Block  string
	Token  string
	Offset int
}

func (e *UnbalancedBlockError) Error() string {
	if e.Token == "{{/"+e.Block+"}}" {
		return fmt.Sprintf("unexpected %s at offset %d: no open {{#%s}} block", e.Token, e.Offset, e.Block)
	}
	return fmt.Sprintf("unbalanced %s at offset %d: no matching {{/%s}}", e.Token, e.Offset, e.Block)
}
