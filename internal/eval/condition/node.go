package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aescanero/dago-node-render/internal/eval/lookup"
)

// rootAlias addresses the whole context, mirroring conditions written as
// "data.field".
const rootAlias = "data"

// Node is a parsed condition expression.
type Node interface {
	// Eval evaluates the node against data. Evaluation never fails; type
	// mismatches compare false and absent paths are null.
	Eval(data interface{}) interface{}
	String() string
}

type literalNode struct {
	value interface{}
}

func (n *literalNode) Eval(interface{}) interface{} {
	return n.value
}

func (n *literalNode) String() string {
	switch v := n.value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

type pathNode struct {
	path     string
	segments []string
}

func (n *pathNode) Eval(data interface{}) interface{} {
	if value, ok := lookup.Path(data, n.path); ok {
		return value
	}

	if n.segments[0] != rootAlias {
		return nil
	}
	if _, shadowed := lookup.Path(data, rootAlias); shadowed {
		return nil
	}
	if len(n.segments) == 1 {
		return data
	}
	value, _ := lookup.Path(data, strings.Join(n.segments[1:], "."))
	return value
}

func (n *pathNode) String() string {
	return n.path
}

type notNode struct {
	operand Node
}

func (n *notNode) Eval(data interface{}) interface{} {
	return !Truthy(n.operand.Eval(data))
}

func (n *notNode) String() string {
	return "!" + n.operand.String()
}

type binaryNode struct {
	op    string
	left  Node
	right Node
}

func (n *binaryNode) Eval(data interface{}) interface{} {
	switch n.op {
	case "&&":
		return Truthy(n.left.Eval(data)) && Truthy(n.right.Eval(data))
	case "||":
		return Truthy(n.left.Eval(data)) || Truthy(n.right.Eval(data))
	}

	left := n.left.Eval(data)
	right := n.right.Eval(data)

	switch n.op {
	case "==":
		return equal(left, right)
	case "!=":
		return !equal(left, right)
	}

	cmp, ok := compare(left, right)
	if !ok {
		return false
	}
	switch n.op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (n *binaryNode) String() string {
	return "(" + n.left.String() + " " + n.op + " " + n.right.String() + ")"
}
