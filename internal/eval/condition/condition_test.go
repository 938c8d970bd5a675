package condition

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expression string
		want       string
	}{
		{"a", "a"},
		{"a || b && c", "(a || (b && c))"},
		{"a && b || c", "((a && b) || c)"},
		{"a == 1 && b != 'x'", "((a == 1) && (b != \"x\"))"},
		{"n > 0 == true", "((n > 0) == true)"},
		{"!a && b", "(!a && b)"},
		{"!(a && b)", "!(a && b)"},
		{"a || b || c", "((a || b) || c)"},
		{"count >= -2.5", "(count >= -2.5)"},
		{"n-1 > 0", ""},
		{"user.profile.age <= 30", "(user.profile.age <= 30)"},
		{"x == null", "(x == null)"},
		{"x == undefined", "(x == null)"},
		{`name == "a \"quoted\" value"`, `(name == "a \"quoted\" value")`},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			node, err := Parse(tt.expression)
			if tt.want == "" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParseRejectsUnsupported(t *testing.T) {
	t.Parallel()

	expressions := []string{
		"",
		"   ",
		"size(items) > 0",
		"alert('x')",
		"a + 1 > 2",
		"a * 2",
		"a / 2",
		"a % 2",
		"a = 1",
		"a === 1",
		"a !== 1",
		"a & b",
		"a | b",
		"items[0]",
		"a ? b : c",
		"a, b",
		"a;",
		"(a && b",
		"a && b)",
		"a &&",
		"'unterminated",
		"a.",
		"a b",
		"1abc",
	}

	for _, expression := range expressions {
		t.Run(expression, func(t *testing.T) {
			_, err := Parse(expression)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "expected *SyntaxError, got %T", err)
			assert.Equal(t, expression, syntaxErr.Expression)
			assert.NotEmpty(t, syntaxErr.Message)
		})
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	t.Parallel()

	_, err := Parse("ok && size(items)")
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 6, syntaxErr.Pos)
	assert.Contains(t, syntaxErr.Error(), "function calls are not supported")
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	data := map[string]interface{}{
		"n":       5,
		"neg":     -1,
		"ratio":   0.75,
		"name":    "Ada",
		"empty":   "",
		"active":  true,
		"off":     false,
		"nothing": nil,
		"items":   []interface{}{1, 2},
		"none":    []interface{}{},
		"user": map[string]interface{}{
			"active": true,
			"age":    float64(36),
			"tags":   map[string]interface{}{},
		},
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"n > 0", true},
		{"neg > 0", false},
		{"n == 5", true},
		{"n == 5.0", true},
		{"n != 5", false},
		{"n >= 5 && n <= 5", true},
		{"ratio < 1", true},
		{"name == 'Ada'", true},
		{`name == "Ada"`, true},
		{"name != 'Bob'", true},
		{"name > 'Aaa'", true},
		{"user.active", true},
		{"user.age > 30", true},
		{"!user.active", false},
		{"active && !off", true},
		{"off || active", true},
		{"(off || n > 3) && name == 'Ada'", true},
		{"empty", false},
		{"name", true},
		{"items", true},
		{"none", false},
		{"user.tags", false},
		{"nothing", false},
		{"nothing == null", true},
		{"active == true", true},
		{"n == '5'", false},
		{"active == 1", false},
		{"name > 3", false},
		{"data.n > 0", true},
		{"data.user.active", true},
		{"data", true},
	}

	evaluator := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := evaluator.Evaluate(tt.expression, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateAbsentOperands(t *testing.T) {
	t.Parallel()

	evaluator := NewEvaluator()
	data := map[string]interface{}{"user": map[string]interface{}{}}

	tests := []struct {
		expression string
		want       bool
	}{
		{"missing", false},
		{"!missing", true},
		{"user.missing.deep", false},
		{"missing == null", true},
		{"missing != null", false},
		{"missing == 0", false},
		{"missing == ''", false},
		{"missing > 0", false},
		{"missing < 0", false},
		{"missing <= 0", false},
		{"missing >= 0", false},
		{"missing || user", false},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			got, err := evaluator.Evaluate(tt.expression, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRootAliasShadowed(t *testing.T) {
	t.Parallel()

	evaluator := NewEvaluator()
	data := map[string]interface{}{
		"n":    1,
		"data": map[string]interface{}{"n": 0},
	}

	got, err := evaluator.Evaluate("data.n > 0", data)
	require.NoError(t, err)
	assert.False(t, got, "a real data key wins over the root alias")
}

func TestEvaluateTypedNumbers(t *testing.T) {
	t.Parallel()

	evaluator := NewEvaluator()
	data := map[string]interface{}{
		"i8":  int8(3),
		"u":   uint(3),
		"f32": float32(3),
	}

	for _, expression := range []string{"i8 == 3", "u == 3", "f32 == 3", "i8 == u", "u >= f32"} {
		got, err := evaluator.Evaluate(expression, data)
		require.NoError(t, err, expression)
		assert.True(t, got, expression)
	}
}

func TestEvaluatorCache(t *testing.T) {
	t.Parallel()

	evaluator := NewEvaluator()

	first, err := evaluator.Compile("a && b")
	require.NoError(t, err)
	second, err := evaluator.Compile("  a && b ")
	require.NoError(t, err)
	assert.Same(t, first, second)

	evaluator.ClearCache()
	third, err := evaluator.Compile("a && b")
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	require.Error(t, evaluator.Validate("a +"))
	require.NoError(t, evaluator.Validate("a"))
}

func TestEvaluatorConcurrent(t *testing.T) {
	t.Parallel()

	evaluator := NewEvaluator()
	data := map[string]interface{}{"n": 2}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ok, err := evaluator.Evaluate("n > 1", data)
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}
