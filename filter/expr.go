package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/s0up4200/siftapi/sift"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newProgramCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *programCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.get(expression); ok {
			return cached, nil
		}
	}

	// A zero sift gives the checker the type of every field and helper
	program, err := expr.Compile(expression,
		expr.Env(createRuntimeEnvironment(sift.Sift{}, c.helperFuncs)),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.put(expression, f)
	}

	return f, nil
}

// Match evaluates the filter against a sift. Evaluation errors count as no match.
func (f *exprFilter) Match(s sift.Sift) bool {
	env := createRuntimeEnvironment(s, f.helpers)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}

	// AsBool() guarantees the type
	return result.(bool)
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions used during compilation
func createHelperFunctions() map[string]any {
	funcs := make(map[string]any, 16)

	// Date helpers
	funcs["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	funcs["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	funcs["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	funcs["now"] = time.Now

	// String helpers
	funcs["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	return funcs
}

// createRuntimeEnvironment binds the sift fields and payload helpers
func createRuntimeEnvironment(s sift.Sift, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+16)
	maps.Copy(env, helpers)

	payload := s.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	env["Sift"] = s
	env["SiftID"] = s.SiftID
	env["EmailID"] = s.EmailID
	env["AccountID"] = s.AccountID
	env["MimeID"] = s.MimeID
	env["Domain"] = s.Domain
	env["EmailTime"] = s.Time()
	env["Type"] = s.Type()
	env["Payload"] = payload

	env["hasField"] = func(name string) bool {
		_, ok := payload[name]
		return ok
	}
	env["field"] = func(name string) any {
		return payload[name]
	}
	env["isDomain"] = func(domains ...string) bool {
		for _, d := range domains {
			if strings.EqualFold(d, s.Domain) {
				return true
			}
		}
		return false
	}

	return env
}
