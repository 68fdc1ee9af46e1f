package expression

import (
	"github.com/expr-lang/expr"
)

// ExprEvaluator evaluates expr-lang expressions with the process data as
// environment. Unknown variables evaluate to nil.
type ExprEvaluator struct{}

func NewExprEvaluator() *ExprEvaluator {
	return &ExprEvaluator{}
}

func (e *ExprEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	env := make(map[string]any, len(data)+1)
	for k, v := range data {
		env[k] = v
	}
	env["null"] = nil
	// expr.Env has to come before AllowUndefinedVariables
	program, err := expr.Compile(expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, EvaluationError{Expression: expression, Err: err}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, EvaluationError{Expression: expression, Err: err}
	}
	return out, nil
}
