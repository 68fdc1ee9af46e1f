package expression

import (
	"fmt"
	"strings"

	"github.com/mohitkumar/workflower/workflow"
)

type Language string

const (
	LANGUAGE_EXPR       Language = "expr"
	LANGUAGE_JSONPATH   Language = "jsonpath"
	LANGUAGE_JAVASCRIPT Language = "javascript"
)

var (
	_ workflow.ExpressionEvaluator = new(ExprEvaluator)
	_ workflow.ExpressionEvaluator = new(JsonPathEvaluator)
	_ workflow.ExpressionEvaluator = new(JavascriptEvaluator)
)

// New returns the evaluator of language, expr when language is empty.
func New(language string) (workflow.ExpressionEvaluator, error) {
	switch Language(strings.ToLower(language)) {
	case "", LANGUAGE_EXPR:
		return NewExprEvaluator(), nil
	case LANGUAGE_JSONPATH:
		return NewJsonPathEvaluator(), nil
	case LANGUAGE_JAVASCRIPT:
		return NewJavascriptEvaluator(), nil
	}
	return nil, fmt.Errorf("unknown expression language %s", language)
}

type EvaluationError struct {
	Expression string
	Err        error
}

func (e EvaluationError) Error() string {
	return fmt.Sprintf("error evaluating %q: %v", e.Expression, e.Err)
}

func (e EvaluationError) Unwrap() error {
	return e.Err
}
