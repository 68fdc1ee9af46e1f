package expression

import (
	"strings"

	"github.com/oliveagle/jsonpath"
)

// JsonPathEvaluator looks a value up in the process data. Expressions are a
// jsonpath, optionally enclosed in {}, like {$.order.approved}.
type JsonPathEvaluator struct{}

func NewJsonPathEvaluator() *JsonPathEvaluator {
	return &JsonPathEvaluator{}
}

func (e *JsonPathEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	path := strings.TrimSpace(expression)
	path = strings.TrimSuffix(strings.TrimPrefix(path, "{"), "}")
	value, err := jsonpath.JsonPathLookup(data, path)
	if err != nil {
		return nil, EvaluationError{Expression: expression, Err: err}
	}
	return value, nil
}
