package expression

import (
	"encoding/json"

	"github.com/dop251/goja"
)

// JavascriptEvaluator runs the expression as javascript with the process data
// bound to $ and returns the value of the last statement.
type JavascriptEvaluator struct{}

func NewJavascriptEvaluator() *JavascriptEvaluator {
	return &JavascriptEvaluator{}
}

func (e *JavascriptEvaluator) Evaluate(expression string, data map[string]any) (any, error) {
	vm, err := NewVM(data)
	if err != nil {
		return nil, EvaluationError{Expression: expression, Err: err}
	}
	val, err := vm.RunString(expression)
	if err != nil {
		return nil, EvaluationError{Expression: expression, Err: err}
	}
	return val.Export(), nil
}

// NewVM returns a goja runtime with a JSON copy of data bound to $.
func NewVM(data map[string]any) (*goja.Runtime, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	vm := goja.New()
	if _, err := vm.RunString("var $ = " + string(b) + ";"); err != nil {
		return nil, err
	}
	return vm, nil
}
