package workflow

import (
	"context"
	"strconv"
	"strings"
)

// ExpressionEvaluator evaluates sequence flow guards against the process data.
// Implementations must not mutate data.
type ExpressionEvaluator interface {
	Evaluate(expression string, data map[string]any) (any, error)
}

// OperationRunner executes the operation attached to an automated activity. The
// returned map is merged into the process data.
type OperationRunner interface {
	Run(ctx context.Context, activity *Activity, data map[string]any) (map[string]any, error)
}

// DataProvider supplies external input to a running instance. The returned
// map replaces the process data.
type DataProvider interface {
	Supply(ctx context.Context, data map[string]any) (map[string]any, error)
}

// Collaborators groups the optional collaborators of a process instance. Nil
// fields leave the instance untouched when applied with Configure.
type Collaborators struct {
	ExpressionEvaluator ExpressionEvaluator
	OperationRunner     OperationRunner
	DataProvider        DataProvider
}

// Truthy reports whether an evaluated guard selects its sequence flow.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err == nil {
			return b
		}
		return t != ""
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
