package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mohitkumar/workflower/expression"
	"github.com/mohitkumar/workflower/logger"
	"go.uber.org/zap"
)

var _ Action = new(jsAction)

// jsAction runs the script param of the activity with the process data bound to
// $. The resulting $ is the output.
type jsAction struct {
	baseAction
}

func NewJsAction() *jsAction {
	return &jsAction{baseAction: newBaseAction("javascript", ACTION_TYPE_SYSTEM)}
}

func script(params map[string]any) (string, error) {
	s, ok := params["script"].(string)
	if !ok || len(s) == 0 {
		return "", fmt.Errorf("script param can not be empty")
	}
	return s, nil
}

func (d *jsAction) Validate(params map[string]any) error {
	_, err := script(params)
	return err
}

func (d *jsAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	logger.Info("running action", zap.String("name", d.name), zap.String("processId", req.ProcessId), zap.String("activity", req.ActivityId))
	s, err := script(req.Params)
	if err != nil {
		return nil, err
	}
	vm, err := expression.NewVM(req.Data)
	if err != nil {
		return nil, err
	}
	if _, err := vm.RunString(s); err != nil {
		return nil, fmt.Errorf("error executing javascript %w", err)
	}
	val, err := vm.RunString("$")
	if err != nil {
		return nil, fmt.Errorf("error executing javascript %w", err)
	}
	res, err := json.Marshal(val.Export())
	if err != nil {
		return nil, err
	}
	var output map[string]any
	if err := json.Unmarshal(res, &output); err != nil {
		return nil, fmt.Errorf("script must leave an object in $: %w", err)
	}
	return output, nil
}
