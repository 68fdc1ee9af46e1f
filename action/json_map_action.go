package action

import (
	"context"

	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/util"
	"go.uber.org/zap"
)

var _ Action = new(jsonMapAction)

// jsonMapAction outputs the activity params with their {$.path} tokens resolved
// against the process data.
type jsonMapAction struct {
	baseAction
}

func NewJsonMapAction() *jsonMapAction {
	return &jsonMapAction{baseAction: newBaseAction("jsonmapper", ACTION_TYPE_SYSTEM)}
}

func (d *jsonMapAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	logger.Info("running action", zap.String("name", d.name), zap.String("processId", req.ProcessId), zap.String("activity", req.ActivityId))
	return util.ResolveInputParams(req.Data, req.Params), nil
}
