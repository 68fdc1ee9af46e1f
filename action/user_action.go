package action

import (
	"context"

	"github.com/mohitkumar/workflower/logger"
	"go.uber.org/zap"
)

var _ Action = new(UserAction)

type UserFunc func(ctx context.Context, req Request) (map[string]any, error)

// UserAction adapts a Go function registered by the embedding application.
type UserAction struct {
	baseAction
	fn UserFunc
}

func Func(name string, fn UserFunc) *UserAction {
	return &UserAction{
		baseAction: newBaseAction(name, ACTION_TYPE_USER),
		fn:         fn,
	}
}

func (ua *UserAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	logger.Info("running action", zap.String("name", ua.name), zap.String("processId", req.ProcessId), zap.String("activity", req.ActivityId))
	return ua.fn(ctx, req)
}

type noopAction struct {
	baseAction
}

func NewNoopAction() *noopAction {
	return &noopAction{baseAction: newBaseAction("noop", ACTION_TYPE_SYSTEM)}
}

func (n *noopAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	return nil, nil
}
