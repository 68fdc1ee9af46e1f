package service

import (
	"context"

	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/persistence"
	"go.uber.org/zap"
)

type StateHandlerFunc func(ctx context.Context, wfName string, processId string) error

// StateHandlerContainer resolves the onComplete handler of a definition.
type StateHandlerContainer struct {
	handlers map[model.StateHandler]StateHandlerFunc
	storage  persistence.InstanceStorage
}

func NewStateHandlerContainer(storage persistence.InstanceStorage) *StateHandlerContainer {
	hd := &StateHandlerContainer{
		storage:  storage,
		handlers: make(map[model.StateHandler]StateHandlerFunc, 2),
	}
	hd.handlers[model.DELETE] = hd.delete
	hd.handlers[model.NOOP] = hd.noop
	return hd
}

func (s *StateHandlerContainer) GetHandler(st model.StateHandler) StateHandlerFunc {
	handler, ok := s.handlers[st]
	if ok {
		return handler
	}
	return s.noop
}

func (s *StateHandlerContainer) delete(ctx context.Context, wfName string, processId string) error {
	logger.Debug("deleting completed process", zap.String("workflow", wfName), zap.String("processId", processId))
	return s.storage.DeleteInstance(ctx, processId)
}

func (s *StateHandlerContainer) noop(ctx context.Context, wfName string, processId string) error {
	return nil
}
