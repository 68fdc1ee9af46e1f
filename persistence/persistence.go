package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohitkumar/workflower/workflow"
)

var ErrInstanceNotFound = errors.New("process instance not found")

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

// InstanceStorage keeps process instance snapshots by instance id.
type InstanceStorage interface {
	SaveInstance(ctx context.Context, snapshot *workflow.Snapshot) error
	// GetInstance returns ErrInstanceNotFound for an unknown id.
	GetInstance(ctx context.Context, id string) (*workflow.Snapshot, error)
	DeleteInstance(ctx context.Context, id string) error
	CountInstances(ctx context.Context) (int, error)
}
