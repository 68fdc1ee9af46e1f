package metadata

import (
	"context"
	"errors"

	"github.com/mohitkumar/workflower/workflow"
)

// Repository creates fresh process instances from stored definitions, keyed by
// workflow name.
type Repository struct {
	service MetadataService
}

func NewRepository(service MetadataService) *Repository {
	return &Repository{service: service}
}

func (r *Repository) FindById(ctx context.Context, id string) (*workflow.ProcessInstance, error) {
	instance, err := r.service.NewProcessInstance(id)
	if errors.Is(err, ErrDefinitionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return instance, nil
}
