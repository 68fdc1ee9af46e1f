package metadata

import (
	"errors"
	"sort"
	"time"

	"github.com/mohitkumar/workflower/model"
	c "github.com/patrickmn/go-cache"
)

var ErrDefinitionNotFound = errors.New("workflow definition not found")

type MetadataStorage interface {
	SaveWorkflowDefinition(wf model.Workflow) error
	DeleteWorkflowDefinition(name string) error
	// GetWorkflowDefinition returns ErrDefinitionNotFound for an unknown name.
	GetWorkflowDefinition(name string) (*model.Workflow, error)
	ListWorkflowDefinitions() ([]string, error)
}

var _ MetadataStorage = new(MemoryStorage)

type MemoryStorage struct {
	cache *c.Cache
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		cache: c.New(c.NoExpiration, 10*time.Minute),
	}
}

func (m *MemoryStorage) SaveWorkflowDefinition(wf model.Workflow) error {
	m.cache.Set(wf.Name, wf, c.NoExpiration)
	return nil
}

func (m *MemoryStorage) DeleteWorkflowDefinition(name string) error {
	m.cache.Delete(name)
	return nil
}

func (m *MemoryStorage) GetWorkflowDefinition(name string) (*model.Workflow, error) {
	v, found := m.cache.Get(name)
	if !found {
		return nil, ErrDefinitionNotFound
	}
	wf := v.(model.Workflow)
	return &wf, nil
}

func (m *MemoryStorage) ListWorkflowDefinitions() ([]string, error) {
	items := m.cache.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
