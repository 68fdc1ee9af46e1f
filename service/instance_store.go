package service

import (
	"context"

	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/workflow"
	"github.com/patrickmn/go-cache"
)

var _ persistence.InstanceStorage = new(MemoryInstanceStore)

// MemoryInstanceStore keeps snapshots in process memory. Entries never expire.
type MemoryInstanceStore struct {
	cache *cache.Cache
}

func NewMemoryInstanceStore() *MemoryInstanceStore {
	return &MemoryInstanceStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryInstanceStore) SaveInstance(ctx context.Context, snapshot *workflow.Snapshot) error {
	s.cache.Set(snapshot.Id, snapshot, cache.NoExpiration)
	return nil
}

func (s *MemoryInstanceStore) GetInstance(ctx context.Context, id string) (*workflow.Snapshot, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, persistence.ErrInstanceNotFound
	}
	return v.(*workflow.Snapshot), nil
}

func (s *MemoryInstanceStore) DeleteInstance(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *MemoryInstanceStore) CountInstances(ctx context.Context) (int, error) {
	return s.cache.ItemCount(), nil
}
