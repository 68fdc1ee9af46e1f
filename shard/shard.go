package shard

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/util"
	"go.uber.org/zap"
)

type task struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Shard executes the tasks routed to it one at a time.
type Shard struct {
	id     int
	worker *util.Worker
}

func newShard(id int, capacity int, wg *sync.WaitGroup) *Shard {
	s := &Shard{id: id}
	s.worker = util.NewWorker(fmt.Sprintf("shard-%d", id), wg, s.handle, capacity)
	return s
}

func (s *Shard) GetShardId() int {
	return s.id
}

func (s *Shard) handle(t util.Task) error {
	tk := t.(*task)
	if err := tk.ctx.Err(); err != nil {
		tk.done <- err
		return nil
	}
	tk.done <- tk.fn(tk.ctx)
	return nil
}

// Manager routes work on a key to the shard owning it, so work on one key is
// never executed concurrently.
type Manager struct {
	ring   *Ring
	shards []*Shard
	wg     sync.WaitGroup
}

func NewManager(count int, capacity int) *Manager {
	if count <= 0 {
		count = 1
	}
	m := &Manager{ring: NewRing(count)}
	for i := 0; i < count; i++ {
		m.shards = append(m.shards, newShard(i, capacity, &m.wg))
	}
	return m
}

func (m *Manager) Start() {
	for _, s := range m.shards {
		s.worker.Start()
	}
	logger.Info("shards started", zap.Int("count", len(m.shards)))
}

func (m *Manager) Stop() {
	for _, s := range m.shards {
		s.worker.Stop()
	}
	m.wg.Wait()
	logger.Info("shards stopped")
}

func (m *Manager) ShardFor(key string) *Shard {
	return m.shards[m.ring.GetPartition(key)]
}

// Submit runs fn on the shard owning key and waits for its result.
func (m *Manager) Submit(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	t := &task{ctx: ctx, fn: fn, done: make(chan error, 1)}
	if err := m.ShardFor(key).worker.Submit(ctx, t); err != nil {
		return err
	}
	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
