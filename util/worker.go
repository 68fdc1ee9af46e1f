package util

import (
	"context"
	"errors"
	"sync"

	"github.com/mohitkumar/workflower/logger"
	"go.uber.org/zap"
)

var ErrWorkerStopped = errors.New("worker stopped")

type Task any

// Worker runs its handler on one goroutine, in the order tasks were submitted.
type Worker struct {
	name     string
	stop     chan struct{}
	stopOnce sync.Once
	wg       *sync.WaitGroup
	handler  func(Task) error
	taskChan chan Task
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Task) error, capacity int) *Worker {
	return &Worker{
		taskChan: make(chan Task, capacity),
		name:     name,
		wg:       wg,
		stop:     make(chan struct{}),
		handler:  handler,
	}
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case task := <-w.taskChan:
				if err := w.handler(task); err != nil {
					logger.Error("error in executing task in worker", zap.String("worker", w.name), zap.Error(err))
				}
			case <-w.stop:
				logger.Info("stopping worker", zap.String("worker", w.name))
				return
			}
		}
	}()
}

// Submit queues task, waiting for room until ctx is done or the worker stops.
func (w *Worker) Submit(ctx context.Context, task Task) error {
	select {
	case <-w.stop:
		return ErrWorkerStopped
	default:
	}
	select {
	case w.taskChan <- task:
		return nil
	case <-w.stop:
		return ErrWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}
