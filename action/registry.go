package action

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mohitkumar/workflower/workflow"
)

var _ workflow.OperationRunner = new(Registry)

// Registry runs the operation of an automated activity with the action
// registered under the operation name.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

func NewRegistry(actions ...Action) *Registry {
	r := &Registry{actions: make(map[string]Action)}
	for _, a := range actions {
		r.Register(a)
	}
	return r
}

// NewDefaultRegistry returns a registry with the system actions.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewJsAction(), NewJsonMapAction(), NewDelayAction(), NewNoopAction())
}

func (r *Registry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.GetName()] = a
}

func (r *Registry) Get(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return a, nil
}

// List returns the registered actions ordered by name.
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// Validate checks the params of an activity against its operation.
func (r *Registry) Validate(operation string, params map[string]any) error {
	a, err := r.Get(operation)
	if err != nil {
		return err
	}
	return a.Validate(params)
}

func (r *Registry) Run(ctx context.Context, activity *workflow.Activity, data map[string]any) (map[string]any, error) {
	a, err := r.Get(activity.GetOperation())
	if err != nil {
		return nil, err
	}
	processId, _ := ctx.Value(processIdKey{}).(string)
	return a.Execute(ctx, Request{
		ProcessId:  processId,
		ActivityId: activity.GetId(),
		Params:     activity.GetParams(),
		Data:       data,
	})
}

type processIdKey struct{}

// WithProcessId tags ctx with the id of the instance actions run for.
func WithProcessId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, processIdKey{}, id)
}
