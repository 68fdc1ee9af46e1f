package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohitkumar/workflower/lock"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/workflow"
	"go.uber.org/zap"
)

const (
	DefaultMaxSteps = 100
	DefaultLockTTL  = 30 * time.Second
)

// WorkflowRepository creates fresh process instances. FindById returns nil, nil
// when no workflow is known under id.
type WorkflowRepository interface {
	FindById(ctx context.Context, id string) (*workflow.ProcessInstance, error)
}

type Option func(p *Process)

func WithExpressionEvaluator(e workflow.ExpressionEvaluator) Option {
	return func(p *Process) {
		p.collaborators.ExpressionEvaluator = e
	}
}

func WithOperationRunner(r workflow.OperationRunner) Option {
	return func(p *Process) {
		p.collaborators.OperationRunner = r
	}
}

func WithDataProvider(d workflow.DataProvider) Option {
	return func(p *Process) {
		p.collaborators.DataProvider = d
	}
}

func WithMaxSteps(n int) Option {
	return func(p *Process) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

func WithLocker(l lock.Locker, ttl time.Duration) Option {
	return func(p *Process) {
		p.locker = l
		if ttl > 0 {
			p.lockTTL = ttl
		}
	}
}

// Process drives the instances of one workflow.
type Process struct {
	workflowContext WorkflowID
	repository      WorkflowRepository
	collaborators   workflow.Collaborators
	maxSteps        int
	locker          lock.Locker
	lockTTL         time.Duration
}

func New(workflowContext WorkflowID, repository WorkflowRepository, opts ...Option) *Process {
	p := &Process{
		workflowContext: workflowContext,
		repository:      repository,
		maxSteps:        DefaultMaxSteps,
		lockTTL:         DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.locker == nil {
		p.locker = lock.NewLocalLocker()
	}
	return p
}

func (p *Process) GetWorkflowContext() WorkflowID {
	return p.workflowContext
}

// Start starts instance on the start event of ec. A nil instance is created
// through the repository.
func (p *Process) Start(ctx context.Context, ec *EventContext, instance *workflow.ProcessInstance) error {
	if err := checkEventContext("Start", ec); err != nil {
		return err
	}
	if instance == nil {
		var err error
		if instance, err = p.createWorkflow(ctx); err != nil {
			return err
		}
	}
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		fo, err := instance.GetFlowObject(ec.EventId)
		if err != nil {
			return err
		}
		event, ok := fo.(*workflow.StartEvent)
		if !ok {
			return workflow.ErrNotStartEvent
		}
		if instance.GetState() != workflow.INSTANCE_CREATED {
			return workflow.ErrAlreadyStarted
		}
		if err := ec.ProcessContext.SetProcessInstance(instance); err != nil {
			return err
		}
		instance.SetProcessData(ec.ProcessContext.ProcessData)
		logger.Info("starting process", zap.String("workflow", p.workflowContext.Canonical()), zap.String("processId", instance.GetId()), zap.String("event", ec.EventId))
		return instance.Start(ctx, event)
	})
}

func (p *Process) AllocateWorkItem(ctx context.Context, wc *WorkItemContext) error {
	if err := checkWorkItemContext("AllocateWorkItem", wc); err != nil {
		return err
	}
	instance := wc.ProcessContext.GetProcessInstance()
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		_, item, err := p.resolve("AllocateWorkItem", instance, wc.ActivityId)
		if err != nil {
			return err
		}
		logger.Debug("allocating work item", zap.String("processId", instance.GetId()), zap.String("activity", wc.ActivityId), zap.String("participant", wc.Participant.Id))
		return instance.AllocateWorkItem(ctx, item, wc.Participant)
	})
}

func (p *Process) StartWorkItem(ctx context.Context, wc *WorkItemContext) error {
	if err := checkWorkItemContext("StartWorkItem", wc); err != nil {
		return err
	}
	instance := wc.ProcessContext.GetProcessInstance()
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		_, item, err := p.resolve("StartWorkItem", instance, wc.ActivityId)
		if err != nil {
			return err
		}
		logger.Debug("starting work item", zap.String("processId", instance.GetId()), zap.String("activity", wc.ActivityId), zap.String("participant", wc.Participant.Id))
		return instance.StartWorkItem(ctx, item, wc.Participant)
	})
}

// CompleteWorkItem replaces the process data with the data of wc before
// completing, so guards evaluated by the resumed walk see it.
func (p *Process) CompleteWorkItem(ctx context.Context, wc *WorkItemContext) error {
	if err := checkWorkItemContext("CompleteWorkItem", wc); err != nil {
		return err
	}
	instance := wc.ProcessContext.GetProcessInstance()
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		act, err := p.activity("CompleteWorkItem", instance, wc.ActivityId)
		if err != nil {
			return err
		}
		if p.stalled(instance, act) {
			return p.resume(ctx, instance, wc.ProcessContext)
		}
		act, item, err := p.resolve("CompleteWorkItem", instance, wc.ActivityId)
		if err != nil {
			return err
		}
		if item.State != workflow.WORK_ITEM_STARTED {
			return workflow.WorkItemStateError{WorkItemId: item.Id, ActivityId: act.GetId(), From: item.State, To: workflow.WORK_ITEM_COMPLETED}
		}
		instance.SetProcessData(wc.ProcessContext.ProcessData)
		logger.Debug("completing work item", zap.String("processId", instance.GetId()), zap.String("activity", wc.ActivityId), zap.String("participant", wc.Participant.Id))
		return instance.CompleteWorkItem(ctx, item, wc.Participant)
	})
}

// ExecuteWorkItem moves the work item of the activity in wc as far as it goes.
// After an allocation or a start the next target is the current flow object of
// the instance, which is not necessarily the activity just acted on.
func (p *Process) ExecuteWorkItem(ctx context.Context, wc *WorkItemContext) error {
	if err := checkWorkItemContext("ExecuteWorkItem", wc); err != nil {
		return err
	}
	instance := wc.ProcessContext.GetProcessInstance()
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		current := wc
		for step := 0; ; step++ {
			if step >= p.maxSteps {
				return StepLimitError{Limit: p.maxSteps, ActivityId: current.ActivityId}
			}
			act, err := p.activity("ExecuteWorkItem", instance, current.ActivityId)
			if err != nil {
				return err
			}
			if p.stalled(instance, act) {
				return p.resume(ctx, instance, wc.ProcessContext)
			}
			if _, err := act.GetWorkItems().Active(); errors.Is(err, workflow.ErrMultipleActiveWorkItems) {
				return fmt.Errorf("activity %q: %w", act.GetId(), err)
			}
			switch {
			case act.IsAllocatable():
				err = p.AllocateWorkItem(ctx, current)
			case act.IsStartable():
				err = p.StartWorkItem(ctx, current)
			case act.IsCompletable():
				return p.CompleteWorkItem(ctx, current)
			default:
				return UnexpectedActivityStateError{ActivityId: act.GetId()}
			}
			if err != nil {
				return err
			}
			next := instance.GetCurrentFlowObject()
			current = NewWorkItemContext(wc.ProcessContext, next.GetId(), wc.Participant)
		}
	})
}

// Resume continues a walk that stopped on an error, typically a failed guard
// evaluation after the work item before it was already completed. The process
// data of pc replaces the instance data first.
func (p *Process) Resume(ctx context.Context, pc *ProcessContext) error {
	if err := checkProcessContext("Resume", pc); err != nil {
		return err
	}
	instance := pc.GetProcessInstance()
	return p.synchronized(ctx, instance, func(ctx context.Context) error {
		return p.resume(ctx, instance, pc)
	})
}

func (p *Process) resume(ctx context.Context, instance *workflow.ProcessInstance, pc *ProcessContext) error {
	if instance.GetState() == workflow.INSTANCE_STARTED && pc.ProcessData != nil {
		instance.SetProcessData(pc.ProcessData)
	}
	logger.Info("resuming process", zap.String("processId", instance.GetId()), zap.Strings("tokens", instance.PendingTokens()))
	return instance.Resume(ctx)
}

// stalled reports whether act has nothing left to act on while the walk of
// instance still holds tokens, so the next step is to resume the walk.
func (p *Process) stalled(instance *workflow.ProcessInstance, act *workflow.Activity) bool {
	if len(instance.PendingTokens()) == 0 {
		return false
	}
	_, err := act.GetWorkItems().Active()
	return errors.Is(err, workflow.ErrNoActiveWorkItem)
}

func (p *Process) createWorkflow(ctx context.Context) (*workflow.ProcessInstance, error) {
	id := p.workflowContext.Canonical()
	instance, err := p.repository.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, WorkflowNotFoundError{WorkflowId: id}
	}
	return instance, nil
}

func (p *Process) configure(instance *workflow.ProcessInstance) {
	instance.Configure(p.collaborators)
}

// synchronized runs fn under the lock of instance with the collaborators of p
// applied onto it.
func (p *Process) synchronized(ctx context.Context, instance *workflow.ProcessInstance, fn func(ctx context.Context) error) error {
	return p.locker.Synchronized(ctx, instance.GetId(), p.lockTTL, func(ctx context.Context) error {
		p.configure(instance)
		return fn(ctx)
	})
}

func (p *Process) activity(op string, instance *workflow.ProcessInstance, activityId string) (*workflow.Activity, error) {
	fo, err := instance.GetFlowObject(activityId)
	if err != nil {
		return nil, err
	}
	act, ok := fo.(*workflow.Activity)
	if !ok {
		return nil, PreconditionError{Op: op, Reason: fmt.Sprintf("flow object %q is not an activity", activityId)}
	}
	return act, nil
}

// resolve returns the activity and its unique active work item.
func (p *Process) resolve(op string, instance *workflow.ProcessInstance, activityId string) (*workflow.Activity, *workflow.WorkItem, error) {
	act, err := p.activity(op, instance, activityId)
	if err != nil {
		return nil, nil, err
	}
	item, err := act.GetWorkItems().Active()
	if err != nil {
		return nil, nil, fmt.Errorf("activity %q: %w", activityId, err)
	}
	return act, item, nil
}
