package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/mohitkumar/workflower/logger"
	"go.uber.org/zap"
)

type InstanceState string

const (
	INSTANCE_CREATED   InstanceState = "CREATED"
	INSTANCE_STARTED   InstanceState = "STARTED"
	INSTANCE_COMPLETED InstanceState = "COMPLETED"
)

const DefaultWalkLimit = 10000

// ProcessInstance is one running execution of a graph. All transitions hold the
// instance lock for their whole duration, collaborators included.
type ProcessInstance struct {
	mu                  sync.RWMutex
	id                  string
	graph               *Graph
	state               InstanceState
	processData         map[string]any
	currentFlowObject   FlowObject
	tokens              []string
	joins               map[string]int
	endReached          bool
	walkLimit           int
	expressionEvaluator ExpressionEvaluator
	operationRunner     OperationRunner
	dataProvider        DataProvider
	createdAt           time.Time
	startedAt           *time.Time
	completedAt         *time.Time
}

func NewProcessInstance(id string, graph *Graph) *ProcessInstance {
	return &ProcessInstance{
		id:          id,
		graph:       graph,
		state:       INSTANCE_CREATED,
		processData: make(map[string]any),
		joins:       make(map[string]int),
		walkLimit:   DefaultWalkLimit,
		createdAt:   time.Now(),
	}
}

func (pi *ProcessInstance) GetId() string {
	return pi.id
}

func (pi *ProcessInstance) GetGraph() *Graph {
	return pi.graph
}

func (pi *ProcessInstance) GetState() InstanceState {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return pi.state
}

func (pi *ProcessInstance) IsCompleted() bool {
	return pi.GetState() == INSTANCE_COMPLETED
}

// Configure applies the non nil collaborators, the others are left as they are.
func (pi *ProcessInstance) Configure(c Collaborators) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if c.ExpressionEvaluator != nil {
		pi.expressionEvaluator = c.ExpressionEvaluator
	}
	if c.OperationRunner != nil {
		pi.operationRunner = c.OperationRunner
	}
	if c.DataProvider != nil {
		pi.dataProvider = c.DataProvider
	}
}

func (pi *ProcessInstance) Collaborators() Collaborators {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return Collaborators{
		ExpressionEvaluator: pi.expressionEvaluator,
		OperationRunner:     pi.operationRunner,
		DataProvider:        pi.dataProvider,
	}
}

func (pi *ProcessInstance) SetWalkLimit(limit int) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if limit > 0 {
		pi.walkLimit = limit
	}
}

// SetProcessData replaces the process data wholesale.
func (pi *ProcessInstance) SetProcessData(data map[string]any) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.processData = copyData(data)
}

func (pi *ProcessInstance) GetProcessData() map[string]any {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return copyData(pi.processData)
}

func (pi *ProcessInstance) GetFlowObject(id string) (FlowObject, error) {
	fo, ok := pi.graph.FlowObject(id)
	if !ok {
		return nil, FlowObjectNotFoundError{Id: id}
	}
	return fo, nil
}

func (pi *ProcessInstance) GetCurrentFlowObject() FlowObject {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return pi.currentFlowObject
}

// PendingTokens returns the flow objects queued for the next walk.
func (pi *ProcessInstance) PendingTokens() []string {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	return append([]string(nil), pi.tokens...)
}

// WorkItems returns copies of every work item of the instance.
func (pi *ProcessInstance) WorkItems() []*WorkItem {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	var out []*WorkItem
	for _, act := range pi.graph.Activities() {
		for _, item := range act.workItems.items {
			out = append(out, item.clone())
		}
	}
	return out
}

func (pi *ProcessInstance) Start(ctx context.Context, event *StartEvent) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if pi.state != INSTANCE_CREATED {
		return ErrAlreadyStarted
	}
	if event == nil {
		return ErrNotStartEvent
	}
	if fo, ok := pi.graph.FlowObject(event.GetId()); !ok || fo != FlowObject(event) {
		return ErrNotStartEvent
	}
	if err := pi.supply(ctx); err != nil {
		return err
	}
	targets, err := pi.selectTargets(event)
	if err != nil {
		return err
	}
	now := time.Now()
	pi.state = INSTANCE_STARTED
	pi.startedAt = &now
	pi.currentFlowObject = event
	pi.tokens = append(pi.tokens, targets...)
	logger.Debug("process instance started", zap.String("processId", pi.id), zap.String("workflow", pi.graph.GetName()), zap.String("event", event.GetId()))
	return pi.walk(ctx)
}

func (pi *ProcessInstance) AllocateWorkItem(ctx context.Context, item *WorkItem, participant Participant) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	act, err := pi.owner(item)
	if err != nil {
		return err
	}
	if act.role != "" && !participant.HasRole(act.role) {
		return ParticipantRoleError{ActivityId: act.id, ParticipantId: participant.Id, Role: act.role}
	}
	return item.Allocate(participant)
}

func (pi *ProcessInstance) StartWorkItem(ctx context.Context, item *WorkItem, participant Participant) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if _, err := pi.owner(item); err != nil {
		return err
	}
	return item.Start(participant)
}

// CompleteWorkItem completes item and resumes the walk from its activity. For an
// automated activity the operation runs first, so completing a work item left
// STARTED by a failed operation retries that operation whoever the participant.
func (pi *ProcessInstance) CompleteWorkItem(ctx context.Context, item *WorkItem, participant Participant) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	act, err := pi.owner(item)
	if err != nil {
		return err
	}
	if err := item.checkTransition(WORK_ITEM_COMPLETED); err != nil {
		return err
	}
	// the work item of an automated activity belongs to the system participant,
	// any caller may retry it
	if !act.IsAutomated() {
		if err := item.checkParticipant(participant); err != nil {
			return err
		}
	}
	if err := pi.supply(ctx); err != nil {
		return err
	}
	if act.IsAutomated() {
		pi.currentFlowObject = act
		if err := pi.finishAutomated(ctx, act, item); err != nil {
			return err
		}
		return pi.walk(ctx)
	}
	targets, err := pi.selectTargets(act)
	if err != nil {
		return err
	}
	if err := item.Complete(participant); err != nil {
		return err
	}
	pi.tokens = append(pi.tokens, targets...)
	return pi.walk(ctx)
}

// Resume drains tokens left over by a walk that stopped on an error.
func (pi *ProcessInstance) Resume(ctx context.Context) error {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	if err := pi.checkRunning(); err != nil {
		return err
	}
	return pi.walk(ctx)
}

func (pi *ProcessInstance) checkRunning() error {
	switch pi.state {
	case INSTANCE_CREATED:
		return ErrNotStarted
	case INSTANCE_COMPLETED:
		return ErrProcessCompleted
	}
	return nil
}

// owner returns the activity that holds item.
func (pi *ProcessInstance) owner(item *WorkItem) (*Activity, error) {
	if err := pi.checkRunning(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrWorkItemNotFound
	}
	fo, ok := pi.graph.FlowObject(item.ActivityId)
	if !ok {
		return nil, ErrWorkItemNotFound
	}
	act, ok := fo.(*Activity)
	if !ok {
		return nil, ErrWorkItemNotFound
	}
	if found, ok := act.workItems.Get(item.Id); !ok || found != item {
		return nil, ErrWorkItemNotFound
	}
	return act, nil
}

func (pi *ProcessInstance) supply(ctx context.Context) error {
	if pi.dataProvider == nil {
		return nil
	}
	data, err := pi.dataProvider.Supply(ctx, copyData(pi.processData))
	if err != nil {
		return err
	}
	if data == nil {
		data = make(map[string]any)
	}
	pi.processData = data
	return nil
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
