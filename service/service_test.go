package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohitkumar/workflower/action"
	"github.com/mohitkumar/workflower/analytics"
	"github.com/mohitkumar/workflower/expression"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/process"
	"github.com/mohitkumar/workflower/shard"
	"github.com/mohitkumar/workflower/workflow"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind  string
	id    string
	state string
}

type recordingCollector struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingCollector) RecordWorkItemTransition(wfName string, processId string, activityId string, workItemId string, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "workitem", id: activityId, state: state})
}

func (r *recordingCollector) RecordProcessState(wfName string, processId string, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "process", id: processId, state: state})
}

func (r *recordingCollector) RecordOperationFailure(wfName string, processId string, activityId string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{kind: "failure", id: activityId, state: reason})
}

func reviewWorkflow(name string, onComplete model.StateHandler) model.Workflow {
	return model.Workflow{
		Name: name,
		FlowObjects: []model.FlowObjectDef{
			{Id: "start", Type: model.START_EVENT},
			{Id: "review", Type: model.ACTIVITY, Role: "manager"},
			{Id: "decide", Type: model.GATEWAY, GatewayType: "exclusive"},
			{Id: "notify", Type: model.ACTIVITY, Operation: "noop"},
			{Id: "end", Type: model.END_EVENT},
		},
		SequenceFlows: []model.SequenceFlowDef{
			{Id: "f1", Source: "start", Target: "review"},
			{Id: "f2", Source: "review", Target: "decide"},
			{Id: "f3", Source: "decide", Target: "notify", Condition: "approved"},
			{Id: "f4", Source: "decide", Target: "end", Default: true},
			{Id: "f5", Source: "notify", Target: "end"},
		},
		OnComplete: onComplete,
	}
}

func chargeWorkflow() model.Workflow {
	return model.Workflow{
		Name: "charge",
		FlowObjects: []model.FlowObjectDef{
			{Id: "start", Type: model.START_EVENT},
			{Id: "charge", Type: model.ACTIVITY, Operation: "flaky"},
			{Id: "end", Type: model.END_EVENT},
		},
		SequenceFlows: []model.SequenceFlowDef{
			{Id: "f1", Source: "start", Target: "charge"},
			{Id: "f2", Source: "charge", Target: "end"},
		},
	}
}

func guardedWorkflow() model.Workflow {
	return model.Workflow{
		Name: "guarded",
		FlowObjects: []model.FlowObjectDef{
			{Id: "start", Type: model.START_EVENT},
			{Id: "review", Type: model.ACTIVITY},
			{Id: "size", Type: model.GATEWAY, GatewayType: "exclusive"},
			{Id: "big", Type: model.END_EVENT},
			{Id: "small", Type: model.END_EVENT},
		},
		SequenceFlows: []model.SequenceFlowDef{
			{Id: "f1", Source: "start", Target: "review"},
			{Id: "f2", Source: "review", Target: "size"},
			{Id: "f3", Source: "size", Target: "big", Condition: "amount > 10"},
			{Id: "f4", Source: "size", Target: "small", Default: true},
		},
	}
}

func newService(t *testing.T) (*WorkflowExecutionService, *MemoryInstanceStore) {
	calls := 0
	registry := action.NewDefaultRegistry()
	registry.Register(action.Func("flaky", func(ctx context.Context, req action.Request) (map[string]any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("gateway timeout")
		}
		return map[string]any{"chargedFor": req.ProcessId}, nil
	}))
	metadataService := metadata.NewMetadataService(metadata.NewMemoryStorage(), registry)
	for _, wf := range []model.Workflow{reviewWorkflow("review", model.NOOP), reviewWorkflow("review-delete", model.DELETE), chargeWorkflow(), guardedWorkflow()} {
		require.NoError(t, metadataService.ValidateFlow(wf))
		require.NoError(t, metadataService.GetMetadataStorage().SaveWorkflowDefinition(wf))
	}
	evaluator, err := expression.New("expr")
	require.NoError(t, err)
	store := NewMemoryInstanceStore()
	svc := NewWorkflowExecutionService(metadataService, store, shard.NewManager(4, 8), evaluator, registry, nil, Config{GaugeInterval: 10 * time.Millisecond})
	svc.Start()
	t.Cleanup(svc.Stop)
	return svc, store
}

func activeState(t *testing.T, s *workflow.Snapshot, activityId string) workflow.WorkItemState {
	t.Helper()
	for _, item := range s.WorkItems {
		if item.ActivityId == activityId && item.State != workflow.WORK_ITEM_COMPLETED {
			return item.State
		}
	}
	t.Fatalf("no active work item for %s", activityId)
	return ""
}

func TestWorkflowExecutionService(t *testing.T) {
	ctx := context.Background()
	manager := model.WorkItemRequest{ParticipantId: "ann", Roles: []string{"manager"}}

	for scenario, fn := range map[string]func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore){
		"start then execute to completion": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "review", Data: map[string]any{"amount": 10}})
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_STARTED, s.State)
			require.Equal(t, workflow.WORK_ITEM_READY, activeState(t, s, "review"))
			require.Equal(t, float64(10), s.ProcessData["amount"])

			req := manager
			req.Data = map[string]any{"approved": true}
			s, err = svc.ExecuteWorkItem(ctx, s.Id, "review", req)
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
			require.Len(t, s.WorkItems, 2)
			require.Equal(t, true, s.ProcessData["approved"])

			stored, err := svc.GetProcess(ctx, s.Id)
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, stored.State)
		},
		"single steps": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "review", Event: "start"})
			require.NoError(t, err)
			s, err = svc.AllocateWorkItem(ctx, s.Id, "review", manager)
			require.NoError(t, err)
			require.Equal(t, workflow.WORK_ITEM_ALLOCATED, activeState(t, s, "review"))
			s, err = svc.StartWorkItem(ctx, s.Id, "review", manager)
			require.NoError(t, err)
			require.Equal(t, workflow.WORK_ITEM_STARTED, activeState(t, s, "review"))
			s, err = svc.CompleteWorkItem(ctx, s.Id, "review", manager)
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
			require.Len(t, s.WorkItems, 1)
		},
		"delete handler removes completed instance": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "review-delete"})
			require.NoError(t, err)
			s, err = svc.ExecuteWorkItem(ctx, s.Id, "review", manager)
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)

			_, err = svc.GetProcess(ctx, s.Id)
			var notFound process.WorkflowNotFoundError
			require.ErrorAs(t, err, &notFound)
			n, err := store.CountInstances(ctx)
			require.NoError(t, err)
			require.Equal(t, 0, n)
		},
		"unknown workflow": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			_, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "missing"})
			require.ErrorIs(t, err, metadata.ErrDefinitionNotFound)
		},
		"unknown process": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			_, err := svc.ExecuteWorkItem(ctx, "nope", "review", manager)
			var notFound process.WorkflowNotFoundError
			require.ErrorAs(t, err, &notFound)
			require.Equal(t, "nope", notFound.WorkflowId)
		},
		"failed precondition keeps stored state": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "review"})
			require.NoError(t, err)
			_, err = svc.AllocateWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "bob"})
			var roleErr workflow.ParticipantRoleError
			require.ErrorAs(t, err, &roleErr)

			stored, err := svc.GetProcess(ctx, s.Id)
			require.NoError(t, err)
			require.Equal(t, workflow.WORK_ITEM_READY, activeState(t, stored, "review"))
		},
		"failed operation is stored and retried": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "charge"})
			require.EqualError(t, err, "gateway timeout")
			require.NotNil(t, s)
			require.Equal(t, workflow.INSTANCE_STARTED, s.State)
			require.Equal(t, workflow.WORK_ITEM_STARTED, activeState(t, s, "charge"))

			s, err = svc.CompleteWorkItem(ctx, s.Id, "charge", model.WorkItemRequest{})
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
			require.Equal(t, s.Id, s.ProcessData["chargedFor"])
		},
		"failed guard is stored and resumed": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "guarded", Data: map[string]any{"amount": "lots"}})
			require.NoError(t, err)
			_, err = svc.ExecuteWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "ann"})
			require.Error(t, err)

			stored, err := svc.GetProcess(ctx, s.Id)
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_STARTED, stored.State)
			require.Equal(t, []string{"size"}, stored.Tokens)

			s, err = svc.ResumeProcess(ctx, s.Id, model.WorkItemRequest{Data: map[string]any{"amount": 20}})
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
			require.Equal(t, "big", s.CurrentFlowObject)
			require.Empty(t, s.Tokens)
		},
		"failed guard is resumed by execute": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "guarded", Data: map[string]any{"amount": "lots"}})
			require.NoError(t, err)
			_, err = svc.ExecuteWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "ann"})
			require.Error(t, err)

			s, err = svc.ExecuteWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "ann", Data: map[string]any{"amount": 5}})
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
			require.Equal(t, "small", s.CurrentFlowObject)
		},
		"failed operation is retried by any participant": func(t *testing.T, svc *WorkflowExecutionService, store *MemoryInstanceStore) {
			s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "charge"})
			require.Error(t, err)
			s, err = svc.ExecuteWorkItem(ctx, s.Id, "charge", model.WorkItemRequest{ParticipantId: "ann"})
			require.NoError(t, err)
			require.Equal(t, workflow.INSTANCE_COMPLETED, s.State)
		},
	} {
		t.Run(scenario, func(t *testing.T) {
			svc, store := newService(t)
			fn(t, svc, store)
		})
	}
}

func TestWorkflowExecutionServiceAnalytics(t *testing.T) {
	rec := &recordingCollector{}
	analytics.SetDataCollector(rec)
	defer analytics.InitDataCollector(analytics.DataCollectorConfig{})

	svc, _ := newService(t)
	ctx := context.Background()
	s, err := svc.StartProcess(ctx, model.ProcessStartRequest{Workflow: "review"})
	require.NoError(t, err)
	_, err = svc.AllocateWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "ann", Roles: []string{"manager"}})
	require.NoError(t, err)
	_, err = svc.StartWorkItem(ctx, s.Id, "review", model.WorkItemRequest{ParticipantId: "bob"})
	require.ErrorIs(t, err, workflow.ErrParticipantMismatch)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []event{
		{kind: "workitem", id: "review", state: "READY"},
		{kind: "process", id: s.Id, state: "STARTED"},
		{kind: "workitem", id: "review", state: "ALLOCATED"},
		{kind: "failure", id: "review", state: err.Error()},
	}, rec.events)
}
