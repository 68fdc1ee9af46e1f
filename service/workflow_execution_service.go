package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mohitkumar/workflower/action"
	"github.com/mohitkumar/workflower/analytics"
	"github.com/mohitkumar/workflower/lock"
	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/process"
	"github.com/mohitkumar/workflower/shard"
	"github.com/mohitkumar/workflower/util"
	"github.com/mohitkumar/workflower/workflow"
	"go.uber.org/zap"
)

type Config struct {
	MaxSteps      int
	LockTTL       time.Duration
	GaugeInterval time.Duration
}

// WorkflowExecutionService runs process instances kept in an instance store.
// Every operation loads the instance, applies one driver operation on the
// shard owning the instance id and stores the result.
type WorkflowExecutionService struct {
	metadataService metadata.MetadataService
	repository      process.WorkflowRepository
	storage         persistence.InstanceStorage
	shards          *shard.Manager
	evaluator       workflow.ExpressionEvaluator
	runner          workflow.OperationRunner
	locker          lock.Locker
	stateHandlers   *StateHandlerContainer
	conf            Config
	gauge           *util.TickWorker
	wg              sync.WaitGroup
}

func NewWorkflowExecutionService(metadataService metadata.MetadataService, storage persistence.InstanceStorage, shards *shard.Manager,
	evaluator workflow.ExpressionEvaluator, runner workflow.OperationRunner, locker lock.Locker, conf Config) *WorkflowExecutionService {
	if conf.MaxSteps <= 0 {
		conf.MaxSteps = process.DefaultMaxSteps
	}
	if conf.LockTTL <= 0 {
		conf.LockTTL = process.DefaultLockTTL
	}
	if conf.GaugeInterval <= 0 {
		conf.GaugeInterval = 10 * time.Second
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	s := &WorkflowExecutionService{
		metadataService: metadataService,
		repository:      metadata.NewRepository(metadataService),
		storage:         storage,
		shards:          shards,
		evaluator:       evaluator,
		runner:          runner,
		locker:          locker,
		stateHandlers:   NewStateHandlerContainer(storage),
		conf:            conf,
	}
	s.gauge = util.NewTickWorker("active-instances", conf.GaugeInterval, s.reportActiveInstances, &s.wg)
	return s
}

func (s *WorkflowExecutionService) Start() {
	s.shards.Start()
	s.gauge.Start()
}

func (s *WorkflowExecutionService) Stop() {
	s.gauge.Stop()
	s.shards.Stop()
	s.wg.Wait()
}

func (s *WorkflowExecutionService) newProcess(wfName string) *process.Process {
	return process.New(process.StringID(wfName), s.repository,
		process.WithExpressionEvaluator(s.evaluator),
		process.WithOperationRunner(s.runner),
		process.WithMaxSteps(s.conf.MaxSteps),
		process.WithLocker(s.locker, s.conf.LockTTL),
	)
}

// StartProcess creates an instance of req.Workflow and starts it. With no
// event given the single start event of the graph is used. An instance that
// got started is stored even when the walk failed afterwards.
func (s *WorkflowExecutionService) StartProcess(ctx context.Context, req model.ProcessStartRequest) (*workflow.Snapshot, error) {
	def, err := s.metadataService.GetWorkflow(req.Workflow)
	if err != nil {
		return nil, err
	}
	instance, err := s.repository.FindById(ctx, req.Workflow)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, process.WorkflowNotFoundError{WorkflowId: req.Workflow}
	}
	data, err := util.NormalizeData(req.Data)
	if err != nil {
		return nil, err
	}
	eventId := req.Event
	if eventId == "" {
		if starts := instance.GetGraph().StartEvents(); len(starts) == 1 {
			eventId = starts[0].GetId()
		}
	}
	var out *workflow.Snapshot
	err = s.shards.Submit(ctx, instance.GetId(), func(ctx context.Context) error {
		ctx = action.WithProcessId(ctx, instance.GetId())
		before := instance.Snapshot()
		ec := process.NewEventContext(process.NewProcessContext(data), eventId)
		opErr := s.newProcess(def.Name).Start(ctx, ec, instance)
		if instance.GetState() == workflow.INSTANCE_CREATED {
			return opErr
		}
		logger.Info("process started", zap.String("workflow", def.Name), zap.String("processId", instance.GetId()))
		after, err := s.store(ctx, def, before, instance, "", opErr)
		if err != nil {
			return err
		}
		out = after
		return opErr
	})
	return out, err
}

func (s *WorkflowExecutionService) AllocateWorkItem(ctx context.Context, processId string, activityId string, req model.WorkItemRequest) (*workflow.Snapshot, error) {
	return s.transition(ctx, processId, activityId, req, (*process.Process).AllocateWorkItem)
}

func (s *WorkflowExecutionService) StartWorkItem(ctx context.Context, processId string, activityId string, req model.WorkItemRequest) (*workflow.Snapshot, error) {
	return s.transition(ctx, processId, activityId, req, (*process.Process).StartWorkItem)
}

func (s *WorkflowExecutionService) CompleteWorkItem(ctx context.Context, processId string, activityId string, req model.WorkItemRequest) (*workflow.Snapshot, error) {
	return s.transition(ctx, processId, activityId, req, (*process.Process).CompleteWorkItem)
}

func (s *WorkflowExecutionService) ExecuteWorkItem(ctx context.Context, processId string, activityId string, req model.WorkItemRequest) (*workflow.Snapshot, error) {
	return s.transition(ctx, processId, activityId, req, (*process.Process).ExecuteWorkItem)
}

// ResumeProcess continues a walk that stopped on an error, with req.Data merged
// over the process data.
func (s *WorkflowExecutionService) ResumeProcess(ctx context.Context, processId string, req model.WorkItemRequest) (*workflow.Snapshot, error) {
	return s.transition(ctx, processId, "", req, func(p *process.Process, ctx context.Context, wc *process.WorkItemContext) error {
		return p.Resume(ctx, wc.ProcessContext)
	})
}

func (s *WorkflowExecutionService) GetProcess(ctx context.Context, processId string) (*workflow.Snapshot, error) {
	snapshot, err := s.storage.GetInstance(ctx, processId)
	if errors.Is(err, persistence.ErrInstanceNotFound) {
		return nil, process.WorkflowNotFoundError{WorkflowId: processId}
	}
	return snapshot, err
}

type driverOp func(p *process.Process, ctx context.Context, wc *process.WorkItemContext) error

// transition applies op to the stored instance. The request data is merged
// over the current process data. The instance is stored whatever op returns,
// a failed automated operation leaves state behind that a retry resumes from.
func (s *WorkflowExecutionService) transition(ctx context.Context, processId string, activityId string, req model.WorkItemRequest, op driverOp) (*workflow.Snapshot, error) {
	update, err := util.NormalizeData(req.Data)
	if err != nil {
		return nil, err
	}
	var out *workflow.Snapshot
	err = s.shards.Submit(ctx, processId, func(ctx context.Context) error {
		ctx = action.WithProcessId(ctx, processId)
		def, instance, err := s.load(ctx, processId)
		if err != nil {
			return err
		}
		before := instance.Snapshot()
		data := instance.GetProcessData()
		for k, v := range update {
			data[k] = v
		}
		pc := process.ResumeProcessContext(instance, data)
		wc := process.NewWorkItemContext(pc, activityId, workflow.NewParticipant(req.ParticipantId, req.Roles...))
		opErr := op(s.newProcess(def.Name), ctx, wc)
		after, err := s.store(ctx, def, before, instance, activityId, opErr)
		if err != nil {
			return err
		}
		out = after
		return opErr
	})
	return out, err
}

func (s *WorkflowExecutionService) load(ctx context.Context, processId string) (*model.Workflow, *workflow.ProcessInstance, error) {
	snapshot, err := s.GetProcess(ctx, processId)
	if err != nil {
		return nil, nil, err
	}
	def, err := s.metadataService.GetWorkflow(snapshot.Workflow)
	if err != nil {
		return nil, nil, err
	}
	graph, err := metadata.BuildGraph(*def)
	if err != nil {
		return nil, nil, err
	}
	instance, err := workflow.Restore(graph, snapshot)
	if err != nil {
		return nil, nil, err
	}
	return def, instance, nil
}

// store saves instance, reports what changed since before and runs the
// onComplete handler of def once the instance completed.
func (s *WorkflowExecutionService) store(ctx context.Context, def *model.Workflow, before *workflow.Snapshot, instance *workflow.ProcessInstance, activityId string, opErr error) (*workflow.Snapshot, error) {
	after := instance.Snapshot()
	if err := s.storage.SaveInstance(ctx, after); err != nil {
		logger.Error("error saving process instance", zap.String("processId", after.Id), zap.Error(err))
		return nil, err
	}
	record(before, after, activityId, opErr)
	if after.State == workflow.INSTANCE_COMPLETED && before.State != workflow.INSTANCE_COMPLETED {
		if err := s.stateHandlers.GetHandler(def.OnComplete)(ctx, def.Name, after.Id); err != nil {
			logger.Error("error in state handler", zap.String("processId", after.Id), zap.String("handler", string(def.OnComplete)), zap.Error(err))
			return nil, err
		}
	}
	return after, nil
}

func record(before *workflow.Snapshot, after *workflow.Snapshot, activityId string, opErr error) {
	states := make(map[string]workflow.WorkItemState, len(before.WorkItems))
	for _, item := range before.WorkItems {
		states[item.Id] = item.State
	}
	for _, item := range after.WorkItems {
		if state, ok := states[item.Id]; ok && state == item.State {
			continue
		}
		analytics.RecordWorkItemTransition(after.Workflow, after.Id, item.ActivityId, item.Id, string(item.State))
	}
	if before.State != after.State {
		analytics.RecordProcessState(after.Workflow, after.Id, string(after.State))
	}
	if opErr != nil {
		analytics.RecordOperationFailure(after.Workflow, after.Id, activityId, opErr.Error())
	}
}

func (s *WorkflowExecutionService) reportActiveInstances() {
	n, err := s.storage.CountInstances(context.Background())
	if err != nil {
		logger.Error("error counting process instances", zap.Error(err))
		return
	}
	analytics.RecordActiveInstances(n)
}
