package metadata

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mohitkumar/workflower/model"
	"github.com/mohitkumar/workflower/workflow"
)

// OperationValidator checks the params of an automated activity against the
// operation it names.
type OperationValidator interface {
	Validate(operation string, params map[string]any) error
}

type MetadataService interface {
	ValidateFlow(wf model.Workflow) error
	GetWorkflow(name string) (*model.Workflow, error)
	GetGraph(name string) (*workflow.Graph, error)
	NewProcessInstance(name string) (*workflow.ProcessInstance, error)
	GetMetadataStorage() MetadataStorage
}

var _ MetadataService = new(MetadataServiceImpl)

type MetadataServiceImpl struct {
	storage    MetadataStorage
	operations OperationValidator
}

// NewMetadataService returns a service over storage. operations may be nil, in
// which case operation names are not checked.
func NewMetadataService(storage MetadataStorage, operations OperationValidator) *MetadataServiceImpl {
	return &MetadataServiceImpl{
		storage:    storage,
		operations: operations,
	}
}

func (s *MetadataServiceImpl) GetMetadataStorage() MetadataStorage {
	return s.storage
}

func (s *MetadataServiceImpl) GetWorkflow(name string) (*model.Workflow, error) {
	return s.storage.GetWorkflowDefinition(name)
}

func (s *MetadataServiceImpl) GetGraph(name string) (*workflow.Graph, error) {
	wf, err := s.storage.GetWorkflowDefinition(name)
	if err != nil {
		return nil, err
	}
	return BuildGraph(*wf)
}

func (s *MetadataServiceImpl) NewProcessInstance(name string) (*workflow.ProcessInstance, error) {
	g, err := s.GetGraph(name)
	if err != nil {
		return nil, err
	}
	return workflow.NewProcessInstance(uuid.New().String(), g), nil
}

// BuildGraph turns a definition into the graph of one process instance.
func BuildGraph(wf model.Workflow) (*workflow.Graph, error) {
	g := workflow.NewGraph(wf.Name)
	for _, def := range wf.FlowObjects {
		var fo workflow.FlowObject
		switch def.Type {
		case model.START_EVENT:
			fo = workflow.NewStartEvent(def.Id, def.Name)
		case model.END_EVENT:
			fo = workflow.NewEndEvent(def.Id, def.Name)
		case model.INTERMEDIATE_EVENT:
			fo = workflow.NewIntermediateEvent(def.Id, def.Name)
		case model.ACTIVITY:
			fo = workflow.NewActivity(def.Id, def.Name, def.Role, def.Operation, def.Params)
		case model.GATEWAY:
			fo = workflow.NewGateway(def.Id, def.Name, workflow.GatewayType(def.GatewayType))
		default:
			return nil, fmt.Errorf("flow object %q has invalid type %q", def.Id, def.Type)
		}
		if err := g.AddFlowObject(fo); err != nil {
			return nil, err
		}
	}
	for _, def := range wf.SequenceFlows {
		sf := &workflow.SequenceFlow{
			Id:        def.Id,
			Source:    def.Source,
			Target:    def.Target,
			Condition: def.Condition,
			Default:   def.Default,
		}
		if err := g.AddSequenceFlow(sf); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func validateStateHandler(h model.StateHandler) error {
	switch h {
	case "", model.NOOP, model.DELETE:
		return nil
	}
	return fmt.Errorf("invalid state handler %s", h)
}

func (s *MetadataServiceImpl) ValidateFlow(wf model.Workflow) error {
	if len(wf.Name) == 0 {
		return fmt.Errorf("workflow name can not be empty")
	}
	if err := validateStateHandler(wf.OnComplete); err != nil {
		return err
	}
	starts, ends := 0, 0
	for _, def := range wf.FlowObjects {
		if len(def.Id) == 0 {
			return fmt.Errorf("flow object id can not be empty")
		}
		switch def.Type {
		case model.START_EVENT:
			starts++
		case model.END_EVENT:
			ends++
		case model.GATEWAY:
			if def.GatewayType != "" && !workflow.ValidGatewayType(workflow.GatewayType(def.GatewayType)) {
				return fmt.Errorf("gateway %q has invalid gateway type %q", def.Id, def.GatewayType)
			}
		case model.ACTIVITY:
			if def.Operation != "" && s.operations != nil {
				if err := s.operations.Validate(def.Operation, def.Params); err != nil {
					return fmt.Errorf("activity %q: %w", def.Id, err)
				}
			}
		}
	}
	if starts != 1 {
		return fmt.Errorf("workflow should have exactly one start event, found %d", starts)
	}
	if ends == 0 {
		return fmt.Errorf("workflow should have at least one end event")
	}
	seen := make(map[string]bool)
	for _, def := range wf.SequenceFlows {
		if seen[def.Id] {
			return fmt.Errorf("sequence flow id %q is duplicate", def.Id)
		}
		seen[def.Id] = true
	}
	_, err := BuildGraph(wf)
	return err
}
