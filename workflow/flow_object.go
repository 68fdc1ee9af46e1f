package workflow

// FlowObject is a node of a process graph. The set of implementations is closed:
// StartEvent, EndEvent, IntermediateEvent, Activity and Gateway.
type FlowObject interface {
	GetId() string
	GetName() string
	flowObject()
}

var (
	_ FlowObject = new(StartEvent)
	_ FlowObject = new(EndEvent)
	_ FlowObject = new(IntermediateEvent)
	_ FlowObject = new(Activity)
	_ FlowObject = new(Gateway)
)

type baseFlowObject struct {
	id   string
	name string
}

func (b *baseFlowObject) GetId() string {
	return b.id
}

func (b *baseFlowObject) GetName() string {
	if b.name == "" {
		return b.id
	}
	return b.name
}

func (b *baseFlowObject) flowObject() {}

type StartEvent struct {
	baseFlowObject
}

func NewStartEvent(id string, name string) *StartEvent {
	return &StartEvent{baseFlowObject{id: id, name: name}}
}

type EndEvent struct {
	baseFlowObject
}

func NewEndEvent(id string, name string) *EndEvent {
	return &EndEvent{baseFlowObject{id: id, name: name}}
}

type IntermediateEvent struct {
	baseFlowObject
}

func NewIntermediateEvent(id string, name string) *IntermediateEvent {
	return &IntermediateEvent{baseFlowObject{id: id, name: name}}
}

type GatewayType string

const GATEWAY_EXCLUSIVE GatewayType = "exclusive"
const GATEWAY_PARALLEL GatewayType = "parallel"

func ValidGatewayType(gt GatewayType) bool {
	return gt == GATEWAY_EXCLUSIVE || gt == GATEWAY_PARALLEL
}

type Gateway struct {
	baseFlowObject
	gatewayType GatewayType
}

func NewGateway(id string, name string, gatewayType GatewayType) *Gateway {
	if gatewayType == "" {
		gatewayType = GATEWAY_EXCLUSIVE
	}
	return &Gateway{
		baseFlowObject: baseFlowObject{id: id, name: name},
		gatewayType:    gatewayType,
	}
}

func (g *Gateway) GetGatewayType() GatewayType {
	return g.gatewayType
}

// SequenceFlow is a directed edge between two flow objects. Condition is an
// optional guard evaluated against the process data.
type SequenceFlow struct {
	Id        string
	Source    string
	Target    string
	Condition string
	Default   bool
}

func (sf *SequenceFlow) IsConditional() bool {
	return sf.Condition != ""
}
