package model

type FlowObjectType string

const START_EVENT FlowObjectType = "startEvent"
const END_EVENT FlowObjectType = "endEvent"
const INTERMEDIATE_EVENT FlowObjectType = "intermediateEvent"
const ACTIVITY FlowObjectType = "activity"
const GATEWAY FlowObjectType = "gateway"

type StateHandler string

const NOOP StateHandler = "NOOP"
const DELETE StateHandler = "DELETE"

// Workflow is a process definition as it is stored and exchanged.
type Workflow struct {
	Name          string            `json:"name" yaml:"name"`
	FlowObjects   []FlowObjectDef   `json:"flowObjects" yaml:"flowObjects"`
	SequenceFlows []SequenceFlowDef `json:"sequenceFlows" yaml:"sequenceFlows"`
	OnComplete    StateHandler      `json:"onComplete,omitempty" yaml:"onComplete,omitempty"`
}

type FlowObjectDef struct {
	Id          string         `json:"id" yaml:"id"`
	Type        FlowObjectType `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Role        string         `json:"role,omitempty" yaml:"role,omitempty"`
	Operation   string         `json:"operation,omitempty" yaml:"operation,omitempty"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
	GatewayType string         `json:"gatewayType,omitempty" yaml:"gatewayType,omitempty"`
}

type SequenceFlowDef struct {
	Id        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Default   bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

type ProcessStartRequest struct {
	Workflow string         `json:"workflow"`
	Event    string         `json:"event"`
	Data     map[string]any `json:"data"`
}

type WorkItemRequest struct {
	ParticipantId string         `json:"participantId"`
	Roles         []string       `json:"roles"`
	Data          map[string]any `json:"data"`
}
