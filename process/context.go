package process

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mohitkumar/workflower/workflow"
)

var validate = validator.New()

// ProcessContext binds one process instance to the data of a request. The
// instance can be set once.
type ProcessContext struct {
	instance    *workflow.ProcessInstance
	ProcessData map[string]any
}

func NewProcessContext(data map[string]any) *ProcessContext {
	return &ProcessContext{ProcessData: data}
}

// ResumeProcessContext returns a context already bound to instance.
func ResumeProcessContext(instance *workflow.ProcessInstance, data map[string]any) *ProcessContext {
	return &ProcessContext{instance: instance, ProcessData: data}
}

func (pc *ProcessContext) GetProcessInstance() *workflow.ProcessInstance {
	return pc.instance
}

func (pc *ProcessContext) SetProcessInstance(instance *workflow.ProcessInstance) error {
	if pc.instance != nil {
		return PreconditionError{Op: "SetProcessInstance", Reason: "process instance already set"}
	}
	pc.instance = instance
	return nil
}

type EventContext struct {
	ProcessContext *ProcessContext `validate:"required"`
	EventId        string          `validate:"required"`
}

func NewEventContext(pc *ProcessContext, eventId string) *EventContext {
	return &EventContext{ProcessContext: pc, EventId: eventId}
}

type WorkItemContext struct {
	ProcessContext *ProcessContext `validate:"required"`
	ActivityId     string          `validate:"required"`
	Participant    workflow.Participant
}

func NewWorkItemContext(pc *ProcessContext, activityId string, participant workflow.Participant) *WorkItemContext {
	return &WorkItemContext{ProcessContext: pc, ActivityId: activityId, Participant: participant}
}

func validateStruct(op string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return PreconditionError{Op: op, Reason: err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return PreconditionError{Op: op, Reason: strings.Join(fields, ", ")}
}

func checkEventContext(op string, ec *EventContext) error {
	if ec == nil {
		return PreconditionError{Op: op, Reason: "event context is nil"}
	}
	if err := validateStruct(op, ec); err != nil {
		return err
	}
	if ec.ProcessContext.GetProcessInstance() != nil {
		return PreconditionError{Op: op, Reason: "process instance already attached"}
	}
	return nil
}

func checkProcessContext(op string, pc *ProcessContext) error {
	if pc == nil {
		return PreconditionError{Op: op, Reason: "process context is nil"}
	}
	if pc.GetProcessInstance() == nil {
		return PreconditionError{Op: op, Reason: "no process instance attached"}
	}
	return nil
}

func checkWorkItemContext(op string, wc *WorkItemContext) error {
	if wc == nil {
		return PreconditionError{Op: op, Reason: "work item context is nil"}
	}
	if err := validateStruct(op, wc); err != nil {
		return err
	}
	if wc.ProcessContext.GetProcessInstance() == nil {
		return PreconditionError{Op: op, Reason: "no process instance attached"}
	}
	return nil
}
