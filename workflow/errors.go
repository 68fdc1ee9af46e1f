package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted            = errors.New("process instance already started")
	ErrNotStarted                = errors.New("process instance not started")
	ErrProcessCompleted          = errors.New("process instance already completed")
	ErrNotStartEvent             = errors.New("flow object is not a start event of this process")
	ErrNoActiveWorkItem          = errors.New("activity has no active work item")
	ErrMultipleActiveWorkItems   = errors.New("activity has more than one active work item")
	ErrWorkItemNotFound          = errors.New("work item does not belong to this process instance")
	ErrExpressionEvaluatorNotSet = errors.New("expression evaluator is not set")
	ErrOperationRunnerNotSet     = errors.New("operation runner is not set")
	ErrNoOutgoingFlowSelected    = errors.New("no outgoing sequence flow selected")
	ErrParticipantMismatch       = errors.New("work item is allocated to another participant")
)

type FlowObjectNotFoundError struct {
	Id string
}

func (e FlowObjectNotFoundError) Error() string {
	return fmt.Sprintf("flow object %q not found", e.Id)
}

type WorkItemStateError struct {
	WorkItemId string
	ActivityId string
	From       WorkItemState
	To         WorkItemState
}

func (e WorkItemStateError) Error() string {
	return fmt.Sprintf("work item %s of activity %q can not move from %s to %s", e.WorkItemId, e.ActivityId, e.From, e.To)
}

type ParticipantRoleError struct {
	ActivityId    string
	ParticipantId string
	Role          string
}

func (e ParticipantRoleError) Error() string {
	return fmt.Sprintf("participant %q does not have role %q required by activity %q", e.ParticipantId, e.Role, e.ActivityId)
}

type WalkLimitError struct {
	Limit int
	At    string
}

func (e WalkLimitError) Error() string {
	return fmt.Sprintf("walk exceeded %d steps at flow object %q, graph has an automatic cycle", e.Limit, e.At)
}
