package process

import "fmt"

type WorkflowNotFoundError struct {
	WorkflowId string
}

func (e WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("the process instance %q is not found", e.WorkflowId)
}

type UnexpectedActivityStateError struct {
	ActivityId string
}

func (e UnexpectedActivityStateError) Error() string {
	return fmt.Sprintf("the current work item of the activity %q is not executable", e.ActivityId)
}

// PreconditionError reports a malformed request context. It is a caller bug,
// retrying the same request fails the same way.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

type StepLimitError struct {
	Limit      int
	ActivityId string
}

func (e StepLimitError) Error() string {
	return fmt.Sprintf("execute stopped after %d steps at activity %q", e.Limit, e.ActivityId)
}
