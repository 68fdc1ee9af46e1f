package api_v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mohitkumar/workflower/lock"
	"github.com/mohitkumar/workflower/metadata"
	"github.com/mohitkumar/workflower/persistence"
	"github.com/mohitkumar/workflower/process"
	"github.com/mohitkumar/workflower/workflow"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

// ValidationError reports a rejected request body or workflow definition.
type ValidationError struct {
	Message string
}

func (e ValidationError) GRPCStatus() *status.Status {
	return withMessage(codes.InvalidArgument, fmt.Sprintf("validation failed: %s", e.Message))
}

func (e ValidationError) Error() string {
	return e.GRPCStatus().Err().Error()
}

type StorageLayerError struct{}

func (e StorageLayerError) GRPCStatus() *status.Status {
	return withMessage(codes.Internal, "error in underline storage layer")
}

func (e StorageLayerError) Error() string {
	return e.GRPCStatus().Err().Error()
}

func withMessage(code codes.Code, msg string) *status.Status {
	st := status.New(code, msg)
	d := &errdetails.LocalizedMessage{
		Locale:  "en-US",
		Message: msg,
	}
	std, err := st.WithDetails(d)
	if err != nil {
		return st
	}
	return std
}

// ToStatus classifies err. Errors that already carry a status keep it.
func ToStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	var withStatus interface{ GRPCStatus() *status.Status }
	if errors.As(err, &withStatus) {
		return withStatus.GRPCStatus()
	}
	return withMessage(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	var (
		notFound    process.WorkflowNotFoundError
		foNotFound  workflow.FlowObjectNotFoundError
		precond     process.PreconditionError
		unexpected  process.UnexpectedActivityStateError
		stepLimit   process.StepLimitError
		itemState   workflow.WorkItemStateError
		roleErr     workflow.ParticipantRoleError
		walkLimit   workflow.WalkLimitError
		storageErr  persistence.StorageLayerError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &foNotFound),
		errors.Is(err, persistence.ErrInstanceNotFound),
		errors.Is(err, metadata.ErrDefinitionNotFound),
		errors.Is(err, workflow.ErrWorkItemNotFound):
		return codes.NotFound
	case errors.As(err, &precond),
		errors.Is(err, workflow.ErrAlreadyStarted),
		errors.Is(err, workflow.ErrNotStarted),
		errors.Is(err, workflow.ErrProcessCompleted),
		errors.Is(err, workflow.ErrNotStartEvent),
		errors.Is(err, workflow.ErrNoActiveWorkItem):
		return codes.FailedPrecondition
	case errors.As(err, &unexpected), errors.As(err, &itemState),
		errors.As(err, &stepLimit),
		errors.Is(err, workflow.ErrMultipleActiveWorkItems):
		return codes.Aborted
	case errors.As(err, &roleErr), errors.Is(err, workflow.ErrParticipantMismatch):
		return codes.PermissionDenied
	case errors.Is(err, lock.ErrLockFailed):
		return codes.Unavailable
	case errors.As(err, &walkLimit), errors.As(err, &storageErr):
		return codes.Internal
	}
	return codes.Unknown
}

var httpCodes = map[codes.Code]int{
	codes.OK:                 http.StatusOK,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.NotFound:           http.StatusNotFound,
	codes.FailedPrecondition: http.StatusPreconditionFailed,
	codes.Aborted:            http.StatusConflict,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.Internal:           http.StatusInternalServerError,
}

func HTTPStatus(st *status.Status) int {
	if code, ok := httpCodes[st.Code()]; ok {
		return code
	}
	return http.StatusInternalServerError
}
