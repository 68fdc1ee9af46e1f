package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type ActionType string

const ACTION_TYPE_SYSTEM ActionType = "SYSTEM"
const ACTION_TYPE_USER ActionType = "USER"

var ErrActionNotFound = errors.New("action not found")

func ToActionType(at string) ActionType {
	if strings.EqualFold(at, "system") {
		return ACTION_TYPE_SYSTEM
	}
	return ACTION_TYPE_USER
}

// Request is what an action gets to run one automated work item.
type Request struct {
	ProcessId  string
	ActivityId string
	Params     map[string]any
	Data       map[string]any
}

// Action is an operation automated activities refer to by name. Execute
// returns the values to merge into the process data.
type Action interface {
	GetName() string
	GetType() ActionType
	Validate(params map[string]any) error
	Execute(ctx context.Context, req Request) (map[string]any, error)
}

var _ Action = new(baseAction)

type baseAction struct {
	name    string
	actType ActionType
}

func newBaseAction(name string, actType ActionType) baseAction {
	return baseAction{name: name, actType: actType}
}

func (ba *baseAction) GetName() string {
	return ba.name
}

func (ba *baseAction) GetType() ActionType {
	return ba.actType
}

func (ba *baseAction) Validate(params map[string]any) error {
	return nil
}

func (ba *baseAction) Execute(ctx context.Context, req Request) (map[string]any, error) {
	return nil, fmt.Errorf("action %s implementation not found", ba.name)
}
