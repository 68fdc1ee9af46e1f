package process

import "strconv"

// WorkflowContext is an opaque caller object that knows its workflow identifier.
type WorkflowContext interface {
	GetWorkflowId() string
}

type idKind int

const (
	idNone idKind = iota
	idInt
	idString
	idContext
)

// WorkflowID identifies the workflow a Process drives. It holds an integer, a
// string or a WorkflowContext, and resolves to one canonical string.
type WorkflowID struct {
	kind idKind
	i    int
	s    string
	c    WorkflowContext
}

func IntID(id int) WorkflowID {
	return WorkflowID{kind: idInt, i: id}
}

func StringID(id string) WorkflowID {
	return WorkflowID{kind: idString, s: id}
}

func ContextID(c WorkflowContext) WorkflowID {
	if c == nil {
		return WorkflowID{}
	}
	return WorkflowID{kind: idContext, c: c}
}

func (w WorkflowID) IsZero() bool {
	return w.kind == idNone
}

// Context returns the WorkflowContext the id was built from, if any.
func (w WorkflowID) Context() (WorkflowContext, bool) {
	return w.c, w.kind == idContext
}

func (w WorkflowID) Canonical() string {
	switch w.kind {
	case idInt:
		return strconv.Itoa(w.i)
	case idString:
		return w.s
	case idContext:
		return w.c.GetWorkflowId()
	}
	return ""
}

func (w WorkflowID) String() string {
	return w.Canonical()
}
