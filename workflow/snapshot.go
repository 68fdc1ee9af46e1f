package workflow

import (
	"fmt"
	"time"
)

// Snapshot is the persistable state of a process instance. The graph itself is
// not part of it, it is rebuilt from the workflow definition on restore.
type Snapshot struct {
	Id                string         `json:"id"`
	Workflow          string         `json:"workflow"`
	State             InstanceState  `json:"state"`
	ProcessData       map[string]any `json:"processData"`
	CurrentFlowObject string         `json:"currentFlowObject,omitempty"`
	Tokens            []string       `json:"tokens,omitempty"`
	Joins             map[string]int `json:"joins,omitempty"`
	EndReached        bool           `json:"endReached"`
	WorkItems         []*WorkItem    `json:"workItems,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	StartedAt         *time.Time     `json:"startedAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty"`
}

func (pi *ProcessInstance) Snapshot() *Snapshot {
	pi.mu.RLock()
	defer pi.mu.RUnlock()
	s := &Snapshot{
		Id:          pi.id,
		Workflow:    pi.graph.GetName(),
		State:       pi.state,
		ProcessData: copyData(pi.processData),
		Tokens:      append([]string(nil), pi.tokens...),
		Joins:       make(map[string]int, len(pi.joins)),
		EndReached:  pi.endReached,
		CreatedAt:   pi.createdAt,
		StartedAt:   pi.startedAt,
		CompletedAt: pi.completedAt,
	}
	if pi.currentFlowObject != nil {
		s.CurrentFlowObject = pi.currentFlowObject.GetId()
	}
	for k, v := range pi.joins {
		s.Joins[k] = v
	}
	for _, act := range pi.graph.Activities() {
		for _, item := range act.workItems.items {
			s.WorkItems = append(s.WorkItems, item.clone())
		}
	}
	return s
}

// Restore rebuilds an instance from s on a freshly built graph. Collaborators
// are not part of a snapshot and have to be configured again.
func Restore(graph *Graph, s *Snapshot) (*ProcessInstance, error) {
	if s.Workflow != graph.GetName() {
		return nil, fmt.Errorf("snapshot of workflow %q can not be restored on graph %q", s.Workflow, graph.GetName())
	}
	pi := NewProcessInstance(s.Id, graph)
	pi.state = s.State
	pi.processData = copyData(s.ProcessData)
	pi.tokens = append([]string(nil), s.Tokens...)
	pi.endReached = s.EndReached
	pi.createdAt = s.CreatedAt
	pi.startedAt = s.StartedAt
	pi.completedAt = s.CompletedAt
	for k, v := range s.Joins {
		pi.joins[k] = v
	}
	if s.CurrentFlowObject != "" {
		fo, ok := graph.FlowObject(s.CurrentFlowObject)
		if !ok {
			return nil, FlowObjectNotFoundError{Id: s.CurrentFlowObject}
		}
		pi.currentFlowObject = fo
	}
	for _, item := range s.WorkItems {
		fo, ok := graph.FlowObject(item.ActivityId)
		if !ok {
			return nil, FlowObjectNotFoundError{Id: item.ActivityId}
		}
		act, ok := fo.(*Activity)
		if !ok {
			return nil, fmt.Errorf("work item %s refers to %q which is not an activity", item.Id, item.ActivityId)
		}
		act.workItems.Add(item.clone())
	}
	return pi, nil
}
