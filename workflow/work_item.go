package workflow

import (
	"time"

	"github.com/google/uuid"
)

type WorkItemState string

const (
	WORK_ITEM_READY     WorkItemState = "READY"
	WORK_ITEM_ALLOCATED WorkItemState = "ALLOCATED"
	WORK_ITEM_STARTED   WorkItemState = "STARTED"
	WORK_ITEM_COMPLETED WorkItemState = "COMPLETED"
)

// next lists the single legal successor of every non terminal state.
var next = map[WorkItemState]WorkItemState{
	WORK_ITEM_READY:     WORK_ITEM_ALLOCATED,
	WORK_ITEM_ALLOCATED: WORK_ITEM_STARTED,
	WORK_ITEM_STARTED:   WORK_ITEM_COMPLETED,
}

func (s WorkItemState) IsTerminal() bool {
	return s == WORK_ITEM_COMPLETED
}

// WorkItem is one execution occurrence of an activity.
type WorkItem struct {
	Id          string        `json:"id"`
	ActivityId  string        `json:"activityId"`
	State       WorkItemState `json:"state"`
	Participant *Participant  `json:"participant,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	AllocatedAt *time.Time    `json:"allocatedAt,omitempty"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

func NewWorkItem(activityId string) *WorkItem {
	return &WorkItem{
		Id:         uuid.New().String(),
		ActivityId: activityId,
		State:      WORK_ITEM_READY,
		CreatedAt:  time.Now(),
	}
}

func (w *WorkItem) IsActive() bool {
	return !w.State.IsTerminal()
}

func (w *WorkItem) checkTransition(to WorkItemState) error {
	if next[w.State] != to {
		return WorkItemStateError{WorkItemId: w.Id, ActivityId: w.ActivityId, From: w.State, To: to}
	}
	return nil
}

func (w *WorkItem) checkParticipant(participant Participant) error {
	if participant.Id == "" || w.Participant == nil {
		return nil
	}
	if w.Participant.Id != participant.Id {
		return ErrParticipantMismatch
	}
	return nil
}

func (w *WorkItem) Allocate(participant Participant) error {
	if err := w.checkTransition(WORK_ITEM_ALLOCATED); err != nil {
		return err
	}
	now := time.Now()
	p := participant
	w.Participant = &p
	w.AllocatedAt = &now
	w.State = WORK_ITEM_ALLOCATED
	return nil
}

func (w *WorkItem) Start(participant Participant) error {
	if err := w.checkTransition(WORK_ITEM_STARTED); err != nil {
		return err
	}
	if err := w.checkParticipant(participant); err != nil {
		return err
	}
	now := time.Now()
	w.StartedAt = &now
	w.State = WORK_ITEM_STARTED
	return nil
}

func (w *WorkItem) Complete(participant Participant) error {
	if err := w.checkTransition(WORK_ITEM_COMPLETED); err != nil {
		return err
	}
	if err := w.checkParticipant(participant); err != nil {
		return err
	}
	now := time.Now()
	w.CompletedAt = &now
	w.State = WORK_ITEM_COMPLETED
	return nil
}

func (w *WorkItem) clone() *WorkItem {
	c := *w
	if w.Participant != nil {
		p := *w.Participant
		p.Roles = append([]string(nil), w.Participant.Roles...)
		c.Participant = &p
	}
	return &c
}
