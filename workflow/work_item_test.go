package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkItem(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, item *WorkItem){
		"full lifecycle":              testWorkItemLifecycle,
		"illegal transitions":         testWorkItemIllegalTransition,
		"allocated participant check": testWorkItemParticipantMismatch,
		"empty participant accepted":  testWorkItemEmptyParticipant,
	} {
		t.Run(scenario, func(t *testing.T) {
			fn(t, NewWorkItem("task"))
		})
	}
}

func testWorkItemLifecycle(t *testing.T, item *WorkItem) {
	alice := NewParticipant("alice")
	require.Equal(t, WORK_ITEM_READY, item.State)
	require.True(t, item.IsActive())

	require.NoError(t, item.Allocate(alice))
	require.Equal(t, WORK_ITEM_ALLOCATED, item.State)
	require.Equal(t, "alice", item.Participant.Id)
	require.NotNil(t, item.AllocatedAt)

	require.NoError(t, item.Start(alice))
	require.Equal(t, WORK_ITEM_STARTED, item.State)
	require.NotNil(t, item.StartedAt)

	require.NoError(t, item.Complete(alice))
	require.Equal(t, WORK_ITEM_COMPLETED, item.State)
	require.NotNil(t, item.CompletedAt)
	require.False(t, item.IsActive())
}

func testWorkItemIllegalTransition(t *testing.T, item *WorkItem) {
	alice := NewParticipant("alice")
	err := item.Start(alice)
	var stateErr WorkItemStateError
	require.True(t, errors.As(err, &stateErr))
	require.Equal(t, WORK_ITEM_READY, stateErr.From)
	require.Equal(t, WORK_ITEM_STARTED, stateErr.To)
	require.Equal(t, WORK_ITEM_READY, item.State)

	require.Error(t, item.Complete(alice))
	require.NoError(t, item.Allocate(alice))
	require.Error(t, item.Allocate(alice))
	require.NoError(t, item.Start(alice))
	require.NoError(t, item.Complete(alice))
	require.Error(t, item.Complete(alice))
	require.Equal(t, WORK_ITEM_COMPLETED, item.State)
}

func testWorkItemParticipantMismatch(t *testing.T, item *WorkItem) {
	require.NoError(t, item.Allocate(NewParticipant("alice")))
	err := item.Start(NewParticipant("bob"))
	require.ErrorIs(t, err, ErrParticipantMismatch)
	require.Equal(t, WORK_ITEM_ALLOCATED, item.State)
}

func testWorkItemEmptyParticipant(t *testing.T, item *WorkItem) {
	require.NoError(t, item.Allocate(NewParticipant("alice")))
	require.NoError(t, item.Start(Participant{}))
	require.NoError(t, item.Complete(Participant{}))
	require.Equal(t, "alice", item.Participant.Id)
}

func TestWorkItemCollectionActive(t *testing.T) {
	c := NewWorkItemCollection()
	_, err := c.Active()
	require.ErrorIs(t, err, ErrNoActiveWorkItem)

	first := NewWorkItem("task")
	c.Add(first)
	active, err := c.Active()
	require.NoError(t, err)
	require.Same(t, first, active)

	second := NewWorkItem("task")
	c.Add(second)
	_, err = c.Active()
	require.ErrorIs(t, err, ErrMultipleActiveWorkItems)
	require.Len(t, c.ActiveInstances(), 2)

	p := NewParticipant("alice")
	require.NoError(t, first.Allocate(p))
	require.NoError(t, first.Start(p))
	require.NoError(t, first.Complete(p))
	active, err = c.Active()
	require.NoError(t, err)
	require.Same(t, second, active)

	got, ok := c.Get(first.Id)
	require.True(t, ok)
	require.Same(t, first, got)
	require.Equal(t, 2, c.Len())
}

func TestActivityPredicates(t *testing.T) {
	act := NewActivity("task", "Task", "", "", nil)
	require.False(t, act.IsAllocatable())
	require.False(t, act.IsAutomated())
	require.Equal(t, "Task", act.GetName())

	item := act.createWorkItem()
	require.True(t, act.IsAllocatable())
	require.False(t, act.IsStartable())

	p := NewParticipant("alice")
	require.NoError(t, item.Allocate(p))
	require.True(t, act.IsStartable())
	require.False(t, act.IsCompletable())

	require.NoError(t, item.Start(p))
	require.True(t, act.IsCompletable())

	act.createWorkItem()
	require.False(t, act.IsCompletable())
	require.False(t, act.IsAllocatable())
}

func TestTruthy(t *testing.T) {
	for _, tc := range []struct {
		value any
		want  bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"true", true},
		{"false", false},
		{"", false},
		{"yes", true},
		{0, false},
		{3, true},
		{int64(0), false},
		{0.5, true},
		{map[string]any{}, true},
	} {
		require.Equal(t, tc.want, Truthy(tc.value), "%v", tc.value)
	}
}
