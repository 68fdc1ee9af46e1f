package workflow

// Activity is a unit of work. An activity with an operation is automated and is
// driven by the operation runner, otherwise it waits for an external participant.
type Activity struct {
	baseFlowObject
	role      string
	operation string
	params    map[string]any
	workItems *WorkItemCollection
}

func NewActivity(id string, name string, role string, operation string, params map[string]any) *Activity {
	if params == nil {
		params = make(map[string]any)
	}
	return &Activity{
		baseFlowObject: baseFlowObject{id: id, name: name},
		role:           role,
		operation:      operation,
		params:         params,
		workItems:      NewWorkItemCollection(),
	}
}

func (a *Activity) GetRole() string {
	return a.role
}

func (a *Activity) GetOperation() string {
	return a.operation
}

func (a *Activity) GetParams() map[string]any {
	return a.params
}

func (a *Activity) IsAutomated() bool {
	return a.operation != ""
}

func (a *Activity) GetWorkItems() *WorkItemCollection {
	return a.workItems
}

func (a *Activity) activeIn(state WorkItemState) bool {
	item, err := a.workItems.Active()
	if err != nil {
		return false
	}
	return item.State == state
}

func (a *Activity) IsAllocatable() bool {
	return a.activeIn(WORK_ITEM_READY)
}

func (a *Activity) IsStartable() bool {
	return a.activeIn(WORK_ITEM_ALLOCATED)
}

func (a *Activity) IsCompletable() bool {
	return a.activeIn(WORK_ITEM_STARTED)
}

func (a *Activity) createWorkItem() *WorkItem {
	item := NewWorkItem(a.id)
	a.workItems.Add(item)
	return item
}
