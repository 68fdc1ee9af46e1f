package workflow

// WorkItemCollection keeps the work items of one activity in creation order.
type WorkItemCollection struct {
	items []*WorkItem
}

func NewWorkItemCollection() *WorkItemCollection {
	return &WorkItemCollection{}
}

func (c *WorkItemCollection) Add(item *WorkItem) {
	c.items = append(c.items, item)
}

func (c *WorkItemCollection) Len() int {
	return len(c.items)
}

func (c *WorkItemCollection) All() []*WorkItem {
	return append([]*WorkItem(nil), c.items...)
}

func (c *WorkItemCollection) Get(id string) (*WorkItem, bool) {
	for _, item := range c.items {
		if item.Id == id {
			return item, true
		}
	}
	return nil, false
}

func (c *WorkItemCollection) ActiveInstances() []*WorkItem {
	var active []*WorkItem
	for _, item := range c.items {
		if item.IsActive() {
			active = append(active, item)
		}
	}
	return active
}

// Active returns the unique non completed work item.
func (c *WorkItemCollection) Active() (*WorkItem, error) {
	active := c.ActiveInstances()
	switch len(active) {
	case 0:
		return nil, ErrNoActiveWorkItem
	case 1:
		return active[0], nil
	default:
		return nil, ErrMultipleActiveWorkItems
	}
}
