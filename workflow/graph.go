package workflow

import "fmt"

// Graph is the shape of one process definition. A graph is built per process
// instance since activities carry the work items of that instance.
type Graph struct {
	name        string
	flowObjects map[string]FlowObject
	order       []string
	outgoing    map[string][]*SequenceFlow
	incoming    map[string][]*SequenceFlow
}

func NewGraph(name string) *Graph {
	return &Graph{
		name:        name,
		flowObjects: make(map[string]FlowObject),
		outgoing:    make(map[string][]*SequenceFlow),
		incoming:    make(map[string][]*SequenceFlow),
	}
}

func (g *Graph) GetName() string {
	return g.name
}

func (g *Graph) AddFlowObject(fo FlowObject) error {
	if _, ok := g.flowObjects[fo.GetId()]; ok {
		return fmt.Errorf("flow object id %q is duplicate", fo.GetId())
	}
	g.flowObjects[fo.GetId()] = fo
	g.order = append(g.order, fo.GetId())
	return nil
}

func (g *Graph) AddSequenceFlow(sf *SequenceFlow) error {
	if _, ok := g.flowObjects[sf.Source]; !ok {
		return fmt.Errorf("sequence flow %q: source %q not defined", sf.Id, sf.Source)
	}
	if _, ok := g.flowObjects[sf.Target]; !ok {
		return fmt.Errorf("sequence flow %q: target %q not defined", sf.Id, sf.Target)
	}
	g.outgoing[sf.Source] = append(g.outgoing[sf.Source], sf)
	g.incoming[sf.Target] = append(g.incoming[sf.Target], sf)
	return nil
}

func (g *Graph) FlowObject(id string) (FlowObject, bool) {
	fo, ok := g.flowObjects[id]
	return fo, ok
}

// FlowObjects returns the flow objects in the order they were added.
func (g *Graph) FlowObjects() []FlowObject {
	out := make([]FlowObject, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.flowObjects[id])
	}
	return out
}

func (g *Graph) Activities() []*Activity {
	var out []*Activity
	for _, fo := range g.FlowObjects() {
		if act, ok := fo.(*Activity); ok {
			out = append(out, act)
		}
	}
	return out
}

func (g *Graph) StartEvents() []*StartEvent {
	var out []*StartEvent
	for _, fo := range g.FlowObjects() {
		if ev, ok := fo.(*StartEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (g *Graph) Outgoing(id string) []*SequenceFlow {
	return g.outgoing[id]
}

func (g *Graph) Incoming(id string) []*SequenceFlow {
	return g.incoming[id]
}
