package runtime

import (
	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
)

// ProcessDefinition is the in-memory model of one parsed workflow definition.
// It is built once per parse call and never mutated afterwards, so it can be
// shared by any number of concurrently running instances.
type ProcessDefinition struct {
	WorkflowCode     string // the ID as defined in the BPMN file (process@id)
	WorkflowName     string // process@name
	Version          int32  // default=1, incremented when a different document with the same ID is loaded
	Key              int64  // the engine's key for this definition with version
	Activities       []Activity
	Flows            []Flow
	BpmnResourceName string   // some name for the resource, e.g. the file name
	BpmnChecksum     [16]byte // internal checksum to identify different versions
}

// Activity is one node of the process graph.
type Activity struct {
	Id   string
	Name string
	Type bpmn20.ElementType
}

// Flow is a directed, optionally conditional edge between two activities.
// An empty Condition means the flow is unconditionally eligible.
type Flow struct {
	Id        string
	SourceRef string
	TargetRef string
	Condition string
}

// FindStartEvents returns all start event activities in document order.
func (d *ProcessDefinition) FindStartEvents() []Activity {
	var res []Activity
	for _, a := range d.Activities {
		if a.Type == bpmn20.ElementTypeStartEvent {
			res = append(res, a)
		}
	}
	return res
}

func (d *ProcessDefinition) FindActivityById(id string) (Activity, bool) {
	for _, a := range d.Activities {
		if a.Id == id {
			return a, true
		}
	}
	return Activity{}, false
}

// FindOutgoingFlows returns the flows leaving the given activity,
// in document order.
func (d *ProcessDefinition) FindOutgoingFlows(sourceId string) []Flow {
	var res []Flow
	for _, f := range d.Flows {
		if f.SourceRef == sourceId {
			res = append(res, f)
		}
	}
	return res
}
