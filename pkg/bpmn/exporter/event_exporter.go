// Package exporter is the audit/notification sink of the engine: every
// deployment, instance transition, activity transition and taken sequence
// flow is fanned out to the registered exporters.
package exporter

type EventExporter interface {
	NewProcessEvent(event *ProcessEvent)
	NewProcessInstanceEvent(event *ProcessInstanceEvent)
	EndProcessInstanceEvent(event *ProcessInstanceEvent)
	NewActivityEvent(event *ProcessInstanceEvent, activityInfo *ActivityInfo)
	SequenceFlowEvent(event *ProcessInstanceEvent, flowId string)
}

type Intent string

const (
	ActivityActivated Intent = "ACTIVITY_ACTIVATED"
	ActivityCompleted Intent = "ACTIVITY_COMPLETED"
	ActivityCancelled Intent = "ACTIVITY_CANCELLED"
	SequenceFlowTaken Intent = "SEQUENCE_FLOW_TAKEN"
)

type ProcessEvent struct {
	EventId       string
	WorkflowCode  string
	DefinitionKey int64
	Version       int32
	XmlData       []byte
	ResourceName  string
	Checksum      string
}

type ProcessInstanceEvent struct {
	EventId       string
	WorkflowCode  string
	DefinitionKey int64
	Version       int32
	InstanceKey   int64
}

type ActivityInfo struct {
	ActivityId     string
	ActivityType   string
	ActivityRowKey int64
	Intent         Intent
}
