// Package auditlog ships a reference exporter that writes every engine event
// to a structured log.
package auditlog

import (
	"github.com/hashicorp/go-hclog"

	"github.com/procflow/procflow/pkg/bpmn/exporter"
)

type Exporter struct {
	logger hclog.Logger
}

var _ exporter.EventExporter = &Exporter{}

func New() *Exporter {
	return NewWithLogger(hclog.Default().Named("audit"))
}

func NewWithLogger(logger hclog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

func (e *Exporter) NewProcessEvent(event *exporter.ProcessEvent) {
	e.logger.Info("process deployed",
		"eventId", event.EventId,
		"workflowCode", event.WorkflowCode,
		"definitionKey", event.DefinitionKey,
		"version", event.Version,
		"resourceName", event.ResourceName,
		"checksum", event.Checksum,
	)
}

func (e *Exporter) NewProcessInstanceEvent(event *exporter.ProcessInstanceEvent) {
	e.logger.Info("instance created",
		"eventId", event.EventId,
		"workflowCode", event.WorkflowCode,
		"instanceKey", event.InstanceKey,
	)
}

func (e *Exporter) EndProcessInstanceEvent(event *exporter.ProcessInstanceEvent) {
	e.logger.Info("instance ended",
		"eventId", event.EventId,
		"workflowCode", event.WorkflowCode,
		"instanceKey", event.InstanceKey,
	)
}

func (e *Exporter) NewActivityEvent(event *exporter.ProcessInstanceEvent, activityInfo *exporter.ActivityInfo) {
	e.logger.Info("activity transition",
		"eventId", event.EventId,
		"instanceKey", event.InstanceKey,
		"activityId", activityInfo.ActivityId,
		"activityType", activityInfo.ActivityType,
		"intent", activityInfo.Intent,
	)
}

func (e *Exporter) SequenceFlowEvent(event *exporter.ProcessInstanceEvent, flowId string) {
	e.logger.Info("sequence flow taken",
		"eventId", event.EventId,
		"instanceKey", event.InstanceKey,
		"flowId", flowId,
	)
}
