package bpmn

import (
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/procflow/procflow/pkg/bpmn/exporter"
	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

// AddEventExporter registers an audit/notification sink. Exporter callbacks
// run synchronously on the engine's goroutine and must not block.
func (engine *Engine) AddEventExporter(exporter exporter.EventExporter) {
	engine.exporters = append(engine.exporters, exporter)
}

func (engine *Engine) exportNewProcessEvent(definition runtime.ProcessDefinition, xmlData []byte) {
	event := exporter.ProcessEvent{
		EventId:       uuid.NewString(),
		WorkflowCode:  definition.WorkflowCode,
		DefinitionKey: definition.Key,
		Version:       definition.Version,
		XmlData:       xmlData,
		ResourceName:  definition.BpmnResourceName,
		Checksum:      hex.EncodeToString(definition.BpmnChecksum[:]),
	}
	for _, e := range engine.exporters {
		e.NewProcessEvent(&event)
	}
}

func (engine *Engine) exportProcessInstanceEvent(definition runtime.ProcessDefinition, instance runtime.WorkflowInstance) {
	event := newProcessInstanceEvent(definition, instance)
	for _, e := range engine.exporters {
		e.NewProcessInstanceEvent(&event)
	}
}

func (engine *Engine) exportEndProcessEvent(definition runtime.ProcessDefinition, instance runtime.WorkflowInstance) {
	event := newProcessInstanceEvent(definition, instance)
	for _, e := range engine.exporters {
		e.EndProcessInstanceEvent(&event)
	}
}

func (engine *Engine) exportSequenceFlowEvent(definition runtime.ProcessDefinition, instance runtime.WorkflowInstance, flow runtime.Flow) {
	event := newProcessInstanceEvent(definition, instance)
	for _, e := range engine.exporters {
		e.SequenceFlowEvent(&event, flow.Id)
	}
}

// exportActivityEvent publishes an activity transition. Direct status
// operations reach this without a definition at hand, so the event carries
// the instance key only.
func (engine *Engine) exportActivityEvent(row runtime.ActivityInstance, intent exporter.Intent) {
	event := exporter.ProcessInstanceEvent{
		EventId:     uuid.NewString(),
		InstanceKey: row.WorkflowInstanceKey,
	}
	info := exporter.ActivityInfo{
		ActivityId:     row.ActivityId,
		ActivityType:   string(row.ActivityType),
		ActivityRowKey: row.Key,
		Intent:         intent,
	}
	for _, e := range engine.exporters {
		e.NewActivityEvent(&event, &info)
	}
}

func newProcessInstanceEvent(definition runtime.ProcessDefinition, instance runtime.WorkflowInstance) exporter.ProcessInstanceEvent {
	return exporter.ProcessInstanceEvent{
		EventId:       uuid.NewString(),
		WorkflowCode:  definition.WorkflowCode,
		DefinitionKey: definition.Key,
		Version:       definition.Version,
		InstanceKey:   instance.Key,
	}
}
