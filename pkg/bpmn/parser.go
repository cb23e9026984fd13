package bpmn

import (
	"crypto/md5"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

// activityTypeByElementName maps BPMN local element names onto the activity
// kinds the engine interprets. Anything else inside the process element is
// ignored by the parser.
var activityTypeByElementName = map[string]bpmn20.ElementType{
	"startEvent":       bpmn20.ElementTypeStartEvent,
	"endEvent":         bpmn20.ElementTypeEndEvent,
	"userTask":         bpmn20.ElementTypeUserTask,
	"exclusiveGateway": bpmn20.ElementTypeExclusiveGateway,
}

const elementSequenceFlow = "sequenceFlow"

// ParseDefinition converts a BPMN XML document into a ProcessDefinition.
// The parser is lenient: unknown elements and missing id/name attributes are
// tolerated. Only a document without a process element in the BPMN namespace
// fails, with a MalformedDefinitionError.
//
// Activities and flows keep their document order, so repeated parses of the
// same input yield structurally identical definitions.
func ParseDefinition(xmlData []byte) (*runtime.ProcessDefinition, error) {
	var definitions bpmn20.TDefinitions
	if err := xml.Unmarshal(xmlData, &definitions); err != nil {
		return nil, &MalformedDefinitionError{Msg: "failed to unmarshal xml data", Err: err}
	}
	if definitions.Process == nil {
		return nil, &MalformedDefinitionError{
			Msg: fmt.Sprintf("no process element found in the %s namespace", bpmn20.Namespace),
		}
	}

	process := definitions.Process
	definition := runtime.ProcessDefinition{
		WorkflowCode: process.Id,
		WorkflowName: process.Name,
		Version:      1,
		BpmnChecksum: md5.Sum(xmlData),
	}

	for _, el := range process.FlowElements {
		activityType, ok := activityTypeByElementName[el.XMLName.Local]
		if !ok {
			continue
		}
		definition.Activities = append(definition.Activities, runtime.Activity{
			Id:   el.Id,
			Name: el.Name,
			Type: activityType,
		})
	}

	for _, el := range process.FlowElements {
		if el.XMLName.Local != elementSequenceFlow {
			continue
		}
		flow := runtime.Flow{
			Id:        el.Id,
			SourceRef: el.SourceRef,
			TargetRef: el.TargetRef,
		}
		if len(el.ConditionExpression) > 0 {
			flow.Condition = strings.TrimSpace(el.ConditionExpression[0].Text)
		}
		definition.Flows = append(definition.Flows, flow)
	}

	return &definition, nil
}
