package bpmn20

// ElementType classifies the BPMN elements the engine is able to interpret.
type ElementType string

const (
	ElementTypeStartEvent       ElementType = "START_EVENT"
	ElementTypeEndEvent         ElementType = "END_EVENT"
	ElementTypeUserTask         ElementType = "USER_TASK"
	ElementTypeExclusiveGateway ElementType = "EXCLUSIVE_GATEWAY"
	ElementTypeSequenceFlow     ElementType = "SEQUENCE_FLOW"
)
