package bpmn

import "fmt"

// MalformedDefinitionError marks unparseable or structurally incomplete BPMN
// input. Not recoverable; surfaced to the caller who supplied the definition.
type MalformedDefinitionError struct {
	Msg string
	Err error
}

func (e *MalformedDefinitionError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *MalformedDefinitionError) Unwrap() error {
	return e.Err
}

// InvalidDefinitionError marks a structural invariant violation, e.g. no
// start event or a flow targeting an unknown activity. Fatal before or during
// execution of the instance.
type InvalidDefinitionError struct {
	Msg string
}

func (e *InvalidDefinitionError) Error() string {
	return e.Msg
}

// UnsupportedActivityTypeError is raised when a definition references an
// activity kind the executor does not implement. An unrecognized node type
// means the definition cannot be safely interpreted, so this is a hard stop.
type UnsupportedActivityTypeError struct {
	ActivityType string
}

func (e *UnsupportedActivityTypeError) Error() string {
	return fmt.Sprintf("unsupported activity type %q", e.ActivityType)
}

// ConditionEvaluationError wraps a flow condition that failed to compile or
// evaluate after variable substitution. It carries the original condition
// text so a broken gateway can be corrected by hand.
type ConditionEvaluationError struct {
	Condition string
	Err       error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate condition %q: %v", e.Condition, e.Err)
}

func (e *ConditionEvaluationError) Unwrap() error {
	return e.Err
}

// NoEligibleFlowError is raised when no outgoing flow of an activity
// evaluates to true. It signals a definition or data defect; the caller
// likely needs to supply missing context variables or fix the definition.
type NoEligibleFlowError struct {
	ActivityId string
}

func (e *NoEligibleFlowError) Error() string {
	return fmt.Sprintf("no outgoing flow of activity %q is eligible", e.ActivityId)
}

type EngineError struct {
	Msg string
}

func (e *EngineError) Error() string {
	return e.Msg
}

// newEngineErrorf uses fmt.Sprintf(format, a...) to format the message
func newEngineErrorf(format string, a ...interface{}) error {
	return &EngineError{
		Msg: fmt.Sprintf(format, a...),
	}
}
