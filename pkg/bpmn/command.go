package bpmn

import (
	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

type command interface {
}

// ---------------------------------------------------------------------

// activityCommand asks the engine to execute the given activity.
// sourceFlowId names the flow that reached it and anchors the retry
// bookkeeping when the step fails.
type activityCommand struct {
	activity     runtime.Activity
	sourceFlowId string
}

// ---------------------------------------------------------------------

// continueActivityCommand advances an activity that was already executed and
// completed out of band, i.e. a user task closed by an external CompleteNode.
type continueActivityCommand struct {
	activity runtime.Activity
}

// ---------------------------------------------------------------------

// flowTransitionCommand moves the token over a selected sequence flow.
type flowTransitionCommand struct {
	sourceActivity runtime.Activity
	flow           runtime.Flow
}
