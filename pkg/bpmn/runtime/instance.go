package runtime

import (
	"slices"
	"time"
)

// InstanceState is the lifecycle state of one workflow run.
type InstanceState string

const (
	InstanceStateReady     InstanceState = "READY"
	InstanceStateActive    InstanceState = "ACTIVE"
	InstanceStateCompleted InstanceState = "COMPLETED"
	InstanceStateFailed    InstanceState = "FAILED"
)

// WorkflowInstance groups the activity instance rows of one run and anchors
// resumption after an externally completed user task.
type WorkflowInstance struct {
	Key            int64
	DefinitionKey  int64
	State          InstanceState
	CreatedAt      time.Time
	VariableHolder VariableHolder

	// WaitingActivityIds holds the activities the token is parked at: user
	// tasks that were reached but not yet completed, plus the last completed
	// activity of a failed step awaiting a retry. The engine advances an
	// entry as soon as its latest activity instance row is completed.
	WaitingActivityIds []string
}

func (wi *WorkflowInstance) AddWaitingActivity(activityId string) {
	if !slices.Contains(wi.WaitingActivityIds, activityId) {
		wi.WaitingActivityIds = append(wi.WaitingActivityIds, activityId)
	}
}

func (wi *WorkflowInstance) RemoveWaitingActivity(activityId string) {
	wi.WaitingActivityIds = slices.DeleteFunc(wi.WaitingActivityIds, func(id string) bool {
		return id == activityId
	})
}

func (wi *WorkflowInstance) IsWaitingFor(activityId string) bool {
	return slices.Contains(wi.WaitingActivityIds, activityId)
}

func (wi *WorkflowInstance) GetVariable(key string) interface{} {
	return wi.VariableHolder.GetVariable(key)
}

func (wi *WorkflowInstance) SetVariable(key string, value interface{}) {
	wi.VariableHolder.SetVariable(key, value)
}
