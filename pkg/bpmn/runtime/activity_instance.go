package runtime

import (
	"fmt"
	"time"

	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
)

// ActivityStatus is the persisted state of one ActivityInstance row.
// The numeric values are part of the storage contract.
//
//	NotStarted --(StartNode)--> Running --(CompleteNode)--> Completed
//	Running --(CancelNode)--> Cancelled
type ActivityStatus int32

const (
	StatusNotStarted ActivityStatus = 0
	StatusRunning    ActivityStatus = 1
	StatusCompleted  ActivityStatus = 2
	StatusCancelled  ActivityStatus = 3
)

func (s ActivityStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "NOT_STARTED"
	case StatusRunning:
		return "RUNNING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("ActivityStatus(%d)", int32(s))
}

// ActivityInstance records one execution/visit of one activity within one
// workflow run. Rows are append-only from the engine's point of view: a
// re-entered activity gets a fresh row, earlier rows are retained for audit.
type ActivityInstance struct {
	Key                 int64 // unique row key
	WorkflowInstanceKey int64 // groups all rows belonging to one run
	ActivityId          string
	ActivityType        bpmn20.ElementType // denormalized from the Activity at execution time
	ActivityName        string
	Status              ActivityStatus
	StartTime           time.Time
	EndTime             *time.Time
}
