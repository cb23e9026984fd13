package bpmn

import (
	"context"
	"errors"
	"fmt"

	"github.com/procflow/procflow/pkg/bpmn/exporter"
	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
	"github.com/procflow/procflow/pkg/bpmn/runtime"
	"github.com/procflow/procflow/pkg/storage"
)

// ActivityExecutor performs the type-specific side effect of one activity and
// owns every activity instance row it writes. Besides Execute it exposes the
// direct status operations used by external callers, e.g. to close a user
// task from an approval application.
type ActivityExecutor struct {
	engine *Engine
}

// Execute appends exactly one new activity instance row for the given
// activity. StartEvent and EndEvent are instantaneous markers: their row is
// created already completed with StartTime == EndTime. UserTask and
// ExclusiveGateway rows are created running and need an explicit
// CompleteNode later. The owning workflow instance is read from the reserved
// ProcessInstanceId context variable.
func (x *ActivityExecutor) Execute(ctx context.Context, activity runtime.Activity, vars *runtime.VariableHolder) (runtime.ActivityInstance, error) {
	instanceKey, ok := vars.ProcessInstanceKey()
	if !ok {
		return runtime.ActivityInstance{}, newEngineErrorf("runtime context is missing an int64 %s variable", runtime.VarProcessInstanceId)
	}

	now := x.engine.clock.Now()
	row := runtime.ActivityInstance{
		Key:                 x.engine.generateKey(),
		WorkflowInstanceKey: instanceKey,
		ActivityId:          activity.Id,
		ActivityType:        activity.Type,
		ActivityName:        activity.Name,
		StartTime:           now,
	}
	switch activity.Type {
	case bpmn20.ElementTypeStartEvent, bpmn20.ElementTypeEndEvent:
		end := now
		row.Status = runtime.StatusCompleted
		row.EndTime = &end
	case bpmn20.ElementTypeUserTask, bpmn20.ElementTypeExclusiveGateway:
		row.Status = runtime.StatusRunning
	default:
		return runtime.ActivityInstance{}, &UnsupportedActivityTypeError{ActivityType: string(activity.Type)}
	}

	if err := x.engine.persistence.CreateActivityInstance(ctx, row); err != nil {
		return runtime.ActivityInstance{}, fmt.Errorf("failed to create activity instance for %s: %w", activity.Id, err)
	}

	x.engine.logger.Debug("activity executed",
		"instanceKey", instanceKey, "activityId", activity.Id,
		"type", activity.Type, "status", row.Status.String())
	x.engine.exportActivityEvent(row, exporter.ActivityActivated)
	if row.Status == runtime.StatusCompleted {
		x.engine.exportActivityEvent(row, exporter.ActivityCompleted)
	}
	x.engine.metrics.activitiesExecuted.WithLabelValues(string(activity.Type)).Inc()
	return row, nil
}

// GetNodeStatus reports the status of the newest row recorded for the given
// activity id, or StatusNotStarted when the activity was never reached.
func (x *ActivityExecutor) GetNodeStatus(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityStatus, error) {
	row, err := x.engine.persistence.FindLatestActivityInstance(ctx, instanceKey, activityId)
	if errors.Is(err, storage.ErrNotFound) {
		return runtime.StatusNotStarted, nil
	}
	if err != nil {
		return runtime.StatusNotStarted, fmt.Errorf("failed to find activity instance for %s: %w", activityId, err)
	}
	return row.Status, nil
}

// StartNode moves a not-started row to running. Rows created by Execute are
// never in the not-started state, so in practice this reports the current
// status; it exists for store implementations that pre-create rows.
func (x *ActivityExecutor) StartNode(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityStatus, error) {
	return x.transition(ctx, instanceKey, activityId, runtime.StatusNotStarted, runtime.StatusRunning, exporter.ActivityActivated)
}

// CompleteNode closes a running row, setting its end time. Called by the
// engine right after an exclusive gateway picked a branch, and by external
// callers when a human finished a user task.
func (x *ActivityExecutor) CompleteNode(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityStatus, error) {
	return x.transition(ctx, instanceKey, activityId, runtime.StatusRunning, runtime.StatusCompleted, exporter.ActivityCompleted)
}

// CancelNode cancels a running row, setting its end time.
func (x *ActivityExecutor) CancelNode(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityStatus, error) {
	return x.transition(ctx, instanceKey, activityId, runtime.StatusRunning, runtime.StatusCancelled, exporter.ActivityCancelled)
}

// transition applies one edge of the activity state machine to the newest row
// of the given activity id. When no row exists, StatusNotStarted is reported
// and no row is created. A row outside the expected source state is left
// untouched and its current status reported.
func (x *ActivityExecutor) transition(ctx context.Context, instanceKey int64, activityId string, from runtime.ActivityStatus, to runtime.ActivityStatus, intent exporter.Intent) (runtime.ActivityStatus, error) {
	row, err := x.engine.persistence.FindLatestActivityInstance(ctx, instanceKey, activityId)
	if errors.Is(err, storage.ErrNotFound) {
		return runtime.StatusNotStarted, nil
	}
	if err != nil {
		return runtime.StatusNotStarted, fmt.Errorf("failed to find activity instance for %s: %w", activityId, err)
	}
	if row.Status != from {
		return row.Status, nil
	}

	now := x.engine.clock.Now()
	row.Status = to
	switch to {
	case runtime.StatusRunning:
		row.StartTime = now
	case runtime.StatusCompleted, runtime.StatusCancelled:
		row.EndTime = &now
	}
	if err := x.engine.persistence.UpdateActivityInstance(ctx, row); err != nil {
		return row.Status, fmt.Errorf("failed to update activity instance for %s: %w", activityId, err)
	}

	x.engine.logger.Debug("activity transition",
		"instanceKey", instanceKey, "activityId", activityId, "status", row.Status.String())
	x.engine.exportActivityEvent(row, intent)
	return row.Status, nil
}
