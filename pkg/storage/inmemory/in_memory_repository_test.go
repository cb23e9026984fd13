package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
	"github.com/procflow/procflow/pkg/bpmn/runtime"
	"github.com/procflow/procflow/pkg/storage"
)

func Test_definitions_are_listed_by_version(t *testing.T) {
	// setup
	mem := NewStorage()

	// given versions stored out of order
	assert.NoError(t, mem.SaveProcessDefinition(context.Background(), runtime.ProcessDefinition{Key: 2, WorkflowCode: "wf", Version: 2}))
	assert.NoError(t, mem.SaveProcessDefinition(context.Background(), runtime.ProcessDefinition{Key: 1, WorkflowCode: "wf", Version: 1}))
	assert.NoError(t, mem.SaveProcessDefinition(context.Background(), runtime.ProcessDefinition{Key: 3, WorkflowCode: "other", Version: 1}))

	// when
	definitions, err := mem.FindProcessDefinitionsById(context.Background(), "wf")

	// then
	assert.NoError(t, err)
	assert.Len(t, definitions, 2)
	assert.Equal(t, int32(1), definitions[0].Version)
	assert.Equal(t, int32(2), definitions[1].Version)

	latest, err := mem.FindLatestProcessDefinitionById(context.Background(), "wf")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), latest.Version)
}

func Test_missing_definition_lookups_report_not_found(t *testing.T) {
	// setup
	mem := NewStorage()

	// when / then
	_, err := mem.FindLatestProcessDefinitionById(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = mem.FindProcessDefinitionByKey(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	definitions, err := mem.FindProcessDefinitionsById(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Len(t, definitions, 0)
}

func Test_workflow_instance_roundtrip(t *testing.T) {
	// setup
	mem := NewStorage()
	instance := runtime.WorkflowInstance{
		Key:           100,
		DefinitionKey: 1,
		State:         runtime.InstanceStateActive,
		CreatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	// when
	assert.NoError(t, mem.SaveWorkflowInstance(context.Background(), instance))
	loaded, err := mem.FindWorkflowInstanceByKey(context.Background(), 100)

	// then
	assert.NoError(t, err)
	assert.Equal(t, instance.State, loaded.State)
	assert.Equal(t, instance.CreatedAt, loaded.CreatedAt)

	_, err = mem.FindWorkflowInstanceByKey(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func Test_latest_activity_instance_is_the_newest_row(t *testing.T) {
	// setup
	mem := NewStorage()

	// given three rows for the same activity, created in order
	for key := int64(1); key <= 3; key++ {
		assert.NoError(t, mem.CreateActivityInstance(context.Background(), runtime.ActivityInstance{
			Key:                 key,
			WorkflowInstanceKey: 100,
			ActivityId:          "approve",
			ActivityType:        bpmn20.ElementTypeUserTask,
			Status:              runtime.StatusRunning,
		}))
	}

	// when
	latest, err := mem.FindLatestActivityInstance(context.Background(), 100, "approve")

	// then
	assert.NoError(t, err)
	assert.Equal(t, int64(3), latest.Key)

	_, err = mem.FindLatestActivityInstance(context.Background(), 100, "unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.FindLatestActivityInstance(context.Background(), 999, "approve")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func Test_activity_instances_keep_creation_order_per_instance(t *testing.T) {
	// setup
	mem := NewStorage()

	// given rows of two interleaved instances
	assert.NoError(t, mem.CreateActivityInstance(context.Background(), runtime.ActivityInstance{Key: 1, WorkflowInstanceKey: 100, ActivityId: "start"}))
	assert.NoError(t, mem.CreateActivityInstance(context.Background(), runtime.ActivityInstance{Key: 2, WorkflowInstanceKey: 200, ActivityId: "start"}))
	assert.NoError(t, mem.CreateActivityInstance(context.Background(), runtime.ActivityInstance{Key: 3, WorkflowInstanceKey: 100, ActivityId: "approve"}))

	// when
	rows, err := mem.FindActivityInstances(context.Background(), 100)

	// then
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "start", rows[0].ActivityId)
	assert.Equal(t, "approve", rows[1].ActivityId)
}

func Test_update_activity_instance_replaces_the_row_in_place(t *testing.T) {
	// setup
	mem := NewStorage()
	row := runtime.ActivityInstance{Key: 1, WorkflowInstanceKey: 100, ActivityId: "approve", Status: runtime.StatusRunning}
	assert.NoError(t, mem.CreateActivityInstance(context.Background(), row))

	// when
	end := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)
	row.Status = runtime.StatusCompleted
	row.EndTime = &end
	assert.NoError(t, mem.UpdateActivityInstance(context.Background(), row))

	// then
	rows, err := mem.FindActivityInstances(context.Background(), 100)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, runtime.StatusCompleted, rows[0].Status)
	assert.Equal(t, end, *rows[0].EndTime)
}

func Test_update_of_unknown_activity_instance_reports_not_found(t *testing.T) {
	// setup
	mem := NewStorage()

	// when
	err := mem.UpdateActivityInstance(context.Background(), runtime.ActivityInstance{Key: 42})

	// then
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
