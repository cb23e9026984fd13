// Package storage defines the persistence collaborators of the workflow
// engine. Implementations are expected to provide read-your-writes
// consistency for the keys they just wrote; the engine does not implement
// its own locking on top.
package storage

import (
	"context"
	"errors"

	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

var ErrNotFound = errors.New("not found")

type ProcessDefinitionStorageReader interface {
	// FindProcessDefinitionsById returns zero or many registered definitions
	// with the given workflow code, ordered by version number ascending.
	FindProcessDefinitionsById(ctx context.Context, workflowCode string) ([]runtime.ProcessDefinition, error)

	// FindLatestProcessDefinitionById returns the definition with the highest
	// version for the given workflow code.
	FindLatestProcessDefinitionById(ctx context.Context, workflowCode string) (runtime.ProcessDefinition, error)

	FindProcessDefinitionByKey(ctx context.Context, definitionKey int64) (runtime.ProcessDefinition, error)
}

type ProcessDefinitionStorageWriter interface {
	// SaveProcessDefinition persists a definition and potentially overwrites
	// prior data stored with the same key.
	SaveProcessDefinition(ctx context.Context, definition runtime.ProcessDefinition) error
}

type WorkflowInstanceStorageReader interface {
	FindWorkflowInstanceByKey(ctx context.Context, instanceKey int64) (runtime.WorkflowInstance, error)
}

type WorkflowInstanceStorageWriter interface {
	SaveWorkflowInstance(ctx context.Context, instance runtime.WorkflowInstance) error
}

type ActivityInstanceStorageReader interface {
	// FindLatestActivityInstance returns the newest row recorded for the
	// given activity id within one workflow instance, or ErrNotFound when the
	// activity was never reached.
	FindLatestActivityInstance(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityInstance, error)

	// FindActivityInstances returns every row of one workflow instance in
	// creation order.
	FindActivityInstances(ctx context.Context, instanceKey int64) ([]runtime.ActivityInstance, error)
}

type ActivityInstanceStorageWriter interface {
	// CreateActivityInstance appends a new row. Rows are never replaced:
	// re-executing an activity creates a second, independent row.
	CreateActivityInstance(ctx context.Context, instance runtime.ActivityInstance) error

	// UpdateActivityInstance overwrites the row with the same Key.
	UpdateActivityInstance(ctx context.Context, instance runtime.ActivityInstance) error
}

// Storage is the full persistence surface consumed by the engine.
type Storage interface {
	ProcessDefinitionStorageReader
	ProcessDefinitionStorageWriter
	WorkflowInstanceStorageReader
	WorkflowInstanceStorageWriter
	ActivityInstanceStorageReader
	ActivityInstanceStorageWriter
}
