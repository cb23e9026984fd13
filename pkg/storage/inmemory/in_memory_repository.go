// Package inmemory keeps all engine state in maps. It backs the engine in
// tests and in embedded setups that do not need durability.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/procflow/procflow/pkg/bpmn/runtime"
	"github.com/procflow/procflow/pkg/storage"
)

// Storage keeps process information in memory,
// please use NewStorage to create a new object of this type.
type Storage struct {
	mu                 sync.RWMutex
	ProcessDefinitions map[int64]runtime.ProcessDefinition
	WorkflowInstances  map[int64]runtime.WorkflowInstance
	ActivityInstances  map[int64]runtime.ActivityInstance
	activityOrder      []int64 // row keys in creation order
}

func NewStorage() *Storage {
	return &Storage{
		ProcessDefinitions: make(map[int64]runtime.ProcessDefinition),
		WorkflowInstances:  make(map[int64]runtime.WorkflowInstance),
		ActivityInstances:  make(map[int64]runtime.ActivityInstance),
	}
}

var _ storage.Storage = &Storage{}

func (mem *Storage) FindProcessDefinitionsById(ctx context.Context, workflowCode string) ([]runtime.ProcessDefinition, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res := make([]runtime.ProcessDefinition, 0)
	for _, def := range mem.ProcessDefinitions {
		if def.WorkflowCode != workflowCode {
			continue
		}
		res = append(res, def)
	}
	slices.SortFunc(res, func(a, b runtime.ProcessDefinition) int {
		return int(a.Version - b.Version)
	})
	return res, nil
}

func (mem *Storage) FindLatestProcessDefinitionById(ctx context.Context, workflowCode string) (runtime.ProcessDefinition, error) {
	var res runtime.ProcessDefinition
	found := false
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	for _, def := range mem.ProcessDefinitions {
		if def.WorkflowCode != workflowCode {
			continue
		}
		if found && def.Version < res.Version {
			continue
		}
		found = true
		res = def
	}
	if !found {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindProcessDefinitionByKey(ctx context.Context, definitionKey int64) (runtime.ProcessDefinition, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res, ok := mem.ProcessDefinitions[definitionKey]
	if !ok {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) SaveProcessDefinition(ctx context.Context, definition runtime.ProcessDefinition) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.ProcessDefinitions[definition.Key] = definition
	return nil
}

func (mem *Storage) FindWorkflowInstanceByKey(ctx context.Context, instanceKey int64) (runtime.WorkflowInstance, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res, ok := mem.WorkflowInstances[instanceKey]
	if !ok {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) SaveWorkflowInstance(ctx context.Context, instance runtime.WorkflowInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	mem.WorkflowInstances[instance.Key] = instance
	return nil
}

func (mem *Storage) FindLatestActivityInstance(ctx context.Context, instanceKey int64, activityId string) (runtime.ActivityInstance, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	var res runtime.ActivityInstance
	found := false
	for _, key := range mem.activityOrder {
		row := mem.ActivityInstances[key]
		if row.WorkflowInstanceKey != instanceKey || row.ActivityId != activityId {
			continue
		}
		res = row
		found = true
	}
	if !found {
		return res, storage.ErrNotFound
	}
	return res, nil
}

func (mem *Storage) FindActivityInstances(ctx context.Context, instanceKey int64) ([]runtime.ActivityInstance, error) {
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	res := make([]runtime.ActivityInstance, 0)
	for _, key := range mem.activityOrder {
		row := mem.ActivityInstances[key]
		if row.WorkflowInstanceKey != instanceKey {
			continue
		}
		res = append(res, row)
	}
	return res, nil
}

func (mem *Storage) CreateActivityInstance(ctx context.Context, instance runtime.ActivityInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if _, exists := mem.ActivityInstances[instance.Key]; !exists {
		mem.activityOrder = append(mem.activityOrder, instance.Key)
	}
	mem.ActivityInstances[instance.Key] = instance
	return nil
}

func (mem *Storage) UpdateActivityInstance(ctx context.Context, instance runtime.ActivityInstance) error {
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if _, exists := mem.ActivityInstances[instance.Key]; !exists {
		return storage.ErrNotFound
	}
	mem.ActivityInstances[instance.Key] = instance
	return nil
}
