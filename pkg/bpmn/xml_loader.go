package bpmn

import (
	"context"
	"fmt"
	"os"

	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

// LoadFromFile parses a BPMN file and registers the resulting definition
// with the engine's storage.
func (engine *Engine) LoadFromFile(ctx context.Context, filename string) (*runtime.ProcessDefinition, error) {
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load from file: %w", err)
	}
	return engine.load(ctx, xmlData, filename)
}

// LoadFromBytes parses a BPMN document and registers the resulting definition
// with the engine's storage. Loading byte-identical input again returns the
// already registered definition; different input under the same workflow code
// gets the next version number.
func (engine *Engine) LoadFromBytes(ctx context.Context, xmlData []byte) (*runtime.ProcessDefinition, error) {
	def, err := engine.load(ctx, xmlData, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load from bytes: %w", err)
	}
	return def, nil
}

func (engine *Engine) load(ctx context.Context, xmlData []byte, resourceName string) (*runtime.ProcessDefinition, error) {
	definition, err := ParseDefinition(xmlData)
	if err != nil {
		return nil, err
	}
	definition.Key = engine.generateKey()
	definition.BpmnResourceName = resourceName

	existing, err := engine.persistence.FindProcessDefinitionsById(ctx, definition.WorkflowCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions by id %s: %w", definition.WorkflowCode, err)
	}
	if len(existing) > 0 {
		latest := existing[len(existing)-1]
		if latest.BpmnChecksum == definition.BpmnChecksum {
			return &latest, nil
		}
		definition.Version = latest.Version + 1
	}

	if err := engine.persistence.SaveProcessDefinition(ctx, *definition); err != nil {
		return nil, fmt.Errorf("failed to save process definition: %w", err)
	}

	engine.exportNewProcessEvent(*definition, xmlData)
	engine.logger.Debug("definition loaded",
		"workflowCode", definition.WorkflowCode, "version", definition.Version, "key", definition.Key)
	return definition, nil
}

// FindProcessDefinitionsById returns all registered definitions with the
// given workflow code, ordered by version from 1 (first) to latest (last).
func (engine *Engine) FindProcessDefinitionsById(ctx context.Context, workflowCode string) ([]runtime.ProcessDefinition, error) {
	return engine.persistence.FindProcessDefinitionsById(ctx, workflowCode)
}
