package bpmn

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/procflow/procflow/pkg/storage/inmemory"
)

func Test_loading_identical_input_returns_the_registered_definition(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	bpmnEngine := NewEngine(EngineWithStorage(store))

	// given
	first, err := bpmnEngine.LoadFromFile(context.Background(), "./test-cases/simple-user-task.bpmn")
	assert.NoError(t, err)

	// when the same file is loaded again
	second, err := bpmnEngine.LoadFromFile(context.Background(), "./test-cases/simple-user-task.bpmn")

	// then no new version is registered
	assert.NoError(t, err)
	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, first.Version, second.Version)

	definitions, err := bpmnEngine.FindProcessDefinitionsById(context.Background(), "simple-approval")
	assert.NoError(t, err)
	assert.Len(t, definitions, 1)
}

func Test_loading_changed_input_registers_the_next_version(t *testing.T) {
	// setup
	store := inmemory.NewStorage()
	bpmnEngine := NewEngine(EngineWithStorage(store))
	xmlData, err := os.ReadFile("./test-cases/simple-user-task.bpmn")
	assert.NoError(t, err)

	// given
	first, err := bpmnEngine.LoadFromBytes(context.Background(), xmlData)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), first.Version)

	// when a modified document with the same process id is loaded
	changed := bytes.Replace(xmlData, []byte("Approve request"), []byte("Approve order"), 1)
	second, err := bpmnEngine.LoadFromBytes(context.Background(), changed)

	// then
	assert.NoError(t, err)
	assert.Equal(t, int32(2), second.Version)
	assert.NotEqual(t, first.Key, second.Key)

	definitions, err := bpmnEngine.FindProcessDefinitionsById(context.Background(), "simple-approval")
	assert.NoError(t, err)
	assert.Len(t, definitions, 2)
	assert.Equal(t, int32(1), definitions[0].Version)
	assert.Equal(t, int32(2), definitions[1].Version)
}

func Test_load_from_file_records_the_resource_name(t *testing.T) {
	// setup
	bpmnEngine := NewEngine(EngineWithStorage(inmemory.NewStorage()))

	// when
	definition, err := bpmnEngine.LoadFromFile(context.Background(), "./test-cases/simple-user-task.bpmn")

	// then
	assert.NoError(t, err)
	assert.Equal(t, "./test-cases/simple-user-task.bpmn", definition.BpmnResourceName)
}

func Test_load_from_missing_file_is_an_error(t *testing.T) {
	// setup
	bpmnEngine := NewEngine(EngineWithStorage(inmemory.NewStorage()))

	// when
	definition, err := bpmnEngine.LoadFromFile(context.Background(), "./test-cases/does-not-exist.bpmn")

	// then
	assert.Error(t, err)
	assert.Nil(t, definition)
}

func Test_load_rejects_malformed_input(t *testing.T) {
	// setup
	bpmnEngine := NewEngine(EngineWithStorage(inmemory.NewStorage()))

	// when
	_, err := bpmnEngine.LoadFromBytes(context.Background(), []byte("<unclosed"))

	// then
	var malformed *MalformedDefinitionError
	assert.ErrorAs(t, err, &malformed)
}
