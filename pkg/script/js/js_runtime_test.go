package js

import (
	"context"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
)

func Test_run_program_exports_the_result(t *testing.T) {
	// setup
	runtime := NewRuntime(context.Background(), 2, 1)
	program, err := goja.Compile("test", "(1 + 2)", true)
	assert.NoError(t, err)

	// when
	out, err := runtime.RunProgram(program)

	// then
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out)
}

func Test_run_program_surfaces_runtime_errors(t *testing.T) {
	// setup
	runtime := NewRuntime(context.Background(), 2, 1)
	program, err := goja.Compile("test", "undefinedReference.field", true)
	assert.NoError(t, err)

	// when
	out, err := runtime.RunProgram(program)

	// then
	assert.Error(t, err)
	assert.Nil(t, out)
}

func Test_pooled_vms_share_no_state(t *testing.T) {
	// setup
	runtime := NewRuntime(context.Background(), 1, 1)
	boolProgram, err := goja.Compile("test", "(true)", true)
	assert.NoError(t, err)

	// when the same single VM runs many programs
	for i := 0; i < 10; i++ {
		out, err := runtime.RunProgram(boolProgram)
		assert.NoError(t, err)
		assert.Equal(t, true, out)
	}
}
