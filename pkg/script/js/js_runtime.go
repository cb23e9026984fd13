// Package js runs compiled JavaScript programs on a pool of goja VMs.
package js

import (
	"context"

	"github.com/dop251/goja"

	"github.com/procflow/procflow/pkg/script"
)

type RunnerFactory struct {
}

func (RunnerFactory) NewRunner() script.Runner {
	return newRunner()
}

type Runtime struct {
	pool *script.RunnerPool
}

func NewRuntime(ctx context.Context, maxPoolSize int, minPoolSize int) *Runtime {
	return &Runtime{
		pool: script.NewRunnerPool(ctx, RunnerFactory{}, maxPoolSize, minPoolSize),
	}
}

// RunProgram executes a compiled program on a pooled VM and returns the
// exported Go value of the result.
func (r *Runtime) RunProgram(program *goja.Program) (any, error) {
	runner := r.pool.Get()
	defer r.pool.Put(runner)

	return runner.(*Runner).runProgram(program)
}

type Runner struct {
	vm *goja.Runtime
}

func (r *Runner) Runner() {}

func newRunner() *Runner {
	return &Runner{vm: goja.New()}
}

func (r *Runner) runProgram(program *goja.Program) (any, error) {
	res, err := r.vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}
