package script

import (
	"context"
	"sync"
	"time"
)

type Runner interface {
	Runner()
}

type RunnerFactory interface {
	NewRunner() Runner
}

// RunnerPool hands out script runners so that concurrent workflow instances
// never share a VM. The pool keeps at least min runners alive and grows up to
// max under load.
type RunnerPool struct {
	pool               chan Runner
	runnerFactory      RunnerFactory
	activeRunnersCount int
	activeRunnersMu    sync.Mutex
	maxPoolSize        int
	minPoolSize        int
}

func NewRunnerPool(ctx context.Context, runnerFactory RunnerFactory, maxPoolSize int, minPoolSize int) *RunnerPool {
	if maxPoolSize < minPoolSize {
		panic("script runner pool max size is smaller than its min size")
	}

	rp := RunnerPool{
		pool:          make(chan Runner, maxPoolSize),
		runnerFactory: runnerFactory,
		maxPoolSize:   maxPoolSize,
		minPoolSize:   minPoolSize,
	}

	for i := 0; i < minPoolSize; i++ {
		rp.activeRunnersMu.Lock()
		rp.pool <- rp.runnerFactory.NewRunner()
		rp.activeRunnersCount++
		rp.activeRunnersMu.Unlock()
	}

	// shrink back to min size every 10 minutes while idle
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for len(rp.pool) > minPoolSize {
					rp.activeRunnersMu.Lock()
					<-rp.pool
					rp.activeRunnersCount--
					rp.activeRunnersMu.Unlock()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return &rp
}

func (r *RunnerPool) Get() Runner {
	var runner Runner
	select {
	case runner = <-r.pool:
	default:
		r.activeRunnersMu.Lock()
		if r.activeRunnersCount < r.maxPoolSize {
			runner = r.runnerFactory.NewRunner()
			r.activeRunnersCount++
		}
		r.activeRunnersMu.Unlock()
		if runner == nil {
			runner = <-r.pool
		}
	}
	return runner
}

func (r *RunnerPool) Put(runner Runner) {
	select {
	case r.pool <- runner:
	default:
		// drop the runner if the pool is full
		r.activeRunnersMu.Lock()
		r.activeRunnersCount--
		r.activeRunnersMu.Unlock()
	}
}
