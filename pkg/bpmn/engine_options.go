package bpmn

import (
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/procflow/procflow/internal/config"
	"github.com/procflow/procflow/pkg/bpmn/exporter"
	"github.com/procflow/procflow/pkg/storage"
)

type EngineOption = func(*Engine)

func EngineWithStorage(persistence storage.Storage) EngineOption {
	return func(engine *Engine) {
		engine.persistence = persistence
	}
}

func EngineWithName(name string) EngineOption {
	return func(engine *Engine) {
		engine.name = name
	}
}

func EngineWithExporter(exporter exporter.EventExporter) EngineOption {
	return func(engine *Engine) {
		engine.AddEventExporter(exporter)
	}
}

// EngineWithClock overrides the engine's time source; tests use it to pin
// activity instance timestamps.
func EngineWithClock(clock Clock) EngineOption {
	return func(engine *Engine) {
		engine.clock = clock
	}
}

func EngineWithLogger(logger hclog.Logger) EngineOption {
	return func(engine *Engine) {
		engine.logger = logger
	}
}

// EngineWithConfig replaces the configuration read from the environment.
func EngineWithConfig(cfg config.Engine) EngineOption {
	return func(engine *Engine) {
		engine.config = cfg
	}
}

// EngineWithMetricsRegisterer registers the engine counters with the given
// registerer instead of an engine-private registry.
func EngineWithMetricsRegisterer(reg prometheus.Registerer) EngineOption {
	return func(engine *Engine) {
		engine.metricsRegisterer = reg
	}
}
