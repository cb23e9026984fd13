package bpmn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	instancesStarted   prometheus.Counter
	instancesCompleted prometheus.Counter
	instancesFailed    prometheus.Counter
	activitiesExecuted *prometheus.CounterVec
	conditionFailures  prometheus.Counter
}

// newEngineMetrics registers the engine counters with the given registerer.
// Each engine defaults to its own registry, so multiple engines in one
// process do not collide; pass prometheus.DefaultRegisterer to expose the
// counters on the process-wide registry.
func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	factory := promauto.With(reg)
	return &engineMetrics{
		instancesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_workflow_instances_started_total",
			Help: "Number of workflow instances created.",
		}),
		instancesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_workflow_instances_completed_total",
			Help: "Number of workflow instances that reached an end event.",
		}),
		instancesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_workflow_instances_failed_total",
			Help: "Number of workflow instances that failed fatally.",
		}),
		activitiesExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_activities_executed_total",
			Help: "Number of executed activities by activity type.",
		}, []string{"activity_type"}),
		conditionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_condition_evaluation_failures_total",
			Help: "Number of flow conditions that failed to compile or evaluate.",
		}),
	}
}
