// Package bpmn implements the workflow execution core: it turns a parsed
// process definition into a running instance that advances through
// activities, evaluates branching conditions and records the state of every
// activity it touches. Persistence and audit are external collaborators, see
// the storage and exporter packages.
package bpmn

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bwmarrin/snowflake"
	"github.com/dop251/goja"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/procflow/procflow/internal/config"
	"github.com/procflow/procflow/pkg/bpmn/exporter"
	"github.com/procflow/procflow/pkg/bpmn/model/bpmn20"
	"github.com/procflow/procflow/pkg/bpmn/runtime"
	"github.com/procflow/procflow/pkg/script/js"
	"github.com/procflow/procflow/pkg/storage"
)

type Engine struct {
	name              string
	config            config.Engine
	persistence       storage.Storage
	exporters         []exporter.EventExporter
	snowflake         *snowflake.Node
	clock             Clock
	logger            hclog.Logger
	executor          *ActivityExecutor
	scriptRuntime     *js.Runtime
	programCache      *lru.Cache[string, *goja.Program]
	metrics           *engineMetrics
	metricsRegisterer prometheus.Registerer
}

// NewEngine creates a new instance of the workflow engine. Configuration is
// read from the environment unless EngineWithConfig overrides it; an engine
// without EngineWithStorage is only useful for parsing.
func NewEngine(options ...EngineOption) *Engine {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	engine := &Engine{
		name:      fmt.Sprintf("procflow-engine-%d", getGlobalSnowflakeIdGenerator().Generate().Int64()),
		config:    cfg,
		exporters: []exporter.EventExporter{},
		snowflake: getGlobalSnowflakeIdGenerator(),
		clock:     systemClock{},
	}

	for _, option := range options {
		option(engine)
	}

	if engine.logger == nil {
		engine.logger = hclog.New(&hclog.LoggerOptions{
			Name:  "engine",
			Level: hclog.LevelFromString(engine.config.LogLevel),
		})
	}
	if engine.metricsRegisterer == nil {
		engine.metricsRegisterer = prometheus.NewRegistry()
	}
	engine.metrics = newEngineMetrics(engine.metricsRegisterer)

	cache, err := lru.New[string, *goja.Program](engine.config.ExpressionCacheSize)
	if err != nil {
		panic("can't initialize the condition program cache. Message: " + err.Error())
	}
	engine.programCache = cache
	engine.scriptRuntime = js.NewRuntime(context.Background(), engine.config.ScriptPoolMaxSize, engine.config.ScriptPoolMinSize)
	engine.executor = &ActivityExecutor{engine: engine}

	return engine
}

// Name returns the name of the engine, only useful in case you control multiple ones.
func (engine *Engine) Name() string {
	return engine.name
}

// Executor exposes the activity executor for direct status operations,
// e.g. completing a user task from the surrounding application.
func (engine *Engine) Executor() *ActivityExecutor {
	return engine.executor
}

// CreateInstance creates a new workflow instance for the given definition.
// The provided variableContext can be nil or refer to a variable map which is
// consulted by every flow condition; the reserved ProcessInstanceId variable
// is set by the engine.
func (engine *Engine) CreateInstance(ctx context.Context, definition *runtime.ProcessDefinition, variableContext map[string]interface{}) (*runtime.WorkflowInstance, error) {
	instance := runtime.WorkflowInstance{
		Key:            engine.generateKey(),
		DefinitionKey:  definition.Key,
		State:          runtime.InstanceStateReady,
		CreatedAt:      engine.clock.Now(),
		VariableHolder: runtime.NewVariableHolder(nil, variableContext),
	}
	instance.VariableHolder.SetVariable(runtime.VarProcessInstanceId, instance.Key)

	if err := engine.persistence.SaveWorkflowInstance(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to save workflow instance %d: %w", instance.Key, err)
	}
	engine.exportProcessInstanceEvent(*definition, instance)
	engine.metrics.instancesStarted.Inc()
	return &instance, nil
}

// CreateInstanceById creates a new instance for the latest version of the
// workflow with the given code. Might return an EngineError when no such
// workflow was loaded into the engine.
func (engine *Engine) CreateInstanceById(ctx context.Context, workflowCode string, variableContext map[string]interface{}) (*runtime.WorkflowInstance, error) {
	definition, err := engine.persistence.FindLatestProcessDefinitionById(ctx, workflowCode)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("no workflow with code=%s was found (prior loaded into the engine)", workflowCode), err)
	}
	return engine.CreateInstance(ctx, &definition, variableContext)
}

// CreateAndRunInstance creates a new instance for the definition with the
// given key and advances it immediately, until it completes or pauses at a
// user task. The instance is returned alongside any error so partial
// progress stays inspectable.
func (engine *Engine) CreateAndRunInstance(ctx context.Context, definitionKey int64, variableContext map[string]interface{}) (*runtime.WorkflowInstance, error) {
	definition, err := engine.persistence.FindProcessDefinitionByKey(ctx, definitionKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to load workflow definition with key: %d", definitionKey), err)
	}
	instance, err := engine.CreateInstance(ctx, &definition, variableContext)
	if err != nil {
		return nil, err
	}
	return instance, engine.run(ctx, &definition, instance)
}

// CreateAndRunInstanceById is CreateAndRunInstance against the latest version
// of the workflow with the given code.
func (engine *Engine) CreateAndRunInstanceById(ctx context.Context, workflowCode string, variableContext map[string]interface{}) (*runtime.WorkflowInstance, error) {
	instance, err := engine.CreateInstanceById(ctx, workflowCode, variableContext)
	if err != nil {
		return nil, err
	}
	definition, err := engine.persistence.FindProcessDefinitionByKey(ctx, instance.DefinitionKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to load workflow definition with key: %d", instance.DefinitionKey), err)
	}
	return instance, engine.run(ctx, &definition, instance)
}

// RunOrContinueInstance runs or continues the instance with the given key:
// a fresh instance starts at its start event, an active one advances every
// waiting user task whose latest activity instance row was completed out of
// band. Completed and failed instances are returned unchanged.
func (engine *Engine) RunOrContinueInstance(ctx context.Context, instanceKey int64) (*runtime.WorkflowInstance, error) {
	instance, err := engine.persistence.FindWorkflowInstanceByKey(ctx, instanceKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to find workflow instance with key: %d", instanceKey), err)
	}
	if instance.State == runtime.InstanceStateCompleted || instance.State == runtime.InstanceStateFailed {
		return &instance, nil
	}
	definition, err := engine.persistence.FindProcessDefinitionByKey(ctx, instance.DefinitionKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to load workflow definition with key: %d", instance.DefinitionKey), err)
	}
	return &instance, engine.run(ctx, &definition, &instance)
}

// CompleteUserTask closes a waiting user task, merges the given variables
// into the instance context and advances the instance. It is the one-call
// form of executor.CompleteNode followed by RunOrContinueInstance.
func (engine *Engine) CompleteUserTask(ctx context.Context, instanceKey int64, activityId string, variables map[string]interface{}) (*runtime.WorkflowInstance, error) {
	instance, err := engine.persistence.FindWorkflowInstanceByKey(ctx, instanceKey)
	if err != nil {
		return nil, errors.Join(newEngineErrorf("failed to find workflow instance with key: %d", instanceKey), err)
	}
	if !instance.IsWaitingFor(activityId) {
		return nil, newEngineErrorf("workflow instance %d is not waiting for activity %s", instanceKey, activityId)
	}
	status, err := engine.executor.CompleteNode(ctx, instanceKey, activityId)
	if err != nil {
		return nil, err
	}
	if status != runtime.StatusCompleted {
		return nil, newEngineErrorf("activity %s of instance %d could not be completed, status is %s", activityId, instanceKey, status)
	}
	if len(variables) > 0 {
		instance.VariableHolder.SetVariables(variables)
		if err := engine.persistence.SaveWorkflowInstance(ctx, instance); err != nil {
			return nil, fmt.Errorf("failed to save workflow instance %d: %w", instanceKey, err)
		}
	}
	return engine.RunOrContinueInstance(ctx, instanceKey)
}

// FindWorkflowInstance searches for a given instance key and returns the
// corresponding instance state.
func (engine *Engine) FindWorkflowInstance(ctx context.Context, instanceKey int64) (runtime.WorkflowInstance, error) {
	return engine.persistence.FindWorkflowInstanceByKey(ctx, instanceKey)
}

func (engine *Engine) run(ctx context.Context, definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance) error {
	var commandQueue []command

	switch instance.State {
	case runtime.InstanceStateReady:
		startEvents := definition.FindStartEvents()
		if len(startEvents) != 1 {
			return engine.failInstance(ctx, definition, instance, &InvalidDefinitionError{
				Msg: fmt.Sprintf("workflow %s must declare exactly one start event, found %d", definition.WorkflowCode, len(startEvents)),
			})
		}
		instance.State = runtime.InstanceStateActive
		commandQueue = append(commandQueue, activityCommand{activity: startEvents[0]})
	case runtime.InstanceStateActive:
		// user tasks closed by an external CompleteNode resume here; the
		// waiting entry is only consumed once its continuation succeeded
		for _, activityId := range slices.Clone(instance.WaitingActivityIds) {
			status, err := engine.executor.GetNodeStatus(ctx, instance.Key, activityId)
			if err != nil {
				return err
			}
			switch status {
			case runtime.StatusCompleted:
				activity, ok := definition.FindActivityById(activityId)
				if !ok {
					return engine.failInstance(ctx, definition, instance, &InvalidDefinitionError{
						Msg: fmt.Sprintf("waiting activity %q does not exist in workflow %s", activityId, definition.WorkflowCode),
					})
				}
				commandQueue = append(commandQueue, continueActivityCommand{activity: activity})
			case runtime.StatusCancelled:
				instance.RemoveWaitingActivity(activityId)
			}
		}
	default:
		return nil
	}

	// *** MAIN LOOP ***
	for len(commandQueue) > 0 {
		cmd := commandQueue[0]
		commandQueue = commandQueue[1:]

		var nextCommands []command
		var err error
		switch tCmd := cmd.(type) {
		case activityCommand:
			nextCommands, err = engine.handleActivity(ctx, definition, instance, tCmd.activity)
		case continueActivityCommand:
			nextCommands, err = engine.advanceActivity(definition, instance, tCmd.activity)
			if err == nil {
				instance.RemoveWaitingActivity(tCmd.activity.Id)
			}
		case flowTransitionCommand:
			nextCommands, err = engine.handleFlowTransition(definition, instance, tCmd)
		default:
			panic("[invariant check] command type check not fully implemented")
		}
		if err != nil {
			return engine.stepFailed(ctx, definition, instance, cmd, err)
		}
		commandQueue = append(commandQueue, nextCommands...)
	}

	if err := engine.persistence.SaveWorkflowInstance(ctx, *instance); err != nil {
		return fmt.Errorf("failed to save workflow instance %d: %w", instance.Key, err)
	}
	if instance.State == runtime.InstanceStateCompleted {
		engine.metrics.instancesCompleted.Inc()
		engine.exportEndProcessEvent(*definition, *instance)
		engine.logger.Debug("workflow instance completed", "instanceKey", instance.Key)
	}
	return nil
}

func (engine *Engine) handleActivity(ctx context.Context, definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, activity runtime.Activity) ([]command, error) {
	if _, err := engine.executor.Execute(ctx, activity, &instance.VariableHolder); err != nil {
		return nil, err
	}

	switch activity.Type {
	case bpmn20.ElementTypeEndEvent:
		// the instance closes once the single token reached an end event and
		// nothing is still waiting
		if len(instance.WaitingActivityIds) == 0 {
			instance.State = runtime.InstanceStateCompleted
		}
		return nil, nil
	case bpmn20.ElementTypeUserTask:
		// pause here; an external CompleteNode plus a fresh engine invocation
		// moves the token onward
		instance.AddWaitingActivity(activity.Id)
		return nil, nil
	case bpmn20.ElementTypeExclusiveGateway:
		flow, err := engine.selectEligibleFlow(definition, activity.Id, instance.VariableHolder.Variables())
		if err != nil {
			return nil, err
		}
		// a gateway closes as soon as its branch is chosen
		if _, err := engine.executor.CompleteNode(ctx, instance.Key, activity.Id); err != nil {
			return nil, err
		}
		return []command{flowTransitionCommand{sourceActivity: activity, flow: flow}}, nil
	default:
		return engine.advanceActivity(definition, instance, activity)
	}
}

// advanceActivity selects the outgoing flow of an already completed activity.
func (engine *Engine) advanceActivity(definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, activity runtime.Activity) ([]command, error) {
	flow, err := engine.selectEligibleFlow(definition, activity.Id, instance.VariableHolder.Variables())
	if err != nil {
		return nil, err
	}
	return []command{flowTransitionCommand{sourceActivity: activity, flow: flow}}, nil
}

func (engine *Engine) handleFlowTransition(definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, cmd flowTransitionCommand) ([]command, error) {
	target, ok := definition.FindActivityById(cmd.flow.TargetRef)
	if !ok {
		return nil, &InvalidDefinitionError{
			Msg: fmt.Sprintf("sequence flow %q out of activity %q targets unknown activity %q",
				cmd.flow.Id, cmd.sourceActivity.Id, cmd.flow.TargetRef),
		}
	}
	engine.exportSequenceFlowEvent(*definition, *instance, cmd.flow)
	return []command{activityCommand{activity: target, sourceFlowId: cmd.flow.Id}}, nil
}

// stepFailed persists partial progress and classifies the failure:
// structural and unsupported-type errors are fatal to the whole instance,
// everything else (condition failures, missing eligible flows, store
// failures) is fatal to the current step only. On the step-local path the
// last completed activity is parked on the waiting set, so a fresh
// invocation with corrected variables redoes the flow selection from there.
// Nothing is retried automatically and completed prior steps stay in place
// for audit.
func (engine *Engine) stepFailed(ctx context.Context, definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, cmd command, err error) error {
	var unsupported *UnsupportedActivityTypeError
	var invalid *InvalidDefinitionError
	if errors.As(err, &unsupported) || errors.As(err, &invalid) {
		return engine.failInstance(ctx, definition, instance, err)
	}

	if anchor, ok := engine.retryAnchor(ctx, definition, instance, cmd); ok {
		instance.AddWaitingActivity(anchor)
	}
	engine.logger.Warn("workflow step failed", "instanceKey", instance.Key, "error", err)
	if saveErr := engine.persistence.SaveWorkflowInstance(ctx, *instance); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	return err
}

// retryAnchor picks the activity a retry continues from after a step
// failure: the nearest activity whose latest row is already completed.
// For a failed continuation that is the continued activity itself; for a
// failed activity step it is either the activity (when only its flow
// selection failed) or the source of the flow that reached it.
func (engine *Engine) retryAnchor(ctx context.Context, definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, cmd command) (string, bool) {
	switch tCmd := cmd.(type) {
	case continueActivityCommand:
		return tCmd.activity.Id, true
	case activityCommand:
		status, err := engine.executor.GetNodeStatus(ctx, instance.Key, tCmd.activity.Id)
		if err == nil && status == runtime.StatusCompleted {
			return tCmd.activity.Id, true
		}
		if tCmd.sourceFlowId == "" {
			return "", false
		}
		for _, flow := range definition.Flows {
			if flow.Id == tCmd.sourceFlowId {
				return flow.SourceRef, true
			}
		}
	}
	return "", false
}

func (engine *Engine) failInstance(ctx context.Context, definition *runtime.ProcessDefinition, instance *runtime.WorkflowInstance, err error) error {
	instance.State = runtime.InstanceStateFailed
	engine.metrics.instancesFailed.Inc()
	engine.logger.Error("workflow instance failed", "instanceKey", instance.Key, "error", err)
	if saveErr := engine.persistence.SaveWorkflowInstance(ctx, *instance); saveErr != nil {
		return errors.Join(err, saveErr)
	}
	engine.exportEndProcessEvent(*definition, *instance)
	return err
}
