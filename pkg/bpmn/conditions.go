package bpmn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/procflow/procflow/pkg/bpmn/runtime"
)

// conditionTimeLayout is the textual form substituted for time.Time variables.
const conditionTimeLayout = "2006-01-02 15:04:05"

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteVariables replaces every ${name} occurrence with the textual
// representation of the bound value: strings and timestamps are quoted, all
// other types use their default textual form. An absent key leaves the
// placeholder in place, which the compile step then rejects.
func substituteVariables(condition string, variables map[string]interface{}) string {
	return placeholderPattern.ReplaceAllStringFunc(condition, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := variables[name]
		if !ok {
			return match
		}
		return formatConditionValue(value)
	})
}

func formatConditionValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case time.Time:
		return strconv.Quote(v.Format(conditionTimeLayout))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// evaluateCondition substitutes the variables into the condition text and
// runs the result as a boolean expression. An empty condition is an
// unconditional flow and evaluates to true without touching the context.
// Every compile, run or result-type failure surfaces as a
// ConditionEvaluationError: a broken gateway condition must stop workflow
// progress rather than silently pick a default branch.
func (engine *Engine) evaluateCondition(condition string, variables map[string]interface{}) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true, nil
	}

	program, err := engine.compileCondition(substituteVariables(condition, variables))
	if err != nil {
		engine.metrics.conditionFailures.Inc()
		return false, &ConditionEvaluationError{Condition: condition, Err: err}
	}
	out, err := engine.scriptRuntime.RunProgram(program)
	if err != nil {
		engine.metrics.conditionFailures.Inc()
		return false, &ConditionEvaluationError{Condition: condition, Err: err}
	}
	result, ok := out.(bool)
	if !ok {
		engine.metrics.conditionFailures.Inc()
		return false, &ConditionEvaluationError{
			Condition: condition,
			Err:       fmt.Errorf("condition evaluated to %T, expected a boolean", out),
		}
	}
	return result, nil
}

// compileCondition compiles the substituted text as a single parenthesized
// expression, so statements and leftover placeholders fail to compile.
// Compiled programs are cached; goja programs are safe for concurrent reuse.
func (engine *Engine) compileCondition(substituted string) (*goja.Program, error) {
	if program, ok := engine.programCache.Get(substituted); ok {
		return program, nil
	}
	program, err := goja.Compile("condition", "("+substituted+")", true)
	if err != nil {
		return nil, err
	}
	engine.programCache.Add(substituted, program)
	return program, nil
}

// selectEligibleFlow walks the outgoing flows of an activity in document
// order and returns the first one whose condition holds; exactly one path is
// taken. When no flow is eligible a NoEligibleFlowError is returned.
func (engine *Engine) selectEligibleFlow(definition *runtime.ProcessDefinition, activityId string, variables map[string]interface{}) (runtime.Flow, error) {
	for _, flow := range definition.FindOutgoingFlows(activityId) {
		eligible, err := engine.evaluateCondition(flow.Condition, variables)
		if err != nil {
			return runtime.Flow{}, err
		}
		if eligible {
			return flow, nil
		}
	}
	return runtime.Flow{}, &NoEligibleFlowError{ActivityId: activityId}
}
