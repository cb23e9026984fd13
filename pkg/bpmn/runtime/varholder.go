package runtime

// VarProcessInstanceId is the reserved context key carrying the key of the
// owning workflow instance. The activity executor reads it to stamp new
// activity instance rows.
const VarProcessInstanceId = "ProcessInstanceId"

// VariableHolder is the runtime context of one workflow instance: the
// caller-supplied business variables plus the reserved keys set by the
// engine. A holder may shadow a parent scope.
type VariableHolder struct {
	parent    *VariableHolder
	variables map[string]interface{}
}

// NewVariableHolder creates a new VariableHolder with a given parent and
// variables map. If variables is nil an empty map is allocated.
func NewVariableHolder(parent *VariableHolder, variables map[string]interface{}) VariableHolder {
	if variables == nil {
		variables = make(map[string]interface{})
	}
	return VariableHolder{
		parent:    parent,
		variables: variables,
	}
}

// Variables returns the effective bindings, with local entries shadowing
// parent entries.
func (vh *VariableHolder) Variables() map[string]interface{} {
	res := make(map[string]interface{})
	if vh.parent != nil {
		for k, v := range vh.parent.Variables() {
			res[k] = v
		}
	}
	for k, v := range vh.variables {
		res[k] = v
	}
	return res
}

func (vh *VariableHolder) GetVariable(key string) interface{} {
	if v, ok := vh.variables[key]; ok {
		return v
	}
	if vh.parent != nil {
		return vh.parent.GetVariable(key)
	}
	return nil
}

func (vh *VariableHolder) SetVariable(key string, val interface{}) {
	if vh.variables == nil {
		vh.variables = make(map[string]interface{})
	}
	vh.variables[key] = val
}

func (vh *VariableHolder) SetVariables(variables map[string]interface{}) {
	for k, v := range variables {
		vh.SetVariable(k, v)
	}
}

// ProcessInstanceKey reads the reserved VarProcessInstanceId binding.
func (vh *VariableHolder) ProcessInstanceKey() (int64, bool) {
	switch v := vh.GetVariable(VarProcessInstanceId).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
