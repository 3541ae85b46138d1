package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonckemper/linkml-rs-sub001/expr"
)

func objectInstance(fields map[string]Value) Value {
	obj := expr.NewOrderedValues()
	for k, v := range fields {
		obj.Set(k, v)
	}
	return ObjectValue(obj)
}

func TestRuleInertWhenPreconditionUnmet(t *testing.T) {
	r := NewRuleEvaluator(nil)
	ctx := newTestContext(t)

	rule := &Rule{
		Preconditions:  []*RuleCondition{{SlotName: "status", Equals: valuePtr(StringValue("active"))}},
		Postconditions: []*RuleCondition{{SlotName: "name", Presence: boolPtrLocal(true)}},
	}
	instance := objectInstance(map[string]Value{"status": StringValue("inactive")})

	issues := r.EvaluateClassRules("Person", []*Rule{rule}, instance, ctx)
	assert.Empty(t, issues)
}

func TestRuleFiresPostconditionViolation(t *testing.T) {
	r := NewRuleEvaluator(nil)
	ctx := newTestContext(t)

	rule := &Rule{
		Description:    "active people need a name",
		Preconditions:  []*RuleCondition{{SlotName: "status", Equals: valuePtr(StringValue("active"))}},
		Postconditions: []*RuleCondition{{SlotName: "name", Presence: boolPtrLocal(true)}},
	}
	instance := objectInstance(map[string]Value{"status": StringValue("active")})

	issues := r.EvaluateClassRules("Person", []*Rule{rule}, instance, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RULE_POSTCONDITION_FAILED", issues[0].Code)
	assert.Contains(t, issues[0].Message, "active people need a name")
}

func TestRuleSatisfiedPostconditionEmitsNothing(t *testing.T) {
	r := NewRuleEvaluator(nil)
	ctx := newTestContext(t)

	rule := &Rule{
		Preconditions:  []*RuleCondition{{SlotName: "status", Equals: valuePtr(StringValue("active"))}},
		Postconditions: []*RuleCondition{{SlotName: "name", Presence: boolPtrLocal(true)}},
	}
	instance := objectInstance(map[string]Value{
		"status": StringValue("active"),
		"name":   StringValue("Ada"),
	})

	issues := r.EvaluateClassRules("Person", []*Rule{rule}, instance, ctx)
	assert.Empty(t, issues)
}

func TestRuleExpressionConditionEvaluated(t *testing.T) {
	eval := expr.New()
	r := NewRuleEvaluator(eval)
	ctx := newTestContext(t)

	rule := &Rule{
		Preconditions:  []*RuleCondition{{Expression: "age > 17"}},
		Postconditions: []*RuleCondition{{SlotName: "guardian", Presence: boolPtrLocal(false)}},
	}
	instance := objectInstance(map[string]Value{
		"age":      IntValue(25),
		"guardian": StringValue("someone"),
	})

	issues := r.EvaluateClassRules("Person", []*Rule{rule}, instance, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RULE_POSTCONDITION_FAILED", issues[0].Code)
}

func TestRuleExpressionConditionWithoutEvaluatorIsFalse(t *testing.T) {
	r := NewRuleEvaluator(nil)
	ctx := newTestContext(t)

	rule := &Rule{
		Preconditions:  []*RuleCondition{{Expression: "age > 17"}},
		Postconditions: []*RuleCondition{{SlotName: "guardian", Presence: boolPtrLocal(true)}},
	}
	instance := objectInstance(map[string]Value{"age": IntValue(25)})

	issues := r.EvaluateClassRules("Person", []*Rule{rule}, instance, ctx)
	assert.Empty(t, issues, "a nil evaluator means expression conditions never hold, so the rule stays inert")
}

func valuePtr(v Value) *Value { return &v }
func boolPtrLocal(b bool) *bool { return &b }
