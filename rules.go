package linkml

import (
	"github.com/simonckemper/linkml-rs-sub001/expr"
)

// RuleEvaluator evaluates a class's pre/postcondition rules against an
// instance, integrating the expression evaluator (C1) for free-form
// expression conditions. Conditions are either a slot-shaped
// presence/equality predicate or a free-form dotted-path expression.
type RuleEvaluator struct {
	Eval *expr.Evaluator
}

// NewRuleEvaluator returns a RuleEvaluator using eval for expression
// conditions (eval may be nil if the rules evaluated use only slot-shaped
// predicates; with a nil eval, expression conditions never hold).
func NewRuleEvaluator(eval *expr.Evaluator) *RuleEvaluator {
	return &RuleEvaluator{Eval: eval}
}

// EvaluateClassRules checks every rule on class: if all preconditions
// hold, all postconditions must hold too; otherwise the rule is inert. A
// violated rule emits one RULE_POSTCONDITION_FAILED error referencing the
// class and rule description.
func (r *RuleEvaluator) EvaluateClassRules(className string, rules []*Rule, instance Value, ctx *ValidationContext) []Issue {
	var issues []Issue
	for _, rule := range rules {
		if !r.allHold(rule.Preconditions, instance) {
			continue
		}
		if !r.allHold(rule.Postconditions, instance) {
			issues = append(issues, Issue{
				Severity:  SeverityError,
				Message:   ruleFailureMessage(className, rule),
				Path:      ctx.CurrentPath(),
				Validator: "RuleEvaluator",
				Code:      "RULE_POSTCONDITION_FAILED",
				Context:   map[string]any{"class": className},
			})
		}
	}
	return issues
}

func ruleFailureMessage(className string, rule *Rule) string {
	if rule.Description != "" {
		return "rule violated on class " + className + ": " + rule.Description
	}
	return "rule violated on class " + className
}

func (r *RuleEvaluator) allHold(conditions []*RuleCondition, instance Value) bool {
	for _, cond := range conditions {
		if !r.holds(cond, instance) {
			return false
		}
	}
	return true
}

func (r *RuleEvaluator) holds(cond *RuleCondition, instance Value) bool {
	if cond.Expression != "" {
		return r.evalExpressionCondition(cond.Expression, instance)
	}

	fieldValue, present := lookupField(instance, cond.SlotName)

	if cond.Presence != nil {
		if *cond.Presence {
			return present && !fieldValue.IsNull()
		}
		return !present || fieldValue.IsNull()
	}

	if cond.Equals != nil {
		return present && fieldValue.Equal(*cond.Equals)
	}

	return present && !fieldValue.IsNull()
}

func (r *RuleEvaluator) evalExpressionCondition(expression string, instance Value) bool {
	if r.Eval == nil {
		return false
	}
	ast, err := expr.Parse(expression)
	if err != nil {
		return false
	}
	context := instanceToContext(instance)
	result, err := r.Eval.Eval(ast, context)
	if err != nil {
		return false
	}
	return result.Truthy()
}

func lookupField(instance Value, slotName string) (Value, bool) {
	if instance.Kind() != expr.KindObject {
		return expr.Null, false
	}
	return instance.AsObject().Get(slotName)
}

// instanceToContext converts an object Value into the flat variable map
// the expression evaluator expects as its context.
func instanceToContext(instance Value) map[string]Value {
	ctx := make(map[string]Value)
	if instance.Kind() != expr.KindObject {
		return ctx
	}
	for _, k := range instance.AsObject().Keys() {
		v, _ := instance.AsObject().Get(k)
		ctx[k] = v
	}
	return ctx
}
