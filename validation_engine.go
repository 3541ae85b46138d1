package linkml

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/simonckemper/linkml-rs-sub001/expr"
)

// ValidationReport is the outcome of validate_as_class: valid is true iff
// no error-severity issues remain. RunID is a fresh UUID minted per call,
// so a single report can be correlated across log lines even when many
// validation runs interleave.
type ValidationReport struct {
	Valid     bool
	Errors    []Issue
	Warnings  []Issue
	Timestamp time.Time
	SchemaID  string
	RunID     string
}

// ValidateOptions enumerates the validation engine's options: use_cache,
// check_permissibles, include_classes, parallel_threshold, fail_fast,
// max_errors.
type ValidateOptions struct {
	UseCache          bool
	CheckPermissibles bool
	IncludeClasses    []string
	ParallelThreshold int
	FailFast          bool
	MaxErrors         int
}

// DefaultValidateOptions derives engine options from config.
func DefaultValidateOptions(config LinkMLConfig) ValidateOptions {
	return ValidateOptions{
		UseCache:          config.EnableCompilation,
		CheckPermissibles: true,
		ParallelThreshold: config.ParallelThreshold,
		MaxErrors:         config.MaxValidationErrors,
	}
}

// Engine orchestrates C2-C4, C6, C7 to validate a document against a
// class: resolve the induced class, validate each slot, evaluate rules,
// then check unique_keys via a two-pass "collect then check" index. Cache
// is optional; when set and an option's UseCache is true, the engine
// resolves induced classes and leaf-validator tables through it instead of
// recomputing them on every call.
type Engine struct {
	View  *SchemaView
	Rules *RuleEvaluator
	Now   func() time.Time
	Cache *ValidatorCache
}

// NewEngine constructs an Engine bound to view, optionally wiring an
// expression evaluator for class rules.
func NewEngine(view *SchemaView, eval *expr.Evaluator) *Engine {
	return &Engine{
		View:  view,
		Rules: NewRuleEvaluator(eval),
		Now:   time.Now,
	}
}

// uniqueIndex tracks composite keys seen so far in this validation run,
// scoped per class+unique-key-name, for the class-level uniqueness pass.
type uniqueIndex struct {
	seen map[string]map[string]bool
}

func newUniqueIndex() *uniqueIndex {
	return &uniqueIndex{seen: make(map[string]map[string]bool)}
}

func (u *uniqueIndex) observe(scope, key string) bool {
	if u.seen[scope] == nil {
		u.seen[scope] = make(map[string]bool)
	}
	if u.seen[scope][key] {
		return false
	}
	u.seen[scope][key] = true
	return true
}

// ValidateAsClass is the C8 entry point: resolves induced_class(className),
// validates each induced slot's value with leaf validators then boolean
// combinators then recurses into class-range slots, evaluates class rules,
// checks unique_keys, and produces a ValidationReport. Validation itself
// never panics on well-formed inputs; schema-shape errors (e.g. unknown
// class) are returned as a non-nil error distinct from a valid=false
// report.
func (e *Engine) ValidateAsClass(instance Value, className string, opts ValidateOptions) (*ValidationReport, error) {
	ctx := NewValidationContext(e.View, e.View.schemaConfigOrDefault())
	ctx.CheckPermissibles = opts.CheckPermissibles
	ctx.UseCache = opts.UseCache

	idx := newUniqueIndex()
	issues, err := e.validateInstance(instance, className, ctx, opts, idx, 0)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{Timestamp: e.Now(), SchemaID: e.View.SchemaID(), RunID: uuid.New().String()}
	for _, iss := range issues {
		switch iss.Severity {
		case SeverityError:
			report.Errors = append(report.Errors, iss)
		default:
			report.Warnings = append(report.Warnings, iss)
		}
	}
	report.Valid = len(report.Errors) == 0
	return report, nil
}

const maxValidationRecursionDepth = 64

func (e *Engine) validateInstance(instance Value, className string, ctx *ValidationContext, opts ValidateOptions, idx *uniqueIndex, depth int) ([]Issue, error) {
	if depth > maxValidationRecursionDepth {
		return nil, newError(ErrCircularDependency, "class range recursion exceeded depth %d (likely a cyclic range graph)", maxValidationRecursionDepth)
	}

	if len(opts.IncludeClasses) > 0 && !containsString(opts.IncludeClasses, className) {
		return nil, nil
	}

	var ic *ClassDefinition
	var compiled *CompiledValidator
	if e.Cache != nil && ctx.UseCache {
		cv, err := e.Cache.GetOrCompile(className, func() (*CompiledValidator, error) {
			return CompileValidator(e.View, className)
		})
		if err != nil {
			return nil, err
		}
		compiled = cv
		ic = cv.Class
	} else {
		resolved, err := ctx.inducedClassCached(className)
		if err != nil {
			return nil, err
		}
		ic = resolved
	}

	var issues []Issue

	for _, slotName := range ic.Slots {
		var slot *SlotDefinition
		var leaves []LeafValidator
		if compiled != nil {
			slot = compiled.Slots[slotName]
			leaves = compiled.Leaves[slotName]
		}
		if slot == nil {
			resolved, err := e.View.InducedSlot(slotName, className)
			if err != nil {
				return nil, err
			}
			slot = resolved
		}

		var value Value
		if instance.Kind() == expr.KindObject {
			if v, ok := instance.AsObject().Get(slotName); ok {
				value = v
			} else {
				value = expr.Null
			}
		} else {
			value = expr.Null
		}

		ctx.PushPath(slotName)
		slotIssues := e.validateSlot(value, slot, leaves, ctx, opts, idx, depth)
		issues = append(issues, slotIssues...)
		ctx.PopPath()

		if opts.FailFast && hasError(issues) {
			return capIssues(issues, opts.MaxErrors), nil
		}
		if opts.MaxErrors > 0 && countErrors(issues) >= opts.MaxErrors {
			return capIssues(issues, opts.MaxErrors), nil
		}
	}

	issues = append(issues, e.Rules.EvaluateClassRules(className, ic.Rules, instance, ctx)...)

	for keyName, slotNames := range ic.UniqueKeys {
		if instance.Kind() != expr.KindObject {
			continue
		}
		key := compositeKey(instance, slotNames)
		if !idx.observe(className+"/"+keyName, key) {
			issues = append(issues, Issue{
				Severity:  SeverityError,
				Message:   "duplicate value for unique_keys " + keyName,
				Path:      ctx.CurrentPath(),
				Validator: "Engine",
				Code:      "UNIQUE_KEY_VIOLATION",
				Context:   map[string]any{"unique_keys": keyName, "class": className},
			})
		}
	}

	if idSlot, err := e.View.GetIdentifierSlot(className); err != nil {
		if IsCode(err, ErrAmbiguousIdentifier) {
			return nil, err
		}
	} else if instance.Kind() == expr.KindObject {
		if v, ok := instance.AsObject().Get(idSlot.Name); ok && !v.IsNull() {
			if !idx.observe(className+"/__identifier__", v.String()) {
				issues = append(issues, Issue{
					Severity:  SeverityError,
					Message:   fmt.Sprintf("duplicate value for identifier slot %q", idSlot.Name),
					Path:      ctx.CurrentPath(),
					Validator: "Engine",
					Code:      "IDENTIFIER_NOT_UNIQUE",
					Context:   map[string]any{"identifier_slot": idSlot.Name, "class": className},
				})
			}
		}
	}

	return capIssues(issues, opts.MaxErrors), nil
}

func (e *Engine) validateSlot(value Value, slot *SlotDefinition, leaves []LeafValidator, ctx *ValidationContext, opts ValidateOptions, idx *uniqueIndex, depth int) []Issue {
	var issues []Issue

	if leaves == nil {
		leaves = StandardLeafValidators()
	}
	for _, v := range leaves {
		issues = append(issues, v.Validate(value, slot, ctx)...)
	}

	issues = append(issues, AnyOf(value, slot.AnyOf, ctx)...)
	issues = append(issues, AllOf(value, slot.AllOf, ctx, opts.ParallelThreshold)...)
	issues = append(issues, ExactlyOneOf(value, slot.ExactlyOneOf, ctx)...)
	issues = append(issues, NoneOf(value, slot.NoneOf, ctx)...)

	if slot.Range != "" && !value.IsNull() {
		if _, ok := e.View.GetClass(slot.Range); ok {
			inlined := slot.Inlined == nil || *slot.Inlined
			if inlined && value.Kind() == expr.KindObject {
				nested, err := e.validateInstance(value, slot.Range, ctx, opts, idx, depth+1)
				if err == nil {
					issues = append(issues, nested...)
				}
			} else if value.Kind() == expr.KindArray {
				for i, item := range value.AsArray() {
					ctx.PushPath(strconv.Itoa(i))
					nested, err := e.validateInstance(item, slot.Range, ctx, opts, idx, depth+1)
					ctx.PopPath()
					if err == nil {
						issues = append(issues, nested...)
					}
				}
			}
		}
	}

	return issues
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func hasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func countErrors(issues []Issue) int {
	n := 0
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			n++
		}
	}
	return n
}

func capIssues(issues []Issue, maxErrors int) []Issue {
	if maxErrors <= 0 {
		return issues
	}
	var out []Issue
	errCount := 0
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			if errCount >= maxErrors {
				continue
			}
			errCount++
		}
		out = append(out, iss)
	}
	return out
}

func compositeKey(instance Value, slotNames []string) string {
	var key string
	obj := instance.AsObject()
	for _, name := range slotNames {
		v, _ := obj.Get(name)
		key += "\x1f" + v.String()
	}
	return key
}

// schemaConfigOrDefault supplies the configuration for the engine's
// ValidationContext. A SchemaView holds no configuration of its own, so
// this always returns DefaultConfig().
func (sv *SchemaView) schemaConfigOrDefault() LinkMLConfig {
	return DefaultConfig()
}
