package linkml

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/simonckemper/linkml-rs-sub001/expr"
)

// LeafValidator is a per-constraint check over a single slot value.
// Implementations never panic, they accumulate and return issues.
type LeafValidator interface {
	Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue
}

func issueAt(ctx *ValidationContext, validator, code, message string) Issue {
	return Issue{
		Severity:  SeverityError,
		Message:   message,
		Path:      ctx.CurrentPath(),
		Validator: validator,
		Code:      code,
	}
}

// TypeValidator checks value against slot.Range: primitive ranges map to
// JSON kinds, class ranges require an object (or a scalar identifier
// string when inlined=false), enum ranges require a string equal to one
// canonical text. primitiveKinds is a fixed built-in type registry,
// generalized from a fixed type set to LinkML's primitive/class/enum
// three-way range.
type TypeValidator struct{}

// primitiveKinds is the registry of built-in range names mapped to the
// Value.Kind they require, mirroring builtin_types.go's BuiltinType table.
var primitiveKinds = map[string]expr.Kind{
	"string":   expr.KindString,
	"uri":      expr.KindString,
	"date":     expr.KindString,
	"datetime": expr.KindString,
	"time":     expr.KindString,
	"integer":  expr.KindNumber,
	"float":    expr.KindNumber,
	"double":   expr.KindNumber,
	"decimal":  expr.KindNumber,
	"number":   expr.KindNumber,
	"boolean":  expr.KindBool,
	"null":     expr.KindNull,
}

func (TypeValidator) Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	if slot.Range == "" || value.IsNull() {
		return nil
	}

	if wantKind, ok := primitiveKinds[slot.Range]; ok {
		if value.Kind() != wantKind {
			return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
				fmt.Sprintf("expected %s for range %q, got %s", kindName(wantKind), slot.Range, kindName(value.Kind())))}
		}
		if slot.Range == "integer" {
			if _, isInt := value.AsInt(); !isInt && value.AsFloat() != math.Trunc(value.AsFloat()) {
				return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
					fmt.Sprintf("expected integer for range %q, got non-integral number", slot.Range))}
			}
		}
		return nil
	}

	if enumDef, ok := ctx.View.GetEnum(slot.Range); ok {
		if value.Kind() != expr.KindString {
			return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
				fmt.Sprintf("expected a string naming a permissible value of enum %q", slot.Range))}
		}
		text := value.AsString()
		for _, pv := range enumDef.PermissibleValues {
			if pv.CanonicalText() == text {
				return nil
			}
		}
		if ctx.CheckPermissibles {
			return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
				fmt.Sprintf("%q is not a permissible value of enum %q", text, slot.Range))}
		}
		return nil
	}

	if _, ok := ctx.View.GetClass(slot.Range); ok {
		inlined := slot.Inlined == nil || *slot.Inlined
		if value.Kind() == expr.KindObject {
			return nil
		}
		if !inlined && value.Kind() == expr.KindString {
			return nil
		}
		return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
			fmt.Sprintf("expected an object for class range %q", slot.Range))}
	}

	if _, ok := ctx.View.GetType(slot.Range); ok {
		// A named type passes without further checks: its base_type,
		// pattern and minimum/maximum bounds are not applied here, and the
		// engine does not resolve base_type to a primitive either.
		return nil
	}

	return []Issue{issueAt(ctx, "TypeValidator", "RANGE_TYPE_MISMATCH",
		fmt.Sprintf("range %q does not resolve to a primitive, class, or enum", slot.Range))}
}

func kindName(k expr.Kind) string {
	switch k {
	case expr.KindNull:
		return "null"
	case expr.KindBool:
		return "boolean"
	case expr.KindNumber:
		return "number"
	case expr.KindString:
		return "string"
	case expr.KindArray:
		return "array"
	case expr.KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// PatternValidator compiles slot.Pattern to a regex (cached per pattern
// string via the context) and requires the whole string to match, anchoring
// the pattern at both ends; null and non-string values pass.
type PatternValidator struct{}

func (PatternValidator) Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	if slot.Pattern == "" {
		return nil
	}
	if value.IsNull() {
		return nil
	}
	if value.Kind() != expr.KindString {
		return nil
	}
	re, err := ctx.CompileRegex("^(?:" + slot.Pattern + ")$")
	if err != nil {
		return []Issue{issueAt(ctx, "PatternValidator", "PATTERN_MISMATCH",
			fmt.Sprintf("invalid pattern %q: %v", slot.Pattern, err))}
	}
	if !re.MatchString(value.AsString()) {
		return []Issue{issueAt(ctx, "PatternValidator", "PATTERN_MISMATCH",
			fmt.Sprintf("value %q does not match pattern %q", value.AsString(), slot.Pattern))}
	}
	return nil
}

// RangeValidator enforces minimum_value/maximum_value bounds (inclusive)
// on numeric values. The "decimal" range compares via shopspring/decimal
// rather than raw float64, so accumulated binary-float error (e.g. a
// minimum_value of 0.1 stored as 0.1000000000000000055...) never produces
// a spurious bound violation.
type RangeValidator struct{}

func (RangeValidator) Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	if slot.MinimumValue == nil && slot.MaximumValue == nil {
		return nil
	}
	if value.IsNull() {
		return nil
	}
	if value.Kind() != expr.KindNumber {
		return []Issue{issueAt(ctx, "RangeValidator", "RANGE_TYPE_MISMATCH",
			"minimum_value/maximum_value require a numeric value")}
	}

	if slot.Range == "decimal" {
		return validateDecimalRange(value, slot, ctx)
	}

	n := value.AsFloat()
	if slot.MinimumValue != nil && n < slot.MinimumValue.AsFloat() {
		return []Issue{issueAt(ctx, "RangeValidator", "RANGE_TYPE_MISMATCH",
			fmt.Sprintf("%g is below minimum_value %g", n, slot.MinimumValue.AsFloat()))}
	}
	if slot.MaximumValue != nil && n > slot.MaximumValue.AsFloat() {
		return []Issue{issueAt(ctx, "RangeValidator", "RANGE_TYPE_MISMATCH",
			fmt.Sprintf("%g is above maximum_value %g", n, slot.MaximumValue.AsFloat()))}
	}
	return nil
}

func validateDecimalRange(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	n := decimal.NewFromFloat(value.AsFloat())
	if slot.MinimumValue != nil {
		min := decimal.NewFromFloat(slot.MinimumValue.AsFloat())
		if n.LessThan(min) {
			return []Issue{issueAt(ctx, "RangeValidator", "RANGE_TYPE_MISMATCH",
				fmt.Sprintf("%s is below minimum_value %s", n.String(), min.String()))}
		}
	}
	if slot.MaximumValue != nil {
		max := decimal.NewFromFloat(slot.MaximumValue.AsFloat())
		if n.GreaterThan(max) {
			return []Issue{issueAt(ctx, "RangeValidator", "RANGE_TYPE_MISMATCH",
				fmt.Sprintf("%s is above maximum_value %s", n.String(), max.String()))}
		}
	}
	return nil
}

// RequiredValidator enforces slot.Required: the value must be present and
// non-null; for multivalued required slots an empty array is absent. An
// identifier slot is implicitly required even when required is unset,
// since an instance without its identifier can't be addressed at all.
type RequiredValidator struct{}

func (RequiredValidator) Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	required := slot.Identifier || (slot.Required != nil && *slot.Required)
	if !required {
		return nil
	}
	absent := value.IsNull()
	if !absent && slot.Multivalued != nil && *slot.Multivalued && value.Kind() == expr.KindArray && len(value.AsArray()) == 0 {
		absent = true
	}
	if absent {
		return []Issue{issueAt(ctx, "RequiredValidator", "REQUIRED_MISSING",
			fmt.Sprintf("slot %q is required", slot.Name))}
	}
	return nil
}

// CardinalityValidator enforces array-length bounds when
// minimum_cardinality/maximum_cardinality are present.
type CardinalityValidator struct{}

func (CardinalityValidator) Validate(value Value, slot *SlotDefinition, ctx *ValidationContext) []Issue {
	if slot.MinimumCardinality == nil && slot.MaximumCardinality == nil {
		return nil
	}
	if value.IsNull() {
		return nil
	}
	if value.Kind() != expr.KindArray {
		return []Issue{issueAt(ctx, "CardinalityValidator", "CARDINALITY_VIOLATION",
			"cardinality constraints require an array value")}
	}
	n := len(value.AsArray())
	if slot.MinimumCardinality != nil && n < *slot.MinimumCardinality {
		return []Issue{issueAt(ctx, "CardinalityValidator", "CARDINALITY_VIOLATION",
			fmt.Sprintf("array length %d is below minimum_cardinality %d", n, *slot.MinimumCardinality))}
	}
	if slot.MaximumCardinality != nil && n > *slot.MaximumCardinality {
		return []Issue{issueAt(ctx, "CardinalityValidator", "CARDINALITY_VIOLATION",
			fmt.Sprintf("array length %d is above maximum_cardinality %d", n, *slot.MaximumCardinality))}
	}
	return nil
}

// StandardLeafValidators returns the five leaf validators in the
// cheap-to-expensive evaluation order the validation engine applies:
// required, type, range, pattern, cardinality.
func StandardLeafValidators() []LeafValidator {
	return []LeafValidator{
		RequiredValidator{},
		TypeValidator{},
		RangeValidator{},
		PatternValidator{},
		CardinalityValidator{},
	}
}
