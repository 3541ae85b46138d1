package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeValidatorPrimitiveMismatch(t *testing.T) {
	ctx := newTestContext(t)
	slot := &SlotDefinition{Name: "age", Range: "integer"}
	issues := TypeValidator{}.Validate(StringValue("not a number"), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RANGE_TYPE_MISMATCH", issues[0].Code)
}

func TestTypeValidatorIntegerExactness(t *testing.T) {
	ctx := newTestContext(t)
	slot := &SlotDefinition{Name: "age", Range: "integer"}
	issues := TypeValidator{}.Validate(FloatValue(3.5), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RANGE_TYPE_MISMATCH", issues[0].Code)

	assert.Empty(t, TypeValidator{}.Validate(FloatValue(3.0), slot, ctx))
}

func TestTypeValidatorEnumMembership(t *testing.T) {
	view := NewSchemaView(NewSchema("test"), nil)
	schema := view.RawSchema()
	schema.Enums.Set("Status", &EnumDefinition{
		Name: "Status",
		PermissibleValues: []*PermissibleValue{
			{Text: "active"},
			{Text: "inactive"},
		},
	})
	ctx := NewValidationContext(view, DefaultConfig())
	slot := &SlotDefinition{Name: "status", Range: "Status"}

	assert.Empty(t, TypeValidator{}.Validate(StringValue("active"), slot, ctx))

	issues := TypeValidator{}.Validate(StringValue("bogus"), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RANGE_TYPE_MISMATCH", issues[0].Code)
}

func TestRequiredValidator(t *testing.T) {
	ctx := newTestContext(t)
	required := true
	slot := &SlotDefinition{Name: "name", Required: &required}

	issues := RequiredValidator{}.Validate(Null, slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "REQUIRED_MISSING", issues[0].Code)

	assert.Empty(t, RequiredValidator{}.Validate(StringValue("x"), slot, ctx))
}

func TestRequiredValidatorIdentifierImpliesRequired(t *testing.T) {
	ctx := newTestContext(t)
	slot := &SlotDefinition{Name: "id", Identifier: true}

	issues := RequiredValidator{}.Validate(Null, slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "REQUIRED_MISSING", issues[0].Code)

	assert.Empty(t, RequiredValidator{}.Validate(StringValue("abc-1"), slot, ctx))
}

func TestRequiredValidatorEmptyMultivalued(t *testing.T) {
	ctx := newTestContext(t)
	required := true
	multivalued := true
	slot := &SlotDefinition{Name: "tags", Required: &required, Multivalued: &multivalued}

	issues := RequiredValidator{}.Validate(ArrayValue(nil), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "REQUIRED_MISSING", issues[0].Code)
}

func TestRangeValidatorBounds(t *testing.T) {
	ctx := newTestContext(t)
	minVal := IntValue(0)
	maxVal := IntValue(10)
	slot := &SlotDefinition{Name: "score", MinimumValue: &minVal, MaximumValue: &maxVal}

	assert.Empty(t, RangeValidator{}.Validate(IntValue(5), slot, ctx))

	issues := RangeValidator{}.Validate(IntValue(15), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RANGE_TYPE_MISMATCH", issues[0].Code)
}

func TestRangeValidatorDecimalPrecision(t *testing.T) {
	ctx := newTestContext(t)
	minVal := FloatValue(0.1)
	slot := &SlotDefinition{Name: "amount", Range: "decimal", MinimumValue: &minVal}

	// 0.1 + 0.2 as float64 is 0.30000000000000004, still comfortably above
	// the 0.1 minimum, but the point is the decimal path compares exactly
	// rather than drifting on accumulated binary-float error.
	assert.Empty(t, RangeValidator{}.Validate(FloatValue(0.1+0.2), slot, ctx))

	issues := RangeValidator{}.Validate(FloatValue(0.05), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "RANGE_TYPE_MISMATCH", issues[0].Code)
}

func TestPatternValidatorFullMatch(t *testing.T) {
	ctx := newTestContext(t)
	slot := &SlotDefinition{Name: "code", Pattern: "^[A-Z]{3}$"}

	assert.Empty(t, PatternValidator{}.Validate(StringValue("ABC"), slot, ctx))

	issues := PatternValidator{}.Validate(StringValue("abc"), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "PATTERN_MISMATCH", issues[0].Code)
}

func TestCardinalityValidator(t *testing.T) {
	ctx := newTestContext(t)
	minC, maxC := 1, 3
	slot := &SlotDefinition{Name: "tags", MinimumCardinality: &minC, MaximumCardinality: &maxC}

	assert.Empty(t, CardinalityValidator{}.Validate(ArrayValue([]Value{StringValue("a")}), slot, ctx))

	issues := CardinalityValidator{}.Validate(ArrayValue(nil), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "CARDINALITY_VIOLATION", issues[0].Code)

	issues = CardinalityValidator{}.Validate(
		ArrayValue([]Value{StringValue("a"), StringValue("b"), StringValue("c"), StringValue("d")}), slot, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "CARDINALITY_VIOLATION", issues[0].Code)
}

func TestStandardLeafValidatorsOrder(t *testing.T) {
	validators := StandardLeafValidators()
	require.Len(t, validators, 5)
	assert.IsType(t, RequiredValidator{}, validators[0])
	assert.IsType(t, TypeValidator{}, validators[1])
	assert.IsType(t, RangeValidator{}, validators[2])
	assert.IsType(t, PatternValidator{}, validators[3])
	assert.IsType(t, CardinalityValidator{}, validators[4])
}
