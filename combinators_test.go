package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *ValidationContext {
	t.Helper()
	view := NewSchemaView(NewSchema("test"), nil)
	return NewValidationContext(view, DefaultConfig())
}

func TestAnyOfSuccess(t *testing.T) {
	ctx := newTestContext(t)
	constraints := []*SlotDefinition{
		{Range: "string"},
		{Range: "integer"},
	}
	issues := AnyOf(StringValue("hello"), constraints, ctx)
	assert.Empty(t, issues)
}

func TestAllOfFailureWithSummary(t *testing.T) {
	ctx := newTestContext(t)
	minVal := IntValue(0)
	maxVal := IntValue(100)
	constraints := []*SlotDefinition{
		{Range: "integer"},
		{Range: "integer", MinimumValue: &minVal, MaximumValue: &maxVal},
	}
	issues := AllOf(IntValue(150), constraints, ctx, 100)
	require.NotEmpty(t, issues)

	var found bool
	for _, iss := range issues {
		if iss.Code == "ALL_OF_CONSTRAINT_FAILED" {
			found = true
		}
	}
	assert.True(t, found, "expected an ALL_OF_CONSTRAINT_FAILED issue, got %+v", issues)
}

func TestExactlyOneOfAmbiguity(t *testing.T) {
	ctx := newTestContext(t)
	minVal := IntValue(0)
	constraints := []*SlotDefinition{
		{Range: "integer"},
		{MinimumValue: &minVal},
	}
	issues := ExactlyOneOf(IntValue(50), constraints, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "EXACTLY_ONE_OF_MULTIPLE_SATISFIED", issues[0].Code)
	assert.Equal(t, []int{0, 1}, issues[0].Context["satisfied_indices"])
}

func TestNoneOfFastPath(t *testing.T) {
	ctx := newTestContext(t)
	constraints := []*SlotDefinition{
		{Range: "string"},
		{Range: "integer"},
	}
	issues := NoneOf(StringValue("hello"), constraints, ctx)
	require.Len(t, issues, 1)
	assert.Equal(t, "NONE_OF_CONSTRAINT_SATISFIED", issues[0].Code)
	assert.Equal(t, 0, issues[0].Context["satisfied_index"])
}

func TestEmptyCombinatorListsEmitNothing(t *testing.T) {
	ctx := newTestContext(t)
	assert.Empty(t, AnyOf(StringValue("x"), nil, ctx))
	assert.Empty(t, AllOf(StringValue("x"), nil, ctx, 100))
	assert.Empty(t, ExactlyOneOf(StringValue("x"), nil, ctx))
	assert.Empty(t, NoneOf(StringValue("x"), nil, ctx))
}

func TestAllOfParallelAndSequentialAgreeOnIssueCodes(t *testing.T) {
	ctx := newTestContext(t)
	minVal := IntValue(0)
	maxVal := IntValue(100)
	constraints := []*SlotDefinition{
		{Range: "integer"},
		{Range: "integer", MinimumValue: &minVal, MaximumValue: &maxVal},
		{Range: "string"},
	}

	sequential := AllOf(IntValue(150), constraints, ctx, 1000) // threshold above len -> sequential
	parallel := AllOf(IntValue(150), constraints, ctx, 0)      // threshold 0 -> parallel

	codes := func(issues []Issue) map[string]bool {
		out := make(map[string]bool)
		for _, iss := range issues {
			out[iss.Code] = true
		}
		return out
	}

	assert.Equal(t, codes(sequential), codes(parallel))
}
