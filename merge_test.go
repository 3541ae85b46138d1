package linkml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneClassIsIndependentOfSource(t *testing.T) {
	original := &ClassDefinition{
		Name:       "Animal",
		Slots:      []string{"name"},
		Attributes: NewOrderedMap[*SlotDefinition](),
	}
	original.Attributes.Set("name", &SlotDefinition{Name: "name", Range: "string"})

	clone := cloneClass(original)
	clone.Slots = append(clone.Slots, "extra")
	clone.Attributes.Set("age", &SlotDefinition{Name: "age"})

	assert.Equal(t, []string{"name"}, original.Slots)
	assert.Equal(t, 1, original.Attributes.Len())
}

func TestCloneSlotCopiesSetFieldsIndependently(t *testing.T) {
	required := true
	original := &SlotDefinition{Name: "age", Required: &required}
	original.MarkSet("required")

	clone := cloneSlot(original)
	clone.MarkSet("range")

	assert.True(t, original.IsSet("required"))
	assert.False(t, original.IsSet("range"))
	assert.True(t, clone.IsSet("range"))
}

func TestMergeClassIntoUnionsSlotsAndFillsAbsentFields(t *testing.T) {
	result := &ClassDefinition{
		Name:       "Dog",
		Slots:      []string{"breed"},
		Attributes: NewOrderedMap[*SlotDefinition](),
	}
	ancestor := &ClassDefinition{
		Name:        "Animal",
		Description: "a living creature",
		Slots:       []string{"name"},
		Attributes:  NewOrderedMap[*SlotDefinition](),
	}
	ancestor.Attributes.Set("name", &SlotDefinition{Name: "name", Range: "string"})

	mergeClassInto(result, ancestor)

	assert.ElementsMatch(t, []string{"breed", "name"}, result.Slots)
	assert.Equal(t, "a living creature", result.Description)
	_, ok := result.Attributes.Get("name")
	assert.True(t, ok)
}

func TestMergeClassIntoNeverOverwritesOwnDescription(t *testing.T) {
	result := &ClassDefinition{Name: "Dog", Description: "a good boy", Attributes: NewOrderedMap[*SlotDefinition]()}
	ancestor := &ClassDefinition{Name: "Animal", Description: "a living creature", Attributes: NewOrderedMap[*SlotDefinition]()}

	mergeClassInto(result, ancestor)
	assert.Equal(t, "a good boy", result.Description)
}

func TestUnionPreserveOrderDeduplicatesPreservingFirstSeen(t *testing.T) {
	out := unionPreserveOrder([]string{"a", "b"}, []string{"b", "c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestMergeSlotIntoSrcWinsOnPresentFields(t *testing.T) {
	dst := &SlotDefinition{Name: "name", Range: "string"}
	required := true
	src := &SlotDefinition{Name: "name", Required: &required, Pattern: "^[A-Z]"}

	mergeSlotInto(dst, src)

	assert.Equal(t, "string", dst.Range, "src left Range unset, so dst keeps its own value")
	require.NotNil(t, dst.Required)
	assert.True(t, *dst.Required)
	assert.Equal(t, "^[A-Z]", dst.Pattern)
}

func TestMergeSlotIntoNilSrcIsNoop(t *testing.T) {
	dst := &SlotDefinition{Name: "name", Range: "string"}
	mergeSlotInto(dst, nil)
	assert.Equal(t, "string", dst.Range)
}

func TestApplySlotUsageOnlyTouchesExplicitlySetFields(t *testing.T) {
	dst := &SlotDefinition{Name: "name", Range: "string", Pattern: "^[a-z]"}

	required := true
	override := &SlotDefinition{Name: "name", Required: &required, Pattern: "should-be-ignored"}
	override.MarkSet("required")

	applySlotUsage(dst, override)

	require.NotNil(t, dst.Required)
	assert.True(t, *dst.Required)
	assert.Equal(t, "^[a-z]", dst.Pattern, "pattern was never marked set on the override, so it must not change")
}

func TestApplySlotUsageNilOverrideIsNoop(t *testing.T) {
	dst := &SlotDefinition{Name: "name", Range: "string"}
	applySlotUsage(dst, nil)
	assert.Equal(t, "string", dst.Range)
}
