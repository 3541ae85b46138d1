package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	linkml "github.com/simonckemper/linkml-rs-sub001"
)

func personSchema(name string) *linkml.Schema {
	s := linkml.NewSchema(name)
	s.Version = "1.0.0"
	class := &linkml.ClassDefinition{
		Name:       "Person",
		Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition](),
	}
	class.Attributes.Set("name", &linkml.SlotDefinition{Name: "name", Range: "string"})
	class.Attributes.Set("age", &linkml.SlotDefinition{Name: "age", Range: "integer"})
	s.Classes.Set("Person", class)
	return s
}

func TestDiffSelfIsEmpty(t *testing.T) {
	s := personSchema("test")
	d := NewDiffer(DefaultOptions())
	result, err := d.Compare(s, s)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Total)
}

func TestDiffRejectsUnnamedSchemas(t *testing.T) {
	d := NewDiffer(DefaultOptions())
	_, err := d.Compare(linkml.NewSchema(""), linkml.NewSchema("new"))
	require.Error(t, err)
}

func TestDiffRejectsInvalidRenameThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.RenameThreshold = 1.5
	d := NewDiffer(opts)
	_, err := d.Compare(personSchema("a"), personSchema("b"))
	require.Error(t, err)
}

func TestDiffDetectsRenameWithIdenticalAttributes(t *testing.T) {
	oldSchema := personSchema("test")

	newSchema := linkml.NewSchema("test")
	newSchema.Version = "1.0.0"
	human := &linkml.ClassDefinition{
		Name:       "Human",
		Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition](),
	}
	human.Attributes.Set("name", &linkml.SlotDefinition{Name: "name", Range: "string"})
	human.Attributes.Set("age", &linkml.SlotDefinition{Name: "age", Range: "integer"})
	newSchema.Classes.Set("Human", human)

	opts := DefaultOptions()
	opts.RenameThreshold = 0.8
	d := NewDiffer(opts)
	result, err := d.Compare(oldSchema, newSchema)
	require.NoError(t, err)

	require.Equal(t, 1, result.Stats.Renamed)
	assert.Equal(t, 0, len(result.BreakingChanges))
	require.Len(t, result.Changes, 1)
	assert.Equal(t, Renamed, result.Changes[0].ChangeType)
	assert.Equal(t, "Person", result.Changes[0].OldValue)
	assert.Equal(t, "Human", result.Changes[0].NewValue)
}

func TestDiffClassRemovalIsMajor(t *testing.T) {
	oldSchema := personSchema("test")
	newSchema := linkml.NewSchema("test")
	newSchema.Version = "1.0.0"

	d := NewDiffer(DefaultOptions())
	result, err := d.Compare(oldSchema, newSchema)
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, Removed, result.Changes[0].ChangeType)
	assert.Equal(t, Major, result.Changes[0].Severity)
	assert.Equal(t, 1, result.Stats.Major)
}

func TestDiffSymmetrySwapsAddedAndRemoved(t *testing.T) {
	oldSchema := personSchema("test")
	newSchema := linkml.NewSchema("test")
	newSchema.Version = "1.0.0"

	d := NewDiffer(DefaultOptions())
	forward, err := d.Compare(oldSchema, newSchema)
	require.NoError(t, err)
	backward, err := d.Compare(newSchema, oldSchema)
	require.NoError(t, err)

	assert.Equal(t, forward.Stats.Removed, backward.Stats.Added)
	assert.Equal(t, forward.Stats.Added, backward.Stats.Removed)
	assert.Equal(t, forward.Stats.Modified, backward.Stats.Modified)
}

func TestAmbiguousRenameFails(t *testing.T) {
	oldSchema := linkml.NewSchema("test")
	oldSchema.Version = "1.0.0"
	original := &linkml.ClassDefinition{Name: "Widget", Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition]()}
	original.Attributes.Set("name", &linkml.SlotDefinition{Name: "name", Range: "string"})
	oldSchema.Classes.Set("Widget", original)

	newSchema := linkml.NewSchema("test")
	newSchema.Version = "1.0.0"
	candidateA := &linkml.ClassDefinition{Name: "Gadget", Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition]()}
	candidateA.Attributes.Set("name", &linkml.SlotDefinition{Name: "name", Range: "string"})
	candidateB := &linkml.ClassDefinition{Name: "Gizmo", Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition]()}
	candidateB.Attributes.Set("name", &linkml.SlotDefinition{Name: "name", Range: "string"})
	newSchema.Classes.Set("Gadget", candidateA)
	newSchema.Classes.Set("Gizmo", candidateB)

	opts := DefaultOptions()
	opts.RenameThreshold = 0.5
	d := NewDiffer(opts)
	_, err := d.Compare(oldSchema, newSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous rename")
}
