package linkml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	data map[string][]byte
}

func (f *fakeLoader) Load(ctx context.Context, location string) ([]byte, string, error) {
	d, ok := f.data[location]
	if !ok {
		return nil, "", newError(ErrElementNotFound, "no such import %q", location)
	}
	return d, "yaml", nil
}

type fakeParser struct {
	schemas map[string]*Schema
}

func (f *fakeParser) Parse(data []byte, format string) (*Schema, error) {
	return f.schemas[string(data)], nil
}

func TestImportResolverMergesImporterWins(t *testing.T) {
	child := NewSchema("child")
	child.ID = "child"
	child.Slots.Set("name", &SlotDefinition{Name: "name", Range: "string"})

	root := NewSchema("root")
	root.ID = "root"
	root.Imports = []string{"child.yaml"}
	root.Slots.Set("name", &SlotDefinition{Name: "name", Range: "integer"})

	loader := &fakeLoader{data: map[string][]byte{"child.yaml": []byte("child-bytes")}}
	parser := &fakeParser{schemas: map[string]*Schema{"child-bytes": child}}

	resolver := NewImportResolver(loader, parser, nil)
	merged, err := resolver.Resolve(context.Background(), root)
	require.NoError(t, err)

	nameSlot, ok := merged.Slots.Get("name")
	require.True(t, ok)
	assert.Equal(t, "integer", nameSlot.Range, "importing schema's own definition wins over the imported one")
}

func TestImportResolverFillsAbsentElements(t *testing.T) {
	child := NewSchema("child")
	child.ID = "child"
	child.Slots.Set("age", &SlotDefinition{Name: "age", Range: "integer"})

	root := NewSchema("root")
	root.ID = "root"
	root.Imports = []string{"child.yaml"}

	loader := &fakeLoader{data: map[string][]byte{"child.yaml": []byte("child-bytes")}}
	parser := &fakeParser{schemas: map[string]*Schema{"child-bytes": child}}

	resolver := NewImportResolver(loader, parser, nil)
	merged, err := resolver.Resolve(context.Background(), root)
	require.NoError(t, err)

	_, ok := merged.Slots.Get("age")
	assert.True(t, ok)
}

func TestImportResolverDetectsCycle(t *testing.T) {
	a := NewSchema("a")
	a.ID = "a"
	a.Imports = []string{"b.yaml"}

	b := NewSchema("b")
	b.ID = "b"
	b.Imports = []string{"a.yaml"}

	loader := &fakeLoader{data: map[string][]byte{
		"a.yaml": []byte("a-bytes"),
		"b.yaml": []byte("b-bytes"),
	}}
	parser := &fakeParser{schemas: map[string]*Schema{
		"a-bytes": a,
		"b-bytes": b,
	}}

	resolver := NewImportResolver(loader, parser, nil)
	_, err := resolver.Resolve(context.Background(), a)
	require.Error(t, err)

	var linkmlErr *Error
	require.ErrorAs(t, err, &linkmlErr)
	assert.Equal(t, ErrCircularDependency, linkmlErr.Code)
}

func TestImportResolverMissingLoaderOrParserErrors(t *testing.T) {
	root := NewSchema("root")
	root.ID = "root"
	root.Imports = []string{"anything.yaml"}

	resolver := NewImportResolver(nil, nil, nil)
	_, err := resolver.Resolve(context.Background(), root)
	require.Error(t, err)
}

func TestImportResolverNoImportsReturnsShallowClone(t *testing.T) {
	root := NewSchema("root")
	root.ID = "root"
	root.Slots.Set("x", &SlotDefinition{Name: "x"})

	resolver := NewImportResolver(nil, nil, nil)
	merged, err := resolver.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.NotSame(t, root, merged)
	_, ok := merged.Slots.Get("x")
	assert.True(t, ok)
}
