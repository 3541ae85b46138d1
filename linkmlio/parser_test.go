package linkmlio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchemaYAML = `
id: https://example.org/person
name: person-schema
version: 1.0.0
classes:
  Person:
    description: A human being.
    slots:
      - name
    attributes:
      age:
        range: integer
        required: true
slots:
  name:
    range: string
    required: true
enums:
  Status:
    permissible_values:
      active:
        description: currently active
`

func TestParseYAMLSchema(t *testing.T) {
	p := NewSchemaParser()
	schema, err := p.Parse([]byte(personSchemaYAML), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "person-schema", schema.Name)
	assert.Equal(t, "1.0.0", schema.Version)

	class, ok := schema.Classes.Get("Person")
	require.True(t, ok)
	assert.Equal(t, "A human being.", class.Description)
	assert.Contains(t, class.Slots, "name")

	ageSlot, ok := class.Attributes.Get("age")
	require.True(t, ok)
	assert.Equal(t, "integer", ageSlot.Range)
	require.NotNil(t, ageSlot.Required)
	assert.True(t, *ageSlot.Required)
	assert.True(t, ageSlot.IsSet("required"))

	nameSlot, ok := schema.Slots.Get("name")
	require.True(t, ok)
	assert.Equal(t, "string", nameSlot.Range)

	_, ok = schema.Enums.Get("Status")
	require.True(t, ok)
}

func TestParseJSONSchema(t *testing.T) {
	p := NewSchemaParser()
	data := []byte(`{"name":"json-schema","classes":{"Widget":{"description":"a widget"}}}`)
	schema, err := p.Parse(data, "json")
	require.NoError(t, err)
	assert.Equal(t, "json-schema", schema.Name)

	class, ok := schema.Classes.Get("Widget")
	require.True(t, ok)
	assert.Equal(t, "a widget", class.Description)
}

func TestParseInvalidYAMLReturnsError(t *testing.T) {
	p := NewSchemaParser()
	_, err := p.Parse([]byte("not: valid: yaml: : ["), "yaml")
	assert.Error(t, err)
}

func TestValueFromAnyConvertsScalarsAndCollections(t *testing.T) {
	assert.True(t, ValueFromAny(nil).IsNull())
	assert.Equal(t, true, ValueFromAny(true).AsBool())
	assert.Equal(t, "hi", ValueFromAny("hi").AsString())

	intVal := ValueFromAny(float64(42))
	asInt, isInt := intVal.AsInt()
	require.True(t, isInt)
	assert.EqualValues(t, 42, asInt)

	floatVal := ValueFromAny(float64(3.5))
	assert.Equal(t, 3.5, floatVal.AsFloat())

	arr := ValueFromAny([]any{"a", float64(1)})
	assert.Len(t, arr.AsArray(), 2)

	obj := ValueFromAny(map[string]any{"k": "v"})
	val, ok := obj.AsObject().Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", val.AsString())
}
