// Package linkml implements the core schema engine for LinkML: a
// denormalization engine (SchemaView) that resolves inheritance, mixins and
// slot-usage overrides into an induced view, a composable validation engine
// built on top of it, a sandboxed expression evaluator, and a semantic
// schema differ.
package linkml

// Schema is a top-level LinkML schema document.
type Schema struct {
	ID          string
	Name        string
	Version     string
	License     string
	Imports     []string
	Prefixes    map[string]string
	Classes     *OrderedMap[*ClassDefinition]
	Slots       *OrderedMap[*SlotDefinition]
	Types       *OrderedMap[*TypeDefinition]
	Enums       *OrderedMap[*EnumDefinition]
	Subsets     *OrderedMap[*SubsetDefinition]
	Annotations map[string]any
}

// NewSchema returns an empty, fully initialized Schema ready for population.
func NewSchema(name string) *Schema {
	return &Schema{
		Name:     name,
		Prefixes: make(map[string]string),
		Classes:  NewOrderedMap[*ClassDefinition](),
		Slots:    NewOrderedMap[*SlotDefinition](),
		Types:    NewOrderedMap[*TypeDefinition](),
		Enums:    NewOrderedMap[*EnumDefinition](),
		Subsets:  NewOrderedMap[*SubsetDefinition](),
	}
}

// ClassDefinition is a LinkML class.
type ClassDefinition struct {
	Name        string
	Description string
	Abstract    bool
	TreeRoot    bool
	IsA         string
	Mixins      []string
	Slots       []string
	Attributes  *OrderedMap[*SlotDefinition]
	SlotUsage   map[string]*SlotDefinition
	Rules       []*Rule
	UniqueKeys  map[string][]string
	ClassURI    string
	Annotations map[string]any
}

// SlotDefinition is a LinkML slot (field).
type SlotDefinition struct {
	Name               string
	Description         string
	Range               string
	Required            *bool
	Multivalued         *bool
	Identifier          bool
	Pattern             string
	StructuredPattern   *StructuredPattern
	MinimumValue        *Value
	MaximumValue        *Value
	MinimumCardinality  *int
	MaximumCardinality  *int
	AnyOf               []*SlotDefinition
	AllOf               []*SlotDefinition
	ExactlyOneOf        []*SlotDefinition
	NoneOf              []*SlotDefinition
	IsA                 string
	Mixins              []string
	SlotURI             string
	Inlined             *bool
	InlinedAsList       *bool
	Annotations         map[string]any

	// setFields records which fields were explicitly set in the LinkML
	// source (as opposed to left at their zero value), so slot_usage
	// overrides (applySlotUsage) only replace fields that were actually
	// specified, per the field-wise override contract.
	setFields map[string]bool
}

// MarkSet records that field was explicitly present in the source document.
func (s *SlotDefinition) MarkSet(field string) {
	if s.setFields == nil {
		s.setFields = make(map[string]bool)
	}
	s.setFields[field] = true
}

// IsSet reports whether field was explicitly present in the source document.
func (s *SlotDefinition) IsSet(field string) bool {
	if s.setFields == nil {
		return false
	}
	return s.setFields[field]
}

// StructuredPattern is a composable pattern built from interpolated parts.
type StructuredPattern struct {
	Pattern      string
	PartialMatch bool
}

// TypeDefinition is a LinkML type (a refinement of a primitive or another
// named type).
type TypeDefinition struct {
	Name         string
	BaseType     string
	URI          string
	Pattern      string
	MinimumValue *Value
	MaximumValue *Value
	Annotations  map[string]any
}

// EnumDefinition is a LinkML enumeration.
type EnumDefinition struct {
	Name              string
	PermissibleValues []*PermissibleValue
	Annotations       map[string]any
}

// PermissibleValue is one member of an enumeration.
type PermissibleValue struct {
	Text        string
	Description string
	Meaning     string
}

// CanonicalText returns the text used to match documents against this
// permissible value.
func (p *PermissibleValue) CanonicalText() string {
	return p.Text
}

// SubsetDefinition is a named grouping of schema elements.
type SubsetDefinition struct {
	Name        string
	Description string
	Annotations map[string]any
}

// Rule is a class-level pre/post-condition pair (C7).
type Rule struct {
	Description    string
	Preconditions  []*RuleCondition
	Postconditions []*RuleCondition
}

// RuleCondition is a single slot-shaped predicate used in a Rule, or a
// free-form expression string evaluated against the instance.
type RuleCondition struct {
	SlotName   string
	Expression string
	Presence   *bool // non-nil: require the slot to be present/absent
	Equals     *Value
}

// OrderedMap is a name-keyed map that preserves insertion order, used for
// every element table in Schema (classes, slots, types, enums, subsets) and
// for per-class local attributes.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set inserts or overwrites the value for key, preserving first-seen order.
func (m *OrderedMap[V]) Set(key string, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get retrieves the value for key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key from the map.
func (m *OrderedMap[V]) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Clone returns a shallow copy (values are not deep-copied).
func (m *OrderedMap[V]) Clone() *OrderedMap[V] {
	c := NewOrderedMap[V]()
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// ToMap returns a snapshot plain map (order is lost).
func (m *OrderedMap[V]) ToMap() map[string]V {
	out := make(map[string]V, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
