package linkmlio

import (
	"encoding/json"
	"fmt"

	yaml "github.com/goccy/go-yaml"

	"github.com/simonckemper/linkml-rs-sub001"
	"github.com/simonckemper/linkml-rs-sub001/expr"
)

// SchemaParser decodes LinkML schema documents in YAML or JSON into
// linkml.Schema, implementing linkml.Parser. YAML decoding uses
// github.com/goccy/go-yaml;
// JSON decoding uses encoding/json since LinkML's JSON form is already
// structurally identical to its YAML form and needs no special handling.
type SchemaParser struct{}

// NewSchemaParser returns a ready-to-use SchemaParser.
func NewSchemaParser() *SchemaParser { return &SchemaParser{} }

// Parse implements linkml.Parser.
func (p *SchemaParser) Parse(data []byte, format string) (*linkml.Schema, error) {
	var doc yamlSchema

	switch format {
	case "json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding JSON schema: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding YAML schema: %w", err)
		}
	}

	return doc.toSchema(), nil
}

// yamlSchema mirrors the on-disk LinkML schema document shape.
type yamlSchema struct {
	ID       string                   `yaml:"id" json:"id"`
	Name     string                   `yaml:"name" json:"name"`
	Version  string                   `yaml:"version" json:"version"`
	License  string                   `yaml:"license" json:"license"`
	Imports  []string                 `yaml:"imports" json:"imports"`
	Prefixes map[string]string        `yaml:"prefixes" json:"prefixes"`
	Classes  map[string]yamlClass     `yaml:"classes" json:"classes"`
	Slots    map[string]yamlSlot      `yaml:"slots" json:"slots"`
	Types    map[string]yamlType      `yaml:"types" json:"types"`
	Enums    map[string]yamlEnum      `yaml:"enums" json:"enums"`
	Subsets  map[string]yamlSubset    `yaml:"subsets" json:"subsets"`
}

type yamlClass struct {
	Description string               `yaml:"description" json:"description"`
	Abstract    bool                 `yaml:"abstract" json:"abstract"`
	TreeRoot    bool                 `yaml:"tree_root" json:"tree_root"`
	IsA         string               `yaml:"is_a" json:"is_a"`
	Mixins      []string             `yaml:"mixins" json:"mixins"`
	Slots       []string             `yaml:"slots" json:"slots"`
	Attributes  map[string]yamlSlot  `yaml:"attributes" json:"attributes"`
	SlotUsage   map[string]yamlSlot  `yaml:"slot_usage" json:"slot_usage"`
	Rules       []yamlRule           `yaml:"rules" json:"rules"`
	UniqueKeys  map[string][]string  `yaml:"unique_keys" json:"unique_keys"`
	ClassURI    string               `yaml:"class_uri" json:"class_uri"`
	Annotations map[string]any       `yaml:"annotations" json:"annotations"`
}

type yamlSlot struct {
	Description        string          `yaml:"description" json:"description"`
	Range               string         `yaml:"range" json:"range"`
	Required             *bool         `yaml:"required" json:"required"`
	Multivalued          *bool         `yaml:"multivalued" json:"multivalued"`
	Identifier           bool          `yaml:"identifier" json:"identifier"`
	Pattern              string        `yaml:"pattern" json:"pattern"`
	MinimumValue         any           `yaml:"minimum_value" json:"minimum_value"`
	MaximumValue         any           `yaml:"maximum_value" json:"maximum_value"`
	MinimumCardinality   *int          `yaml:"minimum_cardinality" json:"minimum_cardinality"`
	MaximumCardinality   *int          `yaml:"maximum_cardinality" json:"maximum_cardinality"`
	AnyOf                []yamlSlot    `yaml:"any_of" json:"any_of"`
	AllOf                []yamlSlot    `yaml:"all_of" json:"all_of"`
	ExactlyOneOf         []yamlSlot    `yaml:"exactly_one_of" json:"exactly_one_of"`
	NoneOf               []yamlSlot    `yaml:"none_of" json:"none_of"`
	IsA                  string        `yaml:"is_a" json:"is_a"`
	Mixins               []string      `yaml:"mixins" json:"mixins"`
	SlotURI              string        `yaml:"slot_uri" json:"slot_uri"`
	Inlined              *bool         `yaml:"inlined" json:"inlined"`
	InlinedAsList        *bool         `yaml:"inlined_as_list" json:"inlined_as_list"`
	Annotations          map[string]any `yaml:"annotations" json:"annotations"`
}

type yamlType struct {
	BaseType    string          `yaml:"typeof" json:"typeof"`
	URI         string          `yaml:"uri" json:"uri"`
	Pattern     string          `yaml:"pattern" json:"pattern"`
	MinimumValue any            `yaml:"minimum_value" json:"minimum_value"`
	MaximumValue any            `yaml:"maximum_value" json:"maximum_value"`
	Annotations  map[string]any `yaml:"annotations" json:"annotations"`
}

type yamlEnum struct {
	PermissibleValues map[string]yamlPermissibleValue `yaml:"permissible_values" json:"permissible_values"`
	Annotations       map[string]any                  `yaml:"annotations" json:"annotations"`
}

type yamlPermissibleValue struct {
	Description string `yaml:"description" json:"description"`
	Meaning     string `yaml:"meaning" json:"meaning"`
}

type yamlSubset struct {
	Description string          `yaml:"description" json:"description"`
	Annotations map[string]any `yaml:"annotations" json:"annotations"`
}

type yamlRule struct {
	Description    string              `yaml:"description" json:"description"`
	Preconditions  []yamlRuleCondition `yaml:"preconditions" json:"preconditions"`
	Postconditions []yamlRuleCondition `yaml:"postconditions" json:"postconditions"`
}

type yamlRuleCondition struct {
	SlotName   string `yaml:"slot_name" json:"slot_name"`
	Expression string `yaml:"expression" json:"expression"`
	Presence   *bool  `yaml:"presence" json:"presence"`
	Equals     any    `yaml:"equals" json:"equals"`
}

func (d *yamlSchema) toSchema() *linkml.Schema {
	s := linkml.NewSchema(d.Name)
	s.ID = d.ID
	s.Version = d.Version
	s.License = d.License
	s.Imports = d.Imports
	if d.Prefixes != nil {
		s.Prefixes = d.Prefixes
	}

	for name, c := range d.Classes {
		s.Classes.Set(name, c.toClassDefinition(name))
	}
	for name, sl := range d.Slots {
		s.Slots.Set(name, sl.toSlotDefinition(name))
	}
	for name, t := range d.Types {
		s.Types.Set(name, t.toTypeDefinition(name))
	}
	for name, e := range d.Enums {
		s.Enums.Set(name, e.toEnumDefinition(name))
	}
	for name, sub := range d.Subsets {
		s.Subsets.Set(name, &linkml.SubsetDefinition{
			Name: name, Description: sub.Description, Annotations: sub.Annotations,
		})
	}

	return s
}

func (c yamlClass) toClassDefinition(name string) *linkml.ClassDefinition {
	out := &linkml.ClassDefinition{
		Name:        name,
		Description: c.Description,
		Abstract:    c.Abstract,
		TreeRoot:    c.TreeRoot,
		IsA:         c.IsA,
		Mixins:      c.Mixins,
		Slots:       c.Slots,
		Attributes:  linkml.NewOrderedMap[*linkml.SlotDefinition](),
		Rules:       make([]*linkml.Rule, 0, len(c.Rules)),
		UniqueKeys:  c.UniqueKeys,
		ClassURI:    c.ClassURI,
		Annotations: c.Annotations,
	}
	for attrName, attr := range c.Attributes {
		out.Attributes.Set(attrName, attr.toSlotDefinition(attrName))
	}
	if len(c.SlotUsage) > 0 {
		out.SlotUsage = make(map[string]*linkml.SlotDefinition, len(c.SlotUsage))
		for slotName, usage := range c.SlotUsage {
			out.SlotUsage[slotName] = usage.toSlotDefinition(slotName)
		}
	}
	for _, r := range c.Rules {
		out.Rules = append(out.Rules, r.toRule())
	}
	return out
}

func (s yamlSlot) toSlotDefinition(name string) *linkml.SlotDefinition {
	out := &linkml.SlotDefinition{Name: name}

	setStr := func(field string, v string, dst *string) {
		if v != "" {
			*dst = v
			out.MarkSet(field)
		}
	}
	// MarkSet keys are the LinkML on-disk (snake_case) field names, not Go
	// field names: applySlotUsage/mergeSlotInto switch on these same keys
	// to decide which fields a slot_usage override explicitly touches.
	setStr("description", s.Description, &out.Description)
	setStr("range", s.Range, &out.Range)
	setStr("pattern", s.Pattern, &out.Pattern)
	setStr("is_a", s.IsA, &out.IsA)
	setStr("slot_uri", s.SlotURI, &out.SlotURI)

	if s.Required != nil {
		out.Required = s.Required
		out.MarkSet("required")
	}
	if s.Multivalued != nil {
		out.Multivalued = s.Multivalued
		out.MarkSet("multivalued")
	}
	if s.Identifier {
		out.Identifier = true
		out.MarkSet("identifier")
	}
	if s.MinimumCardinality != nil {
		out.MinimumCardinality = s.MinimumCardinality
		out.MarkSet("minimum_cardinality")
	}
	if s.MaximumCardinality != nil {
		out.MaximumCardinality = s.MaximumCardinality
		out.MarkSet("maximum_cardinality")
	}
	if s.MinimumValue != nil {
		v := ValueFromAny(s.MinimumValue)
		out.MinimumValue = &v
		out.MarkSet("minimum_value")
	}
	if s.MaximumValue != nil {
		v := ValueFromAny(s.MaximumValue)
		out.MaximumValue = &v
		out.MarkSet("maximum_value")
	}
	if len(s.Mixins) > 0 {
		out.Mixins = s.Mixins
		out.MarkSet("mixins")
	}
	if s.Inlined != nil {
		out.Inlined = s.Inlined
		out.MarkSet("inlined")
	}
	if s.InlinedAsList != nil {
		out.InlinedAsList = s.InlinedAsList
		out.MarkSet("inlined_as_list")
	}
	if len(s.Annotations) > 0 {
		out.Annotations = s.Annotations
		out.MarkSet("annotations")
	}
	if len(s.AnyOf) > 0 {
		out.AnyOf = toSlotDefs(s.AnyOf, name)
		out.MarkSet("any_of")
	}
	if len(s.AllOf) > 0 {
		out.AllOf = toSlotDefs(s.AllOf, name)
		out.MarkSet("all_of")
	}
	if len(s.ExactlyOneOf) > 0 {
		out.ExactlyOneOf = toSlotDefs(s.ExactlyOneOf, name)
		out.MarkSet("exactly_one_of")
	}
	if len(s.NoneOf) > 0 {
		out.NoneOf = toSlotDefs(s.NoneOf, name)
		out.MarkSet("none_of")
	}

	return out
}

func toSlotDefs(list []yamlSlot, name string) []*linkml.SlotDefinition {
	out := make([]*linkml.SlotDefinition, len(list))
	for i, s := range list {
		out[i] = s.toSlotDefinition(name)
	}
	return out
}

func (t yamlType) toTypeDefinition(name string) *linkml.TypeDefinition {
	out := &linkml.TypeDefinition{
		Name: name, BaseType: t.BaseType, URI: t.URI, Pattern: t.Pattern, Annotations: t.Annotations,
	}
	if t.MinimumValue != nil {
		v := ValueFromAny(t.MinimumValue)
		out.MinimumValue = &v
	}
	if t.MaximumValue != nil {
		v := ValueFromAny(t.MaximumValue)
		out.MaximumValue = &v
	}
	return out
}

func (e yamlEnum) toEnumDefinition(name string) *linkml.EnumDefinition {
	out := &linkml.EnumDefinition{Name: name, Annotations: e.Annotations}
	for text, pv := range e.PermissibleValues {
		out.PermissibleValues = append(out.PermissibleValues, &linkml.PermissibleValue{
			Text: text, Description: pv.Description, Meaning: pv.Meaning,
		})
	}
	return out
}

func (r yamlRule) toRule() *linkml.Rule {
	out := &linkml.Rule{Description: r.Description}
	for _, c := range r.Preconditions {
		out.Preconditions = append(out.Preconditions, c.toRuleCondition())
	}
	for _, c := range r.Postconditions {
		out.Postconditions = append(out.Postconditions, c.toRuleCondition())
	}
	return out
}

func (c yamlRuleCondition) toRuleCondition() *linkml.RuleCondition {
	out := &linkml.RuleCondition{SlotName: c.SlotName, Expression: c.Expression, Presence: c.Presence}
	if c.Equals != nil {
		v := ValueFromAny(c.Equals)
		out.Equals = &v
	}
	return out
}

// ValueFromAny converts a YAML/JSON-decoded scalar (string, float64, bool,
// nil, []any, map[string]any) into a linkml.Value.
func ValueFromAny(v any) linkml.Value {
	switch t := v.(type) {
	case nil:
		return linkml.Null
	case bool:
		return linkml.BoolValue(t)
	case string:
		return linkml.StringValue(t)
	case int:
		return linkml.IntValue(int64(t))
	case int64:
		return linkml.IntValue(t)
	case float64:
		if t == float64(int64(t)) {
			return linkml.IntValue(int64(t))
		}
		return linkml.FloatValue(t)
	case []any:
		items := make([]linkml.Value, len(t))
		for i, e := range t {
			items[i] = ValueFromAny(e)
		}
		return linkml.ArrayValue(items)
	case map[string]any:
		fields := expr.NewOrderedValues()
		for k, e := range t {
			fields.Set(k, ValueFromAny(e))
		}
		return linkml.ObjectValue(fields)
	default:
		return linkml.StringValue(fmt.Sprintf("%v", t))
	}
}
