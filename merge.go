package linkml

// cloneClass returns a shallow copy of c suitable as the starting point for
// induced-class resolution (base class clone, the first step of merging
// ancestors into an induced class).
func cloneClass(c *ClassDefinition) *ClassDefinition {
	out := &ClassDefinition{
		Name:        c.Name,
		Description: c.Description,
		Abstract:    c.Abstract,
		TreeRoot:    c.TreeRoot,
		IsA:         c.IsA,
		Mixins:      append([]string(nil), c.Mixins...),
		Slots:       append([]string(nil), c.Slots...),
		Attributes:  NewOrderedMap[*SlotDefinition](),
		SlotUsage:   make(map[string]*SlotDefinition, len(c.SlotUsage)),
		Rules:       append([]*Rule(nil), c.Rules...),
		UniqueKeys:  make(map[string][]string, len(c.UniqueKeys)),
		ClassURI:    c.ClassURI,
		Annotations: c.Annotations,
	}
	if c.Attributes != nil {
		for _, k := range c.Attributes.Keys() {
			v, _ := c.Attributes.Get(k)
			out.Attributes.Set(k, cloneSlot(v))
		}
	}
	for k, v := range c.SlotUsage {
		out.SlotUsage[k] = v
	}
	for k, v := range c.UniqueKeys {
		out.UniqueKeys[k] = v
	}
	return out
}

// cloneSlot returns a shallow copy of s.
func cloneSlot(s *SlotDefinition) *SlotDefinition {
	if s == nil {
		return nil
	}
	c := *s
	c.Mixins = append([]string(nil), s.Mixins...)
	c.AnyOf = append([]*SlotDefinition(nil), s.AnyOf...)
	c.AllOf = append([]*SlotDefinition(nil), s.AllOf...)
	c.ExactlyOneOf = append([]*SlotDefinition(nil), s.ExactlyOneOf...)
	c.NoneOf = append([]*SlotDefinition(nil), s.NoneOf...)
	if s.setFields != nil {
		c.setFields = make(map[string]bool, len(s.setFields))
		for k, v := range s.setFields {
			c.setFields[k] = v
		}
	}
	return &c
}

// mergeClassInto merges ancestor's properties into result: union slots
// preserving order without duplicates, fill missing attributes, fill
// description if absent. Only absent fields on the receiver are
// populated — an only-fill-absent-fields merge.
func mergeClassInto(result, ancestor *ClassDefinition) {
	result.Slots = unionPreserveOrder(result.Slots, ancestor.Slots)

	if ancestor.Attributes != nil {
		for _, name := range ancestor.Attributes.Keys() {
			if _, exists := result.Attributes.Get(name); !exists {
				v, _ := ancestor.Attributes.Get(name)
				result.Attributes.Set(name, cloneSlot(v))
			}
		}
	}

	if result.Description == "" {
		result.Description = ancestor.Description
	}
	if len(result.Rules) == 0 {
		result.Rules = append(result.Rules, ancestor.Rules...)
	}
	for k, v := range ancestor.UniqueKeys {
		if _, exists := result.UniqueKeys[k]; !exists {
			result.UniqueKeys[k] = v
		}
	}
	for k, v := range ancestor.SlotUsage {
		if _, exists := result.SlotUsage[k]; !exists {
			result.SlotUsage[k] = v
		}
	}
}

// unionPreserveOrder appends items from b not already present in a,
// preserving a's order and first-seen order from b.
func unionPreserveOrder(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := append([]string(nil), a...)
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// mergeSlotInto applies the field-wise merge used by induced_slot: every
// field that is non-empty on src replaces the corresponding field on dst
// (src wins); description and identifier also replace dst when src marks
// them set. dst's setFields are left unchanged.
func mergeSlotInto(dst, src *SlotDefinition) {
	if src == nil {
		return
	}
	if src.IsSet("description") || (dst.Description == "" && src.Description != "") {
		dst.Description = src.Description
	}
	if src.Range != "" {
		dst.Range = src.Range
	}
	if src.Required != nil {
		dst.Required = src.Required
	}
	if src.Multivalued != nil {
		dst.Multivalued = src.Multivalued
	}
	if src.IsSet("identifier") || src.Identifier {
		dst.Identifier = src.Identifier
	}
	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}
	if src.StructuredPattern != nil {
		dst.StructuredPattern = src.StructuredPattern
	}
	if src.MinimumValue != nil {
		dst.MinimumValue = src.MinimumValue
	}
	if src.MaximumValue != nil {
		dst.MaximumValue = src.MaximumValue
	}
	if src.MinimumCardinality != nil {
		dst.MinimumCardinality = src.MinimumCardinality
	}
	if src.MaximumCardinality != nil {
		dst.MaximumCardinality = src.MaximumCardinality
	}
	if len(src.AnyOf) > 0 {
		dst.AnyOf = src.AnyOf
	}
	if len(src.AllOf) > 0 {
		dst.AllOf = src.AllOf
	}
	if len(src.ExactlyOneOf) > 0 {
		dst.ExactlyOneOf = src.ExactlyOneOf
	}
	if len(src.NoneOf) > 0 {
		dst.NoneOf = src.NoneOf
	}
	if src.SlotURI != "" {
		dst.SlotURI = src.SlotURI
	}
	if src.Inlined != nil {
		dst.Inlined = src.Inlined
	}
	if src.InlinedAsList != nil {
		dst.InlinedAsList = src.InlinedAsList
	}
	if src.Annotations != nil {
		dst.Annotations = src.Annotations
	}
}

// applySlotUsage applies override onto dst, replacing only fields the
// source document explicitly set on override: any field explicitly set in
// slot_usage replaces the inherited value, unset fields remain.
func applySlotUsage(dst, override *SlotDefinition) {
	if override == nil {
		return
	}
	for field := range override.setFields {
		switch field {
		case "description":
			dst.Description = override.Description
		case "range":
			dst.Range = override.Range
		case "required":
			dst.Required = override.Required
		case "multivalued":
			dst.Multivalued = override.Multivalued
		case "identifier":
			dst.Identifier = override.Identifier
		case "pattern":
			dst.Pattern = override.Pattern
		case "structured_pattern":
			dst.StructuredPattern = override.StructuredPattern
		case "minimum_value":
			dst.MinimumValue = override.MinimumValue
		case "maximum_value":
			dst.MaximumValue = override.MaximumValue
		case "minimum_cardinality":
			dst.MinimumCardinality = override.MinimumCardinality
		case "maximum_cardinality":
			dst.MaximumCardinality = override.MaximumCardinality
		case "any_of":
			dst.AnyOf = override.AnyOf
		case "all_of":
			dst.AllOf = override.AllOf
		case "exactly_one_of":
			dst.ExactlyOneOf = override.ExactlyOneOf
		case "none_of":
			dst.NoneOf = override.NoneOf
		case "slot_uri":
			dst.SlotURI = override.SlotURI
		case "inlined":
			dst.Inlined = override.Inlined
		case "inlined_as_list":
			dst.InlinedAsList = override.InlinedAsList
		case "annotations":
			dst.Annotations = override.Annotations
		}
	}
}
