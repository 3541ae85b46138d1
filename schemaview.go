package linkml

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// SchemaView is the denormalization engine: it owns a merged schema plus
// the induced-class and usage-index caches behind a single RWMutex, the
// same many-reader/single-writer discipline a shared immutable Schema handle needs
// for its element tables. Readers (induced_class, class_ancestors, ...)
// take RLock; cache inserts and materialize_patterns take the writer lock.
type SchemaView struct {
	mu     sync.RWMutex
	schema *Schema

	inducedClassCache map[string]*ClassDefinition
	patternCache      map[string]*regexp.Regexp
	usageIdx          map[string][]UsageRef
	usageBuilt        bool

	log Logger
}

// NewSchemaView wraps an already-merged Schema (the output of the import
// resolver, C5) in a SchemaView ready for induced-view queries.
func NewSchemaView(schema *Schema, log Logger) *SchemaView {
	return &SchemaView{
		schema:            schema,
		inducedClassCache: make(map[string]*ClassDefinition),
		patternCache:      make(map[string]*regexp.Regexp),
		log:               log,
	}
}

// UsageRef is one entry in the usage index: element (kind, name) references
// target via relation.
type UsageRef struct {
	Kind     string // "class", "slot", "type", "enum"
	Name     string
	Relation string // "is_a", "mixin", "slots", "range", "rule_expr", "uri_curie"
}

// SchemaName, SchemaID, GetPrefixes, GetPrefix are thin accessors over the
// merged schema's top-level fields (§10 supplemented features).

func (sv *SchemaView) SchemaName() string {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Name
}

func (sv *SchemaView) SchemaID() string {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.ID
}

// RawSchema returns the merged (post-import) Schema document this view
// denormalizes, for callers like the diff package that compare raw
// declarations rather than induced ones.
func (sv *SchemaView) RawSchema() *Schema {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema
}

func (sv *SchemaView) GetPrefixes() map[string]string {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	out := make(map[string]string, len(sv.schema.Prefixes))
	for k, v := range sv.schema.Prefixes {
		out[k] = v
	}
	return out
}

func (sv *SchemaView) GetPrefix(name string) (string, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	v, ok := sv.schema.Prefixes[name]
	return v, ok
}

// AllClasses, AllSlots, AllTypes, AllEnums, AllSubsets return snapshot maps
// of the merged schema's element tables.

func (sv *SchemaView) AllClasses() map[string]*ClassDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Classes.ToMap()
}

func (sv *SchemaView) AllSlots() map[string]*SlotDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Slots.ToMap()
}

func (sv *SchemaView) AllTypes() map[string]*TypeDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Types.ToMap()
}

func (sv *SchemaView) AllEnums() map[string]*EnumDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Enums.ToMap()
}

func (sv *SchemaView) AllSubsets() map[string]*SubsetDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Subsets.ToMap()
}

// GetClass, GetSlot, GetType, GetEnum, GetSubset look up a single element by
// name, returning ok=false rather than an error ("Some|None" lookup style).

func (sv *SchemaView) GetClass(name string) (*ClassDefinition, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Classes.Get(name)
}

func (sv *SchemaView) GetSlot(name string) (*SlotDefinition, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Slots.Get(name)
}

func (sv *SchemaView) GetType(name string) (*TypeDefinition, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Types.Get(name)
}

func (sv *SchemaView) GetEnum(name string) (*EnumDefinition, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Enums.Get(name)
}

func (sv *SchemaView) GetSubset(name string) (*SubsetDefinition, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	return sv.schema.Subsets.Get(name)
}

// GetElement searches classes, then slots, then types, then enums for name,
// returning a tagged (kind, element) pair.
func (sv *SchemaView) GetElement(name string) (kind string, element any, ok bool) {
	if c, ok := sv.GetClass(name); ok {
		return "class", c, true
	}
	if s, ok := sv.GetSlot(name); ok {
		return "slot", s, true
	}
	if t, ok := sv.GetType(name); ok {
		return "type", t, true
	}
	if e, ok := sv.GetEnum(name); ok {
		return "enum", e, true
	}
	return "", nil, false
}

// ClassParents returns the direct is_a parent (if any) unioned with mixins.
func (sv *SchemaView) ClassParents(name string) ([]string, error) {
	c, ok := sv.GetClass(name)
	if !ok {
		return nil, newError(ErrElementNotFound, "class %q not found", name)
	}
	var out []string
	if c.IsA != "" {
		out = append(out, c.IsA)
	}
	out = append(out, c.Mixins...)
	return out, nil
}

// ClassAncestors returns the ordered list of ancestors by is_a only,
// nearest-first, failing CircularDependency on cycle. It walks an explicit
// worklist with a seen set rather than recursing, per the cycle-safety
// design note.
func (sv *SchemaView) ClassAncestors(name string) ([]string, error) {
	if _, ok := sv.GetClass(name); !ok {
		return nil, newError(ErrElementNotFound, "class %q not found", name)
	}
	var out []string
	seen := map[string]bool{name: true}
	cur := name
	for {
		c, ok := sv.GetClass(cur)
		if !ok || c.IsA == "" {
			break
		}
		if seen[c.IsA] {
			return nil, newError(ErrCircularDependency, "class ancestor cycle detected at %q", c.IsA)
		}
		seen[c.IsA] = true
		out = append(out, c.IsA)
		cur = c.IsA
	}
	return out, nil
}

// ClassChildren returns classes whose is_a equals name or whose mixins
// contain name, deduplicated and sorted.
func (sv *SchemaView) ClassChildren(name string) []string {
	classes := sv.AllClasses()
	seen := map[string]bool{}
	var out []string
	for cname, c := range classes {
		if c.IsA == name || containsStr(c.Mixins, name) {
			if !seen[cname] {
				seen[cname] = true
				out = append(out, cname)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ClassDescendants returns the transitive closure of ClassChildren, visited
// via a worklist with a seen set (never naive recursion).
func (sv *SchemaView) ClassDescendants(name string) []string {
	seen := map[string]bool{}
	var out []string
	worklist := []string{name}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		for _, child := range sv.ClassChildren(cur) {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
				worklist = append(worklist, child)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ClassRoots returns classes with no is_a and no mixins, sorted.
func (sv *SchemaView) ClassRoots() []string {
	var out []string
	for name, c := range sv.AllClasses() {
		if c.IsA == "" && len(c.Mixins) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ClassLeaves returns classes with no children, sorted.
func (sv *SchemaView) ClassLeaves() []string {
	var out []string
	for name := range sv.AllClasses() {
		if len(sv.ClassChildren(name)) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// InducedClass computes the fully resolved class: base clone, ancestor
// merge deepest-first, mixin merge, slot_usage field-wise override, then
// cache.
func (sv *SchemaView) InducedClass(name string) (*ClassDefinition, error) {
	sv.mu.RLock()
	if cached, ok := sv.inducedClassCache[name]; ok {
		sv.mu.RUnlock()
		return cached, nil
	}
	sv.mu.RUnlock()

	base, ok := sv.GetClass(name)
	if !ok {
		return nil, newError(ErrElementNotFound, "class %q not found", name)
	}

	ancestors, err := sv.ClassAncestors(name)
	if err != nil {
		return nil, err
	}

	result := cloneClass(base)

	// Merge ancestors deepest-first: reverse the nearest-first order so the
	// most distant ancestor is applied first. mergeClassInto only fills
	// fields still absent, so the class's own fields win, and among
	// ancestors the most distant one that sets a field supplies it.
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc, ok := sv.GetClass(ancestors[i])
		if !ok {
			return nil, newError(ErrElementNotFound, "ancestor class %q not found", ancestors[i])
		}
		mergeClassInto(result, anc)
	}

	// Merge mixins with the same policy, in declaration order.
	for _, mixinName := range base.Mixins {
		mixin, ok := sv.GetClass(mixinName)
		if !ok {
			return nil, newError(ErrElementNotFound, "mixin class %q not found", mixinName)
		}
		mergeClassInto(result, mixin)
	}

	// Apply slot_usage as a field-wise view transformation over induced
	// slots: any field explicitly set in slot_usage replaces the inherited
	// value; unset fields remain.
	for slotName, override := range result.SlotUsage {
		if attr, ok := result.Attributes.Get(slotName); ok {
			applySlotUsage(attr, override)
		}
	}

	// A class-scoped attribute is itself an induced slot even when it is
	// never named in a `slots:` list, so fold its key into Slots too.
	result.Slots = unionPreserveOrder(result.Slots, result.Attributes.Keys())

	sv.mu.Lock()
	sv.inducedClassCache[name] = result
	sv.mu.Unlock()

	return result, nil
}

// ClassSlots returns induced slot names in declaration order with
// inheritance preserved.
func (sv *SchemaView) ClassSlots(name string) ([]string, error) {
	ic, err := sv.InducedClass(name)
	if err != nil {
		return nil, err
	}
	return ic.Slots, nil
}

// InducedSlot resolves slot by layering: global slot definition, then
// class-level attributes entry field-wise (class wins), then slot_usage
// overrides from the class (wins over both).
func (sv *SchemaView) InducedSlot(slotName, className string) (*SlotDefinition, error) {
	result := &SlotDefinition{Name: slotName}

	if global, ok := sv.GetSlot(slotName); ok {
		mergeSlotInto(result, global)
	}

	class, ok := sv.GetClass(className)
	if !ok {
		return nil, newError(ErrElementNotFound, "class %q not found", className)
	}

	if attr, ok := class.Attributes.Get(slotName); ok {
		mergeSlotInto(result, attr)
	}

	if override, ok := class.SlotUsage[slotName]; ok {
		applySlotUsage(result, override)
	}

	return result, nil
}

// GetIdentifierSlot returns the induced slot with identifier=true, erroring
// if className has no identifier slot at all, or if it has more than one —
// at most one identifier slot per induced class is a schema invariant, not
// a data-validation concern, so ambiguity is reported as ErrAmbiguousIdentifier
// rather than silently picking the first match.
func (sv *SchemaView) GetIdentifierSlot(className string) (*SlotDefinition, error) {
	ic, err := sv.InducedClass(className)
	if err != nil {
		return nil, err
	}
	var found *SlotDefinition
	for _, name := range ic.Slots {
		slot, err := sv.InducedSlot(name, className)
		if err != nil {
			continue
		}
		if slot.Identifier {
			if found != nil {
				return nil, newError(ErrAmbiguousIdentifier,
					"class %q has more than one identifier slot (%q and %q)", className, found.Name, slot.Name)
			}
			found = slot
		}
	}
	if found == nil {
		return nil, newError(ErrElementNotFound, "class %q has no identifier slot", className)
	}
	return found, nil
}

// IsInlined reports whether className has no (unambiguous) identifier
// slot. inlined, inlined_as_list and multivalued settings are not
// consulted.
func (sv *SchemaView) IsInlined(className string) bool {
	_, err := sv.GetIdentifierSlot(className)
	return err != nil
}

// SlotParents, SlotChildren, SlotAncestors, SlotDescendants mirror the
// class operations but walk slot is_a/mixins.

func (sv *SchemaView) SlotParents(name string) ([]string, error) {
	s, ok := sv.GetSlot(name)
	if !ok {
		return nil, newError(ErrElementNotFound, "slot %q not found", name)
	}
	var out []string
	if s.IsA != "" {
		out = append(out, s.IsA)
	}
	out = append(out, s.Mixins...)
	return out, nil
}

func (sv *SchemaView) SlotChildren(name string) []string {
	seen := map[string]bool{}
	var out []string
	for sname, s := range sv.AllSlots() {
		if s.IsA == name || containsStr(s.Mixins, name) {
			if !seen[sname] {
				seen[sname] = true
				out = append(out, sname)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (sv *SchemaView) SlotAncestors(name string) ([]string, error) {
	if _, ok := sv.GetSlot(name); !ok {
		return nil, newError(ErrElementNotFound, "slot %q not found", name)
	}
	var out []string
	seen := map[string]bool{name: true}
	cur := name
	for {
		s, ok := sv.GetSlot(cur)
		if !ok || s.IsA == "" {
			break
		}
		if seen[s.IsA] {
			return nil, newError(ErrCircularDependency, "slot ancestor cycle detected at %q", s.IsA)
		}
		seen[s.IsA] = true
		out = append(out, s.IsA)
		cur = s.IsA
	}
	return out, nil
}

func (sv *SchemaView) SlotDescendants(name string) []string {
	seen := map[string]bool{}
	var out []string
	worklist := []string{name}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		for _, child := range sv.SlotChildren(cur) {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
				worklist = append(worklist, child)
			}
		}
	}
	sort.Strings(out)
	return out
}

// TypeParents, TypeAncestors, TypeChildren, TypeDescendants follow
// base_type. Ancestors/Descendants take a reflexive flag (include the
// starting type itself); ClassAncestors/ClassDescendants have no such
// flag and never include the starting class. An ill-formed (cyclic) base_type graph
// is detected via the same seen-set worklist discipline as class/slot
// walks, and fails CircularDependency.

func (sv *SchemaView) TypeParents(name string) ([]string, error) {
	t, ok := sv.GetType(name)
	if !ok {
		return nil, newError(ErrElementNotFound, "type %q not found", name)
	}
	if t.BaseType == "" {
		return nil, nil
	}
	return []string{t.BaseType}, nil
}

func (sv *SchemaView) TypeAncestors(name string, reflexive bool) ([]string, error) {
	if _, ok := sv.GetType(name); !ok {
		return nil, newError(ErrElementNotFound, "type %q not found", name)
	}
	var out []string
	if reflexive {
		out = append(out, name)
	}
	seen := map[string]bool{name: true}
	cur := name
	for {
		t, ok := sv.GetType(cur)
		if !ok || t.BaseType == "" {
			break
		}
		if seen[t.BaseType] {
			return nil, newError(ErrCircularDependency, "type ancestor cycle detected at %q", t.BaseType)
		}
		seen[t.BaseType] = true
		out = append(out, t.BaseType)
		cur = t.BaseType
	}
	return out, nil
}

func (sv *SchemaView) TypeChildren(name string) []string {
	var out []string
	for tname, t := range sv.AllTypes() {
		if t.BaseType == name {
			out = append(out, tname)
		}
	}
	sort.Strings(out)
	return out
}

func (sv *SchemaView) TypeDescendants(name string, reflexive bool) []string {
	seen := map[string]bool{}
	var out []string
	if reflexive {
		out = append(out, name)
		seen[name] = true
	}
	worklist := []string{name}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		for _, child := range sv.TypeChildren(cur) {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
				worklist = append(worklist, child)
			}
		}
	}
	sort.Strings(out)
	return out
}

// ExpandCurie splits curie at the first ':', looks up the prefix, and
// returns the input unchanged if the prefix is unknown.
func (sv *SchemaView) ExpandCurie(curie string) string {
	idx := strings.Index(curie, ":")
	if idx < 0 {
		return curie
	}
	prefix, local := curie[:idx], curie[idx+1:]
	uri, ok := sv.GetPrefix(prefix)
	if !ok {
		return curie
	}
	return uri + local
}

// GetURI returns the explicit *_uri if set (optionally expanded);
// otherwise schema.id + "/" + element_name if schema id is non-empty;
// otherwise none. Enums never produce a URI.
func (sv *SchemaView) GetURI(kind, name string, expand bool) (string, bool) {
	var explicit string
	switch kind {
	case "class":
		if c, ok := sv.GetClass(name); ok {
			explicit = c.ClassURI
		}
	case "slot":
		if s, ok := sv.GetSlot(name); ok {
			explicit = s.SlotURI
		}
	case "type":
		if t, ok := sv.GetType(name); ok {
			explicit = t.URI
		}
	case "enum":
		return "", false
	}
	if explicit != "" {
		if expand {
			return sv.ExpandCurie(explicit), true
		}
		return explicit, true
	}
	sv.mu.RLock()
	schemaID := sv.schema.ID
	sv.mu.RUnlock()
	if schemaID == "" {
		return "", false
	}
	return schemaID + "/" + name, true
}

// MaterializePatterns derives a compiled regex for every slot with a
// structured_pattern: anchored ^…$ unless partial_match is true; a missing
// pattern string yields ".*". Acquires the writer lock, since this writes
// the compiled patterns into the view's pattern cache.
func (sv *SchemaView) MaterializePatterns() error {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	for _, name := range sv.schema.Slots.Keys() {
		slot, _ := sv.schema.Slots.Get(name)
		if slot.StructuredPattern == nil {
			continue
		}
		pat := slot.StructuredPattern.Pattern
		if pat == "" {
			pat = ".*"
		}
		if !slot.StructuredPattern.PartialMatch {
			pat = "^" + pat + "$"
		}
		compiled, err := regexp.Compile(pat)
		if err != nil {
			return wrapError(ErrSerializationError, err, "compiling structured_pattern for slot %q", name)
		}
		sv.patternCache[name] = compiled
	}
	return nil
}

// CompiledPattern returns a previously materialized pattern for slotName.
func (sv *SchemaView) CompiledPattern(slotName string) (*regexp.Regexp, bool) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	re, ok := sv.patternCache[slotName]
	return re, ok
}

// UsageIndex lazily builds and memoizes the index keyed by element name,
// listing every other element that references it via is_a, mixins, slots,
// attributes.range, slot range, or rule expressions. Class, slot and type
// URIs are not scanned, so no "uri_curie" entry is ever produced.
func (sv *SchemaView) UsageIndex() map[string][]UsageRef {
	sv.mu.RLock()
	if sv.usageBuilt {
		idx := sv.usageIdx
		sv.mu.RUnlock()
		return idx
	}
	sv.mu.RUnlock()

	idx := sv.buildUsageIndex()

	sv.mu.Lock()
	sv.usageIdx = idx
	sv.usageBuilt = true
	sv.mu.Unlock()

	return idx
}

func (sv *SchemaView) buildUsageIndex() map[string][]UsageRef {
	idx := make(map[string][]UsageRef)
	add := func(target, kind, name, relation string) {
		if target == "" {
			return
		}
		idx[target] = append(idx[target], UsageRef{Kind: kind, Name: name, Relation: relation})
	}

	for cname, c := range sv.AllClasses() {
		add(c.IsA, "class", cname, "is_a")
		for _, m := range c.Mixins {
			add(m, "class", cname, "mixin")
		}
		for _, s := range c.Slots {
			add(s, "class", cname, "slots")
		}
		for _, attrName := range c.Attributes.Keys() {
			attr, _ := c.Attributes.Get(attrName)
			add(attr.Range, "class", cname, "range")
		}
		for _, rule := range c.Rules {
			for _, cond := range rule.Preconditions {
				for _, v := range freeVariables(cond.Expression) {
					add(v, "class", cname, "rule_expr")
				}
			}
			for _, cond := range rule.Postconditions {
				for _, v := range freeVariables(cond.Expression) {
					add(v, "class", cname, "rule_expr")
				}
			}
		}
	}
	for sname, s := range sv.AllSlots() {
		add(s.IsA, "slot", sname, "is_a")
		for _, m := range s.Mixins {
			add(m, "slot", sname, "mixin")
		}
		add(s.Range, "slot", sname, "range")
	}
	for tname, t := range sv.AllTypes() {
		add(t.BaseType, "type", tname, "is_a")
	}
	return idx
}

// freeVariables extracts dotted-path root identifiers referenced by a rule
// expression string, used only to populate the usage index (a best-effort
// textual scan, not a full parse).
func freeVariables(expression string) []string {
	if expression == "" {
		return nil
	}
	var out []string
	for _, tok := range strings.FieldsFunc(expression, func(r rune) bool {
		return !(r == '.' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	}) {
		if idx := strings.Index(tok, "."); idx > 0 {
			out = append(out, tok[:idx])
		}
	}
	return out
}

// ClassView and SlotView are read-only convenience snapshots bundling an
// induced element with its ancestor/descendant lists, for callers that
// want one call instead of three (§10 supplemented feature).
type ClassView struct {
	Induced     *ClassDefinition
	Ancestors   []string
	Descendants []string
}

type SlotView struct {
	Induced     *SlotDefinition
	Ancestors   []string
	Descendants []string
}

func (sv *SchemaView) GetClassView(name string) (*ClassView, error) {
	induced, err := sv.InducedClass(name)
	if err != nil {
		return nil, err
	}
	ancestors, err := sv.ClassAncestors(name)
	if err != nil {
		return nil, err
	}
	return &ClassView{
		Induced:     induced,
		Ancestors:   ancestors,
		Descendants: sv.ClassDescendants(name),
	}, nil
}

func (sv *SchemaView) GetSlotView(slotName, className string) (*SlotView, error) {
	induced, err := sv.InducedSlot(slotName, className)
	if err != nil {
		return nil, err
	}
	ancestors, err := sv.SlotAncestors(slotName)
	if err != nil {
		return nil, err
	}
	return &SlotView{
		Induced:     induced,
		Ancestors:   ancestors,
		Descendants: sv.SlotDescendants(slotName),
	}, nil
}

// AnnotationDict flattens an element's annotations map for generator
// consumption (§10 supplemented feature).
func (sv *SchemaView) AnnotationDict(kind, name string) map[string]any {
	switch kind {
	case "class":
		if c, ok := sv.GetClass(name); ok {
			return c.Annotations
		}
	case "slot":
		if s, ok := sv.GetSlot(name); ok {
			return s.Annotations
		}
	case "type":
		if t, ok := sv.GetType(name); ok {
			return t.Annotations
		}
	case "enum":
		if e, ok := sv.GetEnum(name); ok {
			return e.Annotations
		}
	}
	return nil
}

// InSubset reports whether element is tagged with subset, via its
// annotations' "in_subset" list convention.
func (sv *SchemaView) InSubset(kind, name, subset string) bool {
	ann := sv.AnnotationDict(kind, name)
	if ann == nil {
		return false
	}
	raw, ok := ann["in_subset"]
	if !ok {
		return false
	}
	list, ok := raw.([]string)
	if !ok {
		return false
	}
	return containsStr(list, subset)
}

func containsStr(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
