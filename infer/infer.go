// Package infer implements the schema introspector (C10): it collects
// occurrence statistics over a corpus of sample documents and turns them
// into a seed linkml.Schema. Grounded on MacroPower-x/magicschema's
// infer.go (the pluggable value-to-type inferencer and type-widening
// rule) and merge.go (per-key union merge across documents), adapted from
// JSON-Schema-shaped sampling to LinkML classes/slots and from
// property-bag merging to parent->child occurrence counting.
package infer

import (
	"regexp"
	"sort"

	"github.com/simonckemper/linkml-rs-sub001"
)

// ElementSample is one occurrence of a named element (object) seen while
// walking a sample document, with its attribute and child-element values.
// A caller walks its own document model (XML, YAML, JSON, ...) and emits
// one ElementSample per element instance.
type ElementSample struct {
	Name       string
	Parent     string // "" for a document root
	Attributes map[string]string
	Children   []ElementSample
	Text       string
	Namespace  string
}

// occurrence tracks how many parent instances saw a given child (or
// attribute) at least once, and the largest count seen in a single parent
// instance, which drives the required/multivalued inference. The
// denominator for "required" is the parent element's total instance count
// (stats.elementCount[parentName]), not a count local to occurrence,
// since a parent instance that never mentions a child at all never
// touches this struct.
type occurrence struct {
	parentsWithAny int
	maxPerParent   int
	valueSamples   []string
}

// DocumentStats accumulates occurrence counts, value samples and detected
// namespaces across every document passed to Collect.
type DocumentStats struct {
	elementParents  map[string]map[string]int // element -> set of parent names seen
	attrOccurrence  map[string]map[string]*occurrence // element -> attr name -> occurrence
	childOccurrence map[string]map[string]*occurrence // element -> child element name -> occurrence
	textSamples     map[string][]string
	mixedContent    map[string]bool
	namespaces      map[string]bool
	roots           map[string]bool
	elementCount    map[string]int
}

// NewDocumentStats returns an empty stats accumulator.
func NewDocumentStats() *DocumentStats {
	return &DocumentStats{
		elementParents:  make(map[string]map[string]int),
		attrOccurrence:  make(map[string]map[string]*occurrence),
		childOccurrence: make(map[string]map[string]*occurrence),
		textSamples:     make(map[string][]string),
		mixedContent:    make(map[string]bool),
		namespaces:      make(map[string]bool),
		roots:           make(map[string]bool),
		elementCount:    make(map[string]int),
	}
}

// Collect walks sample (a single document's root element) and folds its
// occurrences into stats. Call once per sample document.
func (s *DocumentStats) Collect(root ElementSample) {
	s.roots[root.Name] = true
	s.collectElement(root)
}

func (s *DocumentStats) collectElement(el ElementSample) {
	s.elementCount[el.Name]++
	if el.Namespace != "" {
		s.namespaces[el.Namespace] = true
	}
	if el.Parent != "" {
		if s.elementParents[el.Name] == nil {
			s.elementParents[el.Name] = make(map[string]int)
		}
		s.elementParents[el.Name][el.Parent]++
	}

	if el.Text != "" {
		s.textSamples[el.Name] = append(s.textSamples[el.Name], el.Text)
		if len(el.Children) > 0 {
			s.mixedContent[el.Name] = true
		}
	}

	if len(el.Attributes) > 0 {
		if s.attrOccurrence[el.Name] == nil {
			s.attrOccurrence[el.Name] = make(map[string]*occurrence)
		}
		occMap := s.attrOccurrence[el.Name]
		for attrName, value := range el.Attributes {
			occ := occMap[attrName]
			if occ == nil {
				occ = &occurrence{}
				occMap[attrName] = occ
			}
			occ.parentsWithAny++
			occ.maxPerParent = 1 // attributes are single-valued by construction
			if len(occ.valueSamples) < 20 {
				occ.valueSamples = append(occ.valueSamples, value)
			}
		}
	}

	if len(el.Children) > 0 {
		if s.childOccurrence[el.Name] == nil {
			s.childOccurrence[el.Name] = make(map[string]*occurrence)
		}
		counts := make(map[string]int, len(el.Children))
		for _, child := range el.Children {
			counts[child.Name]++
		}
		occMap := s.childOccurrence[el.Name]
		for childName, count := range counts {
			occ := occMap[childName]
			if occ == nil {
				occ = &occurrence{}
				occMap[childName] = occ
			}
			occ.parentsWithAny++
			if count > occ.maxPerParent {
				occ.maxPerParent = count
			}
		}
	}

	for _, child := range el.Children {
		if child.Parent == "" {
			child.Parent = el.Name
		}
		s.collectElement(child)
	}
}

// TypeInferencer guesses a LinkML range name from a set of string value
// samples drawn from one attribute or leaf element, in the
// "widen on conflict" style of infer.go's inferType/widenType.
type TypeInferencer func(samples []string) string

var (
	integerPattern  = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern    = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+([eE][+-]?[0-9]+)?$`)
	datetimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	booleanPattern  = regexp.MustCompile(`^(?i:true|false)$`)
)

// DefaultTypeInferencer is the built-in inferencer: integer if every
// sample parses as an integer, else float, else datetime/date by regex,
// else boolean, else string. An empty sample set infers "string" (the
// maximally permissive default, mirroring the magicschema convention of
// returning "" for null/empty and letting the caller widen).
func DefaultTypeInferencer(samples []string) string {
	if len(samples) == 0 {
		return "string"
	}

	candidate := classifyScalar(samples[0])
	for _, s := range samples[1:] {
		candidate = widenRangeFor(candidate, classifyScalar(s))
	}
	if candidate == "" {
		return "string"
	}
	return candidate
}

func classifyScalar(s string) string {
	switch {
	case integerPattern.MatchString(s):
		return "integer"
	case floatPattern.MatchString(s):
		return "float"
	case datetimePattern.MatchString(s):
		return "datetime"
	case datePattern.MatchString(s):
		return "date"
	case booleanPattern.MatchString(s):
		return "boolean"
	default:
		return "string"
	}
}

// widenRangeFor merges two inferred range names the same way
// magicschema's widenType merges JSON Schema type strings: identical
// types pass through, integer widens to float and date widens to datetime
// on conflict, anything else falls back to the maximally permissive
// "string".
func widenRangeFor(a, b string) string {
	if a == b {
		return a
	}
	if (a == "integer" && b == "float") || (a == "float" && b == "integer") {
		return "float"
	}
	if (a == "date" && b == "datetime") || (a == "datetime" && b == "date") {
		return "datetime"
	}
	return "string"
}

// Options configures GenerateSchema.
type Options struct {
	Inferencer        TypeInferencer
	RequiredThreshold float64 // fraction of parents that must contain a child/attr for it to count required; default 1.0
}

// Option configures a GenerateSchema call, following magicschema's
// Generator option-function construction style.
type Option func(*Options)

// WithInferencer overrides the default type inferencer.
func WithInferencer(fn TypeInferencer) Option {
	return func(o *Options) { o.Inferencer = fn }
}

// WithRequiredThreshold overrides the fraction of parent occurrences a
// child/attribute must appear in to be treated as required.
func WithRequiredThreshold(frac float64) Option {
	return func(o *Options) { o.RequiredThreshold = frac }
}

func defaultOptions() Options {
	return Options{Inferencer: DefaultTypeInferencer, RequiredThreshold: 1.0}
}

// GenerateSchema builds a seed linkml.Schema named schemaID from stats: one
// class per distinct element name, one slot per attribute and per child
// element, required iff every parent instance contained it, multivalued
// iff any parent instance had more than one, and range inferred from value
// samples. Format detection tags schema.Name with a recognized format
// label when a diagnostic root element or namespace is present.
func GenerateSchema(stats *DocumentStats, schemaID string, opts ...Option) *linkml.Schema {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	schema := linkml.NewSchema(schemaID)
	schema.ID = schemaID

	for _, elementName := range sortedKeys(stats.elementCount) {
		class := &linkml.ClassDefinition{
			Name:       elementName,
			Attributes: linkml.NewOrderedMap[*linkml.SlotDefinition](),
		}
		if stats.roots[elementName] {
			class.TreeRoot = true
		}

		totalParents := stats.elementCount[elementName]

		for _, attrName := range sortedOccKeys(stats.attrOccurrence[elementName]) {
			occ := stats.attrOccurrence[elementName][attrName]
			slot := buildSlot(attrName, occ, totalParents, o)
			class.Attributes.Set(attrName, slot)
		}

		for _, childName := range sortedOccKeys(stats.childOccurrence[elementName]) {
			occ := stats.childOccurrence[elementName][childName]
			slot := buildSlot(childName, occ, totalParents, o)
			slot.Range = childName
			if isLeafElement(stats, childName) {
				if samples := stats.textSamples[childName]; len(samples) > 0 {
					slot.Range = o.Inferencer(samples)
					slot.MarkSet("range")
				}
			}
			class.Attributes.Set(childName, slot)
		}

		if stats.mixedContent[elementName] {
			class.Annotations = map[string]any{"mixed_content": true}
		}

		schema.Classes.Set(elementName, class)
	}

	if format := detectFormat(stats); format != "" {
		schema.Name = format
	}

	return schema
}

func buildSlot(name string, occ *occurrence, totalParents int, o Options) *linkml.SlotDefinition {
	slot := &linkml.SlotDefinition{Name: name, Range: "string"}

	required := totalParents > 0 && float64(occ.parentsWithAny)/float64(totalParents) >= o.RequiredThreshold
	multivalued := occ.maxPerParent > 1

	slot.Required = boolPtr(required)
	slot.Multivalued = boolPtr(multivalued)
	slot.MarkSet("required")
	slot.MarkSet("multivalued")

	if len(occ.valueSamples) > 0 {
		rangeName := o.Inferencer(occ.valueSamples)
		slot.Range = rangeName
		slot.MarkSet("range")
	}

	return slot
}

func boolPtr(b bool) *bool { return &b }

// isLeafElement reports whether name never itself carries attributes or
// children anywhere in the corpus, making it a scalar-content element
// whose range should come from its text samples rather than point back at
// its own (attribute-less) class.
func isLeafElement(stats *DocumentStats, name string) bool {
	return len(stats.attrOccurrence[name]) == 0 && len(stats.childOccurrence[name]) == 0
}

// detectFormat tags a schema with a recognized document format based on
// diagnostic root elements or namespace URIs seen across the corpus.
func detectFormat(stats *DocumentStats) string {
	for root := range stats.roots {
		switch root {
		case "PAGE", "Page":
			return "PAGE-XML"
		case "ead", "EAD":
			return "EAD"
		}
	}
	for ns := range stats.namespaces {
		switch ns {
		case "http://purl.org/dc/elements/1.1/", "http://purl.org/dc/terms/":
			return "Dublin Core"
		case "http://www.loc.gov/standards/alto/ns-v4#":
			return "ALTO"
		}
	}
	return ""
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedOccKeys(m map[string]*occurrence) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
