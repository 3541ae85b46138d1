// Package diff implements the semantic schema differ (C9): it compares
// two linkml.Schema values and classifies every change as compatible,
// minor-breaking, or major-breaking, with rename detection via structural
// similarity (a Jaccard-based heuristic over attribute name sets), and
// guarantees change ordering: metadata -> classes -> slots -> types ->
// enums -> subsets, removed before added before modified within each.
// Change follows a flat-struct-with-code idiom, mirroring how other
// validators in this module report issues.
package diff

import (
	"fmt"
	"sort"

	"github.com/simonckemper/linkml-rs-sub001"
)

// ChangeType classifies what happened to an element between two schemas.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
	Renamed  ChangeType = "renamed"
)

// Severity classifies the compatibility impact of a Change.
type Severity string

const (
	Compatible Severity = "compatible"
	Minor      Severity = "minor"
	Major      Severity = "major"
)

// Change is one entry in a SchemaDiff's change list.
type Change struct {
	ChangeType  ChangeType
	ElementType string // "class", "slot", "type", "enum", "subset", "metadata"
	ElementName string
	Path        string
	Description string
	Severity    Severity
	OldValue    any
	NewValue    any
	Details     map[string]any
}

// Stats summarizes a SchemaDiff's change counts.
type Stats struct {
	Total      int
	Added      int
	Removed    int
	Modified   int
	Renamed    int
	Compatible int
	Minor      int
	Major      int
}

// SchemaDiff is the full result of comparing two schemas.
type SchemaDiff struct {
	Changes            []Change
	Stats              Stats
	BreakingChanges    []Change
	CompatibleChanges  []Change
}

// Options configures a comparison.
type Options struct {
	DetectRenames        bool
	RenameThreshold       float64
	IncludeCompatible     bool
	AnalyzeBreaking       bool
	DetailedDescriptions  bool
}

// DefaultOptions returns the differ's out-of-the-box defaults.
func DefaultOptions() Options {
	return Options{
		DetectRenames:        true,
		RenameThreshold:      0.8,
		IncludeCompatible:    true,
		AnalyzeBreaking:      true,
		DetailedDescriptions: true,
	}
}

// Differ computes a SchemaDiff between two schemas.
type Differ struct {
	Options Options
	renames map[string]string // class renames: old name -> new name
}

// NewDiffer constructs a Differ with opts.
func NewDiffer(opts Options) *Differ {
	return &Differ{Options: opts, renames: make(map[string]string)}
}

// Compare computes the diff between oldSchema and newSchema.
func (d *Differ) Compare(oldSchema, newSchema *linkml.Schema) (*SchemaDiff, error) {
	if oldSchema.Name == "" || newSchema.Name == "" {
		return nil, fmt.Errorf("InvalidComparison: schemas must have names")
	}
	if d.Options.RenameThreshold < 0 || d.Options.RenameThreshold > 1 {
		return nil, fmt.Errorf("InvalidComparison: rename_threshold %v must be between 0.0 and 1.0", d.Options.RenameThreshold)
	}

	d.renames = make(map[string]string)
	if d.Options.DetectRenames {
		if err := d.detectClassRenames(oldSchema, newSchema); err != nil {
			return nil, err
		}
	}

	var changes []Change
	changes = append(changes, d.diffMetadata(oldSchema, newSchema)...)
	changes = append(changes, d.diffClasses(oldSchema, newSchema)...)
	changes = append(changes, d.diffSlots(oldSchema, newSchema)...)
	changes = append(changes, d.diffTypes(oldSchema, newSchema)...)
	changes = append(changes, d.diffEnums(oldSchema, newSchema)...)
	changes = append(changes, d.diffSubsets(oldSchema, newSchema)...)

	result := &SchemaDiff{Changes: changes}
	for _, c := range changes {
		result.Stats.Total++
		switch c.ChangeType {
		case Added:
			result.Stats.Added++
		case Removed:
			result.Stats.Removed++
		case Modified:
			result.Stats.Modified++
		case Renamed:
			result.Stats.Renamed++
		}
		switch c.Severity {
		case Compatible:
			result.Stats.Compatible++
			if d.Options.IncludeCompatible {
				result.CompatibleChanges = append(result.CompatibleChanges, c)
			}
		case Minor:
			result.Stats.Minor++
			result.BreakingChanges = append(result.BreakingChanges, c)
		case Major:
			result.Stats.Major++
			result.BreakingChanges = append(result.BreakingChanges, c)
		}
	}

	return result, nil
}

// detectClassRenames pairs every removed class with every added one and
// keeps, for each removed class, the best-scoring candidate at or above
// the threshold. A tie between two or more candidates at that best score
// is ambiguous and fails rather than guessing.
func (d *Differ) detectClassRenames(oldSchema, newSchema *linkml.Schema) error {
	removed := setDiffKeys(oldSchema.Classes.Keys(), newSchema.Classes.Keys())
	added := setDiffKeys(newSchema.Classes.Keys(), oldSchema.Classes.Keys())

	for _, oldName := range removed {
		oldClass, _ := oldSchema.Classes.Get(oldName)
		bestName := ""
		bestScore := 0.0
		ambiguous := false

		for _, newName := range added {
			newClass, _ := newSchema.Classes.Get(newName)
			score := classSimilarity(oldClass, newClass)
			if score >= d.Options.RenameThreshold {
				if score > bestScore {
					bestScore = score
					bestName = newName
					ambiguous = false
				} else if score == bestScore && bestName != "" {
					ambiguous = true
				}
			}
		}

		if ambiguous {
			return fmt.Errorf("AnalysisError: ambiguous rename detected for class %q", oldName)
		}
		if bestName != "" {
			d.renames[oldName] = bestName
		}
	}
	return nil
}

// classSimilarity computes Jaccard over attribute-name sets plus equality
// of description (weight 0.5), equality of is_a (weight 0.5), and Jaccard
// over mixins, normalized by the sum of available weights.
func classSimilarity(a, b *linkml.ClassDefinition) float64 {
	var totalWeight, score float64

	attrScore := jaccard(a.Attributes.Keys(), b.Attributes.Keys())
	totalWeight += 1.0
	score += attrScore

	totalWeight += 0.5
	if a.Description == b.Description {
		score += 0.5
	}

	totalWeight += 0.5
	if a.IsA == b.IsA {
		score += 0.5
	}

	mixinScore := jaccard(a.Mixins, b.Mixins)
	totalWeight += 1.0
	score += mixinScore

	if totalWeight == 0 {
		return 0
	}
	return score / totalWeight
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	inter := 0
	union := make(map[string]bool)
	for s := range setA {
		union[s] = true
		if setB[s] {
			inter++
		}
	}
	for s := range setB {
		union[s] = true
	}
	if len(union) == 0 {
		return 1.0
	}
	return float64(inter) / float64(len(union))
}

func setDiffKeys(from, minus []string) []string {
	excl := make(map[string]bool, len(minus))
	for _, s := range minus {
		excl[s] = true
	}
	var out []string
	for _, s := range from {
		if !excl[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func setIntersectKeys(a, b []string) []string {
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	var out []string
	for _, s := range a {
		if setB[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Differ) diffMetadata(oldSchema, newSchema *linkml.Schema) []Change {
	var changes, modified []Change
	if oldSchema.Version != newSchema.Version {
		modified = append(modified, Change{
			ChangeType:  Modified,
			ElementType: "metadata",
			ElementName: "version",
			Path:        "/version",
			Description: fmt.Sprintf("version changed from %q to %q", oldSchema.Version, newSchema.Version),
			Severity:    Compatible,
			OldValue:    oldSchema.Version,
			NewValue:    newSchema.Version,
		})
	}
	if oldSchema.License != newSchema.License {
		modified = append(modified, Change{
			ChangeType:  Modified,
			ElementType: "metadata",
			ElementName: "license",
			Path:        "/license",
			Description: fmt.Sprintf("license changed from %q to %q", oldSchema.License, newSchema.License),
			Severity:    Compatible,
			OldValue:    oldSchema.License,
			NewValue:    newSchema.License,
		})
	}

	removedImports := setDiffKeys(oldSchema.Imports, newSchema.Imports)
	addedImports := setDiffKeys(newSchema.Imports, oldSchema.Imports)
	for _, imp := range removedImports {
		changes = append(changes, Change{
			ChangeType:  Removed,
			ElementType: "metadata",
			ElementName: imp,
			Path:        "/imports/" + imp,
			Description: fmt.Sprintf("import %q removed", imp),
			Severity:    Major,
		})
	}
	for _, imp := range addedImports {
		changes = append(changes, Change{
			ChangeType:  Added,
			ElementType: "metadata",
			ElementName: imp,
			Path:        "/imports/" + imp,
			Description: fmt.Sprintf("import %q added", imp),
			Severity:    Compatible,
		})
	}
	return append(changes, modified...)
}

func (d *Differ) diffClasses(oldSchema, newSchema *linkml.Schema) []Change {
	var changes []Change

	removed := setDiffKeys(oldSchema.Classes.Keys(), newSchema.Classes.Keys())
	added := setDiffKeys(newSchema.Classes.Keys(), oldSchema.Classes.Keys())
	common := setIntersectKeys(oldSchema.Classes.Keys(), newSchema.Classes.Keys())

	for _, name := range removed {
		if newName, ok := d.renames[name]; ok {
			changes = append(changes, Change{
				ChangeType:  Renamed,
				ElementType: "class",
				ElementName: name,
				Path:        "/classes/" + name,
				Description: fmt.Sprintf("class %q was renamed to %q", name, newName),
				Severity:    Compatible,
				OldValue:    name,
				NewValue:    newName,
			})
			continue
		}
		changes = append(changes, Change{
			ChangeType:  Removed,
			ElementType: "class",
			ElementName: name,
			Path:        "/classes/" + name,
			Description: fmt.Sprintf("class %q removed", name),
			Severity:    Major,
		})
	}

	renamedTargets := make(map[string]bool, len(d.renames))
	for _, target := range d.renames {
		renamedTargets[target] = true
	}
	for _, name := range added {
		if renamedTargets[name] {
			continue
		}
		changes = append(changes, Change{
			ChangeType:  Added,
			ElementType: "class",
			ElementName: name,
			Path:        "/classes/" + name,
			Description: fmt.Sprintf("class %q added", name),
			Severity:    Compatible,
		})
	}

	for _, name := range common {
		oldClass, _ := oldSchema.Classes.Get(name)
		newClass, _ := newSchema.Classes.Get(name)
		changes = append(changes, diffClassFields(name, oldClass, newClass)...)
	}

	return changes
}

func diffClassFields(name string, a, b *linkml.ClassDefinition) []Change {
	var changes []Change
	if a.IsA != b.IsA {
		severity := Compatible
		if a.IsA != "" {
			severity = Major
		}
		changes = append(changes, Change{
			ChangeType:  Modified,
			ElementType: "class",
			ElementName: name,
			Path:        "/classes/" + name + "/is_a",
			Description: fmt.Sprintf("class %q parent changed from %q to %q", name, a.IsA, b.IsA),
			Severity:    severity,
			OldValue:    a.IsA,
			NewValue:    b.IsA,
		})
	}

	addedMixins := setDiffKeys(b.Mixins, a.Mixins)
	removedMixins := setDiffKeys(a.Mixins, b.Mixins)
	for _, m := range addedMixins {
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "class", ElementName: name,
			Path: "/classes/" + name + "/mixins/" + m,
			Description: fmt.Sprintf("class %q gained mixin %q", name, m), Severity: Minor,
		})
	}
	for _, m := range removedMixins {
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "class", ElementName: name,
			Path: "/classes/" + name + "/mixins/" + m,
			Description: fmt.Sprintf("class %q lost mixin %q", name, m), Severity: Minor,
		})
	}

	if a.Description != b.Description {
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "class", ElementName: name,
			Path: "/classes/" + name + "/description",
			Description: fmt.Sprintf("class %q description changed", name), Severity: Compatible,
		})
	}

	return changes
}

func (d *Differ) diffSlots(oldSchema, newSchema *linkml.Schema) []Change {
	var changes []Change
	removed := setDiffKeys(oldSchema.Slots.Keys(), newSchema.Slots.Keys())
	added := setDiffKeys(newSchema.Slots.Keys(), oldSchema.Slots.Keys())
	common := setIntersectKeys(oldSchema.Slots.Keys(), newSchema.Slots.Keys())

	for _, name := range removed {
		changes = append(changes, Change{
			ChangeType: Removed, ElementType: "slot", ElementName: name,
			Path: "/slots/" + name, Description: fmt.Sprintf("slot %q removed", name), Severity: Major,
		})
	}
	for _, name := range added {
		changes = append(changes, Change{
			ChangeType: Added, ElementType: "slot", ElementName: name,
			Path: "/slots/" + name, Description: fmt.Sprintf("slot %q added", name), Severity: Compatible,
		})
	}
	for _, name := range common {
		a, _ := oldSchema.Slots.Get(name)
		b, _ := newSchema.Slots.Get(name)
		changes = append(changes, diffSlotFields(name, a, b)...)
	}
	return changes
}

func diffSlotFields(name string, a, b *linkml.SlotDefinition) []Change {
	var changes []Change

	if a.Range != b.Range {
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "slot", ElementName: name,
			Path: "/slots/" + name + "/range",
			Description: fmt.Sprintf("slot %q range changed from %q to %q", name, a.Range, b.Range),
			Severity:    Major, OldValue: a.Range, NewValue: b.Range,
		})
	}

	aReq := a.Required != nil && *a.Required
	bReq := b.Required != nil && *b.Required
	if aReq != bReq {
		severity := Compatible
		if !aReq && bReq {
			severity = Major
		}
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "slot", ElementName: name,
			Path: "/slots/" + name + "/required",
			Description: fmt.Sprintf("slot %q required changed from %v to %v", name, aReq, bReq),
			Severity:    severity,
		})
	}

	aMulti := a.Multivalued != nil && *a.Multivalued
	bMulti := b.Multivalued != nil && *b.Multivalued
	if aMulti != bMulti {
		changes = append(changes, Change{
			ChangeType: Modified, ElementType: "slot", ElementName: name,
			Path: "/slots/" + name + "/multivalued",
			Description: fmt.Sprintf("slot %q multivalued changed from %v to %v", name, aMulti, bMulti),
			Severity:    Major,
		})
	}

	return changes
}

func (d *Differ) diffTypes(oldSchema, newSchema *linkml.Schema) []Change {
	var changes []Change
	removed := setDiffKeys(oldSchema.Types.Keys(), newSchema.Types.Keys())
	added := setDiffKeys(newSchema.Types.Keys(), oldSchema.Types.Keys())
	for _, name := range removed {
		changes = append(changes, Change{
			ChangeType: Removed, ElementType: "type", ElementName: name,
			Path: "/types/" + name, Description: fmt.Sprintf("type %q removed", name), Severity: Major,
		})
	}
	for _, name := range added {
		changes = append(changes, Change{
			ChangeType: Added, ElementType: "type", ElementName: name,
			Path: "/types/" + name, Description: fmt.Sprintf("type %q added", name), Severity: Compatible,
		})
	}
	return changes
}

func (d *Differ) diffEnums(oldSchema, newSchema *linkml.Schema) []Change {
	var changes []Change
	removed := setDiffKeys(oldSchema.Enums.Keys(), newSchema.Enums.Keys())
	added := setDiffKeys(newSchema.Enums.Keys(), oldSchema.Enums.Keys())
	common := setIntersectKeys(oldSchema.Enums.Keys(), newSchema.Enums.Keys())

	for _, name := range removed {
		changes = append(changes, Change{
			ChangeType: Removed, ElementType: "enum", ElementName: name,
			Path: "/enums/" + name, Description: fmt.Sprintf("enum %q removed", name), Severity: Major,
		})
	}
	for _, name := range added {
		changes = append(changes, Change{
			ChangeType: Added, ElementType: "enum", ElementName: name,
			Path: "/enums/" + name, Description: fmt.Sprintf("enum %q added", name), Severity: Compatible,
		})
	}
	for _, name := range common {
		a, _ := oldSchema.Enums.Get(name)
		b, _ := newSchema.Enums.Get(name)
		changes = append(changes, diffEnumValues(name, a, b)...)
	}
	return changes
}

func diffEnumValues(name string, a, b *linkml.EnumDefinition) []Change {
	aTexts := make(map[string]bool, len(a.PermissibleValues))
	for _, pv := range a.PermissibleValues {
		aTexts[pv.CanonicalText()] = true
	}
	bTexts := make(map[string]bool, len(b.PermissibleValues))
	for _, pv := range b.PermissibleValues {
		bTexts[pv.CanonicalText()] = true
	}

	var changes []Change
	for _, text := range sortedTextKeys(aTexts) {
		if !bTexts[text] {
			changes = append(changes, Change{
				ChangeType: Removed, ElementType: "enum", ElementName: name,
				Path: "/enums/" + name + "/permissible_values/" + text,
				Description: fmt.Sprintf("enum %q lost permissible value %q", name, text), Severity: Major,
			})
		}
	}
	for _, text := range sortedTextKeys(bTexts) {
		if !aTexts[text] {
			changes = append(changes, Change{
				ChangeType: Added, ElementType: "enum", ElementName: name,
				Path: "/enums/" + name + "/permissible_values/" + text,
				Description: fmt.Sprintf("enum %q gained permissible value %q", name, text), Severity: Compatible,
			})
		}
	}
	return changes
}

// sortedTextKeys returns m's keys sorted, so enum value changes are always
// emitted in the same order regardless of map iteration order.
func sortedTextKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (d *Differ) diffSubsets(oldSchema, newSchema *linkml.Schema) []Change {
	var changes []Change
	removed := setDiffKeys(oldSchema.Subsets.Keys(), newSchema.Subsets.Keys())
	added := setDiffKeys(newSchema.Subsets.Keys(), oldSchema.Subsets.Keys())
	for _, name := range removed {
		changes = append(changes, Change{
			ChangeType: Removed, ElementType: "subset", ElementName: name,
			Path: "/subsets/" + name, Description: fmt.Sprintf("subset %q removed", name), Severity: Minor,
		})
	}
	for _, name := range added {
		changes = append(changes, Change{
			ChangeType: Added, ElementType: "subset", ElementName: name,
			Path: "/subsets/" + name, Description: fmt.Sprintf("subset %q added", name), Severity: Minor,
		})
	}
	return changes
}
