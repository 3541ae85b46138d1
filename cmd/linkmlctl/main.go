// Command linkmlctl is a thin CLI over the linkml service façade: it loads
// a schema, validates a data document against a class, diffs two schemas,
// or infers a seed schema from sample documents. Every operation here goes
// through linkml.Service rather than touching engine internals directly.
package main

import (
	"context"
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"

	"github.com/simonckemper/linkml-rs-sub001"
	"github.com/simonckemper/linkml-rs-sub001/diff"
	"github.com/simonckemper/linkml-rs-sub001/infer"
	"github.com/simonckemper/linkml-rs-sub001/linkmlio"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = runValidate(os.Args[2:])
	case "diff":
		err = runDiff(os.Args[2:])
	case "infer":
		err = runInfer(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "linkmlctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  linkmlctl validate <schema-file> <class-name> <data-file>")
	fmt.Println("  linkmlctl diff <old-schema-file> <new-schema-file>")
	fmt.Println("  linkmlctl infer <schema-id> <sample-file> [sample-file...]")
}

func newService() *linkml.Service {
	return linkml.NewService(
		linkml.WithLoader(linkmlio.NewFileLoader("")),
		linkml.WithParser(linkmlio.NewSchemaParser()),
		linkml.WithLogger(linkmlio.NewCharmLogger()),
		linkml.WithClock(linkmlio.NewSystemClock()),
	)
}

func runValidate(args []string) error {
	if len(args) < 3 {
		usage()
		os.Exit(1)
	}
	schemaFile, className, dataFile := args[0], args[1], args[2]

	ctx := context.Background()
	svc := newService()

	sv, err := svc.LoadSchema(ctx, schemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return fmt.Errorf("reading data file: %w", err)
	}
	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("parsing data file: %w", err)
	}
	instance := linkmlio.ValueFromAny(decoded)

	report, err := svc.Validate(ctx, sv, instance, className)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	if report.Valid {
		fmt.Printf("%s is valid against %s\n", dataFile, className)
		return nil
	}

	fmt.Printf("%s failed validation against %s: %d error(s), %d warning(s)\n",
		dataFile, className, len(report.Errors), len(report.Warnings))
	for _, iss := range report.Errors {
		fmt.Printf("  [%s] %s: %s\n", iss.Code, iss.Path, iss.Message)
	}
	for _, iss := range report.Warnings {
		fmt.Printf("  [%s] (warning) %s: %s\n", iss.Code, iss.Path, iss.Message)
	}
	os.Exit(2)
	return nil
}

func runDiff(args []string) error {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	oldFile, newFile := args[0], args[1]

	ctx := context.Background()
	svc := newService()

	oldSV, err := svc.LoadSchema(ctx, oldFile)
	if err != nil {
		return fmt.Errorf("loading old schema: %w", err)
	}
	newSV, err := svc.LoadSchema(ctx, newFile)
	if err != nil {
		return fmt.Errorf("loading new schema: %w", err)
	}

	d := diff.NewDiffer(diff.DefaultOptions())
	result, err := d.Compare(oldSV.RawSchema(), newSV.RawSchema())
	if err != nil {
		return fmt.Errorf("comparing schemas: %w", err)
	}

	fmt.Printf("%d change(s): %d added, %d removed, %d modified, %d renamed\n",
		result.Stats.Total, result.Stats.Added, result.Stats.Removed, result.Stats.Modified, result.Stats.Renamed)
	fmt.Printf("severity: %d compatible, %d minor, %d major\n",
		result.Stats.Compatible, result.Stats.Minor, result.Stats.Major)
	for _, c := range result.Changes {
		fmt.Printf("  [%s/%s] %s: %s\n", c.Severity, c.ChangeType, c.Path, c.Description)
	}

	if result.Stats.Major > 0 {
		os.Exit(2)
	}
	return nil
}

func runInfer(args []string) error {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	schemaID, sampleFiles := args[0], args[1:]

	stats := infer.NewDocumentStats()
	for _, f := range sampleFiles {
		raw, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading sample %q: %w", f, err)
		}
		var decoded any
		if err := yaml.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("parsing sample %q: %w", f, err)
		}
		root, ok := elementSampleFromAny("root", "", decoded)
		if !ok {
			continue
		}
		stats.Collect(root)
	}

	schema := infer.GenerateSchema(stats, schemaID)

	for _, className := range schema.Classes.Keys() {
		class, _ := schema.Classes.Get(className)
		fmt.Printf("class %s:\n", className)
		for _, slotName := range class.Attributes.Keys() {
			slot, _ := class.Attributes.Get(slotName)
			req := slot.Required != nil && *slot.Required
			multi := slot.Multivalued != nil && *slot.Multivalued
			fmt.Printf("  %s: range=%s required=%v multivalued=%v\n", slotName, slot.Range, req, multi)
		}
	}

	return nil
}

// elementSampleFromAny converts a generic YAML/JSON-decoded value into an
// infer.ElementSample tree: map keys with scalar values become attributes,
// map keys with object values become child elements, and sequence elements
// that are objects become repeated children of name. Scalar sequence
// elements are stored as attribute k, the last one overwriting the others.
func elementSampleFromAny(name, parent string, v any) (infer.ElementSample, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return infer.ElementSample{}, false
	}

	el := infer.ElementSample{Name: name, Parent: parent, Attributes: make(map[string]string)}
	for k, val := range obj {
		switch t := val.(type) {
		case map[string]any:
			if child, ok := elementSampleFromAny(k, name, t); ok {
				el.Children = append(el.Children, child)
			}
		case []any:
			for _, item := range t {
				if child, ok := elementSampleFromAny(k, name, item); ok {
					el.Children = append(el.Children, child)
				} else {
					el.Attributes[k] = fmt.Sprintf("%v", item)
				}
			}
		default:
			el.Attributes[k] = fmt.Sprintf("%v", t)
		}
	}
	return el, true
}
