package linkml

import "context"

// ImportResolver loads a root schema plus all transitively imported
// schemas and merges them into one Schema. Every import reference is
// loaded through Loader each time it is reached; loads are neither cached
// nor deduplicated. Cycle detection uses a "mark as visiting, detect
// revisit" set.
type ImportResolver struct {
	Loader Loader
	Parser Parser
	Log    Logger
}

// NewImportResolver constructs a resolver from its collaborators.
func NewImportResolver(loader Loader, parser Parser, log Logger) *ImportResolver {
	return &ImportResolver{Loader: loader, Parser: parser, Log: log}
}

// Resolve loads root (already parsed) and every schema it transitively
// imports, merging them name-keyed-union over the four element tables.
// On collision the importing schema wins; prefix maps merge importer-wins.
// Import cycles are reported as ErrCircularDependency.
func (r *ImportResolver) Resolve(ctx context.Context, root *Schema) (*Schema, error) {
	visiting := map[string]bool{}
	merged, err := r.resolveRecursive(ctx, root, visiting)
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func (r *ImportResolver) resolveRecursive(ctx context.Context, s *Schema, visiting map[string]bool) (*Schema, error) {
	key := s.ID
	if key == "" {
		key = s.Name
	}
	if visiting[key] {
		return nil, newError(ErrCircularDependency, "import cycle detected at %q", key)
	}
	visiting[key] = true
	defer delete(visiting, key)

	result := cloneSchemaShallow(s)

	for _, importRef := range s.Imports {
		imported, err := r.loadOne(ctx, importRef)
		if err != nil {
			return nil, wrapError(ErrServiceError, err, "loading import %q", importRef)
		}

		mergedImport, err := r.resolveRecursive(ctx, imported, visiting)
		if err != nil {
			return nil, err
		}

		// Importer wins: mergeSchemaInto only fills entries absent from
		// result, and result already holds the importing schema's own
		// (highest-priority) definitions.
		mergeSchemaInto(result, mergedImport)
	}

	return result, nil
}

func (r *ImportResolver) loadOne(ctx context.Context, location string) (*Schema, error) {
	if r.Loader == nil || r.Parser == nil {
		return nil, newError(ErrConfigurationError, "import resolver has no loader/parser configured")
	}
	data, format, err := r.Loader.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	schema, err := r.Parser.Parse(data, format)
	if err != nil {
		return nil, wrapError(ErrSerializationError, err, "parsing imported schema %q", location)
	}
	if r.Log != nil {
		r.Log.Debug("resolved import", "location", location, "format", format)
	}
	return schema, nil
}

func cloneSchemaShallow(s *Schema) *Schema {
	out := NewSchema(s.Name)
	out.ID = s.ID
	out.Version = s.Version
	out.License = s.License
	out.Imports = append([]string(nil), s.Imports...)
	for k, v := range s.Prefixes {
		out.Prefixes[k] = v
	}
	for _, k := range s.Classes.Keys() {
		v, _ := s.Classes.Get(k)
		out.Classes.Set(k, v)
	}
	for _, k := range s.Slots.Keys() {
		v, _ := s.Slots.Get(k)
		out.Slots.Set(k, v)
	}
	for _, k := range s.Types.Keys() {
		v, _ := s.Types.Get(k)
		out.Types.Set(k, v)
	}
	for _, k := range s.Enums.Keys() {
		v, _ := s.Enums.Get(k)
		out.Enums.Set(k, v)
	}
	for _, k := range s.Subsets.Keys() {
		v, _ := s.Subsets.Get(k)
		out.Subsets.Set(k, v)
	}
	if s.Annotations != nil {
		out.Annotations = make(map[string]any, len(s.Annotations))
		for k, v := range s.Annotations {
			out.Annotations[k] = v
		}
	}
	return out
}

// mergeSchemaInto adds every element from imported not already present in
// result (importer-wins union), and fills prefixes the same way.
func mergeSchemaInto(result, imported *Schema) {
	for _, k := range imported.Classes.Keys() {
		if _, exists := result.Classes.Get(k); !exists {
			v, _ := imported.Classes.Get(k)
			result.Classes.Set(k, v)
		}
	}
	for _, k := range imported.Slots.Keys() {
		if _, exists := result.Slots.Get(k); !exists {
			v, _ := imported.Slots.Get(k)
			result.Slots.Set(k, v)
		}
	}
	for _, k := range imported.Types.Keys() {
		if _, exists := result.Types.Get(k); !exists {
			v, _ := imported.Types.Get(k)
			result.Types.Set(k, v)
		}
	}
	for _, k := range imported.Enums.Keys() {
		if _, exists := result.Enums.Get(k); !exists {
			v, _ := imported.Enums.Get(k)
			result.Enums.Set(k, v)
		}
	}
	for _, k := range imported.Subsets.Keys() {
		if _, exists := result.Subsets.Get(k); !exists {
			v, _ := imported.Subsets.Get(k)
			result.Subsets.Set(k, v)
		}
	}
	for k, v := range imported.Prefixes {
		if _, exists := result.Prefixes[k]; !exists {
			result.Prefixes[k] = v
		}
	}
	for k, v := range imported.Annotations {
		if result.Annotations == nil {
			result.Annotations = make(map[string]any)
		}
		if _, exists := result.Annotations[k]; !exists {
			result.Annotations[k] = v
		}
	}
}
