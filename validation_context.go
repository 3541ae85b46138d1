package linkml

import (
	"regexp"
	"strings"
	"sync"
)

// Severity classifies a validation Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is the uniform result shape produced by every leaf validator and
// combinator: severity, message, slash-separated JSON-pointer path,
// originating validator name, an optional stable code, and free-form
// context for generators/reporting.
type Issue struct {
	Severity  Severity
	Message   string
	Path      string
	Validator string
	Code      string
	Context   map[string]any
}

// ValidationContext owns an immutable schema handle, a mutable path
// stack, and per-run caches for compiled regexes/induced classes, plus a
// flag set for options. push_path/pop_path are always paired, and
// parallel branches get independent clones sharing the schema handle.
type ValidationContext struct {
	View   *SchemaView
	Config LinkMLConfig

	mu           sync.Mutex
	path         []string
	regexCache   map[string]*regexp.Regexp
	inducedCache map[string]*ClassDefinition

	CheckPermissibles bool
	UseCache          bool
}

// NewValidationContext returns a root context for view with the given
// config; per-run caches start empty.
func NewValidationContext(view *SchemaView, config LinkMLConfig) *ValidationContext {
	return &ValidationContext{
		View:              view,
		Config:            config,
		regexCache:        make(map[string]*regexp.Regexp),
		inducedCache:      make(map[string]*ClassDefinition),
		CheckPermissibles: true,
		UseCache:          config.EnableCompilation,
	}
}

// PushPath appends segment to the path stack.
func (c *ValidationContext) PushPath(segment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = append(c.path, segment)
}

// PopPath removes the most recently pushed segment. Callers must pair
// every PushPath with exactly one PopPath, typically via defer.
func (c *ValidationContext) PopPath() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.path) > 0 {
		c.path = c.path[:len(c.path)-1]
	}
}

// CurrentPath renders the path stack as a slash-separated JSON pointer.
func (c *ValidationContext) CurrentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.path) == 0 {
		return "/"
	}
	return "/" + strings.Join(c.path, "/")
}

// CompileRegex compiles and caches pattern, reusing a prior compilation
// for the same pattern string within this context's lifetime.
func (c *ValidationContext) CompileRegex(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	if re, ok := c.regexCache[pattern]; ok {
		c.mu.Unlock()
		return re, nil
	}
	c.mu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.regexCache[pattern] = re
	c.mu.Unlock()
	return re, nil
}

// Clone returns an independent ValidationContext for a parallel branch
// (e.g. one goroutine per AllOf constraint): the schema handle is shared,
// but the path stack starts at this context's current path and the
// per-run caches are independent maps seeded from this context's entries,
// so concurrent writers never race on the same map.
func (c *ValidationContext) Clone() *ValidationContext {
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := &ValidationContext{
		View:              c.View,
		Config:            c.Config,
		path:              append([]string(nil), c.path...),
		regexCache:        make(map[string]*regexp.Regexp, len(c.regexCache)),
		inducedCache:      make(map[string]*ClassDefinition, len(c.inducedCache)),
		CheckPermissibles: c.CheckPermissibles,
		UseCache:          c.UseCache,
	}
	for k, v := range c.regexCache {
		clone.regexCache[k] = v
	}
	for k, v := range c.inducedCache {
		clone.inducedCache[k] = v
	}
	return clone
}

// inducedClassCached resolves name through this context's per-run cache
// before falling back to the shared SchemaView (which has its own cache).
func (c *ValidationContext) inducedClassCached(name string) (*ClassDefinition, error) {
	if c.UseCache {
		c.mu.Lock()
		if ic, ok := c.inducedCache[name]; ok {
			c.mu.Unlock()
			return ic, nil
		}
		c.mu.Unlock()
	}

	ic, err := c.View.InducedClass(name)
	if err != nil {
		return nil, err
	}

	if c.UseCache {
		c.mu.Lock()
		c.inducedCache[name] = ic
		c.mu.Unlock()
	}
	return ic, nil
}
