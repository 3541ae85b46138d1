package linkml

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simonckemper/linkml-rs-sub001/expr"
)

// Service is the public service façade (C11): load_schema,
// load_schema_str, validate, validate_typed, plus initialize/shutdown
// lifecycle: a path-keyed schema cache, plus a minimal cooperative
// background-task loop for health/cleanup. Concurrent first loads of the
// same path are not deduplicated; each one loads and parses the schema.
type Service struct {
	Loader  Loader
	Parser  Parser
	Log     Logger
	Clock   Timestamp
	Tasks   TaskManager
	Monitor Monitoring

	config *atomicConfig

	mu           sync.RWMutex
	schemaCache  map[string]*SchemaView
	validatorCaches map[string]*ValidatorCache

	cancelBackground context.CancelFunc
}

// ServiceOption configures a Service at construction time, following the
// option-function constructor style used across the pack's generator
// tooling.
type ServiceOption func(*Service)

func WithLoader(l Loader) ServiceOption       { return func(s *Service) { s.Loader = l } }
func WithParser(p Parser) ServiceOption       { return func(s *Service) { s.Parser = p } }
func WithLogger(l Logger) ServiceOption       { return func(s *Service) { s.Log = l } }
func WithClock(t Timestamp) ServiceOption     { return func(s *Service) { s.Clock = t } }
func WithTaskManager(t TaskManager) ServiceOption { return func(s *Service) { s.Tasks = t } }
func WithMonitor(m Monitoring) ServiceOption  { return func(s *Service) { s.Monitor = m } }
func WithConfig(c LinkMLConfig) ServiceOption { return func(s *Service) { s.config = newAtomicConfig(c) } }

// NewService constructs a façade from its collaborators and options.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		config:          newAtomicConfig(DefaultConfig()),
		schemaCache:     make(map[string]*SchemaView),
		validatorCaches: make(map[string]*ValidatorCache),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the currently active configuration.
func (s *Service) Config() LinkMLConfig {
	return s.config.Load()
}

// Initialize starts the background health/cleanup tasks through the
// TaskManager, if one is set. It does not subscribe to configuration
// changes; WatchConfig does that.
func (s *Service) Initialize(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	s.cancelBackground = cancel

	if s.Tasks != nil {
		if err := s.Tasks.Spawn(bgCtx, "validator-cache-cleanup", s.cleanupLoop); err != nil {
			return wrapError(ErrServiceError, err, "spawning cleanup task")
		}
		if err := s.Tasks.Spawn(bgCtx, "health-report", s.healthLoop); err != nil {
			return wrapError(ErrServiceError, err, "spawning health task")
		}
	}
	if s.Log != nil {
		s.Log.Info("service initialized")
	}
	return nil
}

// Shutdown cancels and awaits all background tasks, then clears every
// cache, tying global mutable state's lifecycle to initialize/shutdown
// per the design note.
func (s *Service) Shutdown() {
	if s.cancelBackground != nil {
		s.cancelBackground()
	}
	if s.Tasks != nil {
		s.Tasks.CancelAll()
		s.Tasks.Wait()
	}
	s.mu.Lock()
	s.schemaCache = make(map[string]*SchemaView)
	s.validatorCaches = make(map[string]*ValidatorCache)
	s.mu.Unlock()
	if s.Log != nil {
		s.Log.Info("service shut down")
	}
}

func (s *Service) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.Config().CacheTTL())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			for _, vc := range s.validatorCaches {
				if vc.Len() > 1000 {
					vc.Clear()
				}
			}
			s.mu.RUnlock()
		}
	}
}

func (s *Service) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Monitor != nil {
				s.Monitor.ReportHealth(true, "ok")
			}
		}
	}
}

// LoadSchema loads and merges imports for the schema at path (file path or
// URL), returning a ready-to-query SchemaView. Results are cached by path.
func (s *Service) LoadSchema(ctx context.Context, path string) (*SchemaView, error) {
	s.mu.RLock()
	if sv, ok := s.schemaCache[path]; ok {
		s.mu.RUnlock()
		return sv, nil
	}
	s.mu.RUnlock()

	if s.Loader == nil || s.Parser == nil {
		return nil, newError(ErrConfigurationError, "service has no loader/parser configured")
	}

	data, format, err := s.Loader.Load(ctx, path)
	if err != nil {
		return nil, wrapError(ErrServiceError, err, "loading schema %q", path)
	}
	root, err := s.Parser.Parse(data, format)
	if err != nil {
		return nil, wrapError(ErrSerializationError, err, "parsing schema %q", path)
	}

	sv, err := s.mergeAndCache(ctx, path, root)
	if err != nil {
		return nil, err
	}
	return sv, nil
}

// LoadSchemaString parses content (already in memory) as format ("yaml" or
// "json"), merges its imports, and returns a SchemaView. Not cached by
// path since the caller supplied no stable key.
func (s *Service) LoadSchemaString(ctx context.Context, content []byte, format string) (*SchemaView, error) {
	if s.Parser == nil {
		return nil, newError(ErrConfigurationError, "service has no parser configured")
	}
	root, err := s.Parser.Parse(content, format)
	if err != nil {
		return nil, wrapError(ErrSerializationError, err, "parsing schema string")
	}
	resolver := NewImportResolver(s.Loader, s.Parser, s.Log)
	merged, err := resolver.Resolve(ctx, root)
	if err != nil {
		return nil, err
	}
	assignSchemaID(merged)
	sv := NewSchemaView(merged, s.Log)
	s.validatorCacheFor(sv)
	return sv, nil
}

func (s *Service) mergeAndCache(ctx context.Context, path string, root *Schema) (*SchemaView, error) {
	resolver := NewImportResolver(s.Loader, s.Parser, s.Log)
	merged, err := resolver.Resolve(ctx, root)
	if err != nil {
		return nil, err
	}
	assignSchemaID(merged)
	sv := NewSchemaView(merged, s.Log)

	s.mu.Lock()
	s.schemaCache[path] = sv
	s.mu.Unlock()
	s.validatorCacheFor(sv)

	return sv, nil
}

// assignSchemaID mints a uuid-based identifier for schema documents that
// don't declare one themselves, so every SchemaView has a stable key to
// cache compiled validators under (schema_id also surfaces on every
// ValidationReport).
func assignSchemaID(schema *Schema) {
	if schema.ID == "" {
		schema.ID = uuid.New().String()
	}
}

// validatorCacheFor returns sv's compiled-validator cache, creating one
// keyed by its schema ID on first use.
func (s *Service) validatorCacheFor(sv *SchemaView) *ValidatorCache {
	id := sv.SchemaID()
	s.mu.Lock()
	defer s.mu.Unlock()
	vc, ok := s.validatorCaches[id]
	if !ok {
		vc = NewValidatorCache(s.Config().CacheTTL())
		s.validatorCaches[id] = vc
	}
	return vc
}

// Validate validates data against targetClass in sv, using the façade's
// compiled-validator cache when enabled.
func (s *Service) Validate(ctx context.Context, sv *SchemaView, data Value, targetClass string) (*ValidationReport, error) {
	opts := DefaultValidateOptions(s.Config())
	engine := NewEngine(sv, s.defaultEvaluator())
	engine.Now = s.now
	if opts.UseCache {
		engine.Cache = s.validatorCacheFor(sv)
	}
	return engine.ValidateAsClass(data, targetClass, opts)
}

// ValidateTyped validates data against targetClass and, if valid,
// deserializes it into a value of type T via decode.
func ValidateTyped[T any](ctx context.Context, s *Service, sv *SchemaView, data Value, targetClass string, decode func(Value) (T, error)) (T, *ValidationReport, error) {
	var zero T
	report, err := s.Validate(ctx, sv, data, targetClass)
	if err != nil {
		return zero, nil, err
	}
	if !report.Valid {
		return zero, report, nil
	}
	typed, err := decode(data)
	if err != nil {
		return zero, report, wrapError(ErrDataValidationError, err, "decoding validated instance")
	}
	return typed, report, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

func (s *Service) defaultEvaluator() *expr.Evaluator {
	config := s.Config()
	return expr.New(expr.WithLimits(expr.Limits{
		MaxIterations: 10_000,
		MaxCallDepth:  100,
		Timeout:       config.ExpressionTimeout(),
		MaxMemory:     10 * 1024 * 1024,
	}))
}

// ApplyConfig atomically swaps the active configuration, matching the
// "Configuration changes ... atomically swap the active config" contract.
func (s *Service) ApplyConfig(c LinkMLConfig) {
	s.config.Store(c)
}

// WatchConfig subscribes to src and applies every emitted LinkMLConfig
// until ctx is cancelled.
func (s *Service) WatchConfig(ctx context.Context, src ConfigSource) error {
	ch, err := src.Subscribe(ctx)
	if err != nil {
		return wrapError(ErrConfigurationError, err, "subscribing to configuration source")
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c, ok := <-ch:
				if !ok {
					return
				}
				s.ApplyConfig(c)
				if s.Log != nil {
					s.Log.Info(fmt.Sprintf("configuration updated: cache_ttl=%ds", c.CacheTTLSeconds))
				}
			}
		}
	}()
	return nil
}
