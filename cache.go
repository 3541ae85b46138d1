package linkml

import (
	"sync"
	"time"
)

// CompiledValidator is the artifact the façade caches per (schema id,
// class name) pair when use_cache is enabled: the induced class plus a
// pre-resolved leaf-validator table, precomputed per the design note
// "precompute a table of leaf validators keyed by constraint presence
// when building the induced view" (avoids reflection-like string dispatch
// in the hot validation path).
type CompiledValidator struct {
	Class      *ClassDefinition
	Slots      map[string]*SlotDefinition
	Leaves     map[string][]LeafValidator
	compiledAt time.Time
}

// ValidatorCache is the façade's compiled-validator cache for one schema
// (the façade keeps one per schema ID; the engine keys entries by class
// name): a sync.RWMutex-guarded map with a single-flight load via
// sync.Once per key.
type ValidatorCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	once  sync.Once
	value *CompiledValidator
	err   error
}

// NewValidatorCache returns an empty cache with the given entry TTL (zero
// disables expiry).
func NewValidatorCache(ttl time.Duration) *ValidatorCache {
	return &ValidatorCache{entries: make(map[string]*cacheEntry), ttl: ttl}
}

// GetOrCompile returns the cached CompiledValidator for key, computing it
// via compile exactly once per key even under concurrent callers.
func (c *ValidatorCache) GetOrCompile(key string, compile func() (*CompiledValidator, error)) (*CompiledValidator, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		entry, ok = c.entries[key]
		if !ok {
			entry = &cacheEntry{}
			c.entries[key] = entry
		}
		c.mu.Unlock()
	}

	fresh := false
	entry.once.Do(func() {
		fresh = true
		entry.value, entry.err = compile()
		if entry.value != nil {
			entry.value.compiledAt = time.Now()
		}
	})

	if !fresh && c.ttl > 0 && entry.value != nil && time.Since(entry.value.compiledAt) > c.ttl {
		c.Invalidate(key)
		entry = &cacheEntry{}
		c.mu.Lock()
		c.entries[key] = entry
		c.mu.Unlock()
		entry.once.Do(func() {
			entry.value, entry.err = compile()
			if entry.value != nil {
				entry.value.compiledAt = time.Now()
			}
		})
	}

	return entry.value, entry.err
}

// Invalidate removes key from the cache.
func (c *ValidatorCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear empties the cache, used on configuration reload and shutdown.
func (c *ValidatorCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len reports the number of cached entries, used by the façade's
// background cleanup task to decide when to clear the cache.
func (c *ValidatorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CompileValidator builds a CompiledValidator for className from view,
// precomputing both the resolved induced slot and the leaf-validator table
// keyed by constraint presence, so a cache hit never re-walks
// InducedSlot's merge chain.
func CompileValidator(view *SchemaView, className string) (*CompiledValidator, error) {
	ic, err := view.InducedClass(className)
	if err != nil {
		return nil, err
	}
	slots := make(map[string]*SlotDefinition, len(ic.Slots))
	leaves := make(map[string][]LeafValidator, len(ic.Slots))
	for _, slotName := range ic.Slots {
		slot, err := view.InducedSlot(slotName, className)
		if err != nil {
			return nil, err
		}
		slots[slotName] = slot
		leaves[slotName] = leafValidatorsFor(slot)
	}
	return &CompiledValidator{Class: ic, Slots: slots, Leaves: leaves}, nil
}

// leafValidatorsFor precomputes which leaf validators apply to slot based
// on which constraints are actually present, so the hot path never probes
// a validator whose constraint field is empty.
func leafValidatorsFor(slot *SlotDefinition) []LeafValidator {
	var out []LeafValidator
	if slot.Required != nil || slot.Identifier {
		out = append(out, RequiredValidator{})
	}
	if slot.Range != "" {
		out = append(out, TypeValidator{})
	}
	if slot.MinimumValue != nil || slot.MaximumValue != nil {
		out = append(out, RangeValidator{})
	}
	if slot.Pattern != "" {
		out = append(out, PatternValidator{})
	}
	if slot.MinimumCardinality != nil || slot.MaximumCardinality != nil {
		out = append(out, CardinalityValidator{})
	}
	return out
}
