package expr

import (
	"container/list"
	"sync"
)

// cacheKey pairs an expression hash with a context hash.
type cacheKey struct {
	exprHash [32]byte
	ctxHash  [32]byte
}

type cacheEntry struct {
	key   cacheKey
	value Value
}

// Cache is a bounded LRU keyed by (hash(expr AST), hash(context)). It is
// safe for concurrent use; lock holders never perform I/O, per the
// concurrency model's "no suspension while holding a lock" rule.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[cacheKey]*list.Element
}

// NewCache returns an LRU cache bounded to capacity entries. A
// non-positive capacity disables caching (Get always misses, Put is a
// no-op).
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[cacheKey]*list.Element),
	}
}

// Get looks up the cached result for (node, context). The returned Value is
// a clone of the stored value — safe for the caller to use without aliasing
// cache-internal state.
func (c *Cache) Get(node Node, context map[string]Value) (Value, bool) {
	if c == nil || c.capacity <= 0 {
		return Value{}, false
	}

	key := cacheKey{exprHash: HashNode(node), ctxHash: hashContext(context)}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return Value{}, false
	}
	c.ll.MoveToFront(elem)
	return cloneValue(elem.Value.(*cacheEntry).value), true
}

// Put stores the result of evaluating (node, context).
func (c *Cache) Put(node Node, context map[string]Value, value Value) {
	if c == nil || c.capacity <= 0 {
		return
	}

	key := cacheKey{exprHash: HashNode(node), ctxHash: hashContext(context)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = cloneValue(value)
		c.ll.MoveToFront(elem)
		return
	}

	elem := c.ll.PushFront(&cacheEntry{key: key, value: cloneValue(value)})
	c.items[key] = elem

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func hashContext(context map[string]Value) [32]byte {
	obj := NewOrderedValues()
	for k, v := range context {
		obj.Set(k, v)
	}
	return HashValue(Object(obj))
}

func cloneValue(v Value) Value {
	switch v.Kind() {
	case KindArray:
		items := make([]Value, len(v.AsArray()))
		for i, item := range v.AsArray() {
			items[i] = cloneValue(item)
		}
		return Array(items)
	case KindObject:
		out := NewOrderedValues()
		for _, k := range v.AsObject().Keys() {
			val, _ := v.AsObject().Get(k)
			out.Set(k, cloneValue(val))
		}
		return Object(out)
	default:
		return v
	}
}
