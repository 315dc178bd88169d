package capability

import (
	"sort"
	"strconv"
	"sync"
	"unicode/utf16"
)

// Context names the wavelet context a robot asks the server to deliver
// alongside an event.
type Context string

// Contexts a capability may declare.
const (
	ContextParent   Context = "PARENT"
	ContextSiblings Context = "SIBLINGS"
	ContextChildren Context = "CHILDREN"
)

// DefaultContexts is what the server applies when a capability declares
// none. It is implicit: registering with no contexts stores an empty list
// and emits no context attribute.
var DefaultContexts = []Context{ContextChildren, ContextParent}

// Capability is one declared interest: the contexts to deliver and an
// optional content filter.
type Capability struct {
	Contexts []Context
	Filter   string
}

// Registry collects capability declarations and lazily derives the version
// hash. Register all capabilities before the first Version or Map call;
// registration after that point would silently diverge from the published
// hash, so it is rejected.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]Capability
	once     sync.Once
	version  string
	computed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Capability)}
}

// Register records a declared interest in the named event type. Returns
// false when the version hash has already been computed, in which case the
// declaration is not recorded.
func (r *Registry) Register(eventType string, contexts []Context, filter string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.computed {
		return false
	}
	r.entries[eventType] = Capability{
		Contexts: append([]Context(nil), contexts...),
		Filter:   filter,
	}
	return true
}

// Map returns a copy of the declarations keyed by event type name.
func (r *Registry) Map() map[string]Capability {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Capability, len(r.entries))
	for key, c := range r.entries {
		out[key] = Capability{
			Contexts: append([]Context(nil), c.Contexts...),
			Filter:   c.Filter,
		}
	}
	return out
}

// SortedKeys returns the declared event type names in lexicographic order,
// the order capabilities.xml lists them in.
func (r *Registry) SortedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedKeysLocked()
}

func (r *Registry) sortedKeysLocked() []string {
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Version returns the capabilities version hash. The first call computes
// and freezes it; the registry rejects registration afterwards.
func (r *Registry) Version() string {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.version = r.computeLocked()
		r.computed = true
	})
	return r.version
}

// computeLocked folds the declarations into a hash that depends only on
// their content: entries in sorted key order, contexts in declared order.
func (r *Registry) computeLocked() string {
	var acc int64
	for _, key := range r.sortedKeysLocked() {
		c := r.entries[key]
		h := int64(stringHash(key))
		for _, ctx := range c.Contexts {
			h = h*31 + int64(stringHash(string(ctx)))
		}
		h = h*31 + int64(stringHash(c.Filter))
		acc = acc*17 + h
	}
	return strconv.FormatUint(uint64(acc), 16)
}

// stringHash is the 31-polynomial over the string's UTF-16 code units with
// 32-bit wraparound. Unlike the runtime's randomized map hash it is stable
// across processes, which the cross-instance hash agreement depends on.
func stringHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return h
}
