package ftl

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// FormatCache memoizes format results keyed on the requested message,
// attribute and variables. Resolution is deterministic, so a cached result
// (including its diagnostics) is indistinguishable from a fresh one.
// The cache is safe for concurrent use.
type FormatCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result string
	errs   []error
}

// NewFormatCache creates an empty format cache
func NewFormatCache() *FormatCache {
	return &FormatCache{entries: make(map[string]cacheEntry)}
}

// FormatMessage formats a message through the cache.
// Only variables participate in the cache key, so calls passing custom
// functions have to bypass the cache.
func (cache *FormatCache) FormatMessage(bundle *Bundle, key string, variables map[string]interface{}) (string, []error, error) {
	return cache.format(bundle, key, "", variables)
}

// FormatAttribute formats a message attribute through the cache
func (cache *FormatCache) FormatAttribute(bundle *Bundle, key, attribute string, variables map[string]interface{}) (string, []error, error) {
	return cache.format(bundle, key, attribute, variables)
}

// Purge drops every cached result.
// Call this after mutating a bundle the cache has formatted from.
func (cache *FormatCache) Purge() {
	cache.mu.Lock()
	cache.entries = make(map[string]cacheEntry)
	cache.mu.Unlock()
}

func (cache *FormatCache) format(bundle *Bundle, key, attribute string, variables map[string]interface{}) (string, []error, error) {
	cacheKey := cache.key(bundle, key, attribute, variables)

	cache.mu.RLock()
	entry, hit := cache.entries[cacheKey]
	cache.mu.RUnlock()
	if hit {
		// Hand out a copy so callers cannot mutate the memoized diagnostics
		return entry.result, append([]error(nil), entry.errs...), nil
	}

	var result string
	var errs []error
	var err error
	if attribute == "" {
		result, errs, err = bundle.FormatMessage(key, WithVariables(variables))
	} else {
		result, errs, err = bundle.FormatAttribute(key, attribute, WithVariables(variables))
	}
	if err != nil {
		// Missing messages are not cached; they may be added later
		return result, errs, err
	}

	cache.mu.Lock()
	cache.entries[cacheKey] = cacheEntry{result: result, errs: append([]error(nil), errs...)}
	cache.mu.Unlock()

	return result, errs, nil
}

// key canonicalizes a format call into a stable string: variables are sorted
// by name and coerced the same way the resolver would coerce them
func (cache *FormatCache) key(bundle *Bundle, key, attribute string, variables map[string]interface{}) string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%p\x00%s\x00%s", bundle, key, attribute)
	for _, name := range names {
		value := CoerceValue(variables[name])
		if value == nil {
			continue
		}
		fmt.Fprintf(&sb, "\x00%s=%s", name, value.String())
	}
	return sb.String()
}
