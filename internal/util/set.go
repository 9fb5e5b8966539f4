package util

// An OrderedSet represents a set of strings that remembers insertion order.
// Two strings are considered duplicates if they have the same key, as
// supplied by the caller of [OrderedSet.Add].
// The zero value represents an empty set.
type OrderedSet struct {
	elems []string
	keys  map[string]struct{}
}

// Add adds e to set under key and reports whether set changed.
// If an element with the same key is already present, set is left unchanged.
func (set *OrderedSet) Add(e, key string) bool {
	if _, found := set.keys[key]; found {
		return false
	}
	if set.keys == nil {
		set.keys = make(map[string]struct{})
	}
	set.keys[key] = struct{}{}
	set.elems = append(set.elems, e)
	return true
}

// Size returns the cardinality of set.
func (set *OrderedSet) Size() int {
	return len(set.elems)
}

// ToSlice returns a slice of set's elements in insertion order.
func (set *OrderedSet) ToSlice() []string {
	// Callers may mutate the result; see (*httpx.Responder).Config.
	return append([]string(nil), set.elems...)
}
