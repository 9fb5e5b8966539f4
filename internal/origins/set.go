package origins

// A Set represents a set of allowed (tuple) Web origins,
// described by origin patterns.
// The zero value is an empty set.
//
// Lookups are linear in the number of patterns;
// the allow-lists of diagnostic endpoints are small.
type Set struct {
	patterns []Pattern
	elems    map[string]struct{} // textual patterns, for deduplication
}

// Add augments s with all Web origins encompassed by p.
func (s *Set) Add(p *Pattern) {
	str := p.String()
	if _, found := s.elems[str]; found {
		return
	}
	if s.elems == nil {
		s.elems = make(map[string]struct{})
	}
	s.elems[str] = struct{}{}
	s.patterns = append(s.patterns, *p)
}

// IsEmpty reports whether s contains no origins.
func (s *Set) IsEmpty() bool {
	return len(s.patterns) == 0
}

// Contains reports whether s contains origin o.
func (s *Set) Contains(o *Origin) bool {
	for i := range s.patterns {
		if s.patterns[i].Matches(o) {
			return true
		}
	}
	return false
}

// Elems returns the textual representations of the patterns in s,
// in insertion order.
func (s *Set) Elems() []string {
	res := make([]string, 0, len(s.patterns))
	for i := range s.patterns {
		res = append(res, s.patterns[i].String())
	}
	return res
}
