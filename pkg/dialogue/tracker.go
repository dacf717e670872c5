package dialogue

import "sort"

// NameTracker is a multiset membership counter: it records how many owners
// currently claim each name. A count of two or more is a collision.
type NameTracker struct {
	claims map[string]int
}

// NewNameTracker creates an empty tracker.
func NewNameTracker() *NameTracker {
	return &NameTracker{claims: make(map[string]int)}
}

// Claim records one more owner of name and returns the new count.
func (t *NameTracker) Claim(name string) int {
	t.claims[name]++
	return t.claims[name]
}

// Release drops one owner of name and returns the remaining count.
func (t *NameTracker) Release(name string) int {
	n, ok := t.claims[name]
	if !ok {
		return 0
	}
	if n <= 1 {
		delete(t.claims, name)
		return 0
	}
	t.claims[name] = n - 1
	return n - 1
}

// Count returns how many owners claim name.
func (t *NameTracker) Count(name string) int {
	return t.claims[name]
}

// Collisions returns every name claimed two or more times, sorted.
func (t *NameTracker) Collisions() []string {
	var out []string
	for name, n := range t.claims {
		if n >= 2 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of distinct names.
func (t *NameTracker) Len() int {
	return len(t.claims)
}
