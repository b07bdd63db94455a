// Package detect tracks content hashes seen during a session for duplicate
// detection.
package detect

// Detector is a membership test over content hashes seen so far. Lifetime is
// bounded to one session; no eviction.
type Detector interface {
	// IsDuplicate reports whether the hash has been seen. Pure; does not
	// record.
	IsDuplicate(hash string) bool
	// Remember records the hash as seen. Idempotent.
	Remember(hash string)
}

// Set is the exact, set-backed detector.
type Set struct {
	hashes map[string]struct{}
}

// NewSet creates an empty exact detector.
func NewSet() *Set {
	return &Set{hashes: make(map[string]struct{})}
}

// IsDuplicate reports whether hash was remembered before.
func (s *Set) IsDuplicate(hash string) bool {
	_, ok := s.hashes[hash]
	return ok
}

// Remember records the hash.
func (s *Set) Remember(hash string) {
	s.hashes[hash] = struct{}{}
}

// Len returns the number of distinct hashes remembered.
func (s *Set) Len() int {
	return len(s.hashes)
}
