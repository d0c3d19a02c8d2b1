package texture

// FaceSet is an insertion-ordered set of face indices over a fixed face count.
// Membership is a parallel presence array, so Add and Contains are O(1) and
// Clear is O(k) in the number of members, without reallocating.
type FaceSet struct {
	order   []int
	present []bool
}

// NewFaceSet creates an empty set for faces [0, n).
func NewFaceSet(n int) *FaceSet {
	return &FaceSet{
		order:   make([]int, 0, min(n, 64)),
		present: make([]bool, n),
	}
}

// Add inserts f and reports whether it was new.
func (s *FaceSet) Add(f int) bool {
	if f < 0 || f >= len(s.present) || s.present[f] {
		return false
	}
	s.present[f] = true
	s.order = append(s.order, f)
	return true
}

// Contains reports whether f is in the set.
func (s *FaceSet) Contains(f int) bool {
	return f >= 0 && f < len(s.present) && s.present[f]
}

// Len returns the number of faces in the set.
func (s *FaceSet) Len() int {
	return len(s.order)
}

// Faces returns the members in insertion order. The slice is only valid
// until the next Add or Clear.
func (s *FaceSet) Faces() []int {
	return s.order
}

// Clear removes every member.
func (s *FaceSet) Clear() {
	for _, f := range s.order {
		s.present[f] = false
	}
	s.order = s.order[:0]
}
