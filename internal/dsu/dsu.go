// Package dsu implements a fixed-size disjoint-set union used to detect
// cycles while edges are added to the assignment graph.
package dsu

// Set is a disjoint-set forest over the elements [0, size).
//
// Find uses iterative path compression and Merge uses union by size, so no
// operation recurses regardless of how long a parent chain grows.
//
// A Set is NOT safe for concurrent use. Parallel builds give each worker its
// own Set.
type Set struct {
	parent []uint32 // parent[i] == i for roots
	size   []uint32 // only meaningful for roots: elements in the tree
	count  int      // number of disjoint components
}

// New returns a Set of size singleton components.
func New(size int) *Set {
	s := &Set{}
	s.Reset(size)
	return s
}

// Reset reinitializes the first size elements as singleton components.
// Storage is reused when its capacity allows.
func (s *Set) Reset(size int) {
	if cap(s.parent) < size {
		s.parent = make([]uint32, size)
		s.size = make([]uint32, size)
	} else {
		s.parent = s.parent[:size]
		s.size = s.size[:size]
	}
	for i := range s.parent {
		s.parent[i] = uint32(i)
		s.size[i] = 1
	}
	s.count = size
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.parent)
}

// Count returns the number of disjoint components.
func (s *Set) Count() int {
	return s.count
}

// Find returns the representative of x's component.
func (s *Set) Find(x uint32) uint32 {
	root := x
	for s.parent[root] != root {
		root = s.parent[root]
	}
	// Second pass: point every node on the path directly at the root.
	for s.parent[x] != root {
		next := s.parent[x]
		s.parent[x] = root
		x = next
	}
	return root
}

// Merge joins the components of x and y.
//
// Returns false, and changes nothing, when x and y are already in the same
// component (including x == y). The assignment graph builder treats false as
// "this edge would close a cycle".
func (s *Set) Merge(x, y uint32) bool {
	x, y = s.Find(x), s.Find(y)
	if x == y {
		return false
	}
	// Attach the smaller tree under the larger one.
	if s.size[x] < s.size[y] {
		x, y = y, x
	}
	s.parent[y] = x
	s.size[x] += s.size[y]
	s.count--
	return true
}
