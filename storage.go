package depot

// SparseSet is packed storage for one component type. Three parallel arrays
// back it: dense holds entity ids in packed order, components holds values
// positionally aligned with dense, and sparse maps an entity id to its packed
// index (or the absent sentinel).
//
// Capacity is fixed at construction: it bounds both the highest addressable
// entity id and the packed element count. Mutations outside those bounds are
// silently ignored rather than corrupting state.
type SparseSet[T any] struct {
	dense      []uint32
	sparse     []int32
	components []T
}

const absent int32 = -1

// NewSparseSet creates a storage holding at most capacity components for
// entity ids in [0, capacity).
func NewSparseSet[T any](capacity int) *SparseSet[T] {
	sparse := make([]int32, capacity)
	for i := range sparse {
		sparse[i] = absent
	}
	return &SparseSet[T]{
		dense:      make([]uint32, 0, capacity),
		sparse:     sparse,
		components: make([]T, 0, capacity),
	}
}

// Add attaches a value for id. No-op when id is already present, out of
// bounds, or the packed array is full.
func (s *SparseSet[T]) Add(id uint32, value T) {
	if int(id) >= len(s.sparse) || s.sparse[id] != absent {
		return
	}
	if len(s.dense) == cap(s.dense) {
		return
	}
	s.sparse[id] = int32(len(s.dense))
	s.dense = append(s.dense, id)
	s.components = append(s.components, value)
}

// Remove detaches id's value by swapping it with the last packed element,
// keeping the dense arrays gap-free. No-op when absent. Iteration order is
// not preserved across removals.
func (s *SparseSet[T]) Remove(id uint32) {
	if !s.Has(id) {
		return
	}
	idx := s.sparse[id]
	last := int32(len(s.dense) - 1)
	movedID := s.dense[last]

	s.dense[idx] = movedID
	s.components[idx] = s.components[last]
	s.sparse[movedID] = idx

	s.dense = s.dense[:last]
	s.components = s.components[:last]
	s.sparse[id] = absent
}

// Has reports whether id holds a value in this storage.
func (s *SparseSet[T]) Has(id uint32) bool {
	return int(id) < len(s.sparse) && s.sparse[id] != absent
}

// Get returns a pointer to id's value for in-place mutation. This is the
// unchecked fast path: calling it for an absent id panics. Gate with Has.
func (s *SparseSet[T]) Get(id uint32) *T {
	return &s.components[s.sparse[id]]
}

// Set upserts: updates in place when id is present, adds otherwise.
func (s *SparseSet[T]) Set(id uint32, value T) {
	if s.Has(id) {
		s.components[s.sparse[id]] = value
		return
	}
	s.Add(id, value)
}

// Len returns the number of stored components.
func (s *SparseSet[T]) Len() int {
	return len(s.dense)
}

// PackedEntities returns the dense entity id array. It is a live view,
// aligned index-for-index with PackedComponents; callers must not append.
func (s *SparseSet[T]) PackedEntities() []uint32 {
	return s.dense
}

// PackedComponents returns the dense component array, aligned with
// PackedEntities. Mutating elements in place is supported.
func (s *SparseSet[T]) PackedComponents() []T {
	return s.components
}

func (s *SparseSet[T]) clear() {
	for i := range s.sparse {
		s.sparse[i] = absent
	}
	s.dense = s.dense[:0]
	s.components = s.components[:0]
}
