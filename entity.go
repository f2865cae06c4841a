package depot

// Entity is a stable handle to a logical object in a World. It is a plain
// value: all operations take the owning World explicitly, so handles can be
// copied, stored, and compared freely.
//
// A handle is alive iff the registry still holds its generation for its id.
// Destroying an entity bumps the slot's generation, invalidating every
// previously issued handle for that slot.
type Entity struct {
	ID         uint32 `json:"id"`
	Generation uint32 `json:"generation"`
}

// EntityRegistry issues entity handles, recycles destroyed ids through a
// free-list, and reports liveness.
//
// Generations start at 1 so the zero Entity is never alive. A slot's
// generation wraps around silently after exhausting uint32; with one destroy
// per frame at 60fps that takes over two years of runtime on a single slot,
// so the wraparound is documented rather than defended against.
type EntityRegistry struct {
	generations []uint32
	freeList    []uint32
	capacity    int
}

func newEntityRegistry(capacity int) *EntityRegistry {
	return &EntityRegistry{
		generations: make([]uint32, 0, capacity),
		capacity:    capacity,
	}
}

// Create returns a recycled entity slot when one is available, otherwise
// allocates a fresh id. Fails with CapacityExceededError once every slot
// is live.
func (r *EntityRegistry) Create() (Entity, error) {
	if n := len(r.freeList); n > 0 {
		id := r.freeList[n-1]
		r.freeList = r.freeList[:n-1]
		return Entity{ID: id, Generation: r.generations[id]}, nil
	}
	if len(r.generations) >= r.capacity {
		return Entity{}, CapacityExceededError{Capacity: r.capacity}
	}
	id := uint32(len(r.generations))
	r.generations = append(r.generations, 1)
	return Entity{ID: id, Generation: 1}, nil
}

// IsAlive reports whether e is the current handle for its slot.
func (r *EntityRegistry) IsAlive(e Entity) bool {
	return int(e.ID) < len(r.generations) && r.generations[e.ID] == e.Generation
}

// Destroy invalidates e and returns its id to the free-list. No-op if e is
// not alive. Component and relationship cleanup is the World's job and must
// happen before this call.
func (r *EntityRegistry) Destroy(e Entity) {
	if !r.IsAlive(e) {
		return
	}
	r.generations[e.ID]++
	r.freeList = append(r.freeList, e.ID)
}

// Count returns the number of live entities.
func (r *EntityRegistry) Count() int {
	return len(r.generations) - len(r.freeList)
}

// Capacity returns the maximum number of entity slots.
func (r *EntityRegistry) Capacity() int {
	return r.capacity
}

func (r *EntityRegistry) generationOf(id uint32) (uint32, bool) {
	if int(id) >= len(r.generations) {
		return 0, false
	}
	return r.generations[id], true
}
