package depot

import (
	"reflect"

	"github.com/goccy/go-json"
)

type componentID uint32

// maxComponentTypes bounds the per-world component id space to the width of
// the signature mask.
const maxComponentTypes = 64

// ComponentType is a typed handle to a registered component type. Handles
// are world-scoped: register the type on every World that stores it. All
// operations take the owning World and an Entity explicitly.
type ComponentType[T any] struct {
	id   componentID
	name string
}

// ComponentOption tweaks component registration.
type ComponentOption func(*componentSettings)

type componentSettings struct {
	capacity int
}

// WithStorageCapacity overrides the world's default component storage
// capacity for this type.
func WithStorageCapacity(n int) ComponentOption {
	return func(s *componentSettings) { s.capacity = n }
}

// RegisterComponent registers T with w and returns its typed handle.
// Registration is idempotent: the backing storage is created on first use
// and lives for the world's lifetime. Panics when the component id space is
// exhausted; registration is setup-time code where a loud failure is wanted.
func RegisterComponent[T any](w *World, opts ...ComponentOption) ComponentType[T] {
	settings := componentSettings{capacity: w.cfg.ComponentCapacity}
	for _, opt := range opts {
		opt(&settings)
	}

	rt := reflect.TypeFor[T]()
	if id, ok := w.componentIDs[rt]; ok {
		return ComponentType[T]{id: id, name: w.components[id].typeName()}
	}
	if int(w.nextComponentID) >= maxComponentTypes {
		panic("depot: component type limit reached (64)")
	}

	id := w.nextComponentID
	w.nextComponentID++
	name := rt.String()

	w.componentIDs[rt] = id
	w.components[id] = &storeOf[T]{name: name, set: NewSparseSet[T](settings.capacity)}
	w.componentOrder = append(w.componentOrder, id)
	w.logger.Debug().Str("component", name).Int("capacity", settings.capacity).Msg("component registered")

	return ComponentType[T]{id: id, name: name}
}

func (ct ComponentType[T]) componentRef() (componentID, string) {
	return ct.id, ct.name
}

// storage resolves the handle to its typed sparse set, or nil when the
// handle does not belong to w.
func (ct ComponentType[T]) storage(w *World) *SparseSet[T] {
	store, ok := w.components[ct.id]
	if !ok {
		return nil
	}
	typed, ok := store.(*storeOf[T])
	if !ok || typed.name != ct.name {
		return nil
	}
	return typed.set
}

// Add attaches value to e. Silent no-op when e is dead, already holds a T,
// or the storage is at capacity.
func (ct ComponentType[T]) Add(w *World, e Entity, value T) {
	if !w.registry.IsAlive(e) {
		return
	}
	st := ct.storage(w)
	if st == nil || st.Has(e.ID) {
		return
	}
	st.Add(e.ID, value)
	if st.Has(e.ID) {
		w.markSignature(e.ID, ct.id)
	}
}

// Remove detaches e's T. Silent no-op when e is dead or holds none.
func (ct ComponentType[T]) Remove(w *World, e Entity) {
	if !w.registry.IsAlive(e) {
		return
	}
	st := ct.storage(w)
	if st == nil || !st.Has(e.ID) {
		return
	}
	st.Remove(e.ID)
	w.unmarkSignature(e.ID, ct.id)
}

// Has reports whether live entity e holds a T.
func (ct ComponentType[T]) Has(w *World, e Entity) bool {
	if !w.registry.IsAlive(e) {
		return false
	}
	st := ct.storage(w)
	return st != nil && st.Has(e.ID)
}

// Get returns a pointer to e's T for in-place mutation. Fails with
// DeadEntityError when e is not alive; returns nil without error when e is
// alive but holds no T (gate with Has).
func (ct ComponentType[T]) Get(w *World, e Entity) (*T, error) {
	if !w.registry.IsAlive(e) {
		return nil, DeadEntityError{Entity: e}
	}
	st := ct.storage(w)
	if st == nil || !st.Has(e.ID) {
		return nil, nil
	}
	return st.Get(e.ID), nil
}

// Set upserts: replaces e's T in place when present, attaches it otherwise.
// Silent no-op when e is dead.
func (ct ComponentType[T]) Set(w *World, e Entity, value T) {
	if !w.registry.IsAlive(e) {
		return
	}
	st := ct.storage(w)
	if st == nil {
		return
	}
	had := st.Has(e.ID)
	st.Set(e.ID, value)
	if !had && st.Has(e.ID) {
		w.markSignature(e.ID, ct.id)
	}
}

// Len returns the number of entities currently holding a T.
func (ct ComponentType[T]) Len(w *World) int {
	st := ct.storage(w)
	if st == nil {
		return 0
	}
	return st.Len()
}

// Filter builds a query predicate bound to this component type. The
// predicate sees the component value as it is at iteration time.
func (ct ComponentType[T]) Filter(pred func(*T) bool) Predicate {
	return Predicate{
		id:   ct.id,
		name: ct.name,
		fn: func(w *World, id uint32) bool {
			st := ct.storage(w)
			if st == nil || !st.Has(id) {
				return false
			}
			return pred(st.Get(id))
		},
	}
}

// GetFromCursor returns the current entity's T during iteration. Unchecked:
// only call it for types the query lists in With.
func (ct ComponentType[T]) GetFromCursor(c *Cursor) *T {
	return ct.storage(c.query.world).Get(c.current.ID)
}

// TryGetFromCursor is the checked companion for Optional clauses: the bool
// reports whether the current entity holds a T.
func (ct ComponentType[T]) TryGetFromCursor(c *Cursor) (*T, bool) {
	st := ct.storage(c.query.world)
	if st == nil || !st.Has(c.current.ID) {
		return nil, false
	}
	return st.Get(c.current.ID), true
}

// storeOf adapts a typed sparse set to the world's type-erased view.
type storeOf[T any] struct {
	name string
	set  *SparseSet[T]
}

func (s *storeOf[T]) typeName() string   { return s.name }
func (s *storeOf[T]) has(id uint32) bool { return s.set.Has(id) }
func (s *storeOf[T]) remove(id uint32)   { s.set.Remove(id) }
func (s *storeOf[T]) length() int        { return s.set.Len() }
func (s *storeOf[T]) packed() []uint32   { return s.set.PackedEntities() }
func (s *storeOf[T]) clear()             { s.set.clear() }

func (s *storeOf[T]) encode() (ComponentSnapshot, error) {
	ids := s.set.PackedEntities()
	values := s.set.PackedComponents()
	snap := ComponentSnapshot{
		Type:     s.name,
		Entities: append([]uint32(nil), ids...),
		Values:   make([]json.RawMessage, len(values)),
	}
	for i := range values {
		raw, err := encodeValue(values[i])
		if err != nil {
			return ComponentSnapshot{}, err
		}
		snap.Values[i] = raw
	}
	return snap, nil
}

func (s *storeOf[T]) decodeInto(id uint32, raw json.RawMessage) error {
	value, err := decodeValue[T](raw)
	if err != nil {
		return err
	}
	s.set.Set(id, value)
	return nil
}
