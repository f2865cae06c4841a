package depot

import (
	"reflect"

	"github.com/goccy/go-json"
)

type relationID uint32

// RelationshipKind declares how edges of a relationship type behave.
type RelationshipKind int

const (
	// Directed edges exist only in the direction they were added.
	Directed RelationshipKind = iota
	// Bidirectional edges are mirrored automatically: adding A->B also adds
	// B->A, carrying the same data or a transform of it (see WithMirror).
	Bidirectional
)

// entityKey disambiguates recycled ids when used as a map key.
type entityKey struct {
	id         uint32
	generation uint32
}

func keyOf(e Entity) entityKey {
	return entityKey{id: e.ID, generation: e.Generation}
}

type edge[T any] struct {
	source Entity
	target Entity
	data   T
}

// RelationshipStore holds the edges of one relationship type in a forward
// index (source id -> target edges) and a reverse index (target id ->
// sources), kept mutually consistent on every mutation. The store itself
// only knows about the direction each edge was declared in; bidirectional
// mirroring happens at the World layer.
type RelationshipStore[T any] struct {
	forward map[uint32]map[entityKey]edge[T]
	reverse map[uint32][]Entity
}

// NewRelationshipStore creates an empty edge store.
func NewRelationshipStore[T any]() *RelationshipStore[T] {
	return &RelationshipStore[T]{
		forward: make(map[uint32]map[entityKey]edge[T]),
		reverse: make(map[uint32][]Entity),
	}
}

// Add inserts or overwrites the edge source->target. The reverse index ends
// up containing source exactly once per target.
func (s *RelationshipStore[T]) Add(source, target Entity, data T) {
	m := s.forward[source.ID]
	if m == nil {
		m = make(map[entityKey]edge[T])
		s.forward[source.ID] = m
	}
	k := keyOf(target)
	_, existed := m[k]
	m[k] = edge[T]{source: source, target: target, data: data}
	if existed {
		return
	}
	for _, src := range s.reverse[target.ID] {
		if src == source {
			return
		}
	}
	s.reverse[target.ID] = append(s.reverse[target.ID], source)
}

// Remove deletes the edge source->target from both indices. Keys whose maps
// or slices become empty are removed entirely, leaving no residue.
func (s *RelationshipStore[T]) Remove(source, target Entity) {
	m := s.forward[source.ID]
	if m == nil {
		return
	}
	k := keyOf(target)
	if _, ok := m[k]; !ok {
		return
	}
	delete(m, k)
	// Edges toward other generations of the same slot keep the reverse
	// entry alive.
	stillLinked := false
	for rk := range m {
		if rk.id == target.ID {
			stillLinked = true
			break
		}
	}
	if len(m) == 0 {
		delete(s.forward, source.ID)
	}
	if !stillLinked {
		s.dropReverse(target.ID, source.ID)
	}
}

// Has reports whether the edge source->target exists.
func (s *RelationshipStore[T]) Has(source, target Entity) bool {
	_, ok := s.forward[source.ID][keyOf(target)]
	return ok
}

// TryGetData returns the data on the edge source->target, if present.
func (s *RelationshipStore[T]) TryGetData(source, target Entity) (T, bool) {
	ed, ok := s.forward[source.ID][keyOf(target)]
	return ed.data, ok
}

// GetTargets returns every entity source points at.
func (s *RelationshipStore[T]) GetTargets(source Entity) []Entity {
	m := s.forward[source.ID]
	if len(m) == 0 {
		return nil
	}
	targets := make([]Entity, 0, len(m))
	for _, ed := range m {
		targets = append(targets, ed.target)
	}
	return targets
}

// GetSources returns every entity pointing at target. The returned slice is
// a live view; callers must not mutate it.
func (s *RelationshipStore[T]) GetSources(target Entity) []Entity {
	return s.reverse[target.ID]
}

// SourceCount returns the number of entities pointing at target.
func (s *RelationshipStore[T]) SourceCount(target Entity) int {
	return len(s.reverse[target.ID])
}

// RemoveAll purges every edge where id appears as source or target, on both
// sides of the index. Called during entity destruction.
func (s *RelationshipStore[T]) RemoveAll(id uint32) {
	if m, ok := s.forward[id]; ok {
		for _, ed := range m {
			s.dropReverse(ed.target.ID, id)
		}
		delete(s.forward, id)
	}
	if sources, ok := s.reverse[id]; ok {
		for _, src := range sources {
			m := s.forward[src.ID]
			for k := range m {
				if k.id == id {
					delete(m, k)
				}
			}
			if len(m) == 0 {
				delete(s.forward, src.ID)
			}
		}
		delete(s.reverse, id)
	}
}

func (s *RelationshipStore[T]) dropReverse(targetID, sourceID uint32) {
	sources := s.reverse[targetID]
	for i := 0; i < len(sources); {
		if sources[i].ID != sourceID {
			i++
			continue
		}
		sources[i] = sources[len(sources)-1]
		sources = sources[:len(sources)-1]
	}
	if len(sources) == 0 {
		delete(s.reverse, targetID)
		return
	}
	s.reverse[targetID] = sources
}

func (s *RelationshipStore[T]) clear() {
	s.forward = make(map[uint32]map[entityKey]edge[T])
	s.reverse = make(map[uint32][]Entity)
}

// RelationshipType is a typed handle to a registered relationship type.
// Like component handles, it is world-scoped.
type RelationshipType[T any] struct {
	id   relationID
	name string
	kind RelationshipKind
}

// RelationshipOption tweaks relationship registration.
type RelationshipOption[T any] func(*relationshipSettings[T])

type relationshipSettings[T any] struct {
	mirror func(T) T
}

// WithMirror supplies the transform applied to edge data when a
// bidirectional add inserts the mirror edge. Without it the mirror carries
// the data unchanged.
func WithMirror[T any](fn func(T) T) RelationshipOption[T] {
	return func(s *relationshipSettings[T]) { s.mirror = fn }
}

// RegisterRelationship registers the relationship type T with w and returns
// its handle. Idempotent: re-registering returns the original handle and
// ignores the kind and options of later calls.
func RegisterRelationship[T any](w *World, kind RelationshipKind, opts ...RelationshipOption[T]) RelationshipType[T] {
	settings := relationshipSettings[T]{}
	for _, opt := range opts {
		opt(&settings)
	}

	rt := reflect.TypeFor[T]()
	if id, ok := w.relationIDs[rt]; ok {
		existing := w.relations[id]
		return RelationshipType[T]{id: id, name: existing.typeName(), kind: existing.kindOf()}
	}

	id := w.nextRelationID
	w.nextRelationID++
	name := rt.String()

	w.relationIDs[rt] = id
	w.relations[id] = &relStoreOf[T]{
		name:   name,
		kind:   kind,
		mirror: settings.mirror,
		store:  NewRelationshipStore[T](),
	}
	w.relationOrder = append(w.relationOrder, id)
	w.logger.Debug().Str("relationship", name).Bool("bidirectional", kind == Bidirectional).Msg("relationship registered")

	return RelationshipType[T]{id: id, name: name, kind: kind}
}

func (rt RelationshipType[T]) relationshipRef() (relationID, string) {
	return rt.id, rt.name
}

// Kind returns the declared direction semantics of this relationship type.
func (rt RelationshipType[T]) Kind() RelationshipKind {
	return rt.kind
}

func (rt RelationshipType[T]) storage(w *World) *relStoreOf[T] {
	store, ok := w.relations[rt.id]
	if !ok {
		return nil
	}
	typed, ok := store.(*relStoreOf[T])
	if !ok || typed.name != rt.name {
		return nil
	}
	return typed
}

// Add inserts the edge source->target with data. For bidirectional types the
// mirror edge target->source is inserted as well, carrying data transformed
// by the registered mirror function (identity by default). Silent no-op when
// either end is dead.
func (rt RelationshipType[T]) Add(w *World, source, target Entity, data T) {
	if !w.registry.IsAlive(source) || !w.registry.IsAlive(target) {
		return
	}
	rs := rt.storage(w)
	if rs == nil {
		return
	}
	rs.store.Add(source, target, data)
	if rs.kind == Bidirectional {
		mirrored := data
		if rs.mirror != nil {
			mirrored = rs.mirror(data)
		}
		rs.store.Add(target, source, mirrored)
	}
}

// Remove deletes the edge source->target, and the mirror edge for
// bidirectional types. Silent no-op when absent.
func (rt RelationshipType[T]) Remove(w *World, source, target Entity) {
	rs := rt.storage(w)
	if rs == nil {
		return
	}
	rs.store.Remove(source, target)
	if rs.kind == Bidirectional {
		rs.store.Remove(target, source)
	}
}

// Has reports whether the edge source->target exists.
func (rt RelationshipType[T]) Has(w *World, source, target Entity) bool {
	rs := rt.storage(w)
	return rs != nil && rs.store.Has(source, target)
}

// Data returns the data on the edge source->target, if present.
func (rt RelationshipType[T]) Data(w *World, source, target Entity) (T, bool) {
	rs := rt.storage(w)
	if rs == nil {
		var zero T
		return zero, false
	}
	return rs.store.TryGetData(source, target)
}

// Targets returns every entity source points at through this type.
func (rt RelationshipType[T]) Targets(w *World, source Entity) []Entity {
	rs := rt.storage(w)
	if rs == nil {
		return nil
	}
	return rs.store.GetTargets(source)
}

// Sources returns every entity pointing at target through this type.
func (rt RelationshipType[T]) Sources(w *World, target Entity) []Entity {
	rs := rt.storage(w)
	if rs == nil {
		return nil
	}
	return rs.store.GetSources(target)
}

// relStoreOf adapts a typed relationship store to the world's type-erased
// view and carries the registration-time direction semantics.
type relStoreOf[T any] struct {
	name   string
	kind   RelationshipKind
	mirror func(T) T
	store  *RelationshipStore[T]
}

func (s *relStoreOf[T]) typeName() string             { return s.name }
func (s *relStoreOf[T]) kindOf() RelationshipKind     { return s.kind }
func (s *relStoreOf[T]) hasEdge(src, tgt Entity) bool { return s.store.Has(src, tgt) }
func (s *relStoreOf[T]) sources(tgt Entity) []Entity  { return s.store.GetSources(tgt) }
func (s *relStoreOf[T]) sourceCount(tgt Entity) int   { return s.store.SourceCount(tgt) }
func (s *relStoreOf[T]) removeAll(id uint32)          { s.store.RemoveAll(id) }
func (s *relStoreOf[T]) clear()                       { s.store.clear() }

func (s *relStoreOf[T]) encode() (RelationshipSnapshot, error) {
	snap := RelationshipSnapshot{
		Type:          s.name,
		Bidirectional: s.kind == Bidirectional,
	}
	for _, m := range s.store.forward {
		for _, ed := range m {
			raw, err := encodeValue(ed.data)
			if err != nil {
				return RelationshipSnapshot{}, err
			}
			snap.Edges = append(snap.Edges, EdgeSnapshot{
				Source: ed.source,
				Target: ed.target,
				Data:   raw,
			})
		}
	}
	return snap, nil
}

func (s *relStoreOf[T]) decodeEdge(source, target Entity, raw json.RawMessage) error {
	data, err := decodeValue[T](raw)
	if err != nil {
		return err
	}
	// Mirror edges are already materialized in the snapshot; insert exactly
	// what was exported.
	s.store.Add(source, target, data)
	return nil
}
