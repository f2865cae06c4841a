package depot

import "github.com/TheBitDrifter/mask"

// Predicate is a value filter bound to one component type, built through
// ComponentType.Filter. It is evaluated against the component value as it is
// at iteration time, never a snapshot.
type Predicate struct {
	id   componentID
	name string
	fn   func(w *World, id uint32) bool
}

type relClause struct {
	id     relationID
	name   string
	target Entity
}

// QueryBuilder accumulates clauses without side effects, then compiles them
// into an immutable Query via Build.
type QueryBuilder struct {
	world     *World
	withs     []componentID
	withouts  []componentID
	optionals []componentID
	preds     []Predicate
	rels      []relClause
	unknown   bool
}

// With requires candidates to hold the given component type. Every query
// needs at least one With or WithRelationship clause.
func (b *QueryBuilder) With(c ComponentRef) *QueryBuilder {
	id, ok := b.resolve(c)
	if !ok {
		b.unknown = true
		return b
	}
	b.withs = append(b.withs, id)
	return b
}

// Without excludes candidates holding the given component type.
func (b *QueryBuilder) Without(c ComponentRef) *QueryBuilder {
	if id, ok := b.resolve(c); ok {
		b.withouts = append(b.withouts, id)
	}
	return b
}

// Optional marks a component type as present-but-not-filtering: results may
// or may not hold it, and callers check presence with TryGetFromCursor.
func (b *QueryBuilder) Optional(c ComponentRef) *QueryBuilder {
	if id, ok := b.resolve(c); ok {
		b.optionals = append(b.optionals, id)
	}
	return b
}

// Where adds a value predicate. Its component type becomes a requirement if
// not already listed in With.
func (b *QueryBuilder) Where(p Predicate) *QueryBuilder {
	b.preds = append(b.preds, p)
	return b
}

// WithRelationship requires candidates to hold an edge of the given type
// pointing at target.
func (b *QueryBuilder) WithRelationship(r RelationshipRef, target Entity) *QueryBuilder {
	id, name := r.relationshipRef()
	b.rels = append(b.rels, relClause{id: id, name: name, target: target})
	return b
}

// resolve checks that a component handle belongs to this builder's world.
// Handles from another world (or zero-value handles) reference types this
// world never registered; such clauses match nothing rather than erroring.
func (b *QueryBuilder) resolve(c ComponentRef) (componentID, bool) {
	id, name := c.componentRef()
	store, ok := b.world.components[id]
	if !ok || store.typeName() != name {
		return 0, false
	}
	return id, true
}

// Build compiles the accumulated clauses into a Query. Fails with
// EmptyQueryError when no With or relationship clause drives the query, and
// with UnknownRelationshipTypeError when a relationship clause references a
// type this world never registered. A With on an unregistered or empty
// component type is legal and compiles to a query that yields zero results.
func (b *QueryBuilder) Build() (*Query, error) {
	if len(b.withs) == 0 && !b.unknown && len(b.rels) == 0 {
		return nil, EmptyQueryError{}
	}
	if b.unknown && len(b.rels) == 0 && len(b.withs) == 0 {
		// Only unknown With clauses: a legal, always-empty query.
		return &Query{world: b.world, empty: true}, nil
	}

	for _, clause := range b.rels {
		store, ok := b.world.relations[clause.id]
		if !ok || store.typeName() != clause.name {
			return nil, UnknownRelationshipTypeError{Name: clause.name}
		}
	}

	q := &Query{
		world:     b.world,
		withs:     append([]componentID(nil), b.withs...),
		rels:      append([]relClause(nil), b.rels...),
		preds:     append([]Predicate(nil), b.preds...),
		optionals: append([]componentID(nil), b.optionals...),
		empty:     b.unknown,
	}

	// Predicates bind to required component types; fold any missing ones
	// into the requirement set.
	for _, p := range q.preds {
		bound := false
		for _, id := range q.withs {
			if id == p.id {
				bound = true
				break
			}
		}
		if !bound {
			store, ok := b.world.components[p.id]
			if !ok || store.typeName() != p.name {
				q.empty = true
				continue
			}
			q.withs = append(q.withs, p.id)
		}
	}

	for _, id := range q.withs {
		q.withMask.Mark(uint32(id))
	}
	for _, id := range b.withouts {
		q.withoutMask.Mark(uint32(id))
	}
	return q, nil
}

// Query is an immutable compiled plan. It is not a snapshot: every iteration
// pass scans current world state, re-selecting the cheapest driver.
type Query struct {
	world       *World
	withs       []componentID
	withMask    mask.Mask
	withoutMask mask.Mask
	rels        []relClause
	preds       []Predicate
	optionals   []componentID
	empty       bool
}

// Iter returns a fresh cursor over the entities matching this query.
// Cursors are independent: concurrent passes over the same Query never share
// iteration state.
//
// The driver is chosen per pass: the smallest packed component storage among
// the With clauses is weighed against the smallest relationship source list,
// and whichever candidate set is smaller is scanned; every other clause is
// applied as a per-candidate filter. In-place component mutation during a
// pass is supported and visible to later steps of the same pass. Structural
// mutation (add/remove/destroy) mid-pass is unsupported and yields
// unreliable, though memory-safe, results.
func (q *Query) Iter() *Cursor {
	c := &Cursor{query: q}
	if q.empty {
		return c
	}

	bestComponent := -1
	var componentIDs []uint32
	for _, id := range q.withs {
		n := q.world.components[id].length()
		if bestComponent < 0 || n < bestComponent {
			bestComponent = n
			componentIDs = q.world.components[id].packed()
		}
	}

	bestRelation := -1
	var relationSources []Entity
	for _, clause := range q.rels {
		store := q.world.relations[clause.id]
		n := store.sourceCount(clause.target)
		if bestRelation < 0 || n < bestRelation {
			bestRelation = n
			relationSources = store.sources(clause.target)
		}
	}

	switch {
	case bestComponent < 0 && bestRelation < 0:
		// No driver resolved; nothing to scan.
	case bestRelation < 0 || (bestComponent >= 0 && bestComponent <= bestRelation):
		c.driverIDs = componentIDs
		q.world.logger.Debug().Str("driver", "component").Int("candidates", bestComponent).Msg("query pass")
	default:
		c.driverEntities = relationSources
		q.world.logger.Debug().Str("driver", "relationship").Int("candidates", bestRelation).Msg("query pass")
	}
	return c
}

// Each invokes fn for every matching entity until fn returns false.
func (q *Query) Each(fn func(Entity) bool) {
	c := q.Iter()
	for c.Next() {
		if !fn(c.Entity()) {
			return
		}
	}
}

// Count returns the number of entities currently matching this query.
func (q *Query) Count() int {
	n := 0
	c := q.Iter()
	for c.Next() {
		n++
	}
	return n
}

// matches applies the per-candidate filters, cheapest first: liveness is
// established by the caller, then required components, excluded components,
// relationship edges, and value predicates, short-circuiting on the first
// failure.
func (q *Query) matches(e Entity) bool {
	sig, ok := q.world.signatureOf(e.ID)
	if !ok {
		return false
	}
	if !sig.ContainsAll(q.withMask) {
		return false
	}
	if !sig.ContainsNone(q.withoutMask) {
		return false
	}
	for _, clause := range q.rels {
		if !q.world.relations[clause.id].hasEdge(e, clause.target) {
			return false
		}
	}
	for _, p := range q.preds {
		if !p.fn(q.world, e.ID) {
			return false
		}
	}
	return true
}
