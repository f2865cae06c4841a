package depot

import "iter"

// Cursor walks the entities matching a query. Each Iter call returns a fresh
// cursor, so independent passes over the same Query never interfere.
type Cursor struct {
	query *Query

	// Exactly one of these is set (or neither, for empty queries): packed
	// entity ids when a component storage drives the scan, resolved source
	// handles when a relationship index does.
	driverIDs      []uint32
	driverEntities []Entity

	index   int
	current Entity
}

// Next advances to the next matching entity, returning false once the
// candidate set is exhausted.
func (c *Cursor) Next() bool {
	for {
		e, ok := c.nextCandidate()
		if !ok {
			return false
		}
		if c.query.matches(e) {
			c.current = e
			return true
		}
	}
}

// nextCandidate pulls the next entry from the driver set, skipping anything
// no longer alive.
func (c *Cursor) nextCandidate() (Entity, bool) {
	reg := c.query.world.registry
	if c.driverIDs != nil {
		for c.index < len(c.driverIDs) {
			id := c.driverIDs[c.index]
			c.index++
			if gen, ok := reg.generationOf(id); ok {
				return Entity{ID: id, Generation: gen}, true
			}
		}
		return Entity{}, false
	}
	for c.index < len(c.driverEntities) {
		e := c.driverEntities[c.index]
		c.index++
		if reg.IsAlive(e) {
			return e, true
		}
	}
	return Entity{}, false
}

// Entity returns the current match. Valid only after Next reported true.
func (c *Cursor) Entity() Entity {
	return c.current
}

// Entities returns the matches as an iter.Seq, resolving each entity against
// current world state as the sequence is consumed.
func (q *Query) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		c := q.Iter()
		for c.Next() {
			if !yield(c.Entity()) {
				return
			}
		}
	}
}
