/*
Package depot provides a sparse-set Entity-Component-System (ECS) engine for games and simulations.

Depot stores each component type in its own packed array, indexed by entity id through a
sparse lookup table. Add, remove, has, and get are O(1); live components stay contiguous
for cache-friendly iteration. Entity handles carry a generation counter so a recycled id
never aliases a destroyed entity. Typed relationship edges (directed or bidirectional)
link entities and are cleaned up automatically when either end is destroyed.

Core Concepts:

  - Entity: a (id, generation) handle identifying a logical object in the World.
  - Component: a plain-data value attached to an entity under a specific type.
  - Relationship: a typed directed edge between two entities, carrying data.
  - Query: a declarative search over entities, driven by the smallest candidate set.

Basic Usage:

	// Create a world
	world := depot.Factory.NewWorld(depot.DefaultConfig())

	// Register component types
	position := depot.RegisterComponent[Position](world)
	velocity := depot.RegisterComponent[Velocity](world)

	// Create entities and attach components
	e, _ := world.CreateEntity()
	position.Set(world, e, Position{X: 10, Y: 10})
	velocity.Set(world, e, Velocity{X: 1, Y: 0})

	// Query entities and process them
	query, _ := world.Query().With(position).With(velocity).Build()
	cursor := query.Iter()

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

The engine is single-threaded by design: one logical owner per World. Hosts embedding it
in concurrent programs must synchronize externally.
*/
package depot
