package depot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectEntities(q *Query) []Entity {
	var out []Entity
	c := q.Iter()
	for c.Next() {
		out = append(out, c.Entity())
	}
	return out
}

// setupScenario builds the reference population: E0{Position,Velocity,Health},
// E1{Position,Health}, E2{Position,Velocity,Health,Tag("player")}.
func setupScenario(t *testing.T) (*World, ComponentType[Position], ComponentType[Velocity], ComponentType[Health], ComponentType[Tag], [3]Entity) {
	t.Helper()
	world := Factory.NewWorld(DefaultConfig())
	position := RegisterComponent[Position](world)
	velocity := RegisterComponent[Velocity](world)
	health := RegisterComponent[Health](world)
	tag := RegisterComponent[Tag](world)

	var entities [3]Entity
	for i := range entities {
		e, err := world.CreateEntity()
		require.NoError(t, err)
		entities[i] = e
	}

	position.Add(world, entities[0], Position{X: 10, Y: 10})
	velocity.Add(world, entities[0], Velocity{X: 1, Y: 0})
	health.Add(world, entities[0], Health{Current: 100})

	position.Add(world, entities[1], Position{X: 20, Y: 20})
	health.Add(world, entities[1], Health{Current: 80})

	position.Add(world, entities[2], Position{X: 30, Y: 30})
	velocity.Add(world, entities[2], Velocity{X: 0, Y: -1})
	health.Add(world, entities[2], Health{Current: 120})
	tag.Add(world, entities[2], Tag{Value: "player"})

	return world, position, velocity, health, tag, entities
}

func TestQueryWithWithoutOptional(t *testing.T) {
	world, position, velocity, health, tag, e := setupScenario(t)

	t.Run("With Position and Health without Tag", func(t *testing.T) {
		q, err := world.Query().With(position).With(health).Without(tag).Build()
		require.NoError(t, err)
		require.ElementsMatch(t, []Entity{e[0], e[1]}, collectEntities(q))
	})

	t.Run("Optional does not filter", func(t *testing.T) {
		q, err := world.Query().With(position).Optional(velocity).Build()
		require.NoError(t, err)

		matched := map[Entity]bool{}
		c := q.Iter()
		for c.Next() {
			_, hasVel := velocity.TryGetFromCursor(c)
			matched[c.Entity()] = hasVel
		}
		require.Len(t, matched, 3)
		require.True(t, matched[e[0]])
		require.False(t, matched[e[1]], "E1 has no Velocity and must be marked absent")
		require.True(t, matched[e[2]])
	})

	t.Run("With two components", func(t *testing.T) {
		q, err := world.Query().With(position).With(velocity).Build()
		require.NoError(t, err)
		require.ElementsMatch(t, []Entity{e[0], e[2]}, collectEntities(q))
	})
}

// Driver choice must never change results, only performance. Make each
// storage the smallest in turn and re-run the same logical query.
func TestQueryDriverChoiceInvariant(t *testing.T) {
	world := Factory.NewWorld(DefaultConfig())
	a := RegisterComponent[Position](world)
	b := RegisterComponent[Velocity](world)

	var both []Entity
	// 10 entities with A only, 3 with A+B: B's storage drives.
	for i := 0; i < 10; i++ {
		e, err := world.CreateEntity()
		require.NoError(t, err)
		a.Add(world, e, Position{})
		if i < 3 {
			b.Add(world, e, Velocity{})
			both = append(both, e)
		}
	}

	q, err := world.Query().With(a).With(b).Build()
	require.NoError(t, err)
	require.ElementsMatch(t, both, collectEntities(q))

	// Flip the balance: now A's storage is smaller and becomes the driver.
	for i := 0; i < 20; i++ {
		e, err := world.CreateEntity()
		require.NoError(t, err)
		b.Add(world, e, Velocity{})
	}
	require.Greater(t, b.Len(world), a.Len(world))
	require.ElementsMatch(t, both, collectEntities(q), "driver flip must not change results")
}

func TestQueryWhere(t *testing.T) {
	world, position, _, health, _, e := setupScenario(t)

	q, err := world.Query().
		With(position).
		Where(health.Filter(func(h *Health) bool { return h.Current >= 100 })).
		Build()
	require.NoError(t, err)

	// The predicate's type is folded into the requirements.
	require.ElementsMatch(t, []Entity{e[0], e[2]}, collectEntities(q))
}

func TestQueryWhereSeesLiveValues(t *testing.T) {
	world, position, _, health, _, e := setupScenario(t)

	q, err := world.Query().
		With(position).
		With(health).
		Where(health.Filter(func(h *Health) bool { return h.Current > 90 })).
		Build()
	require.NoError(t, err)
	require.ElementsMatch(t, []Entity{e[0], e[2]}, collectEntities(q))

	// Values are resolved at iteration time, not captured at build time.
	health.Set(world, e[1], Health{Current: 200})
	require.ElementsMatch(t, []Entity{e[0], e[1], e[2]}, collectEntities(q))
}

func TestQueryWithRelationship(t *testing.T) {
	world := Factory.NewWorld(DefaultConfig())
	position := RegisterComponent[Position](world)
	follows := RegisterRelationship[Follows](world, Directed)

	player, err := world.CreateEntity()
	require.NoError(t, err)

	var followers []Entity
	for i := 0; i < 5; i++ {
		e, err := world.CreateEntity()
		require.NoError(t, err)
		position.Add(world, e, Position{X: float64(i)})
		if i%2 == 0 {
			follows.Add(world, e, player, Follows{Distance: i})
			followers = append(followers, e)
		}
	}

	t.Run("Relationship as filter", func(t *testing.T) {
		q, err := world.Query().With(position).WithRelationship(follows, player).Build()
		require.NoError(t, err)
		require.ElementsMatch(t, followers, collectEntities(q))
	})

	t.Run("Relationship as sole driver", func(t *testing.T) {
		q, err := world.Query().WithRelationship(follows, player).Build()
		require.NoError(t, err)
		require.ElementsMatch(t, followers, collectEntities(q))
	})

	t.Run("Relationship driver skips destroyed sources", func(t *testing.T) {
		world.DestroyEntity(followers[0])
		q, err := world.Query().WithRelationship(follows, player).Build()
		require.NoError(t, err)
		require.ElementsMatch(t, followers[1:], collectEntities(q))
	})
}

func TestQueryBuildErrors(t *testing.T) {
	world := Factory.NewWorld(DefaultConfig())
	foreign := Factory.NewWorld(DefaultConfig())

	t.Run("Empty query", func(t *testing.T) {
		_, err := world.Query().Build()
		var empty EmptyQueryError
		require.ErrorAs(t, err, &empty)
	})

	t.Run("Without alone is not a driver", func(t *testing.T) {
		tag := RegisterComponent[Tag](world)
		_, err := world.Query().Without(tag).Build()
		var empty EmptyQueryError
		require.ErrorAs(t, err, &empty)
	})

	t.Run("Unknown relationship type", func(t *testing.T) {
		follows := RegisterRelationship[Follows](foreign, Directed)
		target, err := world.CreateEntity()
		require.NoError(t, err)
		_, err = world.Query().WithRelationship(follows, target).Build()
		var unknown UnknownRelationshipTypeError
		require.ErrorAs(t, err, &unknown)
	})

	// Design choice: a With on a component type this world never registered
	// builds fine and yields zero results instead of erroring.
	t.Run("Unknown component type yields empty result", func(t *testing.T) {
		position := RegisterComponent[Position](foreign)
		q, err := world.Query().With(position).Build()
		require.NoError(t, err)
		require.Empty(t, collectEntities(q))
		require.Equal(t, 0, q.Count())
	})
}

func TestQueryEmptyStorageIsLegal(t *testing.T) {
	world := Factory.NewWorld(DefaultConfig())
	position := RegisterComponent[Position](world)

	q, err := world.Query().With(position).Build()
	require.NoError(t, err)
	require.Empty(t, collectEntities(q))
}

func TestQueryReiterationSeesCurrentState(t *testing.T) {
	world := Factory.NewWorld(DefaultConfig())
	position := RegisterComponent[Position](world)

	q, err := world.Query().With(position).Build()
	require.NoError(t, err)
	require.Equal(t, 0, q.Count())

	e, err := world.CreateEntity()
	require.NoError(t, err)
	position.Add(world, e, Position{})
	require.Equal(t, 1, q.Count(), "a Query is a plan, not a snapshot")

	world.DestroyEntity(e)
	require.Equal(t, 0, q.Count())
}

func TestQueryIndependentCursors(t *testing.T) {
	world, position, _, _, _, _ := setupScenario(t)

	q, err := world.Query().With(position).Build()
	require.NoError(t, err)

	c1 := q.Iter()
	c2 := q.Iter()

	require.True(t, c1.Next())
	require.True(t, c1.Next())

	// c2 starts from the beginning regardless of c1's progress.
	n := 0
	for c2.Next() {
		n++
	}
	require.Equal(t, 3, n)

	require.True(t, c1.Next())
	require.False(t, c1.Next())
}

// The typical system loop: mutate components in place while iterating.
// Earlier writes in a pass must be visible to later reads of the same pass.
func TestQueryMutationDuringIteration(t *testing.T) {
	world, position, velocity, _, _, e := setupScenario(t)

	q, err := world.Query().With(position).With(velocity).Build()
	require.NoError(t, err)

	c := q.Iter()
	for c.Next() {
		pos := position.GetFromCursor(c)
		vel := velocity.GetFromCursor(c)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	p0, err := position.Get(world, e[0])
	require.NoError(t, err)
	require.Equal(t, Position{X: 11, Y: 10}, *p0)

	p2, err := position.Get(world, e[2])
	require.NoError(t, err)
	require.Equal(t, Position{X: 30, Y: 29}, *p2)

	// E1 had no velocity and was not part of the pass.
	p1, err := position.Get(world, e[1])
	require.NoError(t, err)
	require.Equal(t, Position{X: 20, Y: 20}, *p1)
}

func TestQueryEachAndSeq(t *testing.T) {
	world, position, _, _, _, _ := setupScenario(t)

	q, err := world.Query().With(position).Build()
	require.NoError(t, err)

	n := 0
	q.Each(func(Entity) bool {
		n++
		return n < 2
	})
	require.Equal(t, 2, n, "Each stops when the callback returns false")

	n = 0
	for range q.Entities() {
		n++
	}
	require.Equal(t, 3, n)
}
