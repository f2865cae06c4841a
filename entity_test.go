package depot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

type Tag struct {
	Value string
}

func TestRegistryCreate(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		createN   int
		wantError bool
	}{
		{"Single entity", 8, 1, false},
		{"Fill to capacity", 8, 8, false},
		{"Exceed capacity", 8, 9, true},
		{"Zero capacity", 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newEntityRegistry(tt.capacity)

			var lastErr error
			created := make([]Entity, 0, tt.createN)
			for i := 0; i < tt.createN; i++ {
				e, err := reg.Create()
				if err != nil {
					lastErr = err
					break
				}
				created = append(created, e)
			}

			if tt.wantError {
				require.Error(t, lastErr)
				var capErr CapacityExceededError
				require.ErrorAs(t, lastErr, &capErr)
				require.Equal(t, tt.capacity, capErr.Capacity)
				return
			}
			require.NoError(t, lastErr)
			require.Len(t, created, tt.createN)
			require.Equal(t, tt.createN, reg.Count())
			for _, e := range created {
				require.True(t, reg.IsAlive(e))
			}
		})
	}
}

func TestRegistryGenerationSafety(t *testing.T) {
	reg := newEntityRegistry(4)

	old, err := reg.Create()
	require.NoError(t, err)
	require.True(t, reg.IsAlive(old))

	reg.Destroy(old)
	require.False(t, reg.IsAlive(old))

	// The recycled slot reuses the id under a new generation.
	fresh, err := reg.Create()
	require.NoError(t, err)
	require.Equal(t, old.ID, fresh.ID)
	require.NotEqual(t, old.Generation, fresh.Generation)
	require.True(t, reg.IsAlive(fresh))

	// The stale handle stays dead forever.
	require.False(t, reg.IsAlive(old))

	reg.Destroy(fresh)
	require.False(t, reg.IsAlive(fresh))
	require.False(t, reg.IsAlive(old))
}

func TestRegistryDestroyDeadHandleIsNoop(t *testing.T) {
	reg := newEntityRegistry(4)

	e, err := reg.Create()
	require.NoError(t, err)
	reg.Destroy(e)
	count := reg.Count()

	// Destroying the same handle again must not push the id twice.
	reg.Destroy(e)
	require.Equal(t, count, reg.Count())

	a, err := reg.Create()
	require.NoError(t, err)
	b, err := reg.Create()
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID, "double destroy must not hand out the same slot twice")
}

func TestRegistryZeroEntityNeverAlive(t *testing.T) {
	reg := newEntityRegistry(4)
	require.False(t, reg.IsAlive(Entity{}))

	_, err := reg.Create()
	require.NoError(t, err)
	require.False(t, reg.IsAlive(Entity{}), "zero handle must not alias slot 0")
}

func TestRegistryRecyclesFromFreeList(t *testing.T) {
	reg := newEntityRegistry(8)

	entities := make([]Entity, 4)
	for i := range entities {
		e, err := reg.Create()
		require.NoError(t, err)
		entities[i] = e
	}

	reg.Destroy(entities[1])
	reg.Destroy(entities[2])

	// Most recently destroyed slot comes back first.
	e, err := reg.Create()
	require.NoError(t, err)
	require.Equal(t, entities[2].ID, e.ID)

	e, err = reg.Create()
	require.NoError(t, err)
	require.Equal(t, entities[1].ID, e.ID)

	// Free-list drained: a fresh id is allocated.
	e, err = reg.Create()
	require.NoError(t, err)
	require.Equal(t, uint32(4), e.ID)
}
