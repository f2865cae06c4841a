package depot

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/rs/zerolog"
)

// World owns the entity registry, one sparse-set storage per registered
// component type, one edge store per registered relationship type, and a
// per-entity component signature mask used by the query planner.
//
// A World has a single logical owner: nothing in it locks. Hosts embedding
// it in concurrent programs synchronize externally.
type World struct {
	cfg      Config
	logger   zerolog.Logger
	registry *EntityRegistry

	signatures []mask.Mask

	components     map[componentID]componentStore
	componentIDs   map[reflect.Type]componentID
	componentOrder []componentID

	relations     map[relationID]relationStore
	relationIDs   map[reflect.Type]relationID
	relationOrder []relationID

	nextComponentID componentID
	nextRelationID  relationID
}

func newWorld(cfg Config) *World {
	w := &World{
		cfg:          cfg,
		logger:       newWorldLogger(cfg),
		registry:     newEntityRegistry(cfg.EntityCapacity),
		signatures:   make([]mask.Mask, 0, cfg.EntityCapacity),
		components:   make(map[componentID]componentStore),
		componentIDs: make(map[reflect.Type]componentID),
		relations:    make(map[relationID]relationStore),
		relationIDs:  make(map[reflect.Type]relationID),
	}
	w.logger.Debug().Int("entityCapacity", cfg.EntityCapacity).Msg("world created")
	return w
}

// CreateEntity allocates a live entity handle, recycling destroyed slots
// first. Fails with CapacityExceededError at the configured maximum.
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.registry.Create()
	if err != nil {
		return Entity{}, err
	}
	for int(e.ID) >= len(w.signatures) {
		w.signatures = append(w.signatures, newSignature())
	}
	return e, nil
}

// DestroyEntity removes e from every component storage and every
// relationship index, then invalidates the handle and recycles the id.
// No-op when e is not alive.
func (w *World) DestroyEntity(e Entity) {
	if !w.registry.IsAlive(e) {
		return
	}
	for _, id := range w.componentOrder {
		store := w.components[id]
		if store.has(e.ID) {
			store.remove(e.ID)
		}
	}
	for _, id := range w.relationOrder {
		w.relations[id].removeAll(e.ID)
	}
	w.signatures[e.ID] = newSignature()
	w.registry.Destroy(e)
	w.logger.Debug().Uint32("entity", e.ID).Msg("entity destroyed")
}

// IsAlive reports whether e is a current handle.
func (w *World) IsAlive(e Entity) bool {
	return w.registry.IsAlive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.registry.Count()
}

// Registry exposes the entity registry for hosts that track liveness
// themselves.
func (w *World) Registry() *EntityRegistry {
	return w.registry
}

// Query starts building a query against this world.
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{world: w}
}

func newSignature() mask.Mask {
	return mask.Mask{}
}

func (w *World) markSignature(id uint32, bit componentID) {
	if int(id) < len(w.signatures) {
		w.signatures[id].Mark(uint32(bit))
	}
}

func (w *World) unmarkSignature(id uint32, bit componentID) {
	if int(id) < len(w.signatures) {
		w.signatures[id].Unmark(uint32(bit))
	}
}

func (w *World) signatureOf(id uint32) (mask.Mask, bool) {
	if int(id) >= len(w.signatures) {
		return mask.Mask{}, false
	}
	return w.signatures[id], true
}
