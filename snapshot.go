package depot

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// WorldSnapshot is a structurally-defined export of a World's full state:
// entity slot generations and the free-list, every registered component
// type's packed (entity, value) pairs, and every relationship edge with its
// declared direction semantics. Mirror edges of bidirectional types are
// materialized, so restoring inserts exactly what was exported.
type WorldSnapshot struct {
	EntityCapacity int                    `json:"entityCapacity"`
	Generations    []uint32               `json:"generations"`
	FreeList       []uint32               `json:"freeList"`
	Components     []ComponentSnapshot    `json:"components"`
	Relationships  []RelationshipSnapshot `json:"relationships"`
}

type ComponentSnapshot struct {
	Type     string            `json:"type"`
	Entities []uint32          `json:"entities"`
	Values   []json.RawMessage `json:"values"`
}

type RelationshipSnapshot struct {
	Type          string         `json:"type"`
	Bidirectional bool           `json:"bidirectional"`
	Edges         []EdgeSnapshot `json:"edges"`
}

type EdgeSnapshot struct {
	Source Entity          `json:"source"`
	Target Entity          `json:"target"`
	Data   json.RawMessage `json:"data"`
}

// Snapshot exports the world's full state. Component and relationship
// sections appear in registration order; edge order within a type is
// unspecified.
func (w *World) Snapshot() (*WorldSnapshot, error) {
	snap := &WorldSnapshot{
		EntityCapacity: w.registry.capacity,
		Generations:    append([]uint32(nil), w.registry.generations...),
		FreeList:       append([]uint32(nil), w.registry.freeList...),
	}
	for _, id := range w.componentOrder {
		cs, err := w.components[id].encode()
		if err != nil {
			return nil, eris.Wrap(err, "failed to snapshot components")
		}
		snap.Components = append(snap.Components, cs)
	}
	for _, id := range w.relationOrder {
		rs, err := w.relations[id].encode()
		if err != nil {
			return nil, eris.Wrap(err, "failed to snapshot relationships")
		}
		snap.Relationships = append(snap.Relationships, rs)
	}
	return snap, nil
}

// Restore reconstructs w from a snapshot taken of a world with the same set
// of component and relationship type definitions (matched by type name).
// Existing state is discarded. Fails when the snapshot references a type w
// never registered, when direction semantics disagree, or when the snapshot
// holds more entity slots than w's capacity.
func (w *World) Restore(snap *WorldSnapshot) error {
	if len(snap.Generations) > w.registry.capacity {
		return eris.Errorf(
			"snapshot holds %d entity slots, world capacity is %d",
			len(snap.Generations), w.registry.capacity,
		)
	}

	componentsByName := make(map[string]struct {
		id    componentID
		store componentStore
	}, len(w.componentOrder))
	for _, id := range w.componentOrder {
		store := w.components[id]
		componentsByName[store.typeName()] = struct {
			id    componentID
			store componentStore
		}{id, store}
	}
	relationsByName := make(map[string]relationStore, len(w.relationOrder))
	for _, id := range w.relationOrder {
		store := w.relations[id]
		relationsByName[store.typeName()] = store
	}
	for _, cs := range snap.Components {
		if _, ok := componentsByName[cs.Type]; !ok {
			return eris.Errorf("snapshot references unregistered component type %s", cs.Type)
		}
		if len(cs.Entities) != len(cs.Values) {
			return eris.Errorf("component snapshot %s is misaligned", cs.Type)
		}
	}
	for _, rs := range snap.Relationships {
		store, ok := relationsByName[rs.Type]
		if !ok {
			return eris.Errorf("snapshot references unregistered relationship type %s", rs.Type)
		}
		if (store.kindOf() == Bidirectional) != rs.Bidirectional {
			return eris.Errorf("relationship type %s direction mismatch", rs.Type)
		}
	}

	w.registry.generations = append(w.registry.generations[:0], snap.Generations...)
	w.registry.freeList = append(w.registry.freeList[:0], snap.FreeList...)

	w.signatures = w.signatures[:0]
	for range snap.Generations {
		w.signatures = append(w.signatures, newSignature())
	}
	for _, id := range w.componentOrder {
		w.components[id].clear()
	}
	for _, id := range w.relationOrder {
		w.relations[id].clear()
	}

	for _, cs := range snap.Components {
		entry := componentsByName[cs.Type]
		for i, id := range cs.Entities {
			if err := entry.store.decodeInto(id, cs.Values[i]); err != nil {
				return eris.Wrapf(err, "failed to restore component %s", cs.Type)
			}
			w.markSignature(id, entry.id)
		}
	}
	for _, rs := range snap.Relationships {
		store := relationsByName[rs.Type]
		for _, ed := range rs.Edges {
			if err := store.decodeEdge(ed.Source, ed.Target, ed.Data); err != nil {
				return eris.Wrapf(err, "failed to restore relationship %s", rs.Type)
			}
		}
	}
	w.logger.Debug().Int("entities", w.registry.Count()).Msg("world restored from snapshot")
	return nil
}

// Encode serializes the snapshot to JSON.
func (s *WorldSnapshot) Encode() ([]byte, error) {
	bz, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "failed to encode snapshot")
	}
	return bz, nil
}

// DecodeSnapshot deserializes a snapshot produced by Encode.
func DecodeSnapshot(bz []byte) (*WorldSnapshot, error) {
	snap := new(WorldSnapshot)
	if err := json.Unmarshal(bz, snap); err != nil {
		return nil, eris.Wrap(err, "failed to decode snapshot")
	}
	return snap, nil
}
