package depot

import "github.com/goccy/go-json"

// ComponentRef is the type-erased view of a ComponentType handle, accepted
// by query builder clauses.
type ComponentRef interface {
	componentRef() (componentID, string)
}

// RelationshipRef is the type-erased view of a RelationshipType handle.
type RelationshipRef interface {
	relationshipRef() (relationID, string)
}

// componentStore is the world's type-erased view of one component type's
// sparse set: enough surface for destroy cascades, query planning, and
// snapshots, without knowing the component type.
type componentStore interface {
	typeName() string
	has(id uint32) bool
	remove(id uint32)
	length() int
	packed() []uint32
	clear()
	encode() (ComponentSnapshot, error)
	decodeInto(id uint32, raw json.RawMessage) error
}

// relationStore is the world's type-erased view of one relationship type's
// edge store.
type relationStore interface {
	typeName() string
	kindOf() RelationshipKind
	hasEdge(source, target Entity) bool
	sources(target Entity) []Entity
	sourceCount(target Entity) int
	removeAll(id uint32)
	clear()
	encode() (RelationshipSnapshot, error)
	decodeEdge(source, target Entity, raw json.RawMessage) error
}

var (
	_ componentStore = &storeOf[struct{}]{}
	_ relationStore  = &relStoreOf[struct{}]{}
)
