package depot

import "fmt"

type CapacityExceededError struct {
	Capacity int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("entity capacity exceeded (%d)", e.Capacity)
}

type DeadEntityError struct {
	Entity Entity
}

func (e DeadEntityError) Error() string {
	return fmt.Sprintf("entity is not alive: id=%d generation=%d", e.Entity.ID, e.Entity.Generation)
}

type EmptyQueryError struct{}

func (e EmptyQueryError) Error() string {
	return "query has no driving clause: add at least one With or WithRelationship"
}

type UnknownRelationshipTypeError struct {
	Name string
}

func (e UnknownRelationshipTypeError) Error() string {
	return fmt.Sprintf("relationship type not registered with this world: %s", e.Name)
}
