package rigid

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// BodyID is the stable identity an Engine assigns to a body.
type BodyID uuid.UUID

// NilID is the id of a body that was never added to an engine.
var NilID = BodyID(uuid.Nil)

func (id BodyID) String() string {
	return uuid.UUID(id).String()
}

// IDAllocator hands out body ids. Each engine owns one.
type IDAllocator interface {
	Next() BodyID
}

// UUIDAllocator allocates random version 4 ids.
type UUIDAllocator struct{}

// Next returns a fresh random id.
func (UUIDAllocator) Next() BodyID {
	return BodyID(uuid.New())
}

// SequentialAllocator allocates reproducible ids carrying a counter.
type SequentialAllocator struct {
	n uint64
}

// Next returns the id following the previous one.
func (a *SequentialAllocator) Next() BodyID {
	a.n++
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], a.n)
	return BodyID(id)
}
