package space

import (
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
)

// Contact is a touching pair with the owning entities resolved. Entity
// fields are nil for bodies without an owner, such as terrain.
type Contact struct {
	A, B             *physics.Body
	EntityA, EntityB *entity.Entity
}

// ContactFunc reacts to a contact. It runs during the physics step while the
// registry is locked, so changes go through cmd.
type ContactFunc func(c Contact, cmd *entity.Commands)

// contactHandler resolves body owners through the registry before calling
// the user funcs.
type contactHandler struct {
	entities *entity.Registry
	initial  ContactFunc
	during   ContactFunc
}

func (h *contactHandler) resolve(a, b *physics.Body) Contact {
	c := Contact{A: a, B: b}
	c.EntityA, _ = h.entities.LookupBody(a)
	c.EntityB, _ = h.entities.LookupBody(b)
	return c
}

func (h *contactHandler) OnInitialContact(a, b *physics.Body) {
	if h.initial != nil {
		h.initial(h.resolve(a, b), h.entities.Commands())
	}
}

func (h *contactHandler) OnDuringContact(a, b *physics.Body) {
	if h.during != nil {
		h.during(h.resolve(a, b), h.entities.Commands())
	}
}
