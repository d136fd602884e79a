package entity

// Viable is the per-entity lifecycle trait. Spawn runs once when the entity
// is created, Life once per tick while its health is positive and Death on
// the tick it is swept. Hooks queue structural changes through cmd.
type Viable interface {
	Spawn(e *Entity, cmd *Commands)
	Life(e *Entity, cmd *Commands)
	Death(e *Entity, cmd *Commands)
}

// Hooks adapts plain functions to Viable. Nil hooks are skipped.
type Hooks struct {
	OnSpawn func(e *Entity, cmd *Commands)
	OnLife  func(e *Entity, cmd *Commands)
	OnDeath func(e *Entity, cmd *Commands)
}

func (h Hooks) Spawn(e *Entity, cmd *Commands) {
	if h.OnSpawn != nil {
		h.OnSpawn(e, cmd)
	}
}

func (h Hooks) Life(e *Entity, cmd *Commands) {
	if h.OnLife != nil {
		h.OnLife(e, cmd)
	}
}

func (h Hooks) Death(e *Entity, cmd *Commands) {
	if h.OnDeath != nil {
		h.OnDeath(e, cmd)
	}
}
