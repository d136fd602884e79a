package physics

// MotionState is the adapter through which the stepper reads and writes a
// body's authoritative transform.
type MotionState interface {
	WorldTransform() Transform
	SetWorldTransform(t Transform)
}

// TransformProcessor post-processes transforms written into a motion state.
type TransformProcessor interface {
	ProcessTransform(owner int64, t *Transform)
}

// TransformProcessFunc adapts a function to TransformProcessor.
type TransformProcessFunc func(owner int64, t *Transform)

// ProcessTransform calls f(owner, t).
func (f TransformProcessFunc) ProcessTransform(owner int64, t *Transform) {
	f(owner, t)
}

// UniqueMotion is the default per-body motion state.
type UniqueMotion struct {
	owner     int64
	transform Transform
	process   TransformProcessor
}

// NewUniqueMotion creates a motion state for owner starting at initial.
// process may be nil.
func NewUniqueMotion(owner int64, initial Transform, process TransformProcessor) *UniqueMotion {
	return &UniqueMotion{
		owner:     owner,
		transform: initial.Normalized(),
		process:   process,
	}
}

// Owner returns the owning entity id.
func (m *UniqueMotion) Owner() int64 {
	return m.owner
}

// WorldTransform returns the last stored transform.
func (m *UniqueMotion) WorldTransform() Transform {
	return m.transform
}

// SetWorldTransform runs the hook, if any, and stores the result.
func (m *UniqueMotion) SetWorldTransform(t Transform) {
	if m.process != nil {
		m.process.ProcessTransform(m.owner, &t)
	}
	m.transform = t
}

// SetProcessor replaces the transform hook.
func (m *UniqueMotion) SetProcessor(p TransformProcessor) {
	m.process = p
}
