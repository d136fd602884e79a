package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
	"github.com/plus3/voxar/space"
)

// EntityInspector shows and edits the selected entity.
type EntityInspector struct {
	selection *Selection
}

func NewEntityInspector(sel *Selection) *EntityInspector {
	return &EntityInspector{selection: sel}
}

func (ei *EntityInspector) Render(s *space.Space, dt float32) {
	if !imgui.BeginV("Entity Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if ei.selection.ID == entity.Inactive {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	e, ok := s.Entities().Lookup(ei.selection.ID)
	if !ok {
		imgui.Text(fmt.Sprintf("Entity %d is gone", ei.selection.ID))
		if imgui.Button("Clear") {
			ei.selection.ID = entity.Inactive
		}
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", e.ID()))
	imgui.Text(fmt.Sprintf("Name: %s", e.Name()))
	imgui.Text(fmt.Sprintf("Kind: %s", e.Kind()))
	if m := e.Model(); m != nil {
		imgui.Text(fmt.Sprintf("Model: %s (%d triangles)", m.Path, len(m.Triangles)))
	}
	imgui.Separator()

	health := e.Health()
	imgui.Text("Health:")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
	if imgui.InputFloat("##health", &health) {
		e.SetHealth(health)
	}

	if imgui.TreeNodeStr("Transform") {
		pos := e.Position()
		changed := false
		for i, axis := range [3]string{"x", "y", "z"} {
			imgui.Text(axis + ":")
			imgui.SameLine()
			imgui.SetNextItemWidth(150)
			if imgui.InputFloat("##pos"+axis, &pos[i]) {
				changed = true
			}
		}
		if changed {
			e.SetPosition(pos)
		}
		rot := e.Rotation()
		imgui.Text(fmt.Sprintf("Rotation: w=%.3f x=%.3f y=%.3f z=%.3f", rot.W, rot.V[0], rot.V[1], rot.V[2]))
		imgui.TreePop()
	}

	if rb := e.Rigidbody(); rb != nil && rb.Body() != nil {
		if imgui.TreeNodeStr("Rigidbody") {
			renderBody(rb, rb.Body())
			imgui.TreePop()
		}
	}

	imgui.Separator()
	if imgui.Button("Kill") {
		s.Entities().Commands().Kill(e.ID())
	}

	imgui.End()
}

func renderBody(rb *entity.Rigidbody, body *physics.Body) {
	inertia := rb.Inertia()
	vel := body.LinearVelocity()

	imgui.BulletText(fmt.Sprintf("Type: %s", rb.Type()))
	imgui.BulletText(fmt.Sprintf("Primitive: %s", rb.Primitive()))
	imgui.BulletText(fmt.Sprintf("Mass: %.2f", rb.Mass()))
	imgui.BulletText(fmt.Sprintf("Inertia: %.3f, %.3f, %.3f", inertia[0], inertia[1], inertia[2]))
	imgui.BulletText(fmt.Sprintf("Tag: %d", rb.Tag()))
	imgui.BulletText(fmt.Sprintf("Velocity: %.2f, %.2f, %.2f", vel[0], vel[1], vel[2]))
	imgui.BulletText(fmt.Sprintf("Active: %v", body.IsActive()))

	if imgui.Button("Wake") {
		body.Activate()
	}
	imgui.SameLine()
	if imgui.Button("Kick") && !body.IsStatic() {
		body.ApplyCentralImpulse(mgl32.Vec3{0, 5 * rb.Mass(), 0})
	}
}
