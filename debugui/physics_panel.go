package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/voxar/space"
)

// PhysicsPanel shows world counters and toggles debug drawing.
type PhysicsPanel struct{}

func NewPhysicsPanel() *PhysicsPanel {
	return &PhysicsPanel{}
}

func (pp *PhysicsPanel) Render(s *space.Space, dt float32) {
	if !imgui.BeginV("Physics", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	world := s.Physics()
	stats := world.Stats()
	g := world.Gravity()

	imgui.Text(fmt.Sprintf("Bodies: %d", stats.Bodies))
	imgui.Text(fmt.Sprintf("Contacts: %d (touching %d)", stats.Contacts, stats.Touching))
	imgui.Text(fmt.Sprintf("Steps: %d / sub-steps: %d", stats.Steps, stats.SubSteps))
	imgui.Text(fmt.Sprintf("Dropped time: %.3f s", stats.DroppedTime))
	imgui.Text(fmt.Sprintf("Last step: %s", stats.LastStep))
	imgui.Separator()

	gy := g.Y()
	imgui.Text("Gravity Y:")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
	if imgui.InputFloat("##gravity", &gy) {
		g[1] = gy
		world.SetGravity(g)
	}

	debug := world.DebugMode()
	if imgui.Checkbox("Debug draw", &debug) {
		world.SetDebugMode(debug)
	}

	imgui.End()
}
