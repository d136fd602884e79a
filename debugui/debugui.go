// Package debugui provides Dear ImGui panels for inspecting a running space.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/space"
)

// Panel draws one ImGui window for a space.
type Panel interface {
	Render(s *space.Space, dt float32)
}

// Selection is the entity shared between the browser and the inspector.
type Selection struct {
	ID entity.ID
}

// Overlay renders a set of panels every frame. Call Render between the
// backend's BeginFrame and EndFrame, outside Space.Tick.
type Overlay struct {
	Selection *Selection
	panels    []Panel
	visible   bool
}

// NewOverlay returns an overlay with the browser, inspector, physics and
// performance panels sharing one selection.
func NewOverlay() *Overlay {
	sel := &Selection{ID: entity.Inactive}
	return &Overlay{
		Selection: sel,
		visible:   true,
		panels: []Panel{
			NewEntityBrowser(sel, 100),
			NewEntityInspector(sel),
			NewPhysicsPanel(),
			NewPerformanceStats(120),
		},
	}
}

// Add appends a custom panel.
func (o *Overlay) Add(p Panel) {
	o.panels = append(o.panels, p)
}

func (o *Overlay) Toggle() { o.visible = !o.visible }

func (o *Overlay) Visible() bool { return o.visible }

func (o *Overlay) Render(s *space.Space, dt float32) {
	if !o.visible || s.Closed() {
		return
	}
	for _, p := range o.panels {
		p.Render(s, dt)
	}
}

// WantCaptureMouse reports whether ImGui is consuming mouse input.
func WantCaptureMouse() bool {
	return imgui.CurrentIO().WantCaptureMouse()
}

// WantCaptureKeyboard reports whether ImGui is consuming keyboard input.
func WantCaptureKeyboard() bool {
	return imgui.CurrentIO().WantCaptureKeyboard()
}
