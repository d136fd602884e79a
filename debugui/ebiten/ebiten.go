// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/voxar/debugui"
	"github.com/plus3/voxar/space"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation
// and renders an overlay for one space.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
	Overlay *debugui.Overlay
	timer   *debugui.FrameTimer
}

// NewImguiBackend creates the backend window and an overlay with the default
// panels.
func NewImguiBackend(title string, width, height int) *ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	return &ImguiBackend{
		EbitenBackend: backend,
		Overlay:       debugui.NewOverlay(),
		timer:         debugui.NewFrameTimer(),
	}
}

// Frame renders the overlay inside an ImGui frame. Call it from
// ebiten.Game.Update after the space tick.
func (b *ImguiBackend) Frame(s *space.Space) {
	b.BeginFrame()
	b.Overlay.Render(s, b.timer.DeltaTime())
	b.EndFrame()
}

// DrawOverlay draws the ImGui output on top of screen.
func (b *ImguiBackend) DrawOverlay(screen *ebiten.Image) {
	b.Draw(screen)
}
