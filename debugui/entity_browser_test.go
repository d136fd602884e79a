package debugui_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/asset"
	"github.com/plus3/voxar/debugui"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityRows(t *testing.T) {
	models := asset.NewCatalog()
	models.Add(asset.NewBoxModel("crate.obj", mgl32.Vec3{1, 1, 1}))
	r := entity.NewRegistry(models, physics.NewWorld(), entity.WithSeed(3))

	_, err := r.Spawn("crate.obj", entity.WithName("bravo"), entity.WithHealth(3), entity.WithPosition(mgl32.Vec3{5, 0, 0}))
	require.NoError(t, err)
	_, err = r.Spawn("crate.obj", entity.WithName("alpha"), entity.WithHealth(2), entity.WithPosition(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, err)
	_, err = r.SpawnRigidbody("crate.obj", entity.RigidbodyInfo{Type: physics.Static}, entity.WithName("charlie"))
	require.NoError(t, err)

	names := func(rows []debugui.EntityRow) []string {
		var out []string
		for _, row := range rows {
			out = append(out, row.Name)
		}
		return out
	}

	t.Run("sort by name", func(t *testing.T) {
		rows := debugui.EntityRows(r, "", debugui.ColumnName, true)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, names(rows))

		rows = debugui.EntityRows(r, "", debugui.ColumnName, false)
		assert.Equal(t, []string{"charlie", "bravo", "alpha"}, names(rows))
	})

	t.Run("sort by health", func(t *testing.T) {
		rows := debugui.EntityRows(r, "", debugui.ColumnHealth, true)
		assert.Equal(t, []string{"charlie", "alpha", "bravo"}, names(rows))
	})

	t.Run("filter", func(t *testing.T) {
		assert.Equal(t, []string{"bravo"}, names(debugui.EntityRows(r, "BRA", debugui.ColumnID, true)))
		assert.Equal(t, []string{"charlie"}, names(debugui.EntityRows(r, "rigid", debugui.ColumnID, true)))
		assert.Empty(t, debugui.EntityRows(r, "zulu", debugui.ColumnID, true))
	})
}
