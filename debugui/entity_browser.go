package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/voxar/entity"
	"github.com/plus3/voxar/space"
)

// Browser columns.
const (
	ColumnID = iota
	ColumnName
	ColumnKind
	ColumnHealth
	ColumnPosition
)

// EntityRow is a snapshot of one entity for the browser table.
type EntityRow struct {
	ID       entity.ID
	Name     string
	Kind     entity.Kind
	Health   float32
	Position mgl32.Vec3
}

// EntityRows snapshots the registry, keeps rows whose id, name or kind
// contains filter and sorts them by column.
func EntityRows(r *entity.Registry, filter string, column int, ascending bool) []EntityRow {
	rows := make([]EntityRow, 0, r.Len())
	filterLower := strings.ToLower(filter)

	for e := range r.All() {
		row := EntityRow{
			ID:       e.ID(),
			Name:     e.Name(),
			Kind:     e.Kind(),
			Health:   e.Health(),
			Position: e.Position(),
		}
		if filter != "" &&
			!strings.Contains(fmt.Sprintf("%d", row.ID), filterLower) &&
			!strings.Contains(strings.ToLower(row.Name), filterLower) &&
			!strings.Contains(row.Kind.String(), filterLower) {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !ascending {
			a, b = b, a
		}

		switch column {
		case ColumnName:
			return a.Name < b.Name
		case ColumnKind:
			return a.Kind < b.Kind
		case ColumnHealth:
			return a.Health < b.Health
		case ColumnPosition:
			return a.Position.LenSqr() < b.Position.LenSqr()
		}
		return a.ID < b.ID
	})
	return rows
}

// EntityBrowser lists live entities with filtering, sorting and paging.
type EntityBrowser struct {
	selection          *Selection
	filterText         string
	sortColumn         int
	sortAscending      bool
	maxEntitiesPerPage int
	currentPage        int
}

func NewEntityBrowser(sel *Selection, maxEntitiesPerPage int) *EntityBrowser {
	return &EntityBrowser{
		selection:          sel,
		sortAscending:      true,
		maxEntitiesPerPage: max(maxEntitiesPerPage, 1),
	}
}

func (eb *EntityBrowser) Render(s *space.Space, dt float32) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
	}

	rows := EntityRows(s.Entities(), eb.filterText, eb.sortColumn, eb.sortAscending)

	totalPages := max((len(rows)+eb.maxEntitiesPerPage-1)/eb.maxEntitiesPerPage, 1)
	eb.currentPage = min(eb.currentPage, totalPages-1)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 5, tableFlags, imgui.NewVec2(0, 300), 0) {
		imgui.TableSetupColumn("ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Kind")
		imgui.TableSetupColumn("Health")
		imgui.TableSetupColumn("Position")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx := eb.currentPage * eb.maxEntitiesPerPage
		endIdx := min(startIdx+eb.maxEntitiesPerPage, len(rows))

		for _, row := range rows[startIdx:endIdx] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selection.ID == row.ID
			if imgui.SelectableBoolV(fmt.Sprintf("%d", row.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selection.ID = row.ID
			}

			imgui.TableNextColumn()
			imgui.Text(row.Name)

			imgui.TableNextColumn()
			imgui.Text(row.Kind.String())

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.2f", row.Health))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f, %.1f, %.1f", row.Position.X(), row.Position.Y(), row.Position.Z()))
		}

		imgui.EndTable()
	}

	if len(rows) > eb.maxEntitiesPerPage {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(rows)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(rows)))
	}

	imgui.End()
}
