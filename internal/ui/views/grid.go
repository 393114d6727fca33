package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"photogrid/internal/domain"
)

const (
	minCellWidth = 24
	// lines around the grid: padding, title, search field, gaps, status, help
	chromeLines = 8
)

// Grid is the geometry of the result grid for a terminal size
type Grid struct {
	Columns   int
	Rows      int // visible rows
	CellWidth int
}

// Layout fits the grid into width x height. columns <= 0 picks as many columns as fit.
func Layout(width, height, columns int, showTags bool) Grid {
	avail := max(width-4, minCellWidth)

	cols := columns
	if cols <= 0 {
		cols = max(avail/minCellWidth, 1)
	}

	return Grid{
		Columns:   cols,
		Rows:      max((height-chromeLines)/cellHeight(showTags), 1),
		CellWidth: max(avail/cols, 10),
	}
}

func cellHeight(showTags bool) int {
	if showTags {
		return 5
	}
	return 4
}

// GridRenderer renders photo cells
type GridRenderer struct {
	styles *Styles
}

// NewGridRenderer creates a new grid renderer
func NewGridRenderer(styles *Styles) *GridRenderer {
	return &GridRenderer{styles: styles}
}

// RenderGrid renders photos[from:to] as rows of cells, highlighting index cursor
func (r *GridRenderer) RenderGrid(photos []domain.Photo, from, to, cursor int, grid Grid, showTags, browsing bool) string {
	if from >= to {
		return ""
	}

	var rows []string
	for rowStart := from; rowStart < to; rowStart += grid.Columns {
		rowEnd := min(rowStart+grid.Columns, to)
		cells := make([]string, 0, rowEnd-rowStart)
		for i := rowStart; i < rowEnd; i++ {
			cells = append(cells, r.RenderCell(photos[i], i == cursor, browsing, grid.CellWidth, showTags))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderCell renders one photo. width is the outer width including the border.
func (r *GridRenderer) RenderCell(p domain.Photo, selected, browsing bool, width int, showTags bool) string {
	style := r.styles.Cell
	if selected {
		style = r.styles.CellSelected
		if browsing {
			style = r.styles.CellActive
		}
	}

	inner := max(width-4, 4) // border and padding

	id := fmt.Sprintf("#%d", p.ID)
	likes := fmt.Sprintf("♥ %d", p.Likes)
	gap := inner - runewidth.StringWidth(id) - runewidth.StringWidth(likes)
	var header string
	if gap >= 1 {
		header = r.styles.PhotoID.Render(id) + strings.Repeat(" ", gap) + r.styles.Likes.Render(likes)
	} else {
		header = r.styles.PhotoID.Render(truncate(id, inner))
	}

	user := p.User
	if user == "" {
		user = "unknown"
	}
	lines := []string{header, r.styles.User.Render(truncate(user, inner))}
	if showTags {
		lines = append(lines, r.styles.Tags.Render(truncate(p.Tags, inner)))
	}

	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
