package presenter

import (
	"fmt"

	"photogrid/internal/domain"
)

// Diff describes how the displayed results changed, by photo id
type Diff struct {
	Inserted []int // ids new in this snapshot, in display order
	Removed  []int // ids no longer displayed, in previous display order
	Kept     []int // ids present in both, in display order
}

// Empty reports whether the displayed set is unchanged
func (d Diff) Empty() bool {
	return len(d.Inserted) == 0 && len(d.Removed) == 0
}

// Presenter holds what the grid shows: the results, the cursor and the viewport.
// It is not safe for concurrent use; the UI goroutine owns it.
type Presenter struct {
	photos    []domain.Photo
	snapshot  domain.Snapshot
	cursor    int
	columns   int
	rows      int // visible rows
	offsetRow int
}

// New creates an empty presenter with a single-column layout
func New() *Presenter {
	return &Presenter{columns: 1, rows: 1}
}

// Apply replaces the displayed results with the snapshot's. The cursor stays on the
// same photo when it survives, otherwise it is clamped to the new bounds.
func (p *Presenter) Apply(s domain.Snapshot) Diff {
	var selectedID int
	hadSelection := false
	if sel, ok := p.Selected(); ok {
		selectedID = sel.ID
		hadSelection = true
	}

	diff := diffByID(p.photos, s.Results)

	p.snapshot = s
	p.photos = s.Results

	if hadSelection {
		if idx := p.indexOf(selectedID); idx >= 0 {
			p.cursor = idx
		}
	}
	p.cursor = p.clamp(p.cursor)
	p.ensureVisible()
	return diff
}

func diffByID(old, next []domain.Photo) Diff {
	oldIDs := make(map[int]struct{}, len(old))
	for _, ph := range old {
		oldIDs[ph.ID] = struct{}{}
	}
	nextIDs := make(map[int]struct{}, len(next))
	for _, ph := range next {
		nextIDs[ph.ID] = struct{}{}
	}

	var d Diff
	for _, ph := range next {
		if _, ok := oldIDs[ph.ID]; ok {
			d.Kept = append(d.Kept, ph.ID)
		} else {
			d.Inserted = append(d.Inserted, ph.ID)
		}
	}
	for _, ph := range old {
		if _, ok := nextIDs[ph.ID]; !ok {
			d.Removed = append(d.Removed, ph.ID)
		}
	}
	return d
}

// SetLayout sets the grid geometry used for movement and scrolling
func (p *Presenter) SetLayout(columns, visibleRows int) {
	p.columns = max(columns, 1)
	p.rows = max(visibleRows, 1)
	p.ensureVisible()
}

// Columns returns the grid width in cells
func (p *Presenter) Columns() int { return p.columns }

// Move shifts the cursor by dx cells and dy rows. It reports whether the cursor moved.
func (p *Presenter) Move(dx, dy int) bool {
	if len(p.photos) == 0 {
		return false
	}
	return p.moveTo(p.cursor + dx + dy*p.columns)
}

// Page moves the cursor by n screens of rows
func (p *Presenter) Page(n int) bool {
	if len(p.photos) == 0 {
		return false
	}
	step := max(p.rows-1, 1) * p.columns
	return p.moveTo(p.cursor + n*step)
}

// Home moves to the first photo
func (p *Presenter) Home() bool { return p.moveTo(0) }

// End moves to the last photo
func (p *Presenter) End() bool { return p.moveTo(len(p.photos) - 1) }

func (p *Presenter) moveTo(idx int) bool {
	old := p.cursor
	p.cursor = p.clamp(idx)
	p.ensureVisible()
	return old != p.cursor
}

// Selected returns the photo under the cursor
func (p *Presenter) Selected() (domain.Photo, bool) {
	if p.cursor < 0 || p.cursor >= len(p.photos) {
		return domain.Photo{}, false
	}
	return p.photos[p.cursor], true
}

// Cursor returns the index of the selected photo
func (p *Presenter) Cursor() int { return p.cursor }

// Photos returns the displayed results
func (p *Presenter) Photos() []domain.Photo { return p.photos }

// Snapshot returns the last applied snapshot
func (p *Presenter) Snapshot() domain.Snapshot { return p.snapshot }

// Visible returns the index range [from, to) of photos inside the viewport
func (p *Presenter) Visible() (from, to int) {
	from = p.offsetRow * p.columns
	to = min(from+p.rows*p.columns, len(p.photos))
	return min(from, len(p.photos)), to
}

// Banner returns the error line for the current state, empty when there is none
func (p *Presenter) Banner() string {
	if p.snapshot.LastError == domain.ErrorNone {
		return ""
	}
	switch p.snapshot.LastError {
	case domain.ErrorNetwork:
		return fmt.Sprintf("Search failed, check your connection: %s", p.snapshot.Err)
	case domain.ErrorDecode:
		return fmt.Sprintf("Unexpected response from the image service: %s", p.snapshot.Err)
	default:
		return fmt.Sprintf("Search failed: %s", p.snapshot.Err)
	}
}

func (p *Presenter) indexOf(id int) int {
	for i, ph := range p.photos {
		if ph.ID == id {
			return i
		}
	}
	return -1
}

func (p *Presenter) clamp(idx int) int {
	if idx < 0 || len(p.photos) == 0 {
		return 0
	}
	if idx >= len(p.photos) {
		return len(p.photos) - 1
	}
	return idx
}

func (p *Presenter) ensureVisible() {
	row := p.cursor / p.columns
	if row < p.offsetRow {
		p.offsetRow = row
	} else if row >= p.offsetRow+p.rows {
		p.offsetRow = row - p.rows + 1
	}

	totalRows := (len(p.photos) + p.columns - 1) / p.columns
	if maxOffset := max(totalRows-p.rows, 0); p.offsetRow > maxOffset {
		p.offsetRow = maxOffset
	}
}
