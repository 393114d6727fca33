package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"photogrid/internal/domain"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width         int
	Height        int
	Browsing      bool
	SearchField   string // rendered text input
	Searching     bool
	Spinner       string // rendered spinner frame
	Text          string // current search text
	Photos        []domain.Photo
	VisibleFrom   int
	VisibleTo     int
	Cursor        int
	Grid          Grid
	ShowTags      bool
	Query         string // query that produced Photos
	Banner        string
	DispatchedID  domain.RequestID
	CompletedID   domain.RequestID
	StatusMessage string
	Help          string // rendered help footer
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	grid   *GridRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles: styles,
		grid:   NewGridRenderer(styles),
	}
}

// Styles returns the renderer styles
func (r *Renderer) Styles() *Styles { return r.styles }

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state))
	content.WriteString("\n\n")

	prompt := r.styles.Prompt.Render("Search ›")
	if state.Browsing {
		prompt = r.styles.PromptInactive.Render("Search ›")
	}
	content.WriteString(prompt + " " + state.SearchField)
	content.WriteString("\n\n")

	var mainContent string
	switch {
	case len(state.Photos) > 0:
		mainContent = r.grid.RenderGrid(state.Photos, state.VisibleFrom, state.VisibleTo, state.Cursor,
			state.Grid, state.ShowTags, state.Browsing)
	case state.Searching:
		mainContent = r.styles.Dim.Render("Searching...")
	case strings.TrimSpace(state.Text) == "":
		mainContent = r.styles.Dim.Render("Start typing to search photos.")
	case state.Banner == "" && state.CompletedID > 0:
		mainContent = r.styles.Dim.Render(fmt.Sprintf("No photos found for %q.", state.Query))
	}
	content.WriteString(mainContent)

	footer := r.renderStatus(state)
	if state.Help != "" {
		footer += "\n" + r.styles.Help.Render(state.Help)
	}

	// push the footer to the bottom like a status bar
	currentLines := strings.Count(content.String(), "\n") + 1
	footerLines := strings.Count(footer, "\n") + 1
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22
	}
	if padding := availableLines - currentLines - footerLines; padding > 0 {
		content.WriteString(strings.Repeat("\n", padding))
	}
	content.WriteString("\n")
	content.WriteString(footer)

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	return mainStyle.Render(content.String())
}

func (r *Renderer) renderTitle(state ViewState) string {
	logo := r.styles.Title.Render("photogrid")
	if !state.Searching {
		return logo
	}

	right := r.styles.StatusLoading.Render(strings.TrimSpace(state.Spinner + " Searching"))
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderStatus(state ViewState) string {
	var parts []string

	if state.Banner != "" {
		parts = append(parts, r.styles.StatusError.Render(state.Banner))
	} else if len(state.Photos) > 0 {
		position := ""
		if state.Browsing {
			position = fmt.Sprintf(" [%d/%d]", state.Cursor+1, len(state.Photos))
		}
		parts = append(parts, r.styles.StatusSuccess.Render(
			fmt.Sprintf("%d photos for %q%s", len(state.Photos), state.Query, position)))
	}

	if state.StatusMessage != "" {
		parts = append(parts, r.styles.Status.Render(state.StatusMessage))
	}

	if state.DispatchedID > 0 {
		parts = append(parts, r.styles.Dim.Render(
			fmt.Sprintf("req %d/%d", state.CompletedID, state.DispatchedID)))
	}

	return strings.Join(parts, r.styles.Dim.Render("  ·  "))
}
