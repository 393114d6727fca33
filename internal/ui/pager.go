package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"photogrid/internal/domain"
	"photogrid/internal/ui/input/types"
)

var errNoProgram = errors.New("program not set")

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	what string
	err  error
}

// Pager shows long content in ov, handing it the terminal for the duration
type Pager struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPager creates a pager
func NewPager() *Pager {
	return &Pager{}
}

// SetProgram sets the program reference for terminal management
func (p *Pager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show runs ov on content and blocks until the user leaves it
func (p *Pager) Show(content string) error {
	if p.program == nil {
		return errNoProgram
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// let ov finish with the screen before bubbletea takes it back
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// keep ov from writing to our screen on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

var (
	pagerTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)
	pagerSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginTop(1)
	pagerKeyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	pagerDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// RenderHelp renders the key reference shown with '?'
func RenderHelp(keys types.KeyMap) string {
	var help strings.Builder

	help.WriteString(pagerTitleStyle.Render("photogrid Help"))
	help.WriteString("\n")

	section := func(title string, bindings ...key.Binding) {
		help.WriteString(pagerSectionStyle.Render(title))
		help.WriteString("\n")
		for _, b := range bindings {
			h := b.Help()
			help.WriteString(fmt.Sprintf("  %-12s %s\n", pagerKeyStyle.Render(h.Key), pagerDescStyle.Render(h.Desc)))
		}
		help.WriteString("\n")
	}

	section("Search",
		key.NewBinding(key.WithHelp("type", "search as you type (after a short pause)")),
		keys.Refresh,
		keys.Toggle,
		keys.Quit)
	section("Browse",
		keys.Up, keys.Down, keys.Left, keys.Right,
		keys.PageUp, keys.PageDown, keys.Home, keys.End,
		keys.Open, keys.Search, keys.Help)

	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  Photos are provided by Pixabay. Press q to leave this pager."))
	return help.String()
}

// RenderPhotoDetails renders everything known about a photo
func RenderPhotoDetails(p domain.Photo, query string) string {
	var b strings.Builder

	b.WriteString(pagerTitleStyle.Render(fmt.Sprintf("Photo #%d", p.ID)))
	b.WriteString("\n")

	field := func(name, value string) {
		if value == "" {
			value = "-"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", pagerKeyStyle.Render(fmt.Sprintf("%-8s", name)), pagerDescStyle.Render(value)))
	}

	field("Query", query)
	field("User", p.User)
	field("Likes", fmt.Sprintf("%d", p.Likes))
	field("Tags", p.Tags)

	b.WriteString(pagerSectionStyle.Render("Links"))
	b.WriteString("\n")
	field("Image", p.ImageURL)
	field("Preview", p.PreviewURL)
	field("Page", p.PageURL)

	return b.String()
}
