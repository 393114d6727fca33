package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title          lipgloss.Style
	Prompt         lipgloss.Style
	PromptInactive lipgloss.Style
	Dim            lipgloss.Style
	Status         lipgloss.Style
	Help           lipgloss.Style
	Main           lipgloss.Style
	Scroll         lipgloss.Style
	Cell           lipgloss.Style
	CellSelected   lipgloss.Style
	CellActive     lipgloss.Style // selected cell while browsing
	PhotoID        lipgloss.Style
	Likes          lipgloss.Style
	User           lipgloss.Style
	Tags           lipgloss.Style
	StatusError    lipgloss.Style
	StatusLoading  lipgloss.Style
	StatusSuccess  lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	cell := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Prompt:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		PromptInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dim:            lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2).
			MaxHeight(100), // adjusted to the terminal on render
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Cell:          cell,
		CellSelected:  cell.BorderForeground(lipgloss.Color("244")),
		CellActive:    cell.BorderForeground(lipgloss.Color("226")),
		PhotoID:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		Likes:         lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		User:          lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Tags:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}
