package types

// Navigation directions
const (
	DirUp       = "up"
	DirDown     = "down"
	DirLeft     = "left"
	DirRight    = "right"
	DirPageUp   = "pageup"
	DirPageDown = "pagedown"
	DirHome     = "home"
	DirEnd      = "end"
)

// Navigation actions
type NavigateAction struct {
	Direction string
}

func (a NavigateAction) Type() string { return "navigate" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

// Command actions
type RefreshAction struct{}

func (a RefreshAction) Type() string { return "refresh" }

type OpenDetailsAction struct{}

func (a OpenDetailsAction) Type() string { return "open_details" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C
}

func (a QuitAction) Type() string { return "quit" }
