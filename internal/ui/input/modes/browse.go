package modes

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"photogrid/internal/ui/input/types"
)

// BrowseMode moves through the result grid
type BrowseMode struct {
	keys types.KeyMap
}

func NewBrowseMode(keys types.KeyMap) *BrowseMode {
	return &BrowseMode{keys: keys}
}

func (m *BrowseMode) Name() string {
	return "browse"
}

func (m *BrowseMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *BrowseMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *BrowseMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	k := m.keys
	switch {
	case msg.Type == tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case key.Matches(msg, k.Quit):
		return []types.Action{types.QuitAction{}}, true

	case key.Matches(msg, k.Toggle), key.Matches(msg, k.Search):
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch}}, true

	case key.Matches(msg, k.Up):
		return navigate(types.DirUp), true
	case key.Matches(msg, k.Down):
		return navigate(types.DirDown), true
	case key.Matches(msg, k.Left):
		return navigate(types.DirLeft), true
	case key.Matches(msg, k.Right):
		return navigate(types.DirRight), true
	case key.Matches(msg, k.PageUp):
		return navigate(types.DirPageUp), true
	case key.Matches(msg, k.PageDown):
		return navigate(types.DirPageDown), true
	case key.Matches(msg, k.Home):
		return navigate(types.DirHome), true
	case key.Matches(msg, k.End):
		return navigate(types.DirEnd), true

	case key.Matches(msg, k.Open):
		if !ctx.HasSelection() {
			return nil, true
		}
		return []types.Action{types.OpenDetailsAction{}}, true

	case key.Matches(msg, k.Refresh):
		return []types.Action{types.RefreshAction{}}, true

	case key.Matches(msg, k.Help):
		return []types.Action{types.ToggleHelpAction{}}, true
	}

	return nil, false
}

func navigate(direction string) []types.Action {
	return []types.Action{types.NavigateAction{Direction: direction}}
}
