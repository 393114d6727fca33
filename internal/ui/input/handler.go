package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"photogrid/internal/query"
	"photogrid/internal/ui/input/modes"
	"photogrid/internal/ui/input/types"
)

// Handler turns key presses into actions according to the current mode
type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model
	keys        types.KeyMap
}

// New creates a handler in search mode with a focused, empty search field
func New() *Handler {
	ti := textinput.New()
	ti.Placeholder = "Search photos"
	ti.CharLimit = query.MaxQueryRunes * 2
	ti.Prompt = ""
	ti.Focus()

	keys := types.DefaultKeyMap()
	h := &Handler{
		currentMode: types.ModeSearch,
		textInput:   &ti,
		keys:        keys,
		modes:       make(map[types.Mode]types.ModeHandler),
	}

	h.modes[types.ModeSearch] = modes.NewSearchMode(keys, h.textInput)
	h.modes[types.ModeBrowse] = modes.NewBrowseMode(keys)

	return h
}

// HandleKey returns the actions for msg. In search mode, keys the mode does not
// consume edit the field, and an UpdateTextAction is emitted when the text changed.
func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)

	var cmd tea.Cmd
	var allActions []types.Action

	for _, action := range actions {
		if changeMode, ok := action.(types.ChangeModeAction); ok {
			allActions = append(allActions, h.modes[h.currentMode].Exit(ctx)...)
			h.currentMode = changeMode.Mode
			allActions = append(allActions, h.modes[h.currentMode].Enter(ctx)...)
			if h.currentMode == types.ModeSearch {
				cmd = textinput.Blink
			}
		}
		allActions = append(allActions, action)
	}

	if !consumed && h.currentMode == types.ModeSearch {
		before := h.textInput.Value()
		var textCmd tea.Cmd
		*h.textInput, textCmd = h.textInput.Update(msg)
		cmd = textCmd
		if after := h.textInput.Value(); after != before {
			allActions = append(allActions, types.UpdateTextAction{Text: after})
		}
	}

	return allActions, cmd
}

// Update forwards non-key messages (cursor blink) to the search field
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.currentMode != types.ModeSearch {
		return nil
	}
	var cmd tea.Cmd
	*h.textInput, cmd = h.textInput.Update(msg)
	return cmd
}

// SetMode switches mode outside of key handling
func (h *Handler) SetMode(mode types.Mode, ctx types.Context) {
	if mode == h.currentMode {
		return
	}
	h.modes[h.currentMode].Exit(ctx)
	h.currentMode = mode
	h.modes[h.currentMode].Enter(ctx)
}

// SetText replaces the search text without emitting actions
func (h *Handler) SetText(text string) {
	h.textInput.SetValue(text)
	h.textInput.CursorEnd()
}

// Text returns the search text
func (h *Handler) Text() string {
	return h.textInput.Value()
}

// Mode returns the current input mode
func (h *Handler) Mode() types.Mode {
	return h.currentMode
}

// TextInput returns the search field for rendering
func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// Keys returns the key bindings, used for the help footer
func (h *Handler) Keys() types.KeyMap {
	return h.keys
}
