package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"photogrid/internal/config"
	"photogrid/internal/domain"
	"photogrid/internal/ui/input"
	"photogrid/internal/ui/input/types"
	"photogrid/internal/ui/presenter"
	"photogrid/internal/ui/views"
)

// Searcher is the pipeline as seen by the UI
type Searcher interface {
	OnInput(text string)
	Refresh()
	Snapshot() domain.Snapshot
}

// Options configures the model
type Options struct {
	Searcher     Searcher
	Feed         *StateFeed
	Settings     config.UISettings
	InitialQuery string
	Logger       *zap.Logger
}

// Model represents the UI state
type Model struct {
	searcher Searcher
	feed     *StateFeed
	settings config.UISettings
	logger   *zap.Logger

	width  int
	height int
	grid   views.Grid

	input     *input.Handler
	presenter *presenter.Presenter
	renderer  *views.Renderer
	spinner   spinner.Model
	help      help.Model
	pager     *Pager

	initialQuery  string
	spinning      bool
	statusMessage string
	inPagerMode   bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Model{
		searcher:     opts.Searcher,
		feed:         opts.Feed,
		settings:     opts.Settings,
		logger:       logger.Named("ui"),
		input:        input.New(),
		presenter:    presenter.New(),
		renderer:     views.NewRenderer(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		pager:        NewPager(),
		initialQuery: opts.InitialQuery,
	}
	m.relayout(80, 24)
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.feed.wait(), textinput.Blink}
	m.presenter.Apply(m.searcher.Snapshot())
	if m.initialQuery != "" {
		m.input.SetText(m.initialQuery)
		m.searcher.OnInput(m.initialQuery)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.relayout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}
		actions, cmd := m.input.HandleKey(msg, modelContext{m})
		cmds := []tea.Cmd{cmd}
		for _, action := range actions {
			cmds = append(cmds, m.processAction(action))
		}
		return m, tea.Batch(cmds...)

	case stateChangedMsg:
		return m, tea.Batch(m.applySnapshot(msg.snapshot), m.feed.wait())

	case spinner.TickMsg:
		if !m.presenter.Snapshot().Searching {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.String("what", msg.what), zap.Error(msg.err))
			m.statusMessage = "Could not open " + msg.what
			return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case clearStatusMsg:
		m.statusMessage = ""
		return m, nil
	}

	return m, m.input.Update(msg)
}

func (m *Model) applySnapshot(s domain.Snapshot) tea.Cmd {
	diff := m.presenter.Apply(s)
	if !diff.Empty() {
		m.logger.Debug("results updated",
			zap.Int("inserted", len(diff.Inserted)),
			zap.Int("removed", len(diff.Removed)),
			zap.Int("kept", len(diff.Kept)))
	}

	// nothing left to browse
	if len(m.presenter.Photos()) == 0 && m.input.Mode() == types.ModeBrowse {
		m.input.SetMode(types.ModeSearch, modelContext{m})
	}

	if s.Searching && !m.spinning {
		m.spinning = true
		return m.spinner.Tick
	}
	return nil
}

// processAction executes an action from the input handler
func (m *Model) processAction(action types.Action) tea.Cmd {
	switch a := action.(type) {
	case types.UpdateTextAction:
		m.searcher.OnInput(a.Text)

	case types.NavigateAction:
		switch a.Direction {
		case types.DirUp:
			m.presenter.Move(0, -1)
		case types.DirDown:
			m.presenter.Move(0, 1)
		case types.DirLeft:
			m.presenter.Move(-1, 0)
		case types.DirRight:
			m.presenter.Move(1, 0)
		case types.DirPageUp:
			m.presenter.Page(-1)
		case types.DirPageDown:
			m.presenter.Page(1)
		case types.DirHome:
			m.presenter.Home()
		case types.DirEnd:
			m.presenter.End()
		}

	case types.RefreshAction:
		m.searcher.Refresh()

	case types.OpenDetailsAction:
		if photo, ok := m.presenter.Selected(); ok {
			return m.showInPager("photo details", RenderPhotoDetails(photo, m.presenter.Snapshot().Query))
		}

	case types.ToggleHelpAction:
		return m.showInPager("help", RenderHelp(m.input.Keys()))

	case types.QuitAction:
		return tea.Quit
	}
	return nil
}

// showInPager returns a command that shows content in ov, pausing rendering meanwhile
func (m *Model) showInPager(what, content string) tea.Cmd {
	return func() tea.Msg {
		if m.program == nil {
			return pagerMsg{what: what, err: errNoProgram}
		}
		m.program.Send(pauseRenderingMsg{})
		err := m.pager.Show(content)
		m.program.Send(resumeRenderingMsg{})
		return pagerMsg{what: what, err: err}
	}
}

func (m *Model) relayout(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.grid = views.Layout(width, height, m.settings.Columns, m.settings.ShowTags)
	m.presenter.SetLayout(m.grid.Columns, m.grid.Rows)
}

// View renders the model
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	snap := m.presenter.Snapshot()
	from, to := m.presenter.Visible()

	return m.renderer.Render(views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Browsing:      m.input.Mode() == types.ModeBrowse,
		SearchField:   m.input.TextInput().View(),
		Searching:     snap.Searching,
		Spinner:       m.spinner.View(),
		Text:          m.input.Text(),
		Photos:        m.presenter.Photos(),
		VisibleFrom:   from,
		VisibleTo:     to,
		Cursor:        m.presenter.Cursor(),
		Grid:          m.grid,
		ShowTags:      m.settings.ShowTags,
		Query:         snap.Query,
		Banner:        m.presenter.Banner(),
		DispatchedID:  snap.LatestDispatchedID,
		CompletedID:   snap.LatestCompletedID,
		StatusMessage: m.statusMessage,
		Help:          m.help.View(m.input.Keys()),
	})
}

// modelContext implements the input Context for the model
type modelContext struct {
	m *Model
}

func (c modelContext) TotalItems() int {
	return len(c.m.presenter.Photos())
}

func (c modelContext) HasSelection() bool {
	_, ok := c.m.presenter.Selected()
	return ok
}
