package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"photogrid/internal/domain"
)

// stateChangedMsg carries the newest pipeline snapshot
type stateChangedMsg struct {
	snapshot domain.Snapshot
}

// clearStatusMsg clears the transient status message
type clearStatusMsg struct{}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}

// StateFeed hands pipeline snapshots to the UI. It holds at most one unread
// snapshot, so a slow UI skips intermediate states instead of blocking the pipeline.
type StateFeed struct {
	ch   chan domain.Snapshot
	done chan struct{}
}

// NewStateFeed creates an empty feed
func NewStateFeed() *StateFeed {
	return &StateFeed{
		ch:   make(chan domain.Snapshot, 1),
		done: make(chan struct{}),
	}
}

// Push replaces any unread snapshot with s. Never blocks. Single producer only.
func (f *StateFeed) Push(s domain.Snapshot) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Close releases a pending wait
func (f *StateFeed) Close() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// wait returns a command that delivers the next snapshot
func (f *StateFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.ch:
			return stateChangedMsg{snapshot: s}
		case <-f.done:
			return nil
		}
	}
}
