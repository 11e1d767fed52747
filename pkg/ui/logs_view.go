package ui

import (
	"fmt"
	"strings"

	"github.com/bjartek/tandem/pkg/logs"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// LogsKeyMap defines keybindings for the logs view
type LogsKeyMap struct {
	LineUp   key.Binding
	LineDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Filter   key.Binding
	Clear    key.Binding
	Apply    key.Binding
}

// DefaultLogsKeyMap returns the default keybindings for logs view
func DefaultLogsKeyMap() LogsKeyMap {
	return LogsKeyMap{
		LineUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u/pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d/pgdn", "page down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Clear: key.NewBinding(key.WithKeys("esc")),
		Apply: key.NewBinding(key.WithKeys("enter")),
	}
}

// LogsView shows backend, frontend and launcher logs in a scrollable viewport.
type LogsView struct {
	viewport    viewport.Model
	filterInput textinput.Model
	lines       []string
	maxLines    int
	keys        LogsKeyMap
	ready       bool
	filterMode  bool
	filterText  string
	height      int
}

// NewLogsView creates a new logs view keeping at most maxLines lines.
func NewLogsView(maxLines int) *LogsView {
	filterInput := textinput.New()
	filterInput.Placeholder = "Filter logs..."
	filterInput.CharLimit = 100
	filterInput.Width = 50

	return &LogsView{
		lines:       make([]string, 0),
		maxLines:    maxLines,
		keys:        DefaultLogsKeyMap(),
		filterInput: filterInput,
	}
}

// Lines returns the buffered log lines.
func (lv *LogsView) Lines() []string {
	return lv.lines
}

// IsCapturingInput reports whether keys should go to the filter input.
func (lv *LogsView) IsCapturingInput() bool {
	return lv.filterMode
}

func (lv *LogsView) visibleLines() []string {
	if lv.filterText == "" {
		return lv.lines
	}
	needle := strings.ToLower(lv.filterText)
	filtered := make([]string, 0, len(lv.lines))
	for _, line := range lv.lines {
		if strings.Contains(strings.ToLower(line), needle) {
			filtered = append(filtered, line)
		}
	}
	return filtered
}

func (lv *LogsView) refresh() {
	if !lv.ready {
		return
	}
	atBottom := lv.viewport.AtBottom()
	content := strings.Join(lv.visibleLines(), "\n")
	if lv.viewport.Width > 0 {
		content = wordwrap.String(content, lv.viewport.Width)
	}
	lv.viewport.SetContent(content)
	if atBottom {
		lv.viewport.GotoBottom()
	}
}

func (lv *LogsView) headerHeight() int {
	if lv.filterMode || lv.filterText != "" {
		return 3
	}
	return 2
}

// Append adds a log line, dropping the oldest beyond maxLines.
func (lv *LogsView) Append(line string) {
	lv.lines = append(lv.lines, strings.TrimRight(line, "\n"))
	if len(lv.lines) > lv.maxLines {
		lv.lines = lv.lines[len(lv.lines)-lv.maxLines:]
	}
	lv.refresh()
}

// Update handles messages for the logs view.
func (lv *LogsView) Update(msg tea.Msg, width, height int) tea.Cmd {
	var cmd tea.Cmd
	lv.height = height

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if lv.filterMode {
			switch {
			case key.Matches(msg, lv.keys.Clear):
				lv.filterMode = false
				lv.filterText = ""
				lv.filterInput.SetValue("")
				lv.resize(width, height)
				return nil
			case key.Matches(msg, lv.keys.Apply):
				lv.filterMode = false
				lv.filterText = lv.filterInput.Value()
				lv.resize(width, height)
				return nil
			default:
				lv.filterInput, cmd = lv.filterInput.Update(msg)
				lv.filterText = lv.filterInput.Value()
				lv.refresh()
				return cmd
			}
		}

		if key.Matches(msg, lv.keys.Filter) {
			lv.filterMode = true
			lv.filterInput.Focus()
			lv.resize(width, height)
			return textinput.Blink
		}

	case logs.LogLineMsg:
		lv.Append(msg.Line)
		return nil

	case tea.WindowSizeMsg:
		lv.resize(width, height)
	}

	if lv.ready && !lv.filterMode {
		lv.viewport, cmd = lv.viewport.Update(msg)
	}
	return cmd
}

func (lv *LogsView) resize(width, height int) {
	viewportHeight := height - lv.headerHeight()
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !lv.ready {
		lv.viewport = viewport.New(width, viewportHeight)
		lv.viewport.Style = lipgloss.NewStyle()
		lv.viewport.KeyMap = viewport.KeyMap{
			PageDown: lv.keys.PageDown,
			PageUp:   lv.keys.PageUp,
			Down:     lv.keys.LineDown,
			Up:       lv.keys.LineUp,
		}
		lv.ready = true
	} else {
		lv.viewport.Width = width
		lv.viewport.Height = viewportHeight
	}
	lv.refresh()
	lv.viewport.GotoBottom()
}

// View renders the logs view.
func (lv *LogsView) View() string {
	if !lv.ready {
		return "Loading logs..."
	}

	header := lipgloss.NewStyle().
		Foreground(primaryColor).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(mutedColor).
		Render("Process Logs")

	var filterBar string
	if lv.filterMode {
		filterBar = labelStyle.Render("Filter: ") + lv.filterInput.View() + "\n"
	} else if lv.filterText != "" {
		filterBar = dimStyle.Render(fmt.Sprintf("Filter: '%s' (%d/%d lines) • / to edit, esc to clear",
			lv.filterText, len(lv.visibleLines()), len(lv.lines))) + "\n"
	}

	if len(lv.lines) == 0 {
		return header + "\n" + dimStyle.Render("Waiting for log entries...")
	}

	content := header + "\n" + filterBar + lv.viewport.View()
	if lv.height > 0 && lv.viewport.Width > 0 {
		content = lipgloss.Place(lv.viewport.Width, lv.height, lipgloss.Left, lipgloss.Top, content)
	}
	return content
}
