package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bjartek/tandem/pkg/events"
	"github.com/bjartek/tandem/pkg/logs"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/enescakir/emoji"
)

const (
	launchTab = iota
	logsTab
)

// blankLocation is shown until the launcher navigates the surface.
const blankLocation = "about:blank"

var tabNames = []string{"Launch", "Logs"}

type stepStatus struct {
	state events.StepState
	err   error
}

// Model is the primary UI surface: it shows launch progress, the location
// it was navigated to, and the process logs.
type Model struct {
	activeTab int
	keys      KeyMap
	help      help.Model
	showHelp  bool
	width     int
	height    int
	ready     bool

	steps      map[events.Step]stepStatus
	location   string
	exits      map[string]events.ChildExitedMsg
	launchDone bool
	launchErr  error
	notice     string

	logsView *LogsView
	onReady  func()
	open     func(url string) error
}

// Option configures a Model.
type Option func(*Model)

// WithOnReady registers a callback run once the program has started.
func WithOnReady(f func()) Option {
	return func(m *Model) {
		m.onReady = f
	}
}

// WithOpener sets how the current location is opened outside the TUI.
func WithOpener(open func(url string) error) Option {
	return func(m *Model) {
		m.open = open
	}
}

// WithMaxLogLines bounds the logs pane.
func WithMaxLogLines(n int) Option {
	return func(m *Model) {
		m.logsView = NewLogsView(n)
	}
}

// NewModel creates the application model.
func NewModel(opts ...Option) Model {
	m := Model{
		keys:     DefaultKeyMap(),
		help:     help.New(),
		steps:    make(map[events.Step]stepStatus),
		exits:    make(map[string]events.ChildExitedMsg),
		location: blankLocation,
		logsView: NewLogsView(10000),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model and signals readiness.
func (m Model) Init() tea.Cmd {
	onReady := m.onReady
	return func() tea.Msg {
		if onReady != nil {
			onReady()
		}
		return nil
	}
}

// Location returns the URL the surface currently shows.
func (m Model) Location() string {
	return m.location
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, m.logsView.Update(msg, m.width-4, m.contentHeight())

	case logs.LogLineMsg:
		m.logsView.Append(msg.Line)
		return m, nil

	case events.StepMsg:
		m.steps[msg.Step] = stepStatus{state: msg.State, err: msg.Err}
		return m, nil

	case events.NavigateMsg:
		m.location = msg.URL
		return m, nil

	case events.ChildExitedMsg:
		m.exits[msg.Name] = msg
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case events.LaunchDoneMsg:
		m.launchDone = true
		m.launchErr = msg.Err
		// a failed launch is fatal; the error is reported once the program exits
		if msg.Err != nil {
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		if m.activeTab == logsTab && m.logsView.IsCapturingInput() {
			return m, m.logsView.Update(msg, m.width-4, m.contentHeight())
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			m.activeTab = (m.activeTab + 1) % len(tabNames)
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + len(tabNames)) % len(tabNames)
			return m, nil

		case key.Matches(msg, m.keys.Open):
			location, open := m.location, m.open
			return m, func() tea.Msg {
				return noticeMsg(openLocation(location, open))
			}
		}
	}

	if m.activeTab == logsTab {
		return m, m.logsView.Update(msg, m.width-4, m.contentHeight())
	}
	return m, nil
}

// noticeMsg is a one-line status shown under the launch steps.
type noticeMsg string

func openLocation(location string, open func(string) error) string {
	if location == blankLocation {
		return "Nothing to open yet"
	}
	if open == nil {
		return "No browser configured"
	}
	if err := open(location); err != nil {
		return "Open failed: " + err.Error()
	}
	return "Opened " + location
}

func (m Model) contentHeight() int {
	headerHeight := 2
	footerHeight := 2
	if m.showHelp {
		footerHeight = lipgloss.Height(m.help.FullHelpView(m.keys.FullHelp())) + 1
	}
	return m.height - headerHeight - footerHeight
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(m.contentHeight()),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	var tabs []string
	for i, name := range tabNames {
		style := tabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}
	return headerStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderContent(height int) string {
	var content string
	if m.activeTab == logsTab {
		content = m.logsView.View()
	} else {
		content = m.renderLaunch()
	}
	return contentStyle.Width(m.width - 2).Height(height).Render(content)
}

func (m Model) renderLaunch() string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render(labelStyle.Render("Location: ") + valueStyle.Render(m.location)))
	b.WriteString("\n")

	var steps []string
	for _, step := range events.Steps {
		steps = append(steps, m.renderStep(step))
	}
	b.WriteString(sectionStyle.Render(labelStyle.Render("Launch") + "\n" + strings.Join(steps, "\n")))
	b.WriteString("\n")

	if len(m.exits) > 0 {
		names := make([]string, 0, len(m.exits))
		for name := range m.exits {
			names = append(names, name)
		}
		sort.Strings(names)

		var lines []string
		for _, name := range names {
			exit := m.exits[name]
			lines = append(lines, errorStyle.Render(fmt.Sprintf("  %s exited with code %d", name, exit.ExitCode)))
		}
		b.WriteString(sectionStyle.Render(labelStyle.Render("Children") + "\n" + strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	switch {
	case m.launchDone && m.launchErr != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%v %v", emoji.CrossMark, m.launchErr)))
	case m.launchDone:
		b.WriteString(successStyle.Render(fmt.Sprintf("%v Frontend is up", emoji.Rocket)))
	}

	if m.notice != "" {
		b.WriteString("\n" + dimStyle.Render(m.notice))
	}
	return b.String()
}

func (m Model) renderStep(step events.Step) string {
	status, ok := m.steps[step]
	if !ok {
		return dimStyle.Render(fmt.Sprintf("  ·  %s", step))
	}

	switch status.state {
	case events.StateRunning:
		return runningStyle.Render(fmt.Sprintf("  %v %s", emoji.HourglassNotDone, step))
	case events.StateDone:
		return successStyle.Render(fmt.Sprintf("  %v %s", emoji.CheckMarkButton, step))
	case events.StateFailed:
		return errorStyle.Render(fmt.Sprintf("  %v %s: %v", emoji.CrossMark, step, status.err))
	case events.StateSkipped:
		return dimStyle.Render(fmt.Sprintf("  -  %s (skipped)", step))
	default:
		return dimStyle.Render(fmt.Sprintf("  ·  %s", step))
	}
}

func (m Model) renderFooter() string {
	var helpView string
	if m.showHelp {
		helpView = m.help.FullHelpView(m.keys.FullHelp())
	} else {
		helpView = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return footerStyle.Width(m.width).Render(helpView)
}
