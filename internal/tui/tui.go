// Package tui provides a Bubble Tea terminal user interface for getart.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/getart/internal/applemusic"
	"github.com/handiism/getart/internal/config"
	"github.com/handiism/getart/internal/download"
	"github.com/handiism/getart/internal/http"
	"github.com/handiism/getart/internal/logging"
	"github.com/sirupsen/logrus"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FA586A")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many progress lines stay on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	log       logrus.FieldLogger
	logs      []LogEntry
	result    *download.Result
	err       error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent
	runID   int

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	// Options
	download bool
	open     bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. Options start from settings. Resolver
// diagnostics go to log; nil discards them.
func NewModel(settings *config.Settings, log logrus.FieldLogger) Model {
	if log == nil {
		log = logging.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "https://music.apple.com/us/album/name/id"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FA586A"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		log:       log,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		download:  settings.Download,
		open:      settings.OpenAfterDownload,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event reported by the download manager.
	ProgressMsg struct {
		RunID int
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the manager finishes.
	RunDoneMsg struct {
		RunID  int
		Result *download.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				return m.start()
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.download = !m.download
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.open = !m.open
			}

		case "ctrl+x":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.RunID != m.runID {
			break
		}
		cmds = append(cmds, waitForEvent(m.events, m.runID))
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case RunDoneMsg:
		if msg.RunID != m.runID {
			break
		}
		if m.manager != nil {
			m.receivedBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
			m.manager = nil
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.result = msg.Result
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.receivedBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start creates a manager for the entered URL and runs it in the background.
func (m Model) start() (Model, tea.Cmd) {
	settings := *m.settings
	settings.Download = m.download
	settings.OpenAfterDownload = m.open

	ctx := m.ctx
	events := make(chan download.ProgressEvent, 64)
	manager := download.NewManager(&settings, func(event download.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}, download.WithLogger(m.log))

	m.runID++
	m.state = StateRunning
	m.logs = nil
	m.events = events
	m.manager = manager

	pageURL := strings.TrimSpace(m.textInput.Value())
	runID := m.runID
	run := func() tea.Msg {
		defer close(events)
		defer manager.Close()
		result, err := manager.Run(ctx, pageURL)
		return RunDoneMsg{RunID: runID, Result: result, Err: err}
	}

	return m, tea.Batch(run, waitForEvent(events, runID), m.spinner.Tick, tickProgress())
}

// reset returns the model to the input state for another URL. A run
// still in flight is cancelled and its messages are dropped.
func (m Model) reset() Model {
	m.cancel()
	m.runID++
	m.manager = nil
	m.state = StateInput
	m.logs = nil
	m.result = nil
	m.err = nil
	m.events = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.progress.SetPercent(0)
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

// waitForEvent delivers the next progress event, or nothing once the
// run has finished and the channel is closed.
func waitForEvent(events <-chan download.ProgressEvent, runID int) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{RunID: runID, Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("getart"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Fetch Apple Music album artwork and motion artwork"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Apple Music album URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Download assets (ctrl+t)\n", checkbox(m.download)))
	b.WriteString(fmt.Sprintf("  %s Open saved files (ctrl+o)\n", checkbox(m.open)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+x)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.totalFiles == 0 {
		b.WriteString(subtitleStyle.Render("Resolving artwork..."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(subtitleStyle.Render("Downloading..."))
		b.WriteString("\n\n")

		var percent float64
		if m.totalFiles > 0 {
			percent = float64(m.downloadedFiles) / float64(m.totalFiles)
		}
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Files: %d/%d | Downloaded: %.2f MB",
			m.downloadedFiles,
			m.totalFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.result == nil || m.result.Artwork.IsEmpty() {
		b.WriteString(warningStyle.Render(download.NoAssetsMessage))
		b.WriteString("\n")
		return b.String()
	}

	art := m.result.Artwork
	var lines []string
	if art.ArtistName != "" || art.AlbumName != "" {
		lines = append(lines, albumStyle.Render(fmt.Sprintf("♪ %s - %s", art.ArtistName, art.AlbumName)), "")
	}
	if art.HasImage() {
		lines = append(lines, "image: "+art.ImageURL)
	}
	if art.HasVideo() {
		lines = append(lines, "video: "+art.VideoURL)
	}
	if len(m.result.Files) > 0 {
		lines = append(lines, "")
		for _, file := range m.result.Files {
			lines = append(lines, successStyle.Render("✓ "+file.Path))
		}
		lines = append(lines, "", fmt.Sprintf("Size: %.2f MB", float64(m.receivedBytes)/1024/1024))
	}

	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s\n", m.err.Error()))
		if hint := errorHint(m.err); hint != "" {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render("  " + hint))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func errorHint(err error) string {
	var fetchErr *http.FetchError
	switch {
	case errors.Is(err, applemusic.ErrInvalidURL):
		return "Paste a full album link, e.g. https://music.apple.com/us/album/name/id"
	case errors.Is(err, applemusic.ErrPayloadNotFound):
		return "The page did not look like an album page."
	case errors.As(err, &fetchErr):
		return "Check your connection or try again later."
	}
	return ""
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+t: download • ctrl+o: open • ctrl+x: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new album • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, log logrus.FieldLogger) error {
	p := tea.NewProgram(NewModel(settings, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
