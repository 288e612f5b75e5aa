// Package tui provides the performer console for a composing session
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/james-see/tasteofcontrol/pkg/composer"
	"github.com/james-see/tasteofcontrol/pkg/control"
	"github.com/james-see/tasteofcontrol/pkg/engine"
	"github.com/james-see/tasteofcontrol/pkg/notation"
	"github.com/james-see/tasteofcontrol/pkg/score"
)

// Acid-inspired color scheme
var (
	acidGreen  = lipgloss.Color("#39FF14")
	acidYellow = lipgloss.Color("#FFFF00")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(acidGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(acidYellow).
			Bold(true).
			PaddingTop(1)

	musicStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(acidGreen).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(acidGreen).
			Padding(1, 2)
)

// State represents the current console state
type State int

const (
	StateIdle State = iota
	StateComposing
	StateEnded
)

// Options configures the console.
type Options struct {
	Session *engine.Session
	// Picker draws the prompt shown with each measure.
	Picker control.Picker
	// BeatDuration paces autoplay.
	BeatDuration time.Duration
	// OutBase is the path, without extension, the score is written to on end.
	OutBase string
}

// Model represents the TUI model
type Model struct {
	opts    Options
	cadence *control.Cadence
	spinner spinner.Model

	state    State
	autoplay bool
	prompt   string
	latest   *engine.Measure
	files    []string
	err      error
}

type measureMsg struct {
	measure *engine.Measure
	err     error
}

type autoplayMsg struct{}

type endedMsg struct {
	files []string
	err   error
}

// New creates a console for opts.Session
func New(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(acidGreen)

	if opts.BeatDuration <= 0 {
		opts.BeatDuration = time.Second
	}
	if opts.Picker == nil {
		opts.Picker = composer.NewRand(uint64(time.Now().UnixNano()))
	}
	if opts.OutBase == "" {
		opts.OutBase = opts.Session.ID()
	}

	c := control.NewCadence()
	c.Start()
	return Model{
		opts:    opts,
		cadence: c,
		spinner: s,
		prompt:  control.RandomPrompt(opts.Picker),
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case measureMsg:
		m.state = StateIdle
		m.err = msg.err
		if msg.err == nil {
			m.latest = msg.measure
			m.prompt = control.RandomPrompt(m.opts.Picker)
		}
		if m.autoplay && msg.err == nil {
			return m, m.schedule()
		}
		return m, nil

	case autoplayMsg:
		if !m.autoplay || m.state != StateIdle {
			return m, nil
		}
		m.state = StateComposing
		return m, m.compose(0)

	case endedMsg:
		m.state = StateEnded
		m.files = msg.files
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.state != StateIdle {
		return m, nil
	}

	switch msg.String() {
	case "n", "enter":
		m.cadence.Mark()
		m.state = StateComposing
		return m, tea.Batch(m.spinner.Tick, m.compose(0))
	case "a":
		m.cadence.Mark()
		m.state = StateComposing
		return m, tea.Batch(m.spinner.Tick, m.compose(1))
	case "p":
		m.autoplay = !m.autoplay
		if m.autoplay {
			return m, m.schedule()
		}
	case "e":
		m.autoplay = false
		m.state = StateComposing
		return m, m.end()
	}
	return m, nil
}

// compose sends the next control event to the session.
func (m Model) compose(delta int) tea.Cmd {
	session, volume, label := m.opts.Session, m.cadence.Volume(), m.prompt
	return func() tea.Msg {
		measure, err := session.Advance(delta, volume, label)
		return measureMsg{measure: measure, err: err}
	}
}

// schedule waits for the latest measure to be played before the next one.
func (m Model) schedule() tea.Cmd {
	return tea.Tick(pace(m.opts.Session.Snapshot().Latest, m.opts.BeatDuration), func(time.Time) tea.Msg {
		return autoplayMsg{}
	})
}

// pace is how long measure takes at one quarter note per beat.
func pace(measure *engine.Measure, beat time.Duration) time.Duration {
	if measure == nil {
		return beat
	}
	return time.Duration(measure.Length()) * beat / time.Duration(score.TicksPerBeat)
}

func (m Model) end() tea.Cmd {
	session, base := m.opts.Session, m.opts.OutBase
	return func() tea.Msg {
		files, err := WriteScore(session.Score(), base)
		return endedMsg{files: files, err: err}
	}
}

// WriteScore writes base.ly and base.mid and returns their paths.
func WriteScore(s *engine.Score, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	ly := base + ".ly"
	if err := os.WriteFile(ly, []byte(notation.Score(s)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write LilyPond file: %w", err)
	}
	mid := base + ".mid"
	if err := notation.NewMIDIWriter().WriteFile(s, mid); err != nil {
		return []string{ly}, err
	}
	return []string{ly, mid}, nil
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" TASTE OF CONTROL "))
	s.WriteString("\n")

	switch m.state {
	case StateEnded:
		s.WriteString(m.viewEnded())
	default:
		s.WriteString(m.viewSession())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("n/enter: next • a: advance • p: autoplay • e: end • q: quit"))
	return s.String()
}

func (m Model) viewSession() string {
	var s strings.Builder
	snap := m.opts.Session.Snapshot()

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label))
		s.WriteString(valueStyle.Render(value))
		s.WriteString("\n")
	}
	row("stage", fmt.Sprintf("%d %s", snap.Stage, snap.StageName))
	row("direction", fmt.Sprint(snap.Direction))
	row("volume", fmt.Sprintf("%.2f", m.cadence.Volume()))
	row("measures", fmt.Sprint(snap.Measures))
	auto := "off"
	if m.autoplay {
		auto = "on"
	}
	row("autoplay", auto)

	s.WriteString(promptStyle.Render("▸ " + m.prompt))
	s.WriteString("\n")

	if m.state == StateComposing {
		s.WriteString(fmt.Sprintf("\n%s composing...\n", m.spinner.View()))
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render("✗ "+m.err.Error()) + "\n")
	}

	if m.latest != nil {
		s.WriteString(fmt.Sprintf("\nmeasure %d, %d beats", m.latest.Number, snap.CurrentTime))
		if m.latest.Label != "" {
			s.WriteString(", " + m.latest.Label)
		}
		s.WriteString("\n")
		parts := notation.Measure(m.latest)
		names := make([]string, 0, len(parts))
		for name := range parts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s.WriteString(musicStyle.Render(fmt.Sprintf("%-10s %s", name, parts[name])))
			s.WriteString("\n")
		}
	}
	return boxStyle.Render(s.String())
}

func (m Model) viewEnded() string {
	var s strings.Builder
	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Writing the score failed: %s", m.err.Error())))
	} else {
		s.WriteString(successStyle.Render("✓ Score written"))
		s.WriteString("\n\n")
		for _, f := range m.files {
			s.WriteString(fmt.Sprintf("  %s\n", filepath.Base(f)))
		}
	}
	return boxStyle.Render(s.String())
}

// Run starts the TUI application
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
