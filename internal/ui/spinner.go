package ui

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// elapsedAfter is how long a fetch runs before the spinner shows a timer.
const elapsedAfter = 2 * time.Second

var spinnerStyle = lipgloss.NewStyle().Foreground(colorBlue500)

var spinnerDisabled atomic.Bool

// SetSpinnerEnabled turns the animated spinner on or off for the process.
// When off, spinners print their message once as on a non-terminal. It is
// turned off while a fetch subprocess writes to the same terminal.
func SetSpinnerEnabled(enabled bool) {
	spinnerDisabled.Store(!enabled)
}

// SpinnerEnabled reports the SetSpinnerEnabled setting.
func SpinnerEnabled() bool {
	return !spinnerDisabled.Load()
}

// Spinner shows a Bubble Tea spinner on stderr while a fetch or cache
// population runs. When stderr is not a terminal the message is printed
// once instead. A Spinner is single use: Start once, Stop any number of times.
type Spinner struct {
	mu      sync.Mutex
	isTTY   bool
	started bool
	program *tea.Program
	done    chan struct{}
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	started time.Time
	now     func() time.Time
	done    bool
}

type msgUpdate string
type msgQuit struct{}

func newSpinnerModel(message string, now func() time.Time) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return spinnerModel{
		spinner: s,
		message: message,
		started: now(),
		now:     now,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case msgUpdate:
		m.message = string(msg)
		return m, nil
	case msgQuit:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	line := fmt.Sprintf("%s %s", m.spinner.View(), DimStyle.Render(m.message))
	if elapsed := m.now().Sub(m.started); elapsed >= elapsedAfter {
		line += DimStyle.Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
	}
	return line
}

// NewSpinner creates a spinner bound to the process stderr.
func NewSpinner() *Spinner {
	return &Spinner{isTTY: SpinnerEnabled() && term.IsTerminal(int(os.Stderr.Fd()))}
}

// Start shows message. Calls after the first only change the message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		if s.program != nil {
			s.program.Send(msgUpdate(message))
		}
		return
	}
	s.started = true

	if !s.isTTY {
		fmt.Fprintln(stderr, DimStyle.Render(message))
		return
	}

	s.done = make(chan struct{})
	// no input and no signal handler: Ctrl-C must reach the root context
	s.program = tea.NewProgram(newSpinnerModel(message, time.Now),
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// Update replaces the message of a running spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		s.program.Send(msgUpdate(message))
	}
}

// Stop clears the spinner line and waits for the program to exit.
func (s *Spinner) Stop() {
	s.mu.Lock()
	program, done := s.program, s.done
	s.program = nil
	s.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(msgQuit{})
	<-done
}

// Run executes fn while showing message.
func (s *Spinner) Run(message string, fn func() error) error {
	s.Start(message)
	defer s.Stop()
	return fn()
}

// WithSpinner executes fn while showing a new spinner.
func WithSpinner(message string, fn func() error) error {
	return NewSpinner().Run(message, fn)
}

// WithSpinnerResult is WithSpinner for functions that return a value.
func WithSpinnerResult[T any](message string, fn func() (T, error)) (T, error) {
	s := NewSpinner()
	s.Start(message)
	defer s.Stop()
	return fn()
}
