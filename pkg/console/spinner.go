package console

import (
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/usefultrainer/freeze/pkg/styles"
	"github.com/usefultrainer/freeze/pkg/tty"
)

// SpinnerWrapper shows an animated spinner on stderr while a long running
// operation is in progress. On non-terminal stderr it does nothing.
type SpinnerWrapper struct {
	message string
	enabled bool

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	quitting bool
}

type stopSpinnerMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopSpinnerMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.spinner.View() + " " + m.message
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *SpinnerWrapper {
	return &SpinnerWrapper{
		message: message,
		enabled: tty.IsStderrTerminal(),
	}
}

// Start starts the spinner. Calling Start on a running spinner is a no-op.
func (s *SpinnerWrapper) Start() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		return
	}

	model := spinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Progress)),
		message: s.message,
	}
	// stdin stays untouched: the build later reads the acknowledgement from it.
	s.program = tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithInput(nil))
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.program, s.done)
}

// Stop stops the spinner and clears its line.
func (s *SpinnerWrapper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program == nil {
		return
	}
	s.program.Send(stopSpinnerMsg{})
	<-s.done
	s.program = nil
}

// IsEnabled reports whether the spinner renders anything.
func (s *SpinnerWrapper) IsEnabled() bool {
	return s.enabled
}
