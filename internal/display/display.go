// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] keeps a listing status bar and an input line at the bottom of
// the terminal. Everything else is printed into the scrollback above it
// through the running program, so background confirmations and REPL
// output never interleave mid-line.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Prompt is the input prompt text.
const Prompt = "desk> "

// Paging keys submit these commands when the input line is empty.
const (
	nextCommand = "next"
	prevCommand = "prev"
)

const (
	refreshInterval = 250 * time.Millisecond
	historyLimit    = 100
)

// Status is what the bar at the bottom shows.
type Status struct {
	Page       int
	PageCount  int
	RangeStart int
	RangeEnd   int
	Total      int
	Filter     string // active criteria, empty when none
	Pending    int    // confirmations still in flight
	Failed     int    // confirmations the server rejected this session
	Loading    bool
}

// StatusFunc reports the current status. It is polled from the UI
// goroutine and must be safe for concurrent use.
type StatusFunc func() Status

// UI owns the terminal while [UI.Run] is blocking. Other goroutines read
// submitted lines from [UI.InputChan] and print through the Print
// methods once [UI.WaitReady] has returned.
type UI struct {
	program *tea.Program
	status  StatusFunc
	inputCh chan string
	readyCh chan struct{}
	stopped atomic.Bool
}

// NewUI creates the display. A nil status shows an empty bar.
func NewUI(status StatusFunc) *UI {
	if status == nil {
		status = func() Status { return Status{} }
	}
	return &UI{
		status:  status,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
	}
}

// InputChan delivers submitted lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// WaitReady blocks until the event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Println prints a line above the input. Before Run starts and after it
// returns, output goes straight to stdout.
func (u *UI) Println(a ...any) {
	u.emit(fmt.Sprint(a...))
}

// Printf is the formatted form of Println.
func (u *UI) Printf(format string, a ...any) {
	u.emit(fmt.Sprintf(format, a...))
}

// PrintInfo prints a progress or confirmation line.
func (u *UI) PrintInfo(text string) { u.emit(infoStyle.Render("  " + text)) }

// PrintHint prints a dimmed line.
func (u *UI) PrintHint(text string) { u.emit(secondaryStyle.Render("  " + text)) }

// PrintError prints a failure.
func (u *UI) PrintError(text string) { u.emit(errorStyle.Render("  " + text)) }

// PrintBlock prints pre-rendered multi-line output such as a table.
func (u *UI) PrintBlock(text string) { u.emit(strings.TrimRight(text, "\n")) }

func (u *UI) emit(line string) {
	if u.program == nil || u.stopped.Load() {
		fmt.Println(line)
		return
	}
	u.program.Println(line)
}

func (u *UI) echo(line string) {
	u.emit(promptStyle.Render(strings.TrimSpace(Prompt)) + " " + echoStyle.Render(line))
}

// Quit stops the event loop.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run starts the event loop and blocks until the user quits or Quit is
// called.
func (u *UI) Run() error {
	u.program = tea.NewProgram(newModel(u.status, u.inputCh, u.readyCh, u.echo))
	_, err := u.program.Run()
	u.stopped.Store(true)
	return err
}

type tickMsg time.Time

type model struct {
	status  StatusFunc
	input   textinput.Model
	submit  chan<- string
	readyCh chan struct{}
	echo    func(string)

	history []string
	cursor  int // index into history while browsing, len(history) otherwise

	current Status
	width   int
}

func newModel(status StatusFunc, submit chan<- string, ready chan struct{}, echo func(string)) model {
	ti := textinput.New()
	// Styled prompts carry ANSI bytes that textinput counts as width, so
	// the prompt text stays plain and only its style is set.
	ti.Prompt = Prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = echoStyle
	ti.Cursor.Style = promptStyle
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	return model{
		status:  status,
		input:   ti,
		submit:  submit,
		readyCh: ready,
		echo:    echo,
	}
}

func (m model) Init() tea.Cmd {
	ready := m.readyCh
	return tea.Batch(textinput.Blink, tick(), func() tea.Msg {
		close(ready)
		return nil
	})
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.send(line, true)
		case tea.KeyUp:
			return m.browse(-1), nil
		case tea.KeyDown:
			return m.browse(1), nil
		case tea.KeyPgDown, tea.KeyPgUp:
			if m.input.Value() != "" {
				return m, nil
			}
			if msg.Type == tea.KeyPgDown {
				return m.send(nextCommand, false)
			}
			return m.send(prevCommand, false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - lipgloss.Width(Prompt); w > 0 {
			m.input.Width = w
		}
		return m, nil

	case tickMsg:
		m.current = m.status()
		return m, tea.Batch(tick(), tea.SetWindowTitle(title(m.current)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send hands line to the REPL. The echo runs as a command because
// Program.Println blocks while Update is on the stack.
func (m model) send(line string, remember bool) (tea.Model, tea.Cmd) {
	if line == "" {
		return m, nil
	}
	if remember && (len(m.history) == 0 || m.history[len(m.history)-1] != line) {
		m.history = append(m.history, line)
		if len(m.history) > historyLimit {
			m.history = m.history[len(m.history)-historyLimit:]
		}
	}
	m.cursor = len(m.history)
	m.submit <- line

	echo := m.echo
	return m, func() tea.Msg {
		echo(line)
		return nil
	}
}

// browse moves through submitted lines. Stepping past the newest entry
// clears the input.
func (m model) browse(step int) model {
	if len(m.history) == 0 {
		return m
	}
	m.cursor = min(max(m.cursor+step, 0), len(m.history))
	if m.cursor == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.cursor])
	}
	m.input.CursorEnd()
	return m
}

func title(s Status) string {
	t := fmt.Sprintf("recipedesk · page %d of %d", s.Page, s.PageCount)
	if s.Pending > 0 {
		t += fmt.Sprintf(" · %d pending", s.Pending)
	}
	return t
}

func (m model) View() string {
	var b strings.Builder
	if m.current.PageCount > 0 || m.current.Loading {
		b.WriteString(renderBar(m.current, m.width))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func renderBar(s Status, width int) string {
	var parts []string
	if s.Loading {
		parts = append(parts, errorStyle.Render("loading…"))
	} else {
		parts = append(parts,
			labelStyle.Render("page ")+barPageStyle.Render(fmt.Sprintf("%d of %d", s.Page, s.PageCount)),
			labelStyle.Render(fmt.Sprintf("%d–%d of %d", s.RangeStart, s.RangeEnd, s.Total)),
		)
	}
	if s.Filter != "" {
		parts = append(parts, barFilterStyle.Render(s.Filter))
	}
	if s.Pending > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d pending", s.Pending)))
	}
	if s.Failed > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	}

	if width <= 0 {
		width = 80
	}
	return barStyle.Width(width).Render(" " + strings.Join(parts, barSepStyle.Render("  │  ")) + " ")
}
