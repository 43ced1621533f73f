// Package savebar renders a page's save button in the terminal and submits
// the page on enter.
package savebar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/form"
)

// Page is what the save bar drives.
type Page interface {
	Submit(ctx context.Context) (form.Result, error)
	SaveBar(disabled bool) confirm.View
	Button() *confirm.Button
}

// ButtonMsg carries a button transition into the program.
type ButtonMsg confirm.Snapshot

type submitDoneMsg struct {
	result form.Result
	err    error
}

// Bridge forwards button notifications, which arrive on arbitrary
// goroutines, into the bubbletea update loop.
type Bridge struct {
	ch chan confirm.Snapshot
}

// NewBridge creates a bridge. Pass Notify to dashboard.WithOnButton.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan confirm.Snapshot, 16)}
}

// Notify queues snap; it never blocks and drops the notification when the
// queue is full, since the model re-reads the button on every message.
func (b *Bridge) Notify(snap confirm.Snapshot) {
	select {
	case b.ch <- snap:
	default:
	}
}

func (b *Bridge) wait() tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		return ButtonMsg(<-b.ch)
	}
}

// Styles holds the lipgloss styles of each button look.
type Styles struct {
	Idle     lipgloss.Style
	Disabled lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Progress lipgloss.Style
	Help     lipgloss.Style
	Problem  lipgloss.Style
}

// DefaultStyles returns the built-in palette.
func DefaultStyles() Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Bold(true)
	return Styles{
		Idle:     button.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3B82F6")),
		Disabled: button.Foreground(lipgloss.Color("#9CA3AF")).Background(lipgloss.Color("#374151")),
		Success:  button.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#16A34A")),
		Error:    button.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#DC2626")),
		Progress: button.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1D4ED8")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Problem:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
	}
}

// Model is the bubbletea model of the save bar.
type Model struct {
	ctx     context.Context
	page    Page
	bridge  *Bridge
	spinner spinner.Model
	styles  Styles

	view     confirm.View
	result   *form.Result
	err      error
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithBridge subscribes the model to button notifications.
func WithBridge(b *Bridge) Option {
	return func(m *Model) { m.bridge = b }
}

// WithStyles overrides DefaultStyles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// New creates the save bar for page. ctx bounds submissions.
func New(ctx context.Context, page Page, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		ctx:     ctx,
		page:    page,
		spinner: sp,
		styles:  DefaultStyles(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&m)
	}
	m.view = page.SaveBar(false)
	return m
}

// Init starts the spinner and the button subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.bridge.wait())
}

// Update handles keys, button transitions and submit results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.click()
		case tea.KeyRunes:
			if msg.String() == "q" {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case ButtonMsg:
		m.view = m.page.SaveBar(false)
		return m, m.bridge.wait()

	case submitDoneMsg:
		m.result = &msg.result
		m.err = msg.err
		m.view = m.page.SaveBar(false)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) click() tea.Cmd {
	if m.page.SaveBar(false).Disabled {
		return nil
	}
	var cmd tea.Cmd
	m.page.Button().Click(func() {
		page, ctx := m.page, m.ctx
		cmd = func() tea.Msg {
			res, err := page.Submit(ctx)
			return submitDoneMsg{result: res, err: err}
		}
	})
	return cmd
}

// View renders the button, the outcome of the last submit and key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderButton())
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.Problem.Render("save failed: "+m.err.Error()) + "\n")
	} else if m.result != nil && !m.result.OK() {
		for _, line := range problems(*m.result) {
			b.WriteString(m.styles.Problem.Render(line) + "\n")
		}
	}
	b.WriteString(m.styles.Help.Render("enter save • q quit"))
	return b.String()
}

func (m Model) renderButton() string {
	v := m.view
	switch {
	case v.ShowProgress:
		return m.styles.Progress.Render(m.spinner.View() + " Saving")
	case v.ShowSuccess:
		return m.styles.Success.Render("✓ Saved")
	case v.ShowError:
		return m.styles.Error.Render("✗ " + v.Label)
	case v.Disabled:
		return m.styles.Disabled.Render(v.Label)
	default:
		return m.styles.Idle.Render(v.Label)
	}
}

// Result returns the last submit outcome, nil before the first submit.
func (m Model) Result() (*form.Result, error) {
	return m.result, m.err
}

func problems(res form.Result) []string {
	var out []string
	fields := make([]string, 0, len(res.Errors.Fields))
	for field := range res.Errors.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, msg := range res.Errors.Fields[field] {
			out = append(out, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return append(out, res.Errors.Form...)
}
