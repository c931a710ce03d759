package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

type closureState int

const (
	closureStateDate closureState = iota
	closureStateComputing
	closureStateConfirm
	closureStateDone
)

// ClosureModel walks through computing the expected revenue of a day and
// closing it with the counted amount.
type ClosureModel struct {
	CommonModel
	svc   *closure.Service
	scope clinic.Scope
	loc   *time.Location

	state    closureState
	form     *huh.Form
	date     time.Time
	expected int64
	closed   *closure.Closure
	history  []*closure.Closure
	err      error

	// Form bindings
	formDate      string
	formConfirmed string
	formNotes     string
	formSubmit    bool
}

func NewClosureModel(svc *closure.Service, scope clinic.Scope, loc *time.Location) ClosureModel {
	m := ClosureModel{
		svc:      svc,
		scope:    scope,
		loc:      loc,
		formDate: FormatDate(time.Now().In(loc)),
	}
	m.form = m.dateForm()

	return m
}

func (m ClosureModel) Title() string { return "Close Day" }
func (m ClosureModel) ShortHelp() string {
	if m.state == closureStateDone {
		return "Esc: back | n: close another day"
	}

	return "Navigate form | Esc: back"
}

func (m ClosureModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.historyCmd())
}

func (m *ClosureModel) dateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("date").
				Title("Day to close").
				Placeholder("YYYY-MM-DD").
				Value(&m.formDate).
				Validate(func(s string) error {
					_, err := parseDay(s, m.loc)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("use YYYY-MM-DD")
	}

	return day, nil
}

func (m *ClosureModel) confirmForm() *huh.Form {
	m.formConfirmed = money.Format(m.expected)
	m.formNotes = ""
	m.formSubmit = false

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("confirmed").
				Title("Counted revenue").
				Value(&m.formConfirmed).
				Validate(func(s string) error {
					cents, err := money.Parse(s)
					if err != nil {
						return err
					}

					if cents < 0 {
						return fmt.Errorf("can not be negative")
					}

					return nil
				}),
			huh.NewText().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
			huh.NewConfirm().
				Key("submit").
				Title("Close the day?").
				Affirmative("Close").
				Negative("Cancel").
				Value(&m.formSubmit),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m ClosureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expectedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = closureStateDate
			m.form = m.dateForm()

			return m, m.form.Init()
		}

		m.err = nil
		m.expected = msg.expected
		m.state = closureStateConfirm
		m.form = m.confirmForm()

		return m, m.form.Init()

	case closedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = closureStateConfirm
			m.form = m.confirmForm()

			return m, m.form.Init()
		}

		m.err = nil
		m.closed = msg.closure
		m.state = closureStateDone

		return m, m.historyCmd()

	case historyMsg:
		if msg.err == nil {
			m.history = msg.closures
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == closureStateDone {
			if msg.String() == "n" {
				m.state = closureStateDate
				m.closed = nil
				m.form = m.dateForm()

				return m, m.form.Init()
			}

			return m, nil
		}
	}

	if m.state == closureStateComputing || m.state == closureStateDone {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == closureStateDate {
		date, err := parseDay(m.form.GetString("date"), m.loc)
		if err != nil {
			m.err = err
			m.form = m.dateForm()

			return m, m.form.Init()
		}

		m.date = date
		m.state = closureStateComputing

		return m, m.computeCmd()
	}

	if !m.form.GetBool("submit") {
		m.state = closureStateDate
		m.form = m.dateForm()

		return m, m.form.Init()
	}

	m.state = closureStateComputing

	return m, m.closeCmd()
}

func (m ClosureModel) View() string {
	var b strings.Builder

	switch m.state {
	case closureStateDate:
		b.WriteString(m.form.View())
	case closureStateComputing:
		b.WriteString("Working...")
	case closureStateConfirm:
		fmt.Fprintf(&b, "Day %s\nExpected revenue: %s\n\n%s",
			FormatDate(m.date), activeStyle(FormatAmount(m.expected)), m.form.View())
	case closureStateDone:
		c := m.closed
		fmt.Fprintf(&b, "Closed %s\n\nExpected:   %s\nConfirmed:  %s\nDifference: %s",
			FormatDate(c.Date), FormatAmount(c.ExpectedRevenue), FormatAmount(c.ConfirmedRevenue), signedAmount(c.Difference()))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.history) > 0 {
		b.WriteString("\n\nRecent closures:\n")

		for _, c := range m.history {
			fmt.Fprintf(&b, "  %s  expected %10s  confirmed %10s  %s\n",
				FormatDate(c.Date), FormatAmount(c.ExpectedRevenue), FormatAmount(c.ConfirmedRevenue), signedAmount(c.Difference()))
		}
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func signedAmount(cents int64) string {
	if cents > 0 {
		return "+" + FormatAmount(cents)
	}

	return FormatAmount(cents)
}

// Messages

type expectedMsg struct {
	expected int64
	err      error
}

func (m ClosureModel) computeCmd() tea.Cmd {
	date := m.date

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		expected, err := m.svc.ComputeExpected(ctx, m.scope, date)

		return expectedMsg{expected: expected, err: err}
	}
}

type closedMsg struct {
	closure *closure.Closure
	err     error
}

func (m ClosureModel) closeCmd() tea.Cmd {
	date := m.date
	notes := m.form.GetString("notes")
	confirmed, parseErr := money.Parse(m.form.GetString("confirmed"))

	return func() tea.Msg {
		if parseErr != nil {
			return closedMsg{err: parseErr}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.svc.CloseDay(ctx, m.scope, date, confirmed, notes)

		return closedMsg{closure: c, err: err}
	}
}

type historyMsg struct {
	closures []*closure.Closure
	err      error
}

func (m ClosureModel) historyCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		now := time.Now().In(m.loc)
		closures, err := m.svc.History(ctx, m.scope, now.AddDate(0, 0, -7), now)

		return historyMsg{closures: closures, err: err}
	}
}
