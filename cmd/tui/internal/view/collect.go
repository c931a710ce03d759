package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

// openWindow is how far back unsettled appointments are listed.
const openWindow = 60 * 24 * time.Hour

type collectState int

const (
	collectStateBrowse collectState = iota
	collectStateForm
)

// CollectModel lists unsettled appointments and records payments against them.
type CollectModel struct {
	CommonModel
	appointments *appointment.Service
	billing      *billing.Service
	scope        clinic.Scope
	loc          *time.Location

	state collectState
	table table.Model
	open  []*appointment.Appointment
	form  *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formAmount      string
	formMethod      ledger.Method
	formFullPackage bool
}

func NewCollectModel(appointmentSvc *appointment.Service, billingSvc *billing.Service, scope clinic.Scope, loc *time.Location) CollectModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 17},
			{Title: "Client", Width: 24},
			{Title: "Total", Width: 10},
			{Title: "Paid", Width: 10},
			{Title: "Status", Width: 9},
			{Title: "Sessions", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return CollectModel{
		appointments: appointmentSvc,
		billing:      billingSvc,
		scope:        scope,
		loc:          loc,
		table:        t,
		loading:      true,
	}
}

func (m CollectModel) Title() string { return "Collect Payment" }
func (m CollectModel) ShortHelp() string {
	if m.state == collectStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: collect | r: refresh"
}

func (m CollectModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CollectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOpenMsg:
		m.loading = false
		m.err = msg.err
		m.open = msg.open
		m.refreshTable()

		return m, nil

	case collectDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Payment failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Collected %s from %s, appointment is now %s",
				FormatAmount(msg.result.Payment.Amount),
				msg.result.Appointment.ClientName,
				msg.result.State.PaymentStatus,
			)
		}

		m.state = collectStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == collectStateForm {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			return m.enterForm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CollectModel) selected() *appointment.Appointment {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.open) {
		return nil
	}

	return m.open[idx]
}

// suggestedAmount is one session for a package already in progress and the
// full remaining balance otherwise.
func suggestedAmount(a *appointment.Appointment) int64 {
	if a.IsPackage && a.SessionsPaid > 0 {
		return min(a.SessionPrice(), a.Remaining())
	}

	return a.Remaining()
}

func (m CollectModel) enterForm() (tea.Model, tea.Cmd) {
	a := m.selected()
	if a == nil {
		return m, nil
	}

	m.formAmount = money.Format(suggestedAmount(a))
	m.formMethod = ledger.MethodCash
	m.formFullPackage = false

	methods := make([]huh.Option[ledger.Method], len(ledger.Methods))
	for i, method := range ledger.Methods {
		methods[i] = huh.NewOption(string(method), method)
	}

	fields := []huh.Field{
		huh.NewInput().
			Key("amount").
			Title("Amount").
			Value(&m.formAmount).
			Validate(func(s string) error {
				cents, err := money.Parse(s)
				if err != nil {
					return err
				}

				if cents <= 0 || cents > a.Remaining() {
					return fmt.Errorf("must be between 0.01 and %s", FormatAmount(a.Remaining()))
				}

				return nil
			}),
		huh.NewSelect[ledger.Method]().
			Key("method").
			Title("Method").
			Options(methods...).
			Value(&m.formMethod),
	}

	if a.IsPackage && a.SessionsPaid == 0 {
		fields = append(fields, huh.NewConfirm().
			Key("full_package").
			Title(fmt.Sprintf("Prepay all %d sessions?", a.PackageSessions)).
			Value(&m.formFullPackage))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = collectStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m CollectModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = collectStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.collectCmd()
}

func (m CollectModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading appointments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.open) == 0 {
		content = "Nothing left to collect."
	}

	if m.state == collectStateForm && m.form != nil {
		info := ""
		if a := m.selected(); a != nil {
			info = fmt.Sprintf("%s\nRemaining %s of %s", a.ClientName, FormatAmount(a.Remaining()), FormatAmount(a.Amount))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Collect Payment\n\n%s\n\n%s", info, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CollectModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.open))
	for _, a := range m.open {
		sessions := ""
		if a.IsPackage {
			sessions = fmt.Sprintf("%d/%d", a.SessionsPaid, a.PackageSessions)
		}

		rows = append(rows, table.Row{
			a.Start.In(m.loc).Format("2006-01-02 15:04"),
			a.ClientName,
			FormatAmount(a.Amount),
			FormatAmount(a.AmountPaid),
			string(a.PaymentStatus),
			sessions,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadOpenMsg struct {
	open []*appointment.Appointment
	err  error
}

func (m CollectModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		from := time.Now().Add(-openWindow)

		all, err := m.appointments.List(ctx, m.scope, appointment.ListFilter{StartFrom: &from})
		if err != nil {
			return loadOpenMsg{err: err}
		}

		open := make([]*appointment.Appointment, 0, len(all))
		for _, a := range all {
			if !a.Settled() {
				open = append(open, a)
			}
		}

		return loadOpenMsg{open: open}
	}
}

type collectDoneMsg struct {
	result *billing.CollectResult
	err    error
}

func (m CollectModel) collectCmd() tea.Cmd {
	a := m.selected()
	if a == nil {
		return nil
	}

	method, _ := m.form.Get("method").(ledger.Method)
	amount, parseErr := money.Parse(m.form.GetString("amount"))
	params := billing.CollectParams{
		AppointmentID: a.ID,
		Amount:        amount,
		Method:        method,
		FullPackage:   m.form.GetBool("full_package"),
	}

	return func() tea.Msg {
		if parseErr != nil {
			return collectDoneMsg{err: parseErr}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.billing.Collect(ctx, m.scope, params)

		return collectDoneMsg{result: res, err: err}
	}
}
