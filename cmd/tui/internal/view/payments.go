package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	"github.com/MrJamesThe3rd/clinicpay/internal/money"
)

type paymentsState int

const (
	paymentsStateBrowse paymentsState = iota
	paymentsStateRefund
)

var paymentDateLabels = []string{"This Month", "Last Month", "All Time"}

// PaymentsModel browses the ledger and issues refunds.
type PaymentsModel struct {
	CommonModel
	ledger  *ledger.Service
	billing *billing.Service
	scope   clinic.Scope
	loc     *time.Location

	state    paymentsState
	table    table.Model
	payments []*ledger.Payment
	form     *huh.Form

	methodFilterIdx int
	dateFilterIdx   int

	filter  ledger.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formAmount string
	formReason string
}

func NewPaymentsModel(ledgerSvc *ledger.Service, billingSvc *billing.Service, scope clinic.Scope, loc *time.Location) PaymentsModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Client", Width: 24},
		{Title: "Amount", Width: 10},
		{Title: "Method", Width: 14},
		{Title: "Status", Width: 9},
		{Title: "Sessions", Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := PaymentsModel{
		ledger:  ledgerSvc,
		billing: billingSvc,
		scope:   scope,
		loc:     loc,
		table:   t,
		loading: true,
	}
	m.applyFilter()

	return m
}

func (m PaymentsModel) Title() string { return "Payments" }
func (m PaymentsModel) ShortHelp() string {
	if m.state == paymentsStateRefund {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | f: refund | m: method filter | d: date filter | r: refresh"
}

func (m PaymentsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PaymentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPaymentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.payments = msg.payments
		m.refreshTable()

		return m, nil

	case refundDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Refund failed: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Refunded %s", FormatAmount(msg.refund.Amount))
		}

		m.state = paymentsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == paymentsStateRefund {
		return m.updateRefund(msg)
	}

	return m.updateBrowse(msg)
}

func (m PaymentsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			return m.enterRefundMode()
		case "m":
			m.methodFilterIdx = (m.methodFilterIdx + 1) % (len(ledger.Methods) + 1)
			m.applyFilter()

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(paymentDateLabels)
			m.applyFilter()

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PaymentsModel) selected() *ledger.Payment {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.payments) {
		return nil
	}

	return m.payments[idx]
}

func (m PaymentsModel) enterRefundMode() (tea.Model, tea.Cmd) {
	p := m.selected()
	if p == nil {
		return m, nil
	}

	m.formAmount = money.Format(p.Amount)
	m.formReason = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Refund amount").
				Value(&m.formAmount).
				Validate(func(s string) error {
					cents, err := money.Parse(s)
					if err != nil {
						return err
					}

					if cents <= 0 || cents > p.Amount {
						return fmt.Errorf("must be between 0.01 and %s", FormatAmount(p.Amount))
					}

					return nil
				}),

			huh.NewText().
				Key("reason").
				Title("Reason").
				Value(&m.formReason).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a reason is required")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = paymentsStateRefund
	m.table.Blur()

	return m, m.form.Init()
}

func (m PaymentsModel) updateRefund(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = paymentsStateBrowse
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

	return m, m.refundCmd()
}

func (m PaymentsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	methodLabel := "All"
	if m.filter.Method != nil {
		methodLabel = string(*m.filter.Method)
	}

	header := fmt.Sprintf(
		"Filter: [m] Method: %s | [d] Date: %s",
		activeStyle(methodLabel),
		activeStyle(paymentDateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == paymentsStateRefund && m.form != nil {
		client := ""
		if p := m.selected(); p != nil {
			client = fmt.Sprintf("%s, %s paid on %s", p.ClientName, FormatAmount(p.Amount), FormatDate(p.CreatedAt))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Refund Payment\n\n%s\n\n%s", client, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PaymentsModel) applyFilter() {
	m.filter.Method = nil
	if m.methodFilterIdx > 0 {
		m.filter.Method = new(ledger.Methods[m.methodFilterIdx-1])
	}

	m.filter.StartDate, m.filter.EndDate = nil, nil

	var tf Timeframe

	switch m.dateFilterIdx {
	case 0:
		tf = TimeframeThisMonth
	case 1:
		tf = TimeframeLastMonth
	default:
		return
	}

	start, end := wholeDays(tf.Range(time.Now().In(m.loc)))
	m.filter.StartDate = &start
	m.filter.EndDate = &end
}

func (m *PaymentsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.payments))
	for _, p := range m.payments {
		sessions := ""
		if p.IsPackage {
			sessions = fmt.Sprintf("%d/%d", p.SessionsPaid, p.PackageSessions)
		}

		rows = append(rows, table.Row{
			FormatDate(p.CreatedAt.In(m.loc)),
			p.ClientName,
			FormatAmount(p.Amount),
			string(p.Method),
			string(p.PaymentStatus),
			sessions,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadPaymentsMsg struct {
	payments []*ledger.Payment
	err      error
}

func (m PaymentsModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		payments, err := m.ledger.List(ctx, m.scope, filter)

		return loadPaymentsMsg{payments: payments, err: err}
	}
}

type refundDoneMsg struct {
	refund *ledger.Refund
	err    error
}

func (m PaymentsModel) refundCmd() tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	// The model is copied on every update, read what the form holds.
	amount, parseErr := money.Parse(m.form.GetString("amount"))
	reason := m.form.GetString("reason")

	return func() tea.Msg {
		if parseErr != nil {
			return refundDoneMsg{err: parseErr}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.billing.Refund(ctx, m.scope, billing.RefundParams{
			PaymentID: p.ID,
			Amount:    amount,
			Reason:    reason,
		})
		if err != nil {
			return refundDoneMsg{err: err}
		}

		return refundDoneMsg{refund: res.Refund}
	}
}
