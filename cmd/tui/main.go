package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/clinicpay/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/clinicpay/internal/appointment"
	appointmentStore "github.com/MrJamesThe3rd/clinicpay/internal/appointment/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/billing"
	billingStore "github.com/MrJamesThe3rd/clinicpay/internal/billing/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/closure"
	closureStore "github.com/MrJamesThe3rd/clinicpay/internal/closure/store"
	"github.com/MrJamesThe3rd/clinicpay/internal/config"
	"github.com/MrJamesThe3rd/clinicpay/internal/database"
	"github.com/MrJamesThe3rd/clinicpay/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/clinicpay/internal/ledger/store"
	redisclient "github.com/MrJamesThe3rd/clinicpay/internal/redis"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

type model struct {
	appointmentService *appointment.Service
	ledgerService      *ledger.Service
	billingService     *billing.Service
	revenueService     *revenue.Service
	closureService     *closure.Service
	scope              clinic.Scope
	loc                *time.Location

	currentView View

	collectView  view.CollectModel
	paymentsView view.PaymentsModel
	closureView  view.ClosureModel
	revenueView  view.RevenueModel
}

type View int

const (
	ViewMenu     View = 0
	ViewCollect  View = 1
	ViewPayments View = 2
	ViewClosure  View = 3
	ViewRevenue  View = 4
)

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config", err)
	}

	scope, err := clinic.ParseScope(cfg.App.ClinicID)
	if err != nil {
		fail("CLINIC_ID must be set to the clinic this terminal works for", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		fail("failed to load time zone", err)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		fail("failed to connect to database", err)
	}

	var (
		locker       = redisclient.NewNoopLocker()
		expectations closure.ExpectationStore = closure.NewMemoryExpectations(cfg.Redis.ExpectationTTL)
	)

	if cfg.Redis.Enabled {
		rdb, err := redisclient.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
		if err != nil {
			fail("failed to connect to redis", err)
		}

		locker = redisclient.NewAppointmentLocker(rdb, cfg.Redis.LockTTL)
		expectations = redisclient.NewExpectations(rdb, cfg.Redis.ExpectationTTL)
	}

	appointmentSvc := appointment.NewService(appointmentStore.New(db))
	ledgerSvc := ledger.NewService(ledgerStore.New(db))
	billingSvc := billing.NewService(billingStore.New(db), locker, billing.Options{
		MaxRetries:   cfg.Billing.MaxRetries,
		RetryBackoff: cfg.Billing.RetryBackoff,
		RefundPolicy: billing.RefundPolicy(cfg.Billing.RefundPolicy),
	})
	revenueSvc := revenue.NewService(ledgerSvc, revenue.Sharing{ClinicPercentage: cfg.Revenue.ClinicPercentage})
	closureSvc := closure.NewService(closureStore.New(db), expectations, appointmentSvc, closure.Options{
		Location:     loc,
		UniquePerDay: cfg.Closure.UniquePerDay,
	})

	return model{
		appointmentService: appointmentSvc,
		ledgerService:      ledgerSvc,
		billingService:     billingSvc,
		revenueService:     revenueSvc,
		closureService:     closureSvc,
		scope:              scope,
		loc:                loc,
		currentView:        ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCollect
				m.collectView = view.NewCollectModel(m.appointmentService, m.billingService, m.scope, m.loc)

				return m, m.collectView.Init()
			case "2":
				m.currentView = ViewPayments
				m.paymentsView = view.NewPaymentsModel(m.ledgerService, m.billingService, m.scope, m.loc)

				return m, m.paymentsView.Init()
			case "3":
				m.currentView = ViewClosure
				m.closureView = view.NewClosureModel(m.closureService, m.scope, m.loc)

				return m, m.closureView.Init()
			case "4":
				m.currentView = ViewRevenue
				m.revenueView = view.NewRevenueModel(m.revenueService, m.scope, m.loc)

				return m, m.revenueView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewCollect:
		var newModel tea.Model
		newModel, cmd = m.collectView.Update(msg)
		m.collectView = newModel.(view.CollectModel)
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentsModel)
	case ViewClosure:
		var newModel tea.Model
		newModel, cmd = m.closureView.Update(msg)
		m.closureView = newModel.(view.ClosureModel)
	case ViewRevenue:
		var newModel tea.Model
		newModel, cmd = m.revenueView.Update(msg)
		m.revenueView = newModel.(view.RevenueModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"ClinicPay\n\n" +
				"1. Collect Payment\n" +
				"2. Payments & Refunds\n" +
				"3. Close Day\n" +
				"4. Revenue\n\n" +
				"q. Quit",
		)
	case ViewCollect:
		return screen(m.collectView)
	case ViewPayments:
		return screen(m.paymentsView)
	case ViewClosure:
		return screen(m.closureView)
	case ViewRevenue:
		return screen(m.revenueView)
	}

	return "Unknown View"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).PaddingLeft(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(1)
)

func screen(v view.View) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(v.Title()),
		v.View(),
		helpStyle.Render(v.ShortHelp()),
	)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
