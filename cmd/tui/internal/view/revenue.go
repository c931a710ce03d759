package view

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/clinicpay/internal/clinic"
	"github.com/MrJamesThe3rd/clinicpay/internal/revenue"
)

// RevenueModel shows the revenue summary for a chosen timeframe.
type RevenueModel struct {
	CommonModel
	svc   *revenue.Service
	scope clinic.Scope

	picker  TimeframePicker
	picking bool
	loading bool

	start, end time.Time
	summary    *revenue.Summary
	err        error
}

func NewRevenueModel(svc *revenue.Service, scope clinic.Scope, loc *time.Location) RevenueModel {
	return RevenueModel{
		svc:     svc,
		scope:   scope,
		picker:  NewTimeframePicker(TimeframeThisMonth, loc),
		picking: true,
	}
}

func (m RevenueModel) Title() string { return "Revenue" }
func (m RevenueModel) ShortHelp() string {
	if m.picking {
		return "Enter: select | Esc: back"
	}

	return "Esc: back | t: change timeframe"
}

func (m RevenueModel) Init() tea.Cmd {
	return nil
}

func (m RevenueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.picking = false
		m.loading = true
		m.start, m.end = msg.Start, msg.End

		return m, m.loadCmd()

	case summaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if m.picking {
			if msg.Type == tea.KeyEsc && m.picker.IsSelecting() {
				return m, Back
			}

			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)

			return m, cmd
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "t":
			m.picking = true
		}
	}

	return m, nil
}

func (m RevenueModel) View() string {
	if m.picking {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading revenue...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	s := m.summary

	var b strings.Builder

	fmt.Fprintf(&b, "Revenue %s to %s (%d payments)\n\n", FormatDate(m.start), FormatDate(m.end), s.Count)
	fmt.Fprintf(&b, "Total:           %s\n", activeStyle(FormatAmount(s.Total)))
	fmt.Fprintf(&b, "Refunded:        %s\n", FormatAmount(s.Refunded))
	fmt.Fprintf(&b, "Net:             %s\n\n", FormatAmount(s.Net))
	fmt.Fprintf(&b, "Clinic share:    %s\n", FormatAmount(s.ClinicShare))
	fmt.Fprintf(&b, "Physician share: %s\n", FormatAmount(s.PhysicianShare))

	b.WriteString("\nBy method:\n")

	for _, method := range slices.Sorted(maps.Keys(s.ByMethod)) {
		fmt.Fprintf(&b, "  %-15s %10s\n", method, FormatAmount(s.ByMethod[method]))
	}

	b.WriteString("\nBy client:\n")

	clients := slices.Collect(maps.Keys(s.ByClient))
	slices.SortFunc(clients, func(a, c string) int {
		return cmp.Or(cmp.Compare(s.ByClient[c], s.ByClient[a]), strings.Compare(a, c))
	})

	for _, client := range clients {
		fmt.Fprintf(&b, "  %-24s %10s\n", client, FormatAmount(s.ByClient[client]))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

// Messages

type summaryMsg struct {
	summary *revenue.Summary
	err     error
}

func (m RevenueModel) loadCmd() tea.Cmd {
	start, end := m.start, m.end

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.svc.Summary(ctx, m.scope, start, end)

		return summaryMsg{summary: s, err: err}
	}
}
