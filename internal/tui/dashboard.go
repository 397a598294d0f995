package tui

import (
	"fmt"

	"plancheck/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || !m.data.HasPlan {
		return "\n  No training plan imported yet.\n\n" +
			statusStyle.Render("  Run with -import <plan.json> to load a plan, then press 's' to sync.")
	}

	var sections []string

	// Top row: This Week and Plan side by side
	weekCard := m.renderWeekCard()
	planCard := m.renderPlanCard()
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, weekCard, "  ", planCard)
	sections = append(sections, topRow)

	// Weekly score trend
	if chart := m.renderTrendChart(); chart != "" {
		sections = append(sections, chart)
	}

	// Recent workouts
	sections = append(sections, m.renderRecentWorkouts())

	// Help
	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' for the full plan")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	completion := 0.0
	if m.data.WeekPlanned > 0 {
		completion = float64(m.data.WeekCompleted) / float64(m.data.WeekPlanned)
	}

	avgScore := "-"
	if m.data.WeekAvgScore > 0 {
		avgScore = fmt.Sprintf("%.0f", m.data.WeekAvgScore)
	}

	lines := []string{
		RenderMetric("Planned", fmt.Sprintf("%d", m.data.WeekPlanned)),
		RenderMetric("Completed", fmt.Sprintf("%d", m.data.WeekCompleted)),
		RenderMetric("Avg score", avgScore),
		"",
		RenderProgressBar(completion, 24),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(36).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderPlanCard() string {
	title := cardTitleStyle.Render("Plan")

	lines := []string{
		RenderMetric("First workout", m.data.PlanStart.Format("Jan 02, 2006")),
		RenderMetric("Last workout", m.data.PlanEnd.Format("Jan 02, 2006")),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(36).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// renderTrendChart plots the weekly average scores, skipping weeks with no
// scoreable workouts. Needs at least three scored weeks to be worth drawing.
func (m DashboardModel) renderTrendChart() string {
	var scored []float64
	for _, s := range m.data.WeeklyScores {
		if s >= 0 {
			scored = append(scored, s)
		}
	}
	if len(scored) < 3 {
		return ""
	}

	title := cardTitleStyle.Render("Weekly Compliance - Recent Trend")

	graph := asciigraph.Plot(scored,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentWorkouts() string {
	title := cardTitleStyle.Render("Recent Workouts")

	if len(m.data.RecentWorkouts) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "Nothing scheduled yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %-20s  %5s",
		"Date", "Workout", "Activity", "Score"))

	var rows []string
	rows = append(rows, header)

	for i, w := range m.data.RecentWorkouts {
		if i >= 5 {
			break
		}

		activity := "-"
		if w.Activity != nil {
			activity = truncateName(w.Activity.Name, 20)
		}

		score := "    -"
		if w.Compliance != nil {
			score = "  " + RenderScore(w.Compliance.Score)
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %-20s  %s",
			w.Workout.Day.Format("Jan 02"),
			truncateName(w.Workout.Title, 24),
			activity,
			score,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatDurationShort(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
