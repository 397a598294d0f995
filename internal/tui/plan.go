package tui

import (
	"fmt"

	"plancheck/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PlanModel is the planned-workout list screen model
type PlanModel struct {
	queryService *service.QueryService
	workouts     []service.WorkoutWithStatus
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewPlanModel creates a new plan list model
func NewPlanModel(qs *service.QueryService) PlanModel {
	return PlanModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the plan screen
func (m PlanModel) Init() tea.Cmd {
	return m.loadPage
}

type planLoadedMsg struct {
	workouts []service.WorkoutWithStatus
	total    int
	err      error
}

func (m PlanModel) loadPage() tea.Msg {
	workouts, err := m.queryService.GetPlanList(m.pageSize, m.offset)
	if err != nil {
		return planLoadedMsg{err: err}
	}

	total, err := m.queryService.GetTotalWorkoutCount()
	if err != nil {
		return planLoadedMsg{err: err}
	}

	return planLoadedMsg{workouts: workouts, total: total}
}

// Update handles messages
func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.workouts = msg.workouts
		m.total = msg.total
		if m.cursor >= len(m.workouts) && len(m.workouts) > 0 {
			m.cursor = len(m.workouts) - 1
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.workouts)-1 {
				m.cursor++
			} else if m.offset+len(m.workouts) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.workouts) > 0 && m.cursor < len(m.workouts) {
				workoutID := m.workouts[m.cursor].Workout.ID
				return m, func() tea.Msg {
					return OpenWorkoutDetailMsg{WorkoutID: workoutID}
				}
			}
		}
	}
	return m, nil
}

// View renders the plan list
func (m PlanModel) View() string {
	if m.loading {
		return "\n  Loading plan..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.workouts) == 0 {
		return "\n  No training plan imported. Run with -import <plan.json> to load one."
	}

	var sections []string

	// Title with pagination info
	startNum := m.offset + 1
	endNum := m.offset + len(m.workouts)
	title := cardTitleStyle.Render(fmt.Sprintf("Planned Workouts (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	// Header
	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-26s  %6s  %-8s  %-9s  %5s",
		"Date", "Workout", "Target", "Status", "Linked", "Score"))
	sections = append(sections, header)

	// Rows
	for i, w := range m.workouts {
		target := "-"
		if w.Workout.TargetDurationMin != nil {
			target = fmt.Sprintf("%dm", *w.Workout.TargetDurationMin)
		}

		status := "planned"
		if w.Activity != nil {
			status = "done"
		}

		linked := "-"
		if w.Workout.MatchedActivityID != nil {
			if w.Workout.ManualMatch {
				linked = "manual"
			} else {
				linked = "auto"
			}
		}

		score := "    -"
		if w.Compliance != nil {
			score = "  " + RenderScore(w.Compliance.Score)
		}

		// Cursor indicator
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-26s  %6s  %-8s  %-9s  %s",
			cursor,
			w.Workout.Day.Format("Jan 02"),
			truncateName(w.Workout.Title, 26),
			target,
			status,
			linked,
			score,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	// Help
	help := statusStyle.Render("\n  enter: view details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
