package tui

import (
	"fmt"
	"strings"

	"plancheck/internal/plan"
	"plancheck/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DetailModel is the workout detail screen model
type DetailModel struct {
	queryService *service.QueryService
	units        Units
	workoutID    int64
	detail       *service.WorkoutDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewDetailModel creates a new workout detail model
func NewDetailModel(qs *service.QueryService, units Units, workoutID int64, width, height int) DetailModel {
	m := DetailModel{
		queryService: qs,
		units:        units,
		workoutID:    workoutID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the workout detail screen
func (m DetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type workoutDetailLoadedMsg struct {
	detail *service.WorkoutDetail
	err    error
}

func (m DetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetWorkoutDetail(m.workoutID)
	if err != nil {
		return workoutDetailLoadedMsg{err: err}
	}
	return workoutDetailLoadedMsg{detail: detail}
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workoutDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the workout detail screen
func (m DetailModel) View() string {
	if m.loading {
		return "\n  Loading workout details..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	// Footer with help
	footer := statusStyle.Render("  esc: back to plan  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m DetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderActivity())

	if m.detail.Result != nil {
		sections = append(sections, m.renderScore())
		if m.detail.Result.Duration != nil {
			sections = append(sections, m.renderDuration())
		}
		if m.detail.Result.HeartRate != nil {
			sections = append(sections, m.renderHeartRate())
		}
		if m.detail.Result.Intervals != nil {
			sections = append(sections, m.renderIntervals())
		}
	}

	if m.detail.Zones.Valid() {
		sections = append(sections, m.renderZones())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DetailModel) renderHeader() string {
	w := m.detail.Workout
	title := cardTitleStyle.Render(w.Title)

	date := w.Day.Format("Monday, January 2, 2006")
	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date)

	var parts []string
	if w.TargetDurationMin != nil {
		parts = append(parts, fmt.Sprintf("%d min planned", *w.TargetDurationMin))
	}
	if w.TargetIntensity != nil && *w.TargetIntensity != "" {
		parts = append(parts, *w.TargetIntensity)
	}
	if m.detail.Structure != nil {
		parts = append(parts, fmt.Sprintf("%d x %s repeats",
			m.detail.Structure.Repeats, formatDurationShort(m.detail.Structure.DurationSec)))
	}

	lines := []string{"", title, subtitle}
	if len(parts) > 0 {
		target := strings.Join(parts, "  •  ")
		lines = append(lines, lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(target))
	}
	if w.Notes != nil && *w.Notes != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render(*w.Notes))
	}
	lines = append(lines, "")

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m DetailModel) renderActivity() string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Recorded Activity"))

	a := m.detail.Activity
	if a == nil {
		lines = append(lines, "  No matching activity recorded")
		lines = append(lines, "")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("  %s (%s)", a.Name, a.Type))
	lines = append(lines, fmt.Sprintf("  %s", a.StartDateLocal.Format("Monday, January 2 at 3:04 PM")))
	lines = append(lines, fmt.Sprintf("  Duration:   %s", formatDurationShort(a.MovingTime)))
	if a.Distance > 0 {
		lines = append(lines, fmt.Sprintf("  Distance:   %s (%s)",
			m.units.FormatDistance(a.Distance),
			m.units.FormatPaceWithUnit(a.MovingTime, a.Distance)))
	}
	if a.AverageHeartrate != nil {
		lines = append(lines, fmt.Sprintf("  Avg HR:     %.0f bpm", *a.AverageHeartrate))
	}
	if a.MaxHeartrate != nil {
		lines = append(lines, fmt.Sprintf("  Max HR:     %.0f bpm", *a.MaxHeartrate))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DetailModel) renderScore() string {
	res := m.detail.Result

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Compliance"))
	lines = append(lines, fmt.Sprintf("  Overall:  %s / 100   %s",
		RenderScoreValue(res.Score),
		RenderProgressBar(float64(res.Score)/100, 24)))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DetailModel) renderDuration() string {
	d := m.detail.Result.Duration

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Duration"))
	lines = append(lines, fmt.Sprintf("  Planned:  %d min", d.TargetMin))
	lines = append(lines, fmt.Sprintf("  Actual:   %.0f min", d.ActualMin))
	lines = append(lines, fmt.Sprintf("  Score:    %s", RenderScoreValue(d.Score)))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DetailModel) renderHeartRate() string {
	hr := m.detail.Result.HeartRate

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Heart Rate"))
	lines = append(lines, fmt.Sprintf("  Average:  %.0f bpm", hr.AvgHeartrate))

	switch {
	case hr.RangeLow != nil && hr.RangeHigh != nil:
		lines = append(lines, fmt.Sprintf("  Target:   %d-%d bpm", *hr.RangeLow, *hr.RangeHigh))
	case hr.TargetZone != nil:
		lines = append(lines, fmt.Sprintf("  Target:   zone %d (was zone %d)", *hr.TargetZone, hr.ActualZone))
		lines = append(lines, fmt.Sprintf("  Verdict:  %s", describeDirection(hr.Direction)))
	}

	lines = append(lines, fmt.Sprintf("  Score:    %s", RenderScoreValue(hr.Score)))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func describeDirection(direction string) string {
	switch direction {
	case plan.DirectionTooLow:
		return "below target intensity"
	case plan.DirectionTooHigh:
		return "above target intensity"
	default:
		return "on target"
	}
}

func (m DetailModel) renderIntervals() string {
	iv := m.detail.Result.Intervals

	var lines []string
	title := fmt.Sprintf("Intervals (%d x %s @ zone %d)",
		iv.ExpectedRepeats, formatDurationShort(iv.RepeatDurationSec), iv.TargetZone)
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	header := fmt.Sprintf("  %-4s  %-11s  %9s  %7s  %5s  %5s",
		"#", "Status", "Duration", "Avg HR", "Zone", "Score")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, r := range iv.Repeats {
		duration := "-"
		avgHR := "-"
		zone := "-"
		if r.Status != plan.RepeatMissing {
			duration = formatDurationShort(r.DurationSec)
			avgHR = fmt.Sprintf("%.0f", r.AvgHeartrate)
			zone = fmt.Sprintf("Z%d", r.Zone)
		}

		row := fmt.Sprintf("  %-4d  %-11s  %9s  %7s  %5s  %s",
			r.Index, strings.ReplaceAll(r.Status, "_", " "), duration, avgHR, zone, RenderScore(r.Score))

		if r.Status == plan.RepeatCompleted {
			lines = append(lines, lipgloss.NewStyle().Foreground(secondaryColor).Render(row))
		} else {
			lines = append(lines, row)
		}
	}

	lines = append(lines, fmt.Sprintf("  Score:    %s", RenderScoreValue(iv.Score)))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m DetailModel) renderZones() string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Heart Rate Zones"))

	zoneColors := []lipgloss.Color{
		lipgloss.Color("#10B981"), // Zone 1 - Green (recovery)
		lipgloss.Color("#3B82F6"), // Zone 2 - Blue (aerobic)
		lipgloss.Color("#F59E0B"), // Zone 3 - Amber (tempo)
		lipgloss.Color("#EF4444"), // Zone 4 - Red (threshold)
		lipgloss.Color("#9333EA"), // Zone 5 - Purple (VO2max)
	}

	for i := 1; i <= plan.NumZones; i++ {
		z, ok := m.detail.Zones.Range(i)
		if !ok {
			continue
		}
		label := fmt.Sprintf("  Z%d  %3d-%3d bpm", i, z.Min, z.Max)
		lines = append(lines, lipgloss.NewStyle().Foreground(zoneColors[(i-1)%len(zoneColors)]).Render(label))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
