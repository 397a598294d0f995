package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	// Navigation section
	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Plan list"},
		{"3 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	// Dashboard keys
	dashSection := m.renderSection("Dashboard", []keyHelp{
		{"r", "Refresh data"},
	})
	sections = append(sections, dashSection)

	// Plan list keys
	planSection := m.renderSection("Plan List", []keyHelp{
		{"enter", "Open workout detail"},
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
		{"r", "Refresh list"},
	})
	sections = append(sections, planSection)

	// Sync keys
	syncSection := m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	})
	sections = append(sections, syncSection)

	// Scoring explanation
	scoringSection := m.renderScoringHelp()
	sections = append(sections, scoringSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderScoringHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Scores Explained"))
	lines = append(lines, "")

	items := []struct {
		name string
		desc string
	}{
		{"Overall", "Weighted blend of the components below, 0-100."},
		{"Duration", "Recorded time vs. the planned duration. Within 20% scores full marks."},
		{"Heart rate", "Average HR vs. the planned zone or bpm range. Adjacent zone scores partial credit."},
		{"Intervals", "For sessions like \"4x8min @ z4\": detected hard efforts paired with prescribed repeats."},
		{"Missing session", "A planned workout with no recorded activity scores 0."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	for _, item := range items {
		lines = append(lines, "  "+helpKeyStyle.Render(item.name))
		lines = append(lines, "  "+mutedStyle.Render(item.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
