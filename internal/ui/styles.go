package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // Cyan: headers
	colorAccent     = lipgloss.Color("#FFD700") // Gold: failure titles
	colorSuccess    = lipgloss.Color("#00E676") // Green: passed
	colorDanger     = lipgloss.Color("#FF5252") // Red: failed
	colorMuted      = lipgloss.Color("#636363") // Gray: timings, notices
	colorMutedLight = lipgloss.Color("#8C8C8C") // Lighter gray: details
)

// Status icons.
const (
	iconPass  = "✓"
	iconFail  = "✗"
	iconWatch = "◎"
)

var (
	styleHeader  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	stylePass    = lipgloss.NewStyle().Foreground(colorSuccess)
	styleFail    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleTitle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleDetail  = lipgloss.NewStyle().Foreground(colorMutedLight)
	styleDim     = lipgloss.NewStyle().Foreground(colorMuted)
	styleError   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	styleDiffAdd = lipgloss.NewStyle().Foreground(colorSuccess)
	styleDiffDel = lipgloss.NewStyle().Foreground(colorDanger)
	styleDiffHdr = lipgloss.NewStyle().Foreground(colorPrimary)
)
