package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary = lipgloss.Color("12")  // bright blue
	colorHigh    = lipgloss.Color("9")   // bright red
	colorBar     = lipgloss.Color("10")  // bright green
	colorDim     = lipgloss.Color("240") // gray
	colorBorder  = lipgloss.Color("238") // dark gray

	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleBar = lipgloss.NewStyle().
			Foreground(colorBar)

	styleBarHigh = lipgloss.NewStyle().
			Foreground(colorHigh)

	styleAxis = lipgloss.NewStyle().
			Foreground(colorDim)

	styleFlight = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleTransit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")) // bright yellow

	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorHigh)
)
