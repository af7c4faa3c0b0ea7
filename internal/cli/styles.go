package cli

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorGreen  = lipgloss.Color("#25A065")
	ColorBlue   = lipgloss.Color("#4285F4")
	ColorRed    = lipgloss.Color("#E05252")
	ColorYellow = lipgloss.Color("#E5C07B")
	ColorGray   = lipgloss.Color("#626262")
	ColorCyan   = lipgloss.Color("#56B6C2")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(ColorGreen)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorGray)
	pointsStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
)

// stateColors maps task and reward states to badge colors.
var stateColors = map[string]lipgloss.Color{
	"Created":    ColorGray,
	"InProgress": ColorBlue,
	"Completed":  ColorGreen,
	"Overdue":    ColorRed,
	"Active":     ColorYellow,
}

func badge(state string) string {
	c, ok := stateColors[state]
	if !ok {
		return state
	}
	return lipgloss.NewStyle().Foreground(c).Render(state)
}
