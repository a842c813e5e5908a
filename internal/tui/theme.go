package tui

import "github.com/charmbracelet/lipgloss"

// Theme 定义 TUI 主题色彩和样式
// Theme defines TUI colors and styles
type Theme struct {
	// 基础色 / Base colors
	Primary lipgloss.Color
	Danger  lipgloss.Color
	Success lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color
	Border  lipgloss.Color

	// 预构建样式 / Pre-built styles
	TitleStyle     lipgloss.Style
	ActiveRowStyle lipgloss.Style
	RowStyle       lipgloss.Style
	EmptySlotStyle lipgloss.Style
	StatusBarStyle lipgloss.Style
	ErrorStyle     lipgloss.Style
	MutedStyle     lipgloss.Style
	PromptStyle    lipgloss.Style
}

// DarkTheme 暗色主题（默认）
// DarkTheme is the default dark theme
func DarkTheme() Theme {
	t := Theme{
		Primary: lipgloss.Color("#7C3AED"),
		Danger:  lipgloss.Color("#EF4444"),
		Success: lipgloss.Color("#10B981"),
		Muted:   lipgloss.Color("#6B7280"),
		Text:    lipgloss.Color("#E5E7EB"),
		TextDim: lipgloss.Color("#9CA3AF"),
		Border:  lipgloss.Color("#374151"),
	}

	t.TitleStyle = lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.ActiveRowStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Primary).
		Bold(true).
		Padding(0, 1)

	t.RowStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Padding(0, 1)

	t.EmptySlotStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Italic(true).
		Padding(0, 1)

	t.StatusBarStyle = lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(lipgloss.Color("#111827"))

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(t.Danger).
		Bold(true)

	t.MutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	t.PromptStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border)

	return t
}
