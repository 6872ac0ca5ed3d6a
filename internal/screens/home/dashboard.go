package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
	"github.com/repeatio/examweb/internal/ui/theme"
)

func renderTitle(width int) string {
	return layout.Center(width, theme.Title, "ExamWeb") + "\n" +
		layout.Center(width, theme.Subtitle, "practice your question banks")
}

// renderStatsBar renders the bank, question and wrong question totals.
func renderStatsBar(banks, questions, wrong, width, cw int) string {
	num := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	wrongNum := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := num.Render(fmt.Sprint(banks)) + dim.Render(" banks") + "     " +
		num.Render(fmt.Sprint(questions)) + dim.Render(" questions") + "     " +
		wrongNum.Render(fmt.Sprint(wrong)) + dim.Render(" wrong")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Align(lipgloss.Center).
		Render(line)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

func renderMenu(menu string, width, cw int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(menu, cw))
}

func renderEmpty(width int) string {
	return layout.Center(width, theme.Hint, "No question banks yet. Import one to get started.")
}

func renderNotice(width int, msg string, warn bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Secondary)
	if warn {
		style = theme.Warning
	}
	return layout.Center(width, style, msg)
}

func renderConfirm(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderLoading(width int) string {
	return layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading...")
}
