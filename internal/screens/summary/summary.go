package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/practice"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
	"github.com/repeatio/examweb/internal/ui/theme"
)

// SummaryScreen displays the totals of a completed practice run.
type SummaryScreen struct {
	summary practice.Summary
	again   func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. again builds a fresh run over the same
// questions; it may be nil.
func New(summary practice.Summary, again func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{summary: summary, again: again}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Practice Complete"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
	}
	if s.again != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Practice again"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "r":
			if s.again == nil {
				return s, nil
			}
			next := s.again()
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Practice complete!"))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim), sum.Name))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Wrong: %d",
		sum.Total, sum.Correct, sum.Wrong)
	b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(accuracyColor(sum.Accuracy)).Bold(true),
		fmt.Sprintf("Accuracy %d%%", sum.Accuracy)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("", float64(sum.Accuracy)/100, false, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")

	if skipped := sum.Total - sum.Answered; skipped > 0 {
		b.WriteString("\n")
		b.WriteString(layout.Center(width, theme.Hint, fmt.Sprintf("%d question(s) left unanswered", skipped)))
	}
	return b.String()
}

func accuracyColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 60:
		return theme.Accent
	default:
		return theme.Error
	}
}
