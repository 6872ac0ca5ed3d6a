package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
	"github.com/repeatio/examweb/internal/ui/theme"
)

// renderQuestionView renders the current question, its choices and, once
// answered, the feedback block.
func (s *PracticeScreen) renderQuestionView(width int) string {
	item := s.sess.Current()
	q := item.Question
	stats := s.sess.Stats()
	cw := components.ContentWidth(width)

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + quiz.TypeLabel(q.Type))
	if s.source.WrongQuestions && item.BankName != "" {
		infoLeft += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + item.BankName)
	}

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d  %s %d",
			s.sess.Index()+1, s.sess.Len(),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			stats.Correct,
			lipgloss.NewStyle().Foreground(theme.Error).Render("✗"),
			stats.Wrong,
		))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	if s.sess.Resumed() && s.sess.Stats().Total() > 0 && s.feedback == nil {
		b.WriteString(layout.Center(width, theme.Hint, "Resumed where you left off"))
		b.WriteString("\n")
	}
	if s.warn != "" {
		b.WriteString(layout.Center(width, theme.Warning, "⚠ "+s.warn))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	question := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(q.Content) +
		"\n\n" + s.picker.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(question, cw)))
	b.WriteString("\n")

	if s.feedback != nil {
		b.WriteString(s.renderFeedback(width, cw))
	} else {
		hint := "Select with ↑↓ and Enter, or press A-D"
		if q.Type == quiz.TypeJudge {
			hint = "Select with ↑↓ and Enter, or press 1/2"
		}
		b.WriteString(layout.Center(width, theme.Hint, hint))
	}
	return b.String()
}

func (s *PracticeScreen) renderFeedback(width, cw int) string {
	fb := s.feedback
	var b strings.Builder

	if fb.Correct {
		b.WriteString(layout.Center(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(layout.Center(width, theme.Incorrect, "Not quite"))
		b.WriteString("\n")
		b.WriteString(layout.Center(width, theme.Body, "Answer: "+fb.CorrectAnswer))
	}
	b.WriteString("\n")

	if fb.Explanation != "" {
		explain := lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw - 4).Render(fb.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, explain))
		b.WriteString("\n")
	}

	next := "Press Enter for the next question"
	if s.sess.IsLast() {
		next = "Press Enter to finish"
	}
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Hint, next))
	return b.String()
}

func renderConfirm(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderLoading(width int) string {
	return layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading questions...")
}

func renderError(width int, msg string) string {
	return layout.Center(width, lipgloss.NewStyle().Foreground(theme.Error), "\n\nError: "+msg)
}
