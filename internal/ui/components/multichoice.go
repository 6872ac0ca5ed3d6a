package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/ui/theme"
)

// MultiChoice is the answer selector for one question. Choice questions
// list their options under labels A-D; judge questions offer the two judge
// literals.
type MultiChoice struct {
	Choices   []string // answer values: option labels or judge literals
	Texts     []string // what is shown for each choice
	Correct   string
	Selected  int
	Submitted bool
	Chosen    string
}

// NewMultiChoice creates a selector for q.
func NewMultiChoice(q quiz.Question) MultiChoice {
	choices := q.Choices()
	texts := make([]string, len(choices))
	for i, c := range choices {
		if q.Type == quiz.TypeChoice {
			texts[i] = fmt.Sprintf("%s)  %s", c, q.Options[i])
		} else {
			texts[i] = c
		}
	}
	return MultiChoice{
		Choices: choices,
		Texts:   texts,
		Correct: q.Answer,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection. Letter keys pick a
// choice label directly; digits pick by position.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		m.submit(m.Selected)
		return m, nil
	}

	if len(key) == 1 {
		if key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Choices) {
				m.submit(i)
			}
			return m, nil
		}
		label := strings.ToUpper(key)
		for i, c := range m.Choices {
			if c == label {
				m.submit(i)
				break
			}
		}
	}
	return m, nil
}

func (m *MultiChoice) submit(i int) {
	if i < 0 || i >= len(m.Choices) {
		return
	}
	m.Selected = i
	m.Submitted = true
	m.Chosen = m.Choices[i]
}

// Reveal marks the selector as already answered with chosen.
func (m *MultiChoice) Reveal(chosen string) {
	m.Submitted = true
	m.Chosen = chosen
	for i, c := range m.Choices {
		if c == chosen {
			m.Selected = i
		}
	}
}

// View renders the choices.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, text := range m.Texts {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := prefix + text

		var style lipgloss.Style
		switch {
		case m.Submitted && m.Choices[i] == strings.TrimSpace(m.Correct):
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.Submitted && m.Choices[i] == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
