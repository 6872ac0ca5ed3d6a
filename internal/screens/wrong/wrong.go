package wrong

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	prac "github.com/repeatio/examweb/internal/practice"
	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	practicescreen "github.com/repeatio/examweb/internal/screens/practice"
	"github.com/repeatio/examweb/internal/store"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
	"github.com/repeatio/examweb/internal/ui/theme"
)

// maxListed caps how many questions are listed under the selected bank.
const maxListed = 8

type loadedMsg struct {
	Wrong []store.WrongQuestion
	Err   error
}

type clearConfirmedMsg struct {
	BankID string // empty clears every bank
}

type clearCancelledMsg struct{}

type clearedMsg struct {
	Err error
}

// group is one bank's slice of the wrong question set.
type group struct {
	BankID   string
	BankName string
	Items    []store.WrongQuestion
}

// WrongScreen shows the wrong question set grouped by bank.
type WrongScreen struct {
	deps     screen.Deps
	all      []store.WrongQuestion
	groups   []group
	selected int // 0 is the all-banks row, i > 0 is groups[i-1]
	confirm  *components.Confirm
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*WrongScreen)(nil)
var _ screen.KeyHintProvider = (*WrongScreen)(nil)

// New creates a new WrongScreen.
func New(deps screen.Deps) *WrongScreen {
	return &WrongScreen{deps: deps}
}

func (s *WrongScreen) Init() tea.Cmd {
	return s.load()
}

func (s *WrongScreen) load() tea.Cmd {
	repo := s.deps.Wrong
	return func() tea.Msg {
		wqs, err := repo.All(context.Background())
		return loadedMsg{Wrong: wqs, Err: err}
	}
}

func (s *WrongScreen) Title() string {
	return "Wrong Questions"
}

func (s *WrongScreen) KeyHints() []layout.KeyHint {
	if s.confirm != nil {
		return []layout.KeyHint{
			{Key: "Y", Description: "Clear"},
			{Key: "N", Description: "Cancel"},
		}
	}
	if len(s.all) == 0 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
		{Key: "C", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *WrongScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.all = msg.Wrong
		s.groups = groupByBank(msg.Wrong)
		s.selected = min(s.selected, len(s.groups))
		return s, nil

	case router.RevealedMsg:
		return s, s.load()

	case clearConfirmedMsg:
		s.confirm = nil
		return s, s.clear(msg.BankID)

	case clearCancelledMsg:
		s.confirm = nil
		return s, nil

	case clearedMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn("clear wrong questions failed", "err", msg.Err)
			s.errMsg = msg.Err.Error()
		}
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *WrongScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.confirm != nil {
		c, cmd := s.confirm.Update(msg)
		s.confirm = &c
		return s, cmd
	}

	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.groups) {
			s.selected++
		}
	case "enter":
		return s, s.practice()
	case "c":
		if len(s.all) == 0 {
			return s, nil
		}
		prompt := fmt.Sprintf("Clear all %d wrong questions?", len(s.all))
		bankID := ""
		if g := s.selectedGroup(); g != nil {
			prompt = fmt.Sprintf("Clear %d wrong questions of %q?", len(g.Items), g.BankName)
			bankID = g.BankID
		}
		c := components.NewConfirm(prompt,
			func() tea.Cmd { return func() tea.Msg { return clearConfirmedMsg{BankID: bankID} } },
			func() tea.Cmd { return func() tea.Msg { return clearCancelledMsg{} } },
		)
		s.confirm = &c
	}
	return s, nil
}

// practice pushes a wrong question run for the selected row. Leaving the
// run returns here.
func (s *WrongScreen) practice() tea.Cmd {
	if len(s.all) == 0 {
		return nil
	}
	src := prac.FromWrongQuestions(nil, s.all)
	if g := s.selectedGroup(); g != nil {
		src = prac.FromWrongQuestions(&quiz.QuestionBank{ID: g.BankID, Name: g.BankName}, g.Items)
	}
	next := practicescreen.New(s.deps, src, prac.Options{Mode: quiz.ModeSequential})
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *WrongScreen) clear(bankID string) tea.Cmd {
	repo := s.deps.Wrong
	return func() tea.Msg {
		ctx := context.Background()
		if bankID == "" {
			return clearedMsg{Err: repo.ClearAll(ctx)}
		}
		return clearedMsg{Err: repo.ClearByBank(ctx, bankID)}
	}
}

func (s *WrongScreen) selectedGroup() *group {
	if s.selected < 1 || s.selected > len(s.groups) {
		return nil
	}
	return &s.groups[s.selected-1]
}

// groupByBank splits wqs by bank, keeping the order in which banks first
// appear.
func groupByBank(wqs []store.WrongQuestion) []group {
	var groups []group
	index := make(map[string]int)
	for _, wq := range wqs {
		i, ok := index[wq.BankID]
		if !ok {
			i = len(groups)
			index[wq.BankID] = i
			groups = append(groups, group{BankID: wq.BankID, BankName: wq.BankName})
		}
		groups[i].Items = append(groups[i].Items, wq)
	}
	return groups
}

func (s *WrongScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading wrong questions...")
	}
	if s.confirm != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s.confirm.View())
	}

	var b strings.Builder
	b.WriteString("\n")
	if s.errMsg != "" {
		b.WriteString(layout.Center(width, theme.Warning, "⚠ "+s.errMsg))
		b.WriteString("\n\n")
	}
	if len(s.all) == 0 {
		b.WriteString(layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
			"No wrong questions. Nice work!"))
		return b.String()
	}

	cw := components.ContentWidth(width)
	rows := []string{s.renderRow(0, "All banks", len(s.all))}
	for i, g := range s.groups {
		rows = append(rows, s.renderRow(i+1, g.BankName, len(g.Items)))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(strings.Join(rows, "\n"), cw)))
	b.WriteString("\n")

	if g := s.selectedGroup(); g != nil {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderItems(g.Items, cw)))
	}
	return b.String()
}

func (s *WrongScreen) renderRow(i int, name string, count int) string {
	detail := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d questions", count))
	if i == s.selected {
		return theme.Selected.Render("▸ "+name) + detail
	}
	return theme.Unselected.Render("  "+name) + detail
}

func renderItems(items []store.WrongQuestion, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	count := lipgloss.NewStyle().Foreground(theme.Error).Bold(true)

	var lines []string
	for i, wq := range items {
		if i == maxListed {
			lines = append(lines, dim.Render(fmt.Sprintf("  … and %d more", len(items)-maxListed)))
			break
		}
		content := truncate(wq.Question.Content, cw-24)
		lines = append(lines, fmt.Sprintf("  %s %s  %s",
			count.Render(fmt.Sprintf("×%d", wq.WrongCount)),
			theme.Body.Render(content),
			dim.Render(humanize.Time(wq.LastWrongTime))))
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
