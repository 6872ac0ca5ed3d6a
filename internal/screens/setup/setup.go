package setup

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

type loadedMsg struct {
	Progress *store.PracticeProgress
	Wrong    []store.WrongQuestion
	Err      error
}

// SetupScreen lets the learner choose how to practice one bank.
type SetupScreen struct {
	deps     screen.Deps
	bank     *quiz.QuestionBank
	progress *store.PracticeProgress
	wrong    []store.WrongQuestion
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a SetupScreen for bank.
func New(deps screen.Deps, bank *quiz.QuestionBank) *SetupScreen {
	return &SetupScreen{deps: deps, bank: bank}
}

func (s *SetupScreen) Init() tea.Cmd {
	deps, bankID := s.deps, s.bank.ID
	return func() tea.Msg {
		ctx := context.Background()
		p, err := deps.Progress.Get(ctx, bankID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		wrong, err := deps.Wrong.ByBank(ctx, bankID)
		if err != nil {
			return loadedMsg{Progress: p, Err: err}
		}
		return loadedMsg{Progress: p, Wrong: wrong}
	}
}

func (s *SetupScreen) Title() string {
	return s.bank.Name
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		s.progress = msg.Progress
		s.wrong = msg.Wrong
		s.menu = components.NewMenu(s.menuItems())
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if !s.loaded {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem

	if p := s.progress; p != nil && len(p.Questions) > 0 {
		items = append(items, components.MenuItem{
			Label: "Continue",
			Detail: fmt.Sprintf("question %d/%d, %d answered, %s",
				p.CurrentIndex+1, len(p.Questions), len(p.Answers), humanize.Time(p.Timestamp)),
			Action: s.start(prac.FromBank(s.bank), prac.Options{Mode: p.Mode, Resume: true}),
		})
	}

	items = append(items,
		components.MenuItem{
			Label:  "Sequential practice",
			Detail: fmt.Sprintf("%d questions in order", len(s.bank.Questions)),
			Action: s.start(prac.FromBank(s.bank), prac.Options{Mode: quiz.ModeSequential}),
		},
		components.MenuItem{
			Label:  "Random practice",
			Detail: "shuffled",
			Action: s.start(prac.FromBank(s.bank), prac.Options{Mode: quiz.ModeRandom}),
		},
		components.MenuItem{
			Label:    "Wrong questions",
			Detail:   fmt.Sprintf("%d to review", len(s.wrong)),
			Disabled: len(s.wrong) == 0,
			Action:   s.start(prac.FromWrongQuestions(s.bank, s.wrong), prac.Options{Mode: quiz.ModeSequential}),
		},
	)
	return items
}

// start replaces this screen with a practice run so leaving the run goes
// straight back home.
func (s *SetupScreen) start(src prac.Source, opts prac.Options) func() tea.Cmd {
	deps := s.deps
	return func() tea.Cmd {
		next := practicescreen.New(deps, src, opts)
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
}

func (s *SetupScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Title, s.bank.Name))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Subtitle,
		fmt.Sprintf("%d questions · imported %s", len(s.bank.Questions), humanize.Time(s.bank.CreatedAt))))
	b.WriteString("\n\n")
	if s.errMsg != "" {
		b.WriteString(layout.Center(width, theme.Warning, "⚠ "+s.errMsg))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.Card(s.menu.View(), components.ContentWidth(width))))
	return b.String()
}
