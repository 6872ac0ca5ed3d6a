package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	"github.com/repeatio/examweb/internal/screens/importbank"
	"github.com/repeatio/examweb/internal/screens/setup"
	"github.com/repeatio/examweb/internal/screens/wrong"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
)

type loadedMsg struct {
	Banks      []quiz.QuestionBank
	Resumable  map[string]bool
	WrongCount int
	Err        error
}

type deletedMsg struct {
	Name string
	Err  error
}

type deleteConfirmedMsg struct {
	ID   string
	Name string
}

type deleteCancelledMsg struct{}

// HomeScreen lists the stored banks and the entry points to the wrong
// question set and the importer.
type HomeScreen struct {
	deps       screen.Deps
	banks      []quiz.QuestionBank
	resumable  map[string]bool
	wrongCount int
	menu       components.Menu
	confirm    *components.Confirm
	loaded     bool
	notice     string
	errMsg     string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	return &HomeScreen{deps: deps}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()

		banks, err := deps.Banks.All(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}

		resumable := make(map[string]bool)
		progress, err := deps.Progress.All(ctx)
		if err != nil {
			return loadedMsg{Banks: banks, Resumable: resumable, Err: err}
		}
		for _, p := range progress {
			resumable[p.QuestionBankID] = len(p.Questions) > 0
		}

		wrong, err := deps.Wrong.All(ctx)
		if err != nil {
			return loadedMsg{Banks: banks, Resumable: resumable, Err: err}
		}
		return loadedMsg{Banks: banks, Resumable: resumable, WrongCount: len(wrong)}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.confirm != nil {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if h.selectedBank() != nil {
		hints = append(hints, layout.KeyHint{Key: "D", Description: "Delete bank"})
	}
	return append(hints, layout.KeyHint{Key: "Q", Description: "Quit"})
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		h.loaded = true
		h.errMsg = ""
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		}
		selected := h.menu.Selected
		h.banks = msg.Banks
		h.resumable = msg.Resumable
		h.wrongCount = msg.WrongCount
		h.menu = components.NewMenu(h.menuItems())
		h.menu.Select(min(selected, len(h.menu.Items)-1))
		return h, nil

	case router.RevealedMsg:
		return h, h.load()

	case deletedMsg:
		if msg.Err != nil {
			h.deps.Logger.Warn("delete bank failed", "bank", msg.Name, "err", msg.Err)
			h.notice = "Could not delete " + msg.Name
		} else {
			h.notice = "Deleted " + msg.Name
		}
		return h, h.load()

	case deleteConfirmedMsg:
		h.confirm = nil
		return h, h.deleteBank(msg.ID, msg.Name)

	case deleteCancelledMsg:
		h.confirm = nil
		return h, nil

	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if h.confirm != nil {
		c, cmd := h.confirm.Update(msg)
		h.confirm = &c
		return h, cmd
	}
	if !h.loaded {
		return h, nil
	}

	switch msg.String() {
	case "q":
		return h, tea.Quit
	case "d":
		bank := h.selectedBank()
		if bank == nil {
			return h, nil
		}
		c := components.NewConfirm(
			fmt.Sprintf("Delete %q with its answers, wrong questions and progress?", bank.Name),
			func() tea.Cmd {
				return func() tea.Msg { return deleteConfirmedMsg{ID: bank.ID, Name: bank.Name} }
			},
			func() tea.Cmd { return func() tea.Msg { return deleteCancelledMsg{} } },
		)
		h.confirm = &c
		return h, nil
	}

	h.notice = ""
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) deleteBank(id, name string) tea.Cmd {
	banks := h.deps.Banks
	return func() tea.Msg {
		return deletedMsg{Name: name, Err: banks.Delete(context.Background(), id)}
	}
}

// selectedBank returns the bank under the cursor, or nil when the cursor
// is on one of the fixed entries.
func (h *HomeScreen) selectedBank() *quiz.QuestionBank {
	if h.menu.Selected < 0 || h.menu.Selected >= len(h.banks) {
		return nil
	}
	return &h.banks[h.menu.Selected]
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	deps := h.deps
	items := make([]components.MenuItem, 0, len(h.banks)+3)

	for i := range h.banks {
		bank := h.banks[i]
		detail := fmt.Sprintf("%d questions", len(bank.Questions))
		if h.resumable[bank.ID] {
			detail += " · resume available"
		}
		items = append(items, components.MenuItem{
			Label:  bank.Name,
			Detail: detail,
			Action: push(func() screen.Screen { return setup.New(deps, &bank) }),
		})
	}

	items = append(items,
		components.MenuItem{
			Label:  "Wrong questions",
			Detail: fmt.Sprintf("%d to review", h.wrongCount),
			Action: push(func() screen.Screen { return wrong.New(deps) }),
		},
		components.MenuItem{
			Label:  "Import question bank",
			Detail: ".xlsx .csv .json",
			Action: push(func() screen.Screen { return importbank.New(deps) }),
		},
		components.MenuItem{
			Label:  "Quit",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)
	return items
}

func push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		next := build()
		return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
}

// WrongCount reports the size of the wrong question set as of the last
// load; the header shows it.
func (h *HomeScreen) WrongCount() int {
	return h.wrongCount
}

func (h *HomeScreen) View(width, height int) string {
	if !h.loaded {
		return renderLoading(width)
	}
	if h.confirm != nil {
		return renderConfirm(width, height, h.confirm.View())
	}

	cw := components.ContentWidth(width)
	sections := []string{
		renderTitle(width),
		renderStatsBar(len(h.banks), h.totalQuestions(), h.wrongCount, width, cw),
	}
	if len(h.banks) == 0 {
		sections = append(sections, renderEmpty(width))
	}
	if h.errMsg != "" {
		sections = append(sections, renderNotice(width, "⚠ "+h.errMsg, true))
	} else if h.notice != "" {
		sections = append(sections, renderNotice(width, h.notice, false))
	}
	sections = append(sections, renderMenu(h.menu.View(), width, cw))
	return strings.Join(sections, "\n\n")
}

func (h *HomeScreen) totalQuestions() int {
	n := 0
	for _, b := range h.banks {
		n += len(b.Questions)
	}
	return n
}

