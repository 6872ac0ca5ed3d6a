package importbank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/repeatio/examweb/internal/importer"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
	"github.com/repeatio/examweb/internal/ui/theme"
)

type importedMsg struct {
	Name      string
	Questions int
	Skipped   []importer.Skipped
	Err       error
}

// ImportScreen asks for a bank file path and imports it.
type ImportScreen struct {
	deps   screen.Deps
	input  components.TextInput
	busy   bool
	result *importedMsg
	errMsg string
}

var _ screen.Screen = (*ImportScreen)(nil)
var _ screen.KeyHintProvider = (*ImportScreen)(nil)

// New creates a new ImportScreen.
func New(deps screen.Deps) *ImportScreen {
	return &ImportScreen{
		deps:  deps,
		input: components.NewTextInput("path/to/bank.xlsx", 0),
	}
}

func (s *ImportScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ImportScreen) Title() string {
	return "Import Question Bank"
}

func (s *ImportScreen) KeyHints() []layout.KeyHint {
	if s.result != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "I", Description: "Import another"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Import"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ImportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case importedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.input.Submit(false)
			return s, nil
		}
		s.result = &msg
		s.input.Submit(true)
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		if s.result != nil {
			switch msg.String() {
			case "enter":
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			case "i":
				s.result = nil
				s.input.Reset()
			}
			return s, nil
		}
		if msg.String() == "enter" {
			return s, s.submit()
		}
		s.errMsg = ""
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ImportScreen) submit() tea.Cmd {
	path := expandHome(s.input.Value())
	if path == "" {
		s.errMsg = "Enter the path of a bank file."
		return nil
	}
	if !importer.Supported(path) {
		s.errMsg = fmt.Sprintf("Unsupported file type. Use one of %s.", strings.Join(importer.Extensions, ", "))
		s.input.Submit(false)
		return nil
	}

	s.busy = true
	s.errMsg = ""
	im, banks, logger := s.deps.Importer, s.deps.Banks, s.deps.Logger
	return func() tea.Msg {
		res, err := im.ImportFile(path)
		if err != nil {
			return importedMsg{Err: err}
		}
		if err := banks.Save(context.Background(), res.Bank); err != nil {
			return importedMsg{Err: fmt.Errorf("save bank: %w", err)}
		}
		logger.Info("bank imported", "bank", res.Bank.ID, "name", res.Bank.Name,
			"questions", len(res.Bank.Questions), "skipped", len(res.Skipped))
		return importedMsg{Name: res.Bank.Name, Questions: len(res.Bank.Questions), Skipped: res.Skipped}
	}
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func (s *ImportScreen) View(width, height int) string {
	var sections []string

	sections = append(sections,
		theme.Title.Render("Import a question bank"),
		theme.Subtitle.Render("Spreadsheet rows: type, question, A, B, C, D, answer, explanation"),
		"",
		"File: "+s.input.View(),
	)

	switch {
	case s.busy:
		sections = append(sections, "", theme.Hint.Render("Importing..."))
	case s.errMsg != "":
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	case s.result != nil:
		sections = append(sections, "", s.renderResult())
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (s *ImportScreen) renderResult() string {
	r := s.result
	lines := []string{
		lipgloss.NewStyle().Foreground(theme.Success).Bold(true).
			Render(fmt.Sprintf("Imported %q with %d questions", r.Name, r.Questions)),
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, theme.Warning.Render(fmt.Sprintf("%d row(s) skipped:", len(r.Skipped))))
		for i, sk := range r.Skipped {
			if i == 5 {
				lines = append(lines, theme.Hint.Render(fmt.Sprintf("… and %d more", len(r.Skipped)-5)))
				break
			}
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("row %d: %s", sk.Row, sk.Reason)))
		}
	}
	return strings.Join(lines, "\n")
}
