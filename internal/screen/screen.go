package screen

import (
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/repeatio/examweb/internal/importer"
	"github.com/repeatio/examweb/internal/practice"
	"github.com/repeatio/examweb/internal/store"
	"github.com/repeatio/examweb/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Deps are the stores and settings shared by every screen.
type Deps struct {
	Banks    store.BankRepo
	Answers  store.AnswerRepo
	Wrong    store.WrongRepo
	Progress store.ProgressRepo
	Importer *importer.Importer
	Logger   *slog.Logger

	// AutoAdvanceDelay is zero when auto-advance is off.
	AutoAdvanceDelay time.Duration
	UnansweredFirst  bool
}

// PracticeDeps returns the subset a practice session drives.
func (d Deps) PracticeDeps() practice.Deps {
	return practice.Deps{
		Answers:  d.Answers,
		Wrong:    d.Wrong,
		Progress: d.Progress,
		Logger:   d.Logger,
	}
}
