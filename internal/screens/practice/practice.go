package practice

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	prac "github.com/repeatio/examweb/internal/practice"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	"github.com/repeatio/examweb/internal/screens/summary"
	"github.com/repeatio/examweb/internal/ui/components"
	"github.com/repeatio/examweb/internal/ui/layout"
)

// PracticeScreen runs one practice session over a bank or a wrong question
// set.
type PracticeScreen struct {
	deps   screen.Deps
	source prac.Source
	opts   prac.Options

	sess     *prac.Session
	picker   components.MultiChoice
	feedback *prac.Result
	confirm  *components.Confirm
	warn     string
	errMsg   string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a PracticeScreen. The session is started by Init.
func New(deps screen.Deps, src prac.Source, opts prac.Options) *PracticeScreen {
	opts.UnansweredFirst = opts.UnansweredFirst || deps.UnansweredFirst
	return &PracticeScreen{
		deps:   deps,
		source: src,
		opts:   opts,
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	deps, src, opts := s.deps.PracticeDeps(), s.source, s.opts
	return func() tea.Msg {
		sess, err := prac.Start(context.Background(), deps, src, opts)
		return startedMsg{Session: sess, Err: err}
	}
}

func (s *PracticeScreen) Title() string {
	return s.source.Name
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.sess == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.confirm != nil {
		return []layout.KeyHint{
			{Key: "Y", Description: "Restart"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.feedback != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "←/→", Description: "Prev/Next"},
			{Key: "R", Description: "Restart"},
			{Key: "Esc", Description: "Save & exit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Answer"},
		{Key: "←/→", Description: "Prev/Next"},
		{Key: "R", Description: "Restart"},
		{Key: "Esc", Description: "Save & exit"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case autoAdvanceMsg:
		return s.handleAutoAdvance(msg)

	case restartConfirmedMsg:
		s.confirm = nil
		s.report(s.sess.Restart(context.Background()))
		s.loadCurrent()
		return s, nil

	case restartCancelledMsg:
		s.confirm = nil
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *PracticeScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Session == nil {
		s.errMsg = "Could not start practice."
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	s.sess = msg.Session
	s.report(msg.Err)
	s.loadCurrent()
	return s, nil
}

func (s *PracticeScreen) handleAutoAdvance(msg autoAdvanceMsg) (screen.Screen, tea.Cmd) {
	if s.sess == nil || msg.Session != s.sess || s.confirm != nil {
		return s, nil
	}
	advanced, err := s.sess.AdvanceIfCurrent(context.Background(), msg.Token)
	s.report(err)
	if advanced {
		s.loadCurrent()
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.sess == nil {
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.confirm != nil {
		c, cmd := s.confirm.Update(msg)
		s.confirm = &c
		return s, cmd
	}

	ctx := context.Background()
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "r":
		c := components.NewConfirm("Restart this practice? Answers given so far stay recorded.",
			func() tea.Cmd { return func() tea.Msg { return restartConfirmedMsg{} } },
			func() tea.Cmd { return func() tea.Msg { return restartCancelledMsg{} } },
		)
		s.confirm = &c
		return s, nil
	case "left", "p":
		s.report(s.sess.Previous(ctx))
		s.loadCurrent()
		return s, nil
	case "right":
		return s.next()
	}

	if s.feedback != nil {
		if msg.String() == "enter" || msg.String() == "n" {
			return s.next()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if s.picker.Submitted {
		return s, tea.Batch(cmd, s.submit(s.picker.Chosen))
	}
	return s, cmd
}

// submit grades the chosen answer and schedules auto-advance when the
// answer was right.
func (s *PracticeScreen) submit(answer string) tea.Cmd {
	res, err := s.sess.Answer(context.Background(), answer)
	if errors.Is(err, prac.ErrAlreadyAnswered) || errors.Is(err, prac.ErrFinished) {
		return nil
	}
	s.report(err)
	s.feedback = &res

	delay := s.deps.AutoAdvanceDelay
	if !res.AutoAdvance || delay <= 0 {
		return nil
	}
	sess, token := s.sess, res.Token
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoAdvanceMsg{Session: sess, Token: token}
	})
}

func (s *PracticeScreen) next() (screen.Screen, tea.Cmd) {
	finished, err := s.sess.Next(context.Background())
	s.report(err)
	if finished {
		return s, s.showSummary()
	}
	s.loadCurrent()
	return s, nil
}

func (s *PracticeScreen) showSummary() tea.Cmd {
	deps, src, opts := s.deps, s.source, s.opts
	opts.Resume = false
	again := func() screen.Screen { return New(deps, src, opts) }
	sum := summary.New(s.sess.Summary(), again)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: sum}
	}
}

// loadCurrent rebuilds the picker for the current position. Answered
// positions are shown with their recorded result.
func (s *PracticeScreen) loadCurrent() {
	item := s.sess.Current()
	s.picker = components.NewMultiChoice(item.Question)
	s.feedback = nil

	if ans, ok := s.sess.AnswerAt(s.sess.Index()); ok {
		s.picker.Reveal(ans.Answer)
		s.feedback = &prac.Result{
			Correct:       ans.IsCorrect,
			CorrectAnswer: item.Question.Answer,
			Explanation:   item.Question.Explanation,
			Token:         s.sess.Token(),
		}
	}
}

// report keeps the latest persistence failure visible until the next
// successful write.
func (s *PracticeScreen) report(err error) {
	if err != nil {
		s.warn = "Progress may not be saved"
		return
	}
	s.warn = ""
}

func (s *PracticeScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.sess == nil {
		return renderLoading(width)
	}
	if s.confirm != nil {
		return renderConfirm(width, height, s.confirm.View())
	}
	return s.renderQuestionView(width)
}
