package practice

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

var (
	// ErrNoQuestions is returned when a run would start with nothing to ask.
	ErrNoQuestions = errors.New("no questions to practice")

	// ErrAlreadyAnswered is returned when the current position was answered
	// earlier in the same run.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrFinished is returned when the run is over.
	ErrFinished = errors.New("practice finished")
)

// Phase is the lifecycle position of a session.
type Phase int

const (
	PhaseActive   Phase = iota // Serving questions
	PhaseFinished              // Summary reached, progress cleared
)

// Deps are the stores and helpers a session drives. Now and Rand default to
// the wall clock and a randomly seeded source.
type Deps struct {
	Answers  store.AnswerRepo
	Wrong    store.WrongRepo
	Progress store.ProgressRepo
	Logger   *slog.Logger
	Now      func() time.Time
	Rand     *rand.Rand
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d
}

// Options select how a run starts.
type Options struct {
	Mode quiz.Mode

	// Resume continues the bank's stored progress when one exists.
	Resume bool

	// UnansweredFirst limits a fresh random run to questions without answer
	// records, falling back to every question when all have been answered.
	UnansweredFirst bool
}

// Result describes the outcome of one submitted answer.
type Result struct {
	Correct       bool
	CorrectAnswer string
	Explanation   string

	// AutoAdvance is set when the caller should schedule AdvanceIfCurrent
	// with Token after the auto-advance delay.
	AutoAdvance bool
	Token       uint64
}
