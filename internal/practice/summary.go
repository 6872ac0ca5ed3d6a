package practice

import (
	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

// Summary holds the data displayed when a run completes.
type Summary struct {
	Name     string
	Total    int
	Answered int
	Correct  int
	Wrong    int

	// Accuracy is round(Correct / Total * 100); unanswered questions count
	// against it.
	Accuracy int
}

// Summary reports the run's totals.
func (s *Session) Summary() Summary {
	return Summary{
		Name:     s.source.Name,
		Total:    len(s.items),
		Answered: len(s.answers),
		Correct:  s.stats.Correct,
		Wrong:    s.stats.Wrong,
		Accuracy: store.Accuracy(s.stats.Correct, len(s.items)),
	}
}

// Current returns the item at the current position.
func (s *Session) Current() Item { return s.items[s.index] }

// Index returns the zero-based current position.
func (s *Session) Index() int { return s.index }

// Len returns the number of questions in the run.
func (s *Session) Len() int { return len(s.items) }

// IsLast reports whether the current position is the final one.
func (s *Session) IsLast() bool { return s.index == len(s.items)-1 }

// AnswerAt returns the recorded answer for position i, if any.
func (s *Session) AnswerAt(i int) (store.AnswerState, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Stats returns the running correct and wrong counts.
func (s *Session) Stats() store.Stats { return s.stats }

// Mode returns the ordering mode in effect; a resumed run keeps its stored mode.
func (s *Session) Mode() quiz.Mode { return s.mode }

// Phase returns the session's lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Resumed reports whether the run continued stored progress.
func (s *Session) Resumed() bool { return s.resumed }

// Source returns what the session practices.
func (s *Session) Source() Source { return s.source }

// Questions returns the run's questions in their materialized order.
func (s *Session) Questions() []quiz.Question {
	out := make([]quiz.Question, len(s.items))
	for i, it := range s.items {
		out[i] = it.Question.Clone()
	}
	return out
}
