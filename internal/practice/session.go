package practice

import (
	"context"
	"errors"
	"fmt"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

// Session drives one practice run. It keeps the run's state in memory and
// mirrors every change into the stores; a failed write is logged and
// returned, but the in-memory state still advances.
type Session struct {
	deps   Deps
	source Source
	mode   quiz.Mode
	opts   Options

	items   []Item
	index   int
	answers map[int]store.AnswerState
	stats   store.Stats
	phase   Phase
	token   uint64
	resumed bool
}

// Start begins a run over src. When only persistence fails, the returned
// session is usable and err explains what was not saved.
func Start(ctx context.Context, deps Deps, src Source, opts Options) (*Session, error) {
	if len(src.Items) == 0 {
		return nil, ErrNoQuestions
	}
	if opts.Mode == "" {
		opts.Mode = quiz.ModeSequential
	}

	s := &Session{
		deps:    deps.withDefaults(),
		source:  src,
		mode:    opts.Mode,
		opts:    opts,
		answers: map[int]store.AnswerState{},
	}

	var errs []error
	if s.persistent() && opts.Resume {
		restored, err := s.restore(ctx)
		if err != nil {
			// The stored row is left untouched; the fresh run is written
			// only once the learner changes it.
			if merr := s.materialize(ctx); merr != nil {
				err = errors.Join(err, merr)
			}
			s.deps.Logger.Info("practice started without resume", "bank", src.ID, "mode", s.mode, "questions", len(s.items))
			return s, s.fail("resume", err)
		}
		if restored {
			s.deps.Logger.Info("practice resumed", "bank", src.ID, "index", s.index, "answered", len(s.answers))
			return s, nil
		}
	}

	if err := s.materialize(ctx); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, s.save(ctx))
	s.deps.Logger.Info("practice started", "bank", src.ID, "mode", s.mode, "questions", len(s.items), "wrong_set", src.WrongQuestions)
	return s, s.fail("start", errors.Join(errs...))
}

// restore loads stored progress. The stored question order replaces any
// fresh ordering and the run continues at the stored index.
func (s *Session) restore(ctx context.Context) (bool, error) {
	p, err := s.deps.Progress.Get(ctx, s.source.ID)
	if err != nil {
		return false, err
	}
	if p == nil || p.IsWrongQuestions || len(p.Questions) == 0 {
		return false, nil
	}

	s.items = make([]Item, len(p.Questions))
	for i, q := range p.Questions {
		s.items[i] = Item{BankID: s.source.ID, BankName: s.source.Name, Question: q.Clone()}
	}
	s.index = min(max(p.CurrentIndex, 0), len(s.items)-1)
	for i, a := range p.Answers {
		if i >= 0 && i < len(s.items) {
			s.answers[i] = a
		}
	}
	s.stats = p.Stats
	if p.Mode != "" {
		s.mode = p.Mode
	}
	s.resumed = true
	return true, nil
}

// materialize builds a fresh question order for the run's mode.
func (s *Session) materialize(ctx context.Context) error {
	items := cloneItems(s.source.Items)
	if s.mode != quiz.ModeRandom {
		s.items = items
		return nil
	}

	var err error
	if s.opts.UnansweredFirst && !s.source.WrongQuestions {
		var answered map[string]bool
		answered, err = s.deps.Answers.AnsweredQuestionIDs(ctx, s.source.ID)
		if err == nil {
			var fresh []Item
			for i := range items {
				items[i].Question.Answered = answered[items[i].Question.ID]
				if !items[i].Question.Answered {
					fresh = append(fresh, items[i])
				}
			}
			if len(fresh) > 0 {
				items = fresh
			}
		}
	}
	s.items = quiz.ShuffleWith(s.deps.Rand, items)
	return err
}

// Answer grades answer against the current question and records it.
func (s *Session) Answer(ctx context.Context, answer string) (Result, error) {
	if s.phase == PhaseFinished {
		return Result{}, ErrFinished
	}
	if _, done := s.answers[s.index]; done {
		return Result{}, ErrAlreadyAnswered
	}

	item := s.items[s.index]
	q := item.Question
	correct := q.IsCorrect(answer)

	s.answers[s.index] = store.AnswerState{Answer: answer, IsCorrect: correct}
	if correct {
		s.stats.Correct++
	} else {
		s.stats.Wrong++
	}

	now := s.deps.Now()
	var errs []error
	errs = append(errs, s.deps.Answers.Append(ctx, &store.AnswerRecord{
		QuestionBankID: item.BankID,
		QuestionID:     q.ID,
		UserAnswer:     answer,
		IsCorrect:      correct,
		Timestamp:      now,
	}))
	if correct {
		errs = append(errs, s.deps.Wrong.Remove(ctx, store.WrongKey{BankID: item.BankID, QuestionID: q.ID}))
	} else {
		errs = append(errs, s.deps.Wrong.Upsert(ctx, &store.WrongQuestion{
			BankID:        item.BankID,
			BankName:      item.BankName,
			Question:      q,
			WrongCount:    1,
			LastWrongTime: now,
		}))
	}
	errs = append(errs, s.save(ctx))

	res := Result{
		Correct:       correct,
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
		AutoAdvance:   correct && s.index < len(s.items)-1,
		Token:         s.token,
	}
	return res, s.fail("record answer", errors.Join(errs...))
}

// Next moves to the following question. On the last question it finishes
// the run and reports finished.
func (s *Session) Next(ctx context.Context) (finished bool, err error) {
	if s.phase == PhaseFinished {
		return true, nil
	}
	if s.index >= len(s.items)-1 {
		return true, s.Finish(ctx)
	}
	s.index++
	s.token++
	return false, s.fail("save progress", s.save(ctx))
}

// Previous moves back one question; it is a no-op on the first.
func (s *Session) Previous(ctx context.Context) error {
	if s.phase == PhaseFinished || s.index == 0 {
		return nil
	}
	s.index--
	s.token++
	return s.fail("save progress", s.save(ctx))
}

// Token identifies the question currently shown. It changes whenever the
// position changes, so a delayed advance scheduled earlier can tell it is
// stale.
func (s *Session) Token() uint64 {
	return s.token
}

// AdvanceIfCurrent moves to the next question only if token still matches
// and the current question is not the last one.
func (s *Session) AdvanceIfCurrent(ctx context.Context, token uint64) (bool, error) {
	if token != s.token || s.phase == PhaseFinished || s.index >= len(s.items)-1 {
		return false, nil
	}
	_, err := s.Next(ctx)
	return true, err
}

// Finish ends the run and deletes the bank's progress row.
func (s *Session) Finish(ctx context.Context) error {
	if s.phase == PhaseFinished {
		return nil
	}
	s.phase = PhaseFinished
	s.token++
	s.deps.Logger.Info("practice finished", "bank", s.source.ID, "correct", s.stats.Correct, "wrong", s.stats.Wrong)
	if !s.persistent() {
		return nil
	}
	return s.fail("clear progress", s.deps.Progress.Delete(ctx, s.source.ID))
}

// Restart abandons the run and starts over with a fresh order. Stored
// progress is deleted before the new run is saved.
func (s *Session) Restart(ctx context.Context) error {
	var errs []error
	if s.persistent() {
		errs = append(errs, s.deps.Progress.Delete(ctx, s.source.ID))
	}

	s.index = 0
	s.answers = map[int]store.AnswerState{}
	s.stats = store.Stats{}
	s.phase = PhaseActive
	s.resumed = false
	s.token++
	if s.mode == "" {
		s.mode = quiz.ModeSequential
	}

	errs = append(errs, s.materialize(ctx))
	errs = append(errs, s.save(ctx))
	s.deps.Logger.Info("practice restarted", "bank", s.source.ID, "mode", s.mode)
	return s.fail("restart", errors.Join(errs...))
}

// save writes the current state as the bank's progress row. Wrong question
// runs and finished runs never persist progress.
func (s *Session) save(ctx context.Context) error {
	if !s.persistent() || s.phase == PhaseFinished {
		return nil
	}
	questions := make([]quiz.Question, len(s.items))
	for i, it := range s.items {
		questions[i] = it.Question
	}
	answers := make(map[int]store.AnswerState, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return s.deps.Progress.Save(ctx, &store.PracticeProgress{
		QuestionBankID: s.source.ID,
		Questions:      questions,
		CurrentIndex:   s.index,
		Answers:        answers,
		Stats:          s.stats,
		Mode:           s.mode,
		Timestamp:      s.deps.Now(),
	})
}

func (s *Session) persistent() bool {
	return !s.source.WrongQuestions && s.source.ID != ""
}

// fail logs a persistence error and wraps it with the step that failed.
func (s *Session) fail(step string, err error) error {
	if err == nil {
		return nil
	}
	s.deps.Logger.Warn("progress may not be saved", "step", step, "bank", s.source.ID, "err", err)
	return fmt.Errorf("%s: %w", step, err)
}
