package store

import (
	"context"
	"fmt"
	"time"

	"github.com/repeatio/examweb/internal/quiz"
)

// AnswerRecord is one answer submission. Records are append-only.
type AnswerRecord struct {
	ID             int64
	QuestionBankID string
	QuestionID     string
	UserAnswer     string
	IsCorrect      bool
	Timestamp      time.Time
}

// WrongKey identifies a wrong question by the bank it came from and the
// question's id within that bank.
type WrongKey struct {
	BankID     string
	QuestionID string
}

// String renders the key for display only; it is never parsed back.
func (k WrongKey) String() string {
	return fmt.Sprintf("%s_%s", k.BankID, k.QuestionID)
}

// WrongQuestion is a currently-missed question. BankName and Question are
// snapshots taken when the question was first missed.
type WrongQuestion struct {
	BankID        string
	BankName      string
	Question      quiz.Question
	WrongCount    int
	LastWrongTime time.Time
}

// Key returns the wrong question's identity.
func (w WrongQuestion) Key() WrongKey {
	return WrongKey{BankID: w.BankID, QuestionID: w.Question.ID}
}

// AnswerState is the recorded outcome for one position of a practice run.
type AnswerState struct {
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"isCorrect"`
}

// Stats counts correct and wrong answers in a practice run.
type Stats struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Total returns the number of answered positions.
func (s Stats) Total() int { return s.Correct + s.Wrong }

// PracticeProgress is the resumable snapshot of a bank's practice run.
// Questions holds the materialized order; Answers is keyed by position.
type PracticeProgress struct {
	QuestionBankID   string
	Questions        []quiz.Question
	CurrentIndex     int
	Answers          map[int]AnswerState
	Stats            Stats
	Mode             quiz.Mode
	IsWrongQuestions bool
	Timestamp        time.Time
}

// BankStats summarizes the answer log of one bank.
type BankStats struct {
	BankID  string
	Total   int
	Correct int
	Last    time.Time
}

// Accuracy returns the rounded percentage of correct answers, 0 when empty.
func (s BankStats) Accuracy() int {
	return Accuracy(s.Correct, s.Total)
}

// Accuracy returns round(correct / total * 100), or 0 when total is 0.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(float64(correct)/float64(total)*100 + 0.5)
}

// BankRepo stores question banks.
type BankRepo interface {
	// Save inserts or replaces a bank by id.
	Save(ctx context.Context, bank *quiz.QuestionBank) error

	// All returns every bank, oldest first.
	All(ctx context.Context) ([]quiz.QuestionBank, error)

	// Get returns the bank with the given id, or nil if none exists.
	Get(ctx context.Context, id string) (*quiz.QuestionBank, error)

	// MustGet is Get that reports absence as ErrNotFound.
	MustGet(ctx context.Context, id string) (*quiz.QuestionBank, error)

	// Count returns the number of stored banks.
	Count(ctx context.Context) (int, error)

	// Delete removes the bank together with its answer records, wrong
	// questions and practice progress in one transaction.
	Delete(ctx context.Context, id string) error
}

// AnswerRepo is the append-only answer log.
type AnswerRepo interface {
	// Append stores rec with a fresh id and writes the id back into rec.
	Append(ctx context.Context, rec *AnswerRecord) error

	// ByBank returns a bank's records in submission order.
	ByBank(ctx context.Context, bankID string) ([]AnswerRecord, error)

	// AnsweredQuestionIDs returns the ids of a bank's questions that have
	// at least one record.
	AnsweredQuestionIDs(ctx context.Context, bankID string) (map[string]bool, error)

	// Stats aggregates the log per bank.
	Stats(ctx context.Context) ([]BankStats, error)
}

// WrongRepo maintains the wrong question set.
type WrongRepo interface {
	// Upsert inserts wq when absent. When present it increments the stored
	// wrong count and overwrites the last wrong time; other fields of wq are
	// ignored.
	Upsert(ctx context.Context, wq *WrongQuestion) error

	// Remove deletes the entry; a missing entry is not an error.
	Remove(ctx context.Context, key WrongKey) error

	// Get returns one entry, or nil if none exists.
	Get(ctx context.Context, key WrongKey) (*WrongQuestion, error)

	// All returns every entry, most recently missed first.
	All(ctx context.Context) ([]WrongQuestion, error)

	// ByBank returns a bank's entries, most recently missed first.
	ByBank(ctx context.Context, bankID string) ([]WrongQuestion, error)

	// ClearAll removes every entry.
	ClearAll(ctx context.Context) error

	// ClearByBank removes a bank's entries.
	ClearByBank(ctx context.Context, bankID string) error
}

// ProgressRepo stores one practice progress row per bank.
type ProgressRepo interface {
	// Save replaces the bank's progress row with p.
	Save(ctx context.Context, p *PracticeProgress) error

	// Get returns the bank's progress, or nil if none exists.
	Get(ctx context.Context, bankID string) (*PracticeProgress, error)

	// Delete removes the bank's progress; a missing row is not an error.
	Delete(ctx context.Context, bankID string) error

	// All returns every progress row, most recent first.
	All(ctx context.Context) ([]PracticeProgress, error)
}
