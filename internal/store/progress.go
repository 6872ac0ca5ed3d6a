package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/repeatio/examweb/internal/quiz"
)

var progressColumns = []string{
	"question_bank_id", "questions", "current_index", "answers",
	"correct", "wrong", "mode", "is_wrong_questions", "timestamp",
}

// progressRepo implements ProgressRepo over the practice_progress table.
type progressRepo struct {
	drv dialect.Driver
}

func (r *progressRepo) Save(ctx context.Context, p *PracticeProgress) error {
	if p == nil || p.QuestionBankID == "" {
		return &ErrMalformedInput{Entity: "practice progress", Field: "questionBankId"}
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	questions, err := marshalQuestions(quiz.CloneQuestions(p.Questions))
	if err != nil {
		return fmt.Errorf("marshal progress questions: %w", err)
	}
	answers := p.Answers
	if answers == nil {
		answers = map[int]AnswerState{}
	}
	answerData, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal progress answers: %w", err)
	}

	_, err = execQuery(ctx, r.drv, builder.Insert(tableProgress).
		Columns(progressColumns...).
		Values(p.QuestionBankID, questions, p.CurrentIndex, string(answerData),
			p.Stats.Correct, p.Stats.Wrong, string(p.Mode), boolToInt(p.IsWrongQuestions),
			encodeTime(p.Timestamp)).
		OnConflict(entsql.ConflictColumns("question_bank_id"), entsql.ResolveWithNewValues()))
	if err != nil {
		return &ErrStorageUnavailable{Op: "save practice progress", Err: err}
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, bankID string) (*PracticeProgress, error) {
	q := builder.Select(progressColumns...).
		From(builder.Table(tableProgress)).
		Where(entsql.EQ("question_bank_id", bankID))

	var p *PracticeProgress
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		got, err := scanProgress(rows)
		p = got
		return err
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "get practice progress", Err: err}
	}
	return p, nil
}

func (r *progressRepo) Delete(ctx context.Context, bankID string) error {
	if _, err := execQuery(ctx, r.drv, builder.Delete(tableProgress).Where(entsql.EQ("question_bank_id", bankID))); err != nil {
		return &ErrStorageUnavailable{Op: "delete practice progress", Err: err}
	}
	return nil
}

func (r *progressRepo) All(ctx context.Context) ([]PracticeProgress, error) {
	q := builder.Select(progressColumns...).
		From(builder.Table(tableProgress)).
		OrderBy(entsql.Desc("timestamp"))

	var out []PracticeProgress
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		p, err := scanProgress(rows)
		if err != nil {
			return err
		}
		out = append(out, *p)
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "list practice progress", Err: err}
	}
	return out, nil
}

func scanProgress(rows *entsql.Rows) (*PracticeProgress, error) {
	var (
		p         PracticeProgress
		questions string
		answers   string
		mode      string
		wrongRun  int
		ts        int64
	)
	err := rows.Scan(&p.QuestionBankID, &questions, &p.CurrentIndex, &answers,
		&p.Stats.Correct, &p.Stats.Wrong, &mode, &wrongRun, &ts)
	if err != nil {
		return nil, fmt.Errorf("scan practice progress: %w", err)
	}
	if p.Questions, err = unmarshalQuestions(questions); err != nil {
		return nil, fmt.Errorf("practice progress %q: %w", p.QuestionBankID, err)
	}
	p.Answers = map[int]AnswerState{}
	if err := json.Unmarshal([]byte(answers), &p.Answers); err != nil {
		return nil, fmt.Errorf("practice progress %q: decode answers: %w", p.QuestionBankID, err)
	}
	p.Mode = quiz.Mode(mode)
	p.IsWrongQuestions = wrongRun != 0
	p.Timestamp = decodeTime(ts)
	return &p, nil
}
