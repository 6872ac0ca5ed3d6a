package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var answerColumns = []string{"id", "question_bank_id", "question_id", "user_answer", "is_correct", "timestamp"}

// answerRepo implements AnswerRepo over the answer_records table.
type answerRepo struct {
	drv dialect.Driver
	seq *sequenceCounter
}

func (r *answerRepo) Append(ctx context.Context, rec *AnswerRecord) error {
	switch {
	case rec == nil:
		return &ErrMalformedInput{Entity: "answer record", Field: "record"}
	case rec.QuestionBankID == "":
		return &ErrMalformedInput{Entity: "answer record", Field: "questionBankId"}
	case rec.QuestionID == "":
		return &ErrMalformedInput{Entity: "answer record", Field: "questionId"}
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	var id int64
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		next, err := r.seq.Next(ctx, tx)
		if err != nil {
			return err
		}
		id = next
		_, err = execQuery(ctx, tx, builder.Insert(tableAnswers).
			Columns(answerColumns...).
			Values(id, rec.QuestionBankID, rec.QuestionID, rec.UserAnswer,
				boolToInt(rec.IsCorrect), encodeTime(rec.Timestamp)))
		return err
	})
	if err != nil {
		return &ErrStorageUnavailable{Op: "append answer record", Err: err}
	}
	rec.ID = id
	return nil
}

func (r *answerRepo) ByBank(ctx context.Context, bankID string) ([]AnswerRecord, error) {
	q := builder.Select(answerColumns...).
		From(builder.Table(tableAnswers)).
		Where(entsql.EQ("question_bank_id", bankID)).
		OrderBy("id")

	var out []AnswerRecord
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		var (
			rec     AnswerRecord
			correct int
			ts      int64
		)
		if err := rows.Scan(&rec.ID, &rec.QuestionBankID, &rec.QuestionID, &rec.UserAnswer, &correct, &ts); err != nil {
			return fmt.Errorf("scan answer record: %w", err)
		}
		rec.IsCorrect = correct != 0
		rec.Timestamp = decodeTime(ts)
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "list answer records", Err: err}
	}
	return out, nil
}

func (r *answerRepo) AnsweredQuestionIDs(ctx context.Context, bankID string) (map[string]bool, error) {
	q := builder.Select("question_id").
		Distinct().
		From(builder.Table(tableAnswers)).
		Where(entsql.EQ("question_bank_id", bankID))

	ids := make(map[string]bool)
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids[id] = true
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "list answered questions", Err: err}
	}
	return ids, nil
}

func (r *answerRepo) Stats(ctx context.Context) ([]BankStats, error) {
	q := builder.Select("question_bank_id", entsql.Count("*"), entsql.Sum("is_correct"), entsql.Max("timestamp")).
		From(builder.Table(tableAnswers)).
		GroupBy("question_bank_id").
		OrderBy("question_bank_id")

	var out []BankStats
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		var (
			s    BankStats
			last int64
		)
		if err := rows.Scan(&s.BankID, &s.Total, &s.Correct, &last); err != nil {
			return fmt.Errorf("scan answer stats: %w", err)
		}
		s.Last = decodeTime(last)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "aggregate answer records", Err: err}
	}
	return out, nil
}
