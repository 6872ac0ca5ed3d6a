package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var wrongColumns = []string{"question_bank_id", "question_id", "question_bank_name", "question", "wrong_count", "last_wrong_time"}

// wrongRepo implements WrongRepo over the wrong_questions table.
type wrongRepo struct {
	drv dialect.Driver
}

func (r *wrongRepo) Upsert(ctx context.Context, wq *WrongQuestion) error {
	switch {
	case wq == nil:
		return &ErrMalformedInput{Entity: "wrong question", Field: "question"}
	case wq.BankID == "":
		return &ErrMalformedInput{Entity: "wrong question", Field: "questionBankId"}
	case wq.Question.ID == "":
		return &ErrMalformedInput{Entity: "wrong question", Field: "questionId"}
	}
	when := wq.LastWrongTime
	if when.IsZero() {
		when = time.Now().UTC()
	}
	key := wq.Key()

	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		existing, err := r.get(ctx, tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			_, err := execQuery(ctx, tx, builder.Update(tableWrong).
				Add("wrong_count", 1).
				Set("last_wrong_time", encodeTime(when)).
				Where(keyPredicate(key)))
			return err
		}

		snapshot := wq.Question.Clone()
		snapshot.Answered = false
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal question snapshot: %w", err)
		}
		count := wq.WrongCount
		if count < 1 {
			count = 1
		}
		_, err = execQuery(ctx, tx, builder.Insert(tableWrong).
			Columns(wrongColumns...).
			Values(key.BankID, key.QuestionID, wq.BankName, string(data), count, encodeTime(when)))
		return err
	})
	if err != nil {
		return &ErrStorageUnavailable{Op: "upsert wrong question", Err: err}
	}
	return nil
}

func (r *wrongRepo) Remove(ctx context.Context, key WrongKey) error {
	if _, err := execQuery(ctx, r.drv, builder.Delete(tableWrong).Where(keyPredicate(key))); err != nil {
		return &ErrStorageUnavailable{Op: "remove wrong question", Err: err}
	}
	return nil
}

func (r *wrongRepo) Get(ctx context.Context, key WrongKey) (*WrongQuestion, error) {
	wq, err := r.get(ctx, r.drv, key)
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "get wrong question", Err: err}
	}
	return wq, nil
}

func (r *wrongRepo) get(ctx context.Context, conn dialect.ExecQuerier, key WrongKey) (*WrongQuestion, error) {
	q := builder.Select(wrongColumns...).
		From(builder.Table(tableWrong)).
		Where(keyPredicate(key))

	var wq *WrongQuestion
	err := queryRows(ctx, conn, q, func(rows *entsql.Rows) error {
		w, err := scanWrong(rows)
		wq = w
		return err
	})
	return wq, err
}

func (r *wrongRepo) All(ctx context.Context) ([]WrongQuestion, error) {
	return r.list(ctx, nil)
}

func (r *wrongRepo) ByBank(ctx context.Context, bankID string) ([]WrongQuestion, error) {
	return r.list(ctx, entsql.EQ("question_bank_id", bankID))
}

func (r *wrongRepo) list(ctx context.Context, where *entsql.Predicate) ([]WrongQuestion, error) {
	q := builder.Select(wrongColumns...).
		From(builder.Table(tableWrong)).
		OrderBy(entsql.Desc("last_wrong_time"), "question_bank_id", "question_id")
	if where != nil {
		q = q.Where(where)
	}

	var out []WrongQuestion
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		w, err := scanWrong(rows)
		if err != nil {
			return err
		}
		out = append(out, *w)
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "list wrong questions", Err: err}
	}
	return out, nil
}

func (r *wrongRepo) ClearAll(ctx context.Context) error {
	if _, err := execQuery(ctx, r.drv, builder.Delete(tableWrong)); err != nil {
		return &ErrStorageUnavailable{Op: "clear wrong questions", Err: err}
	}
	return nil
}

func (r *wrongRepo) ClearByBank(ctx context.Context, bankID string) error {
	if _, err := execQuery(ctx, r.drv, builder.Delete(tableWrong).Where(entsql.EQ("question_bank_id", bankID))); err != nil {
		return &ErrStorageUnavailable{Op: "clear wrong questions", Err: err}
	}
	return nil
}

func keyPredicate(key WrongKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("question_bank_id", key.BankID),
		entsql.EQ("question_id", key.QuestionID),
	)
}

func scanWrong(rows *entsql.Rows) (*WrongQuestion, error) {
	var (
		wq         WrongQuestion
		questionID string
		question   string
		last       int64
	)
	if err := rows.Scan(&wq.BankID, &questionID, &wq.BankName, &question, &wq.WrongCount, &last); err != nil {
		return nil, fmt.Errorf("scan wrong question: %w", err)
	}
	if err := json.Unmarshal([]byte(question), &wq.Question); err != nil {
		return nil, fmt.Errorf("decode wrong question %s_%s: %w", wq.BankID, questionID, err)
	}
	wq.Question.ID = questionID
	wq.LastWrongTime = decodeTime(last)
	return &wq, nil
}

