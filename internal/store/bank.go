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

var bankColumns = []string{"id", "name", "created_at", "questions"}

// bankRepo implements BankRepo over the question_banks table.
type bankRepo struct {
	drv dialect.Driver
}

func (r *bankRepo) Save(ctx context.Context, bank *quiz.QuestionBank) error {
	if bank == nil || bank.ID == "" {
		return &ErrMalformedInput{Entity: "question bank", Field: "id"}
	}
	if bank.CreatedAt.IsZero() {
		bank.CreatedAt = time.Now().UTC()
	}

	qs := quiz.CloneQuestions(bank.Questions)
	for i := range qs {
		qs[i].Answered = false
	}
	data, err := marshalQuestions(qs)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	_, err = execQuery(ctx, r.drv, builder.Insert(tableBanks).
		Columns(bankColumns...).
		Values(bank.ID, bank.Name, encodeTime(bank.CreatedAt), data).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()))
	if err != nil {
		return &ErrStorageUnavailable{Op: "save question bank", Err: err}
	}
	return nil
}

func (r *bankRepo) All(ctx context.Context) ([]quiz.QuestionBank, error) {
	q := builder.Select(bankColumns...).
		From(builder.Table(tableBanks)).
		OrderBy("created_at", "id")

	var banks []quiz.QuestionBank
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		b, err := scanBank(rows)
		if err != nil {
			return err
		}
		banks = append(banks, *b)
		return nil
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "list question banks", Err: err}
	}
	return banks, nil
}

func (r *bankRepo) Get(ctx context.Context, id string) (*quiz.QuestionBank, error) {
	q := builder.Select(bankColumns...).
		From(builder.Table(tableBanks)).
		Where(entsql.EQ("id", id))

	var bank *quiz.QuestionBank
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		b, err := scanBank(rows)
		bank = b
		return err
	})
	if err != nil {
		return nil, &ErrStorageUnavailable{Op: "get question bank", Err: err}
	}
	return bank, nil
}

func (r *bankRepo) MustGet(ctx context.Context, id string) (*quiz.QuestionBank, error) {
	bank, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, fmt.Errorf("question bank %q: %w", id, ErrNotFound)
	}
	return bank, nil
}

func (r *bankRepo) Count(ctx context.Context) (int, error) {
	var n int
	q := builder.Select(entsql.Count("*")).From(builder.Table(tableBanks))
	err := queryRows(ctx, r.drv, q, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, &ErrStorageUnavailable{Op: "count question banks", Err: err}
	}
	return n, nil
}

func (r *bankRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &ErrMalformedInput{Entity: "question bank", Field: "id"}
	}

	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		for _, table := range []string{tableAnswers, tableWrong, tableProgress} {
			if _, err := execQuery(ctx, tx, builder.Delete(table).Where(entsql.EQ("question_bank_id", id))); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		if _, err := execQuery(ctx, tx, builder.Delete(tableBanks).Where(entsql.EQ("id", id))); err != nil {
			return fmt.Errorf("delete bank row: %w", err)
		}
		return nil
	})
	if err != nil {
		return &ErrCascade{BankID: id, Err: err}
	}
	return nil
}

func scanBank(rows *entsql.Rows) (*quiz.QuestionBank, error) {
	var (
		b         quiz.QuestionBank
		createdAt int64
		questions string
	)
	if err := rows.Scan(&b.ID, &b.Name, &createdAt, &questions); err != nil {
		return nil, fmt.Errorf("scan question bank: %w", err)
	}
	b.CreatedAt = decodeTime(createdAt)
	qs, err := unmarshalQuestions(questions)
	if err != nil {
		return nil, fmt.Errorf("question bank %q: %w", b.ID, err)
	}
	b.Questions = qs
	return &b, nil
}

func marshalQuestions(qs []quiz.Question) (string, error) {
	if qs == nil {
		qs = []quiz.Question{}
	}
	b, err := json.Marshal(qs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalQuestions(data string) ([]quiz.Question, error) {
	var qs []quiz.Question
	if err := json.Unmarshal([]byte(data), &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
