package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableBanks    = "question_banks"
	tableAnswers  = "answer_records"
	tableWrong    = "wrong_questions"
	tableProgress = "practice_progress"
)

// builder produces SQLite-flavoured statements for every repository.
var builder = entsql.Dialect(dialect.SQLite)

// encodeTime stores t as Unix nanoseconds so it reads back unchanged.
func encodeTime(t time.Time) int64 {
	return t.UnixNano()
}

func decodeTime(v int64) time.Time {
	return time.Unix(0, v).UTC()
}

// execQuery runs a statement that returns no rows and reports rows affected.
func execQuery(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res entsql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// queryRows runs a SELECT and calls scan once per row. Rows are fully drained
// and closed before it returns, which matters with a single pooled connection.
func queryRows(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// execRaw runs a literal statement such as DDL.
func execRaw(ctx context.Context, conn dialect.ExecQuerier, stmt string, args ...any) error {
	if args == nil {
		args = []any{}
	}
	return conn.Exec(ctx, stmt, args, nil)
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error so no partial writes become visible.
func withTx(ctx context.Context, drv dialect.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
