package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// migration is one schema step. Steps never drop tables or rows, so
// upgrading keeps every row already stored.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "banks, answer records, wrong questions",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS question_banks (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				questions TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS answer_records (
				id INTEGER PRIMARY KEY,
				question_bank_id TEXT NOT NULL,
				question_id TEXT NOT NULL,
				user_answer TEXT NOT NULL,
				is_correct INTEGER NOT NULL,
				timestamp INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS answer_records_question_bank_id ON answer_records (question_bank_id)`,
			`CREATE INDEX IF NOT EXISTS answer_records_question_id ON answer_records (question_id)`,
			`CREATE TABLE IF NOT EXISTS wrong_questions (
				question_bank_id TEXT NOT NULL,
				question_id TEXT NOT NULL,
				question_bank_name TEXT NOT NULL,
				question TEXT NOT NULL,
				wrong_count INTEGER NOT NULL,
				last_wrong_time INTEGER NOT NULL,
				PRIMARY KEY (question_bank_id, question_id)
			)`,
			`CREATE INDEX IF NOT EXISTS wrong_questions_question_bank_id ON wrong_questions (question_bank_id)`,
			`CREATE TABLE IF NOT EXISTS global_sequence (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				next_val INTEGER NOT NULL DEFAULT 1
			)`,
			`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`,
		},
	},
	{
		version: 2,
		name:    "practice progress",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS practice_progress (
				question_bank_id TEXT PRIMARY KEY,
				questions TEXT NOT NULL,
				current_index INTEGER NOT NULL,
				answers TEXT NOT NULL,
				correct INTEGER NOT NULL,
				wrong INTEGER NOT NULL,
				mode TEXT NOT NULL,
				is_wrong_questions INTEGER NOT NULL,
				timestamp INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 3,
		name:    "nanosecond timestamps",
		stmts: []string{
			`UPDATE question_banks SET created_at = created_at * 1000000`,
			`UPDATE answer_records SET timestamp = timestamp * 1000000`,
			`UPDATE wrong_questions SET last_wrong_time = last_wrong_time * 1000000`,
			`UPDATE practice_progress SET timestamp = timestamp * 1000000`,
		},
	},
}

// LatestSchemaVersion is the version Open upgrades to.
var LatestSchemaVersion = migrations[len(migrations)-1].version

// migrate applies every migration above the current version up to target,
// each inside its own transaction together with its version marker.
func migrate(ctx context.Context, drv dialect.Driver, target int) error {
	err := execRaw(ctx, drv, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := currentVersion(ctx, drv)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}
		err := withTx(ctx, drv, func(tx dialect.Tx) error {
			for _, stmt := range m.stmts {
				if err := execRaw(ctx, tx, stmt); err != nil {
					return err
				}
			}
			_, err := execQuery(ctx, tx, builder.Insert("schema_version").
				Columns("version", "applied_at").
				Values(m.version, time.Now().UnixMilli()))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// currentVersion returns the highest applied schema version, 0 for a fresh
// database.
func currentVersion(ctx context.Context, conn dialect.ExecQuerier) (int, error) {
	var version int
	q := builder.Select("COALESCE(MAX(version), 0)").From(builder.Table("schema_version"))
	err := queryRows(ctx, conn, q, func(rows *entsql.Rows) error {
		return rows.Scan(&version)
	})
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
