package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repeatio/examweb/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBank(id string) *quiz.QuestionBank {
	return &quiz.QuestionBank{
		ID:        id,
		Name:      "Bank " + id,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.TypeChoice, Content: "2+2?", Options: []string{"3", "4"}, Answer: "B"},
			{ID: "q2", Type: quiz.TypeJudge, Content: "Sky is blue", Answer: quiz.JudgeTrue, Explanation: "Rayleigh"},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	require.NotNil(t, s.DB())

	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion, v)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)

	var unavailable *ErrStorageUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

func TestMigrateFromVersionOneKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	old, err := openAtVersion(path, 1)
	require.NoError(t, err)
	v, err := old.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// Version 1 and 2 databases hold millisecond timestamps.
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	answered := time.Date(2025, 3, 2, 10, 30, 0, 250_000_000, time.UTC)
	_, err = old.DB().Exec(`INSERT INTO question_banks (id, name, created_at, questions) VALUES (?, ?, ?, ?)`,
		"b1", "Bank b1", created.UnixMilli(),
		`[{"id":"q1","type":"choice","content":"2+2?","options":["3","4"],"answer":"B"},{"id":"q2","type":"judge","content":"Sky is blue","answer":"对"}]`)
	require.NoError(t, err)
	_, err = old.DB().Exec(`INSERT INTO answer_records (id, question_bank_id, question_id, user_answer, is_correct, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		1, "b1", "q1", "A", 0, answered.UnixMilli())
	require.NoError(t, err)
	require.NoError(t, old.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	v, err = s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion, v)

	bank, err := s.Banks().Get(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, bank)
	assert.Len(t, bank.Questions, 2)
	assert.True(t, created.Equal(bank.CreatedAt), "created_at = %v", bank.CreatedAt)

	recs, err := s.Answers().ByBank(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, answered.Equal(recs[0].Timestamp), "timestamp = %v", recs[0].Timestamp)

	require.NoError(t, s.Progress().Save(ctx, &PracticeProgress{QuestionBankID: "b1", Mode: quiz.ModeSequential}))
}

func TestSubMillisecondTimestampsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2025, 4, 5, 6, 7, 8, 123_456_789, time.UTC)

	bank := testBank("b1")
	bank.CreatedAt = ts
	require.NoError(t, s.Banks().Save(ctx, bank))
	gotBank, err := s.Banks().Get(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, gotBank)
	assert.True(t, ts.Equal(gotBank.CreatedAt), "bank created_at = %v", gotBank.CreatedAt)

	require.NoError(t, s.Answers().Append(ctx, &AnswerRecord{QuestionBankID: "b1", QuestionID: "q1", UserAnswer: "A", Timestamp: ts}))
	recs, err := s.Answers().ByBank(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, ts.Equal(recs[0].Timestamp), "answer timestamp = %v", recs[0].Timestamp)

	q := bank.Questions[0]
	require.NoError(t, s.Wrong().Upsert(ctx, &WrongQuestion{BankID: "b1", BankName: "Bank b1", Question: q, LastWrongTime: ts.Add(-time.Second)}))
	require.NoError(t, s.Wrong().Upsert(ctx, &WrongQuestion{BankID: "b1", BankName: "Bank b1", Question: q, LastWrongTime: ts}))
	wq, err := s.Wrong().Get(ctx, WrongKey{BankID: "b1", QuestionID: "q1"})
	require.NoError(t, err)
	require.NotNil(t, wq)
	assert.True(t, ts.Equal(wq.LastWrongTime), "last wrong time = %v", wq.LastWrongTime)

	require.NoError(t, s.Progress().Save(ctx, &PracticeProgress{
		QuestionBankID: "b1",
		Questions:      bank.Questions,
		Mode:           quiz.ModeSequential,
		Timestamp:      ts,
	}))
	p, err := s.Progress().Get(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, ts.Equal(p.Timestamp), "progress timestamp = %v", p.Timestamp)
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.seq.Next(ctx, s.drv)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Banks().Save(ctx, testBank("b1")))
	require.NoError(t, s.Answers().Append(ctx, &AnswerRecord{QuestionBankID: "b1", QuestionID: "q1"}))
	require.NoError(t, s.Wrong().Upsert(ctx, &WrongQuestion{BankID: "b1", BankName: "Bank b1", Question: testBank("b1").Questions[0]}))
	require.NoError(t, s.Progress().Save(ctx, &PracticeProgress{QuestionBankID: "b1"}))

	require.NoError(t, s.Reset(ctx))

	n, err := s.Banks().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	wrong, err := s.Wrong().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, wrong)
	progress, err := s.Progress().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, progress)
	recs, err := s.Answers().ByBank(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDefaultDBPath_Env(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("EXAMWEB_DB", p)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.DirExists(t, filepath.Dir(p))
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EXAMWEB_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "examweb", "examweb.db"), got)
}
