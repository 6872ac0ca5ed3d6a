package practice

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "practice.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDeps(s *store.Store) Deps {
	clock := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	return Deps{
		Answers:  s.Answers(),
		Wrong:    s.Wrong(),
		Progress: s.Progress(),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		Rand: rand.New(rand.NewPCG(1, 2)),
	}
}

func twoQuestionBank() *quiz.QuestionBank {
	return &quiz.QuestionBank{
		ID:   "bank-1",
		Name: "Basics",
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.TypeChoice, Content: "Pick A", Options: []string{"a", "b"}, Answer: "A", Explanation: "A is a"},
			{ID: "q2", Type: quiz.TypeJudge, Content: "True?", Answer: quiz.JudgeTrue},
		},
	}
}

func manyQuestionBank(n int) *quiz.QuestionBank {
	b := &quiz.QuestionBank{ID: "bank-n", Name: "Many"}
	for i := 0; i < n; i++ {
		b.Questions = append(b.Questions, quiz.Question{
			ID: string(rune('a' + i)), Type: quiz.TypeJudge, Content: "?", Answer: quiz.JudgeTrue,
		})
	}
	return b
}

func questionIDs(qs []quiz.Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStart_EmptySource(t *testing.T) {
	s := openTestStore(t)
	_, err := Start(context.Background(), testDeps(s), Source{ID: "x"}, Options{})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestStart_SequentialKeepsImportOrderAndSavesProgress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(twoQuestionBank()), Options{Mode: quiz.ModeSequential})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := questionIDs(sess.Questions()); !equalIDs(got, []string{"q1", "q2"}) {
		t.Errorf("order = %v, want [q1 q2]", got)
	}

	p, err := st.Progress().Get(ctx, "bank-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p == nil {
		t.Fatal("expected progress row after start")
	}
	if p.CurrentIndex != 0 || p.Mode != quiz.ModeSequential {
		t.Errorf("progress = index %d mode %s, want 0 sequential", p.CurrentIndex, p.Mode)
	}
}

func TestEndToEnd_WrongThenRight(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bank := twoQuestionBank()
	if err := st.Banks().Save(ctx, bank); err != nil {
		t.Fatalf("save bank: %v", err)
	}

	sess, err := Start(ctx, testDeps(st), FromBank(bank), Options{Mode: quiz.ModeSequential})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := sess.Answer(ctx, "B")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.Correct || res.CorrectAnswer != "A" || res.Explanation != "A is a" {
		t.Errorf("result = %+v, want incorrect with answer A", res)
	}

	key := store.WrongKey{BankID: "bank-1", QuestionID: "q1"}
	wq, err := st.Wrong().Get(ctx, key)
	if err != nil {
		t.Fatalf("get wrong: %v", err)
	}
	if wq == nil || wq.WrongCount != 1 || wq.BankName != "Basics" {
		t.Fatalf("wrong entry = %+v, want count 1 in Basics", wq)
	}

	if err := sess.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	res, err = sess.Answer(ctx, "A")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct {
		t.Error("expected correct answer")
	}

	wq, err = st.Wrong().Get(ctx, key)
	if err != nil {
		t.Fatalf("get wrong: %v", err)
	}
	if wq != nil {
		t.Errorf("wrong entry still present: %+v", wq)
	}

	recs, err := st.Answers().ByBank(ctx, "bank-1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].IsCorrect || !recs[1].IsCorrect {
		t.Errorf("records = %+v, want wrong then right", recs)
	}
}

func TestResume_Fidelity(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	bank := &quiz.QuestionBank{ID: "b", Name: "B", Questions: []quiz.Question{
		{ID: "q1", Type: quiz.TypeJudge, Content: "1", Answer: quiz.JudgeTrue},
		{ID: "q2", Type: quiz.TypeJudge, Content: "2", Answer: quiz.JudgeTrue},
		{ID: "q3", Type: quiz.TypeJudge, Content: "3", Answer: quiz.JudgeFalse},
	}}
	stored := []quiz.Question{bank.Questions[0], bank.Questions[2], bank.Questions[1]}
	err := st.Progress().Save(ctx, &store.PracticeProgress{
		QuestionBankID: "b",
		Questions:      stored,
		CurrentIndex:   1,
		Answers:        map[int]store.AnswerState{0: {Answer: quiz.JudgeTrue, IsCorrect: true}},
		Stats:          store.Stats{Correct: 1},
		Mode:           quiz.ModeRandom,
	})
	if err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	sess, err := Start(ctx, testDeps(st), FromBank(bank), Options{Mode: quiz.ModeRandom, Resume: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !sess.Resumed() {
		t.Fatal("expected resumed session")
	}
	if got := questionIDs(sess.Questions()); !equalIDs(got, []string{"q1", "q3", "q2"}) {
		t.Errorf("order = %v, want [q1 q3 q2]", got)
	}
	if sess.Index() != 1 {
		t.Errorf("index = %d, want 1", sess.Index())
	}
	if a, ok := sess.AnswerAt(0); !ok || !a.IsCorrect {
		t.Errorf("answer 0 = %+v, %v", a, ok)
	}
	if sess.Stats().Correct != 1 {
		t.Errorf("correct = %d, want 1", sess.Stats().Correct)
	}
	if sess.Mode() != quiz.ModeRandom {
		t.Errorf("mode = %s, want random", sess.Mode())
	}
}

func TestResume_WithoutProgressStartsFresh(t *testing.T) {
	st := openTestStore(t)
	sess, err := Start(context.Background(), testDeps(st), FromBank(twoQuestionBank()), Options{Resume: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Resumed() {
		t.Error("expected fresh session")
	}
	if sess.Index() != 0 {
		t.Errorf("index = %d, want 0", sess.Index())
	}
}

func TestResume_UnreadableProgressIsKept(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bank := twoQuestionBank()

	err := st.Progress().Save(ctx, &store.PracticeProgress{
		QuestionBankID: bank.ID,
		Questions:      bank.Questions,
		Mode:           quiz.ModeSequential,
	})
	if err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	if _, err := st.DB().Exec(`UPDATE practice_progress SET questions = 'not json' WHERE question_bank_id = ?`, bank.ID); err != nil {
		t.Fatalf("corrupt progress: %v", err)
	}

	sess, err := Start(ctx, testDeps(st), FromBank(bank), Options{Resume: true})
	var unavailable *store.ErrStorageUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if sess == nil || sess.Resumed() {
		t.Fatalf("expected a fresh usable session, got %+v", sess)
	}
	if sess.Len() != len(bank.Questions) {
		t.Errorf("len = %d, want %d", sess.Len(), len(bank.Questions))
	}

	var raw string
	if err := st.DB().QueryRow(`SELECT questions FROM practice_progress WHERE question_bank_id = ?`, bank.ID).Scan(&raw); err != nil {
		t.Fatalf("read stored row: %v", err)
	}
	if raw != "not json" {
		t.Errorf("stored progress was overwritten: %q", raw)
	}
}

func TestFinish_DeletesProgress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(twoQuestionBank()), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sess.Answer(ctx, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if finished, err := sess.Next(ctx); err != nil || finished {
		t.Fatalf("next = %v, %v; want not finished", finished, err)
	}
	if _, err := sess.Answer(ctx, quiz.JudgeFalse); err != nil {
		t.Fatalf("answer: %v", err)
	}
	finished, err := sess.Next(ctx)
	if err != nil || !finished {
		t.Fatalf("next = %v, %v; want finished", finished, err)
	}
	if sess.Phase() != PhaseFinished {
		t.Errorf("phase = %v, want finished", sess.Phase())
	}

	p, err := st.Progress().Get(ctx, "bank-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if p != nil {
		t.Errorf("progress survived completion: %+v", p)
	}

	sum := sess.Summary()
	if sum.Total != 2 || sum.Correct != 1 || sum.Wrong != 1 || sum.Accuracy != 50 {
		t.Errorf("summary = %+v", sum)
	}
	if _, err := sess.Answer(ctx, "A"); !errors.Is(err, ErrFinished) {
		t.Errorf("answer after finish err = %v, want ErrFinished", err)
	}
}

func TestAnswer_OnlyOncePerPosition(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(twoQuestionBank()), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sess.Answer(ctx, "B"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := sess.Answer(ctx, "A"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("err = %v, want ErrAlreadyAnswered", err)
	}
	if sess.Stats().Total() != 1 {
		t.Errorf("stats = %+v, want one answer", sess.Stats())
	}
}

func TestNavigation_PreviousNext(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(twoQuestionBank()), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Previous(ctx); err != nil || sess.Index() != 0 {
		t.Fatalf("previous at start = %d, %v", sess.Index(), err)
	}
	if _, err := sess.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if !sess.IsLast() {
		t.Error("expected last position")
	}
	p, err := st.Progress().Get(ctx, "bank-1")
	if err != nil || p == nil || p.CurrentIndex != 1 {
		t.Fatalf("progress after next = %+v, %v", p, err)
	}
	if err := sess.Previous(ctx); err != nil || sess.Index() != 0 {
		t.Fatalf("previous = %d, %v", sess.Index(), err)
	}
}

func TestAutoAdvance_StaleTokenIgnored(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(manyQuestionBank(3)), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := sess.Answer(ctx, quiz.JudgeTrue)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.AutoAdvance {
		t.Fatal("expected auto-advance after a correct answer")
	}

	// The user navigates away before the delay elapses.
	if _, err := sess.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	advanced, err := sess.AdvanceIfCurrent(ctx, res.Token)
	if err != nil || advanced {
		t.Fatalf("stale advance = %v, %v; want ignored", advanced, err)
	}
	if sess.Index() != 1 {
		t.Errorf("index = %d, want 1", sess.Index())
	}

	res, err = sess.Answer(ctx, quiz.JudgeTrue)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	advanced, err = sess.AdvanceIfCurrent(ctx, res.Token)
	if err != nil || !advanced {
		t.Fatalf("advance = %v, %v; want advanced", advanced, err)
	}
	if sess.Index() != 2 {
		t.Errorf("index = %d, want 2", sess.Index())
	}

	// No auto-advance off the last question.
	res, err = sess.Answer(ctx, quiz.JudgeTrue)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.AutoAdvance {
		t.Error("expected no auto-advance on the last question")
	}
}

func TestAutoAdvance_NotAfterWrongAnswer(t *testing.T) {
	st := openTestStore(t)
	sess, err := Start(context.Background(), testDeps(st), FromBank(manyQuestionBank(2)), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := sess.Answer(context.Background(), quiz.JudgeFalse)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.AutoAdvance {
		t.Error("expected no auto-advance after a wrong answer")
	}
}

func TestRandom_PermutesAllQuestions(t *testing.T) {
	st := openTestStore(t)
	bank := manyQuestionBank(8)

	sess, err := Start(context.Background(), testDeps(st), FromBank(bank), Options{Mode: quiz.ModeRandom})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	got := questionIDs(sess.Questions())
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	seen := map[string]bool{}
	for _, id := range got {
		seen[id] = true
	}
	if len(seen) != 8 {
		t.Errorf("questions repeated or lost: %v", got)
	}
	if got := questionIDs(bank.Questions); got[0] != "a" {
		t.Errorf("bank mutated: %v", got)
	}
}

func TestRandom_UnansweredFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bank := manyQuestionBank(4)

	for _, id := range []string{"a", "c"} {
		if err := st.Answers().Append(ctx, &store.AnswerRecord{QuestionBankID: bank.ID, QuestionID: id}); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	sess, err := Start(ctx, testDeps(st), FromBank(bank), Options{Mode: quiz.ModeRandom, UnansweredFirst: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	got := questionIDs(sess.Questions())
	if len(got) != 2 {
		t.Fatalf("questions = %v, want only unanswered b and d", got)
	}
	for _, id := range got {
		if id != "b" && id != "d" {
			t.Errorf("unexpected answered question %q", id)
		}
	}
}

func TestRandom_UnansweredFirstFallsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	bank := manyQuestionBank(3)

	for _, q := range bank.Questions {
		if err := st.Answers().Append(ctx, &store.AnswerRecord{QuestionBankID: bank.ID, QuestionID: q.ID}); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	sess, err := Start(ctx, testDeps(st), FromBank(bank), Options{Mode: quiz.ModeRandom, UnansweredFirst: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Len() != 3 {
		t.Errorf("len = %d, want full set of 3", sess.Len())
	}
	for _, q := range sess.Questions() {
		if !q.Answered {
			t.Errorf("question %s not marked answered", q.ID)
		}
	}
}

func TestWrongQuestionRun_NoProgressAndOriginBank(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	qa := quiz.Question{ID: "q1", Type: quiz.TypeJudge, Content: "a", Answer: quiz.JudgeTrue}
	qb := quiz.Question{ID: "q1", Type: quiz.TypeJudge, Content: "b", Answer: quiz.JudgeFalse}
	for _, wq := range []store.WrongQuestion{
		{BankID: "b1", BankName: "One", Question: qa},
		{BankID: "b2", BankName: "Two", Question: qb},
	} {
		if err := st.Wrong().Upsert(ctx, &wq); err != nil {
			t.Fatalf("seed wrong: %v", err)
		}
	}
	all, err := st.Wrong().All(ctx)
	if err != nil {
		t.Fatalf("all wrong: %v", err)
	}

	src := FromWrongQuestions(nil, all)
	if src.Name != AllWrongName || !src.WrongQuestions {
		t.Fatalf("source = %+v", src)
	}
	sess, err := Start(ctx, testDeps(st), src, Options{Resume: true})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < sess.Len(); i++ {
		item := sess.Current()
		if _, err := sess.Answer(ctx, item.Question.Answer); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if _, err := sess.Next(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}
	}

	left, err := st.Wrong().All(ctx)
	if err != nil {
		t.Fatalf("all wrong: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("wrong set = %+v, want empty", left)
	}
	for _, bank := range []string{"b1", "b2"} {
		recs, err := st.Answers().ByBank(ctx, bank)
		if err != nil {
			t.Fatalf("records: %v", err)
		}
		if len(recs) != 1 {
			t.Errorf("bank %s records = %d, want 1", bank, len(recs))
		}
	}
	rows, err := st.Progress().All(ctx)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("wrong question run saved progress: %+v", rows)
	}
}

func TestFromWrongQuestions_SingleBankName(t *testing.T) {
	bank := twoQuestionBank()
	src := FromWrongQuestions(bank, []store.WrongQuestion{{BankID: bank.ID, BankName: bank.Name, Question: bank.Questions[0]}})
	if src.Name != "Basics - 错题集" {
		t.Errorf("name = %q", src.Name)
	}
	if src.ID != bank.ID {
		t.Errorf("id = %q, want %q", src.ID, bank.ID)
	}
}

func TestRestart_ClearsAnswersAndRewritesProgress(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	sess, err := Start(ctx, testDeps(st), FromBank(twoQuestionBank()), Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sess.Answer(ctx, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := sess.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	tok := sess.Token()

	if err := sess.Restart(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if sess.Index() != 0 || sess.Stats().Total() != 0 {
		t.Errorf("after restart index %d stats %+v", sess.Index(), sess.Stats())
	}
	if sess.Token() == tok {
		t.Error("restart must invalidate pending advances")
	}
	p, err := st.Progress().Get(ctx, "bank-1")
	if err != nil || p == nil {
		t.Fatalf("progress = %+v, %v", p, err)
	}
	if p.CurrentIndex != 0 || len(p.Answers) != 0 {
		t.Errorf("progress = %+v, want fresh", p)
	}
}

type failingProgress struct{ store.ProgressRepo }

func (failingProgress) Save(context.Context, *store.PracticeProgress) error {
	return &store.ErrStorageUnavailable{Op: "save practice progress", Err: errors.New("disk full")}
}

func TestPersistenceFailure_KeepsWorkingInMemory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	deps := testDeps(st)
	deps.Progress = failingProgress{st.Progress()}

	sess, err := Start(ctx, deps, FromBank(twoQuestionBank()), Options{})
	var unavailable *store.ErrStorageUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want ErrStorageUnavailable", err)
	}
	if sess == nil {
		t.Fatal("expected a usable session")
	}

	res, err := sess.Answer(ctx, "A")
	if err == nil {
		t.Error("expected save error to surface")
	}
	if !res.Correct || sess.Stats().Correct != 1 {
		t.Errorf("in-memory state not updated: %+v %+v", res, sess.Stats())
	}

	recs, rerr := st.Answers().ByBank(ctx, "bank-1")
	if rerr != nil {
		t.Fatalf("records: %v", rerr)
	}
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1", len(recs))
	}
}
