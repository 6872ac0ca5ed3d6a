package wrong

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	prac "github.com/repeatio/examweb/internal/practice"
	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/router"
	"github.com/repeatio/examweb/internal/screen"
	practicescreen "github.com/repeatio/examweb/internal/screens/practice"
	"github.com/repeatio/examweb/internal/store"
)

func testDeps(t *testing.T) screen.Deps {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "wrong.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return screen.Deps{
		Banks:    s.Banks(),
		Answers:  s.Answers(),
		Wrong:    s.Wrong(),
		Progress: s.Progress(),
		Logger:   slog.New(slog.DiscardHandler),
	}
}

// seed stores two wrong questions in bank a and one in bank b, with bank
// b's the most recent.
func seed(t *testing.T, deps screen.Deps) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	entries := []store.WrongQuestion{
		{BankID: "a", BankName: "Algebra", Question: quiz.Question{ID: "q1", Type: quiz.TypeJudge, Content: "0 is even.", Answer: quiz.JudgeTrue}, LastWrongTime: base},
		{BankID: "a", BankName: "Algebra", Question: quiz.Question{ID: "q2", Type: quiz.TypeJudge, Content: "1 is prime.", Answer: quiz.JudgeFalse}, LastWrongTime: base.Add(time.Minute)},
		{BankID: "b", BankName: "Biology", Question: quiz.Question{ID: "q1", Type: quiz.TypeJudge, Content: "Cells divide.", Answer: quiz.JudgeTrue}, LastWrongTime: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		entries[i].WrongCount = 1
		if err := deps.Wrong.Upsert(context.Background(), &entries[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func loaded(t *testing.T, deps screen.Deps) *WrongScreen {
	t.Helper()
	s := New(deps)
	s.Update(s.Init()())
	return s
}

func down() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyDown} }

func TestGroupByBank(t *testing.T) {
	wqs := []store.WrongQuestion{
		{BankID: "b"}, {BankID: "a"}, {BankID: "b"},
	}
	groups := groupByBank(wqs)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].BankID != "b" || len(groups[0].Items) != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
}

func TestWrongScreen_Empty(t *testing.T) {
	s := loaded(t, testDeps(t))
	if !strings.Contains(s.View(100, 30), "No wrong questions") {
		t.Error("expected the empty state")
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("Enter with an empty set should do nothing")
	}
}

func TestWrongScreen_Grouped(t *testing.T) {
	deps := testDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	if len(s.all) != 3 || len(s.groups) != 2 {
		t.Fatalf("all = %d, groups = %d", len(s.all), len(s.groups))
	}
	if s.groups[0].BankName != "Biology" {
		t.Errorf("most recent bank first, got %q", s.groups[0].BankName)
	}

	s.Update(down())
	s.Update(down())
	view := s.View(100, 30)
	if !strings.Contains(view, "1 is prime.") {
		t.Error("selected bank should list its questions")
	}
}

func TestWrongScreen_PracticeAll(t *testing.T) {
	deps := testDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	ps, ok := msg.Screen.(*practicescreen.PracticeScreen)
	if !ok {
		t.Fatalf("pushed %T", msg.Screen)
	}
	if ps.Title() != prac.AllWrongName {
		t.Errorf("Title = %q, want %q", ps.Title(), prac.AllWrongName)
	}
}

func TestWrongScreen_PracticeBank(t *testing.T) {
	deps := testDeps(t)
	seed(t, deps)
	s := loaded(t, deps)
	s.Update(down())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msg := cmd().(router.PushScreenMsg)
	if got, want := msg.Screen.Title(), "Biology"+prac.WrongSetSuffix; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
}

func TestWrongScreen_ClearBank(t *testing.T) {
	deps := testDeps(t)
	seed(t, deps)
	s := loaded(t, deps)
	s.Update(down())
	s.Update(down())

	s.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if s.confirm == nil || !strings.Contains(s.confirm.Prompt, "Algebra") {
		t.Fatal("C should ask to clear the selected bank")
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	_, cmd = s.Update(cmd())
	_, cmd = s.Update(cmd())
	s.Update(cmd())

	if len(s.all) != 1 || s.all[0].BankID != "b" {
		t.Errorf("after clearing Algebra: %+v", s.all)
	}
	if s.selected > len(s.groups) {
		t.Errorf("selection %d out of range", s.selected)
	}
}

func TestWrongScreen_ClearAll(t *testing.T) {
	deps := testDeps(t)
	seed(t, deps)
	s := loaded(t, deps)

	s.Update(tea.KeyPressMsg{Code: 'c', Text: "c"})
	if s.confirm == nil || !strings.Contains(s.confirm.Prompt, "all 3") {
		t.Fatal("C on the all-banks row should ask to clear everything")
	}
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'y', Text: "y"})
	_, cmd = s.Update(cmd())
	_, cmd = s.Update(cmd())
	s.Update(cmd())

	if len(s.all) != 0 {
		t.Errorf("%d wrong questions left", len(s.all))
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("短文本", 10); got != "短文本" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long = %q", got)
	}
}
