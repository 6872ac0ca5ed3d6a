package practice

import (
	"github.com/repeatio/examweb/internal/quiz"
	"github.com/repeatio/examweb/internal/store"
)

// WrongSetSuffix is appended to a bank name for its wrong question run.
const WrongSetSuffix = " - 错题集"

// AllWrongName names the run over every bank's wrong questions.
const AllWrongName = "全部错题"

// Item is one question of a run together with the bank it belongs to.
// Answer records and wrong set updates always target BankID.
type Item struct {
	BankID   string
	BankName string
	Question quiz.Question
}

// Source is the material a session practices. ID keys the bank's progress
// row and is empty for a run across all banks.
type Source struct {
	ID             string
	Name           string
	Items          []Item
	WrongQuestions bool
}

// FromBank practices every question of a bank in import order.
func FromBank(b *quiz.QuestionBank) Source {
	items := make([]Item, len(b.Questions))
	for i, q := range b.Questions {
		items[i] = Item{BankID: b.ID, BankName: b.Name, Question: q.Clone()}
	}
	return Source{ID: b.ID, Name: b.Name, Items: items}
}

// FromWrongQuestions practices a set of wrong questions. Pass the bank when
// the set belongs to a single bank, nil for the set across all banks.
func FromWrongQuestions(bank *quiz.QuestionBank, wqs []store.WrongQuestion) Source {
	src := Source{Name: AllWrongName, WrongQuestions: true}
	if bank != nil {
		src.ID = bank.ID
		src.Name = bank.Name + WrongSetSuffix
	}
	src.Items = make([]Item, len(wqs))
	for i, wq := range wqs {
		src.Items[i] = Item{BankID: wq.BankID, BankName: wq.BankName, Question: wq.Question.Clone()}
	}
	return src
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Question = it.Question.Clone()
	}
	return out
}
