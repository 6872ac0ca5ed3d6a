package importer

import (
	"fmt"
	"strings"

	"github.com/repeatio/examweb/internal/quiz"
)

// Column layout of a question row.
const (
	colType = iota
	colContent
	colOptionA
	colOptionB
	colOptionC
	colOptionD
	colAnswer
	colExplanation
)

// minRowCells is the shortest row that can carry a question: everything up
// to and including the answer column.
const minRowCells = colAnswer + 1

// ParseRows turns spreadsheet rows into a bank named name. Rows that cannot
// become a valid question are skipped and reported; the import fails only
// when no row survives.
func (im *Importer) ParseRows(name string, rows [][]string) (*Result, error) {
	res := &Result{}
	var questions []quiz.Question

	for i, row := range rows {
		q, reason := im.parseRow(row)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Row: i + 1, Reason: reason})
			im.logger.Warn("row skipped", "bank", name, "row", i+1, "reason", reason)
			continue
		}
		if err := validateQuestion(q); err != nil {
			res.Skipped = append(res.Skipped, Skipped{Row: i + 1, Reason: err.Error()})
			im.logger.Warn("row skipped", "bank", name, "row", i+1, "reason", err)
			continue
		}
		im.warnUnmatchedAnswer(name, i+1, q)
		questions = append(questions, *q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoQuestions)
	}
	res.Bank = im.newBank(name, questions)
	return res, nil
}

// parseRow returns the question for a row or the reason it was skipped.
func (im *Importer) parseRow(row []string) (*quiz.Question, string) {
	if len(row) < minRowCells {
		return nil, fmt.Sprintf("only %d cells, need %d", len(row), minRowCells)
	}

	typeCell := cell(row, colType)
	content := cell(row, colContent)
	answer := cell(row, colAnswer)
	if typeCell == "" || content == "" || answer == "" {
		return nil, "missing type, content or answer"
	}

	qt, ok := quiz.ParseType(typeCell)
	if !ok {
		return nil, fmt.Sprintf("unknown question type %q", typeCell)
	}

	q := &quiz.Question{
		ID:          im.newID(),
		Type:        qt,
		Content:     content,
		Answer:      answer,
		Explanation: cell(row, colExplanation),
	}

	if qt == quiz.TypeChoice {
		for c := colOptionA; c <= colOptionD; c++ {
			if opt := cell(row, c); opt != "" {
				q.Options = append(q.Options, opt)
			}
		}
		if len(q.Options) < 2 {
			return nil, "choice question needs at least 2 options"
		}
		q.Answer = quiz.NormalizeChoiceAnswer(answer)
	} else if judged, ok := quiz.NormalizeJudgeAnswer(answer); ok {
		q.Answer = judged
	}
	return q, ""
}

// warnUnmatchedAnswer logs a choice question whose answer label points past
// its options. Blank option cells are dropped, so a row can keep an answer
// such as "C" with only two options left. The question is still imported.
func (im *Importer) warnUnmatchedAnswer(bank string, row int, q *quiz.Question) {
	if q.Type != quiz.TypeChoice {
		return
	}
	if i := quiz.LabelIndex(q.Answer); i >= 0 && i < len(q.Options) {
		return
	}
	im.logger.Warn("answer matches no option", "bank", bank, "row", row,
		"answer", q.Answer, "options", len(q.Options))
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
