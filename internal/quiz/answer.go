package quiz

import "strings"

// OptionLabel returns the answer label for the option at index i ("A", "B", ...).
func OptionLabel(i int) string {
	return string(rune('A' + i))
}

// LabelIndex returns the option index for a label such as "B", or -1.
func LabelIndex(label string) int {
	label = strings.ToUpper(strings.TrimSpace(label))
	if len(label) != 1 {
		return -1
	}
	i := int(label[0] - 'A')
	if i < 0 || i >= MaxOptions {
		return -1
	}
	return i
}

// Choices returns the answers a learner can pick for this question, in
// display order: option labels for choice questions, the two judge literals
// otherwise.
func (q Question) Choices() []string {
	if q.Type == TypeJudge {
		return []string{JudgeTrue, JudgeFalse}
	}
	labels := make([]string, len(q.Options))
	for i := range q.Options {
		labels[i] = OptionLabel(i)
	}
	return labels
}

// IsCorrect reports whether answer matches the question's answer.
func (q Question) IsCorrect(answer string) bool {
	return strings.TrimSpace(answer) == strings.TrimSpace(q.Answer)
}

// NormalizeJudgeAnswer maps common spellings of true/false onto the judge
// literals. ok is false when s is not recognised.
func NormalizeJudgeAnswer(s string) (answer string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case JudgeTrue, "正确", "√", "✓", "t", "true", "y", "yes":
		return JudgeTrue, true
	case JudgeFalse, "错误", "×", "✗", "x", "f", "false", "n", "no":
		return JudgeFalse, true
	}
	return "", false
}

// NormalizeChoiceAnswer upper-cases and trims a choice answer label.
func NormalizeChoiceAnswer(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseType maps a spreadsheet type cell onto a QuestionType.
func ParseType(s string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "选择题", string(TypeChoice):
		return TypeChoice, true
	case "判断题", string(TypeJudge):
		return TypeJudge, true
	}
	return "", false
}

// TypeLabel returns the display label for a question type.
func TypeLabel(t QuestionType) string {
	if t == TypeJudge {
		return "判断题"
	}
	return "选择题"
}
