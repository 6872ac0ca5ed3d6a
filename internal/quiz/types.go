package quiz

import "time"

// QuestionType distinguishes multiple-choice from true/false questions.
type QuestionType string

const (
	TypeChoice QuestionType = "choice"
	TypeJudge  QuestionType = "judge"
)

// Judge answers are stored as these two literals.
const (
	JudgeTrue  = "对"
	JudgeFalse = "错"
)

// MaxOptions is the number of option labels a choice question can use (A-D).
const MaxOptions = 4

// Mode selects how a practice run orders its questions.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeRandom     Mode = "random"
)

// Question is a single imported question. Everything except Answered is
// immutable once the question has been stored.
type Question struct {
	ID          string       `json:"id" validate:"required"`
	Type        QuestionType `json:"type" validate:"required,oneof=choice judge"`
	Content     string       `json:"content" validate:"required"`
	Options     []string     `json:"options,omitempty" validate:"max=4,dive,required"`
	Answer      string       `json:"answer" validate:"required"`
	Explanation string       `json:"explanation"`

	// Answered is a transient marker set when the question already has
	// answer records. It is never read back as stored truth.
	Answered bool `json:"answered,omitempty"`
}

// QuestionBank is a named, ordered collection of questions imported as one
// unit. Question order is the original import order.
type QuestionBank struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	return c
}

// Clone returns a deep copy of the bank, including every question.
func (b QuestionBank) Clone() QuestionBank {
	c := b
	c.Questions = CloneQuestions(b.Questions)
	return c
}

// CloneQuestions deep-copies a question slice.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
