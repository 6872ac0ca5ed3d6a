package importer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/repeatio/examweb/internal/quiz"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func questionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(questionStructLevel, quiz.Question{})
	})
	return validate
}

// questionStructLevel enforces the rules that depend on the question type.
func questionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(quiz.Question)

	switch q.Type {
	case quiz.TypeChoice:
		if n := len(q.Options); n < 2 || n > quiz.MaxOptions {
			sl.ReportError(q.Options, "options", "Options", "choiceoptions", fmt.Sprint(n))
		}
	case quiz.TypeJudge:
		if len(q.Options) > 0 {
			sl.ReportError(q.Options, "options", "Options", "judgeoptions", "")
		}
		if q.Answer != quiz.JudgeTrue && q.Answer != quiz.JudgeFalse {
			sl.ReportError(q.Answer, "answer", "Answer", "judgeanswer", q.Answer)
		}
	}
}

// validateQuestion checks a parsed question and describes every violation.
func validateQuestion(q *quiz.Question) error {
	err := questionValidator().Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	case "oneof":
		return fmt.Sprintf("type must be one of %s", fe.Param())
	case "max":
		return fmt.Sprintf("at most %s options", fe.Param())
	case "choiceoptions":
		return fmt.Sprintf("choice question needs 2 to %d options, has %s", quiz.MaxOptions, fe.Param())
	case "judgeoptions":
		return "judge question cannot have options"
	case "judgeanswer":
		return fmt.Sprintf("judge answer must be %s or %s, got %q", quiz.JudgeTrue, quiz.JudgeFalse, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
