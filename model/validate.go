package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

var (
	ErrUnknownQuestionType   = errors.New("unknown question type")
	ErrInvalidOptionsForType = errors.New("options not allowed for question type")
	ErrInvalidAnswerShape    = errors.New("answer shape does not match question type")
)

// ValidateQuestion checks the question against the type vocabulary and
// rejects configured options on types that take none.
func ValidateQuestion(q Question) error {
	if !q.Type.Valid() {
		return errors.Wrapf(ErrUnknownQuestionType, "%q", q.Type)
	}
	if len(q.Options) > 0 && !q.Type.HasOptions() {
		return errors.Wrapf(ErrInvalidOptionsForType, "%d options on %q question", len(q.Options), q.Type)
	}
	return nil
}

// ValidateAnswer enforces the tagged-union shape of an answer against its
// question's type. A fully blank answer passes: the submission flow records
// unanswered questions too. Fields that are set must match the variant, and
// referenced options must belong to the question.
func ValidateAnswer(q Question, a Answer) error {
	switch q.Type {
	case TypeMultipleChoice:
		if a.AnswerText != nil || len(a.ValueJSON) > 0 {
			return errors.Wrapf(ErrInvalidAnswerShape, "question %s is multiple_choice", q.ID)
		}
		if a.SelectedOptionID != nil {
			if _, ok := q.Option(*a.SelectedOptionID); !ok {
				return errors.Wrapf(ErrInvalidAnswerShape, "option %s does not belong to question %s", *a.SelectedOptionID, q.ID)
			}
		}
	case TypeCheckbox:
		if a.AnswerText != nil || a.SelectedOptionID != nil {
			return errors.Wrapf(ErrInvalidAnswerShape, "question %s is checkbox", q.ID)
		}
		if len(a.ValueJSON) > 0 {
			var ids []string
			if err := json.Unmarshal(a.ValueJSON, &ids); err != nil {
				return errors.Wrapf(ErrInvalidAnswerShape, "question %s expects an array of option ids", q.ID)
			}
			for _, id := range ids {
				if _, ok := q.Option(id); !ok {
					return errors.Wrapf(ErrInvalidAnswerShape, "option %s does not belong to question %s", id, q.ID)
				}
			}
		}
	default:
		// Text and the premium placeholders accept free text only.
		if a.SelectedOptionID != nil || len(a.ValueJSON) > 0 {
			return errors.Wrapf(ErrInvalidAnswerShape, "question %s takes free text", q.ID)
		}
	}
	return nil
}
