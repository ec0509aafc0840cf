package model

import (
	"encoding/json"
	"time"
)

type Survey struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ShareToken  string     `json:"share_token,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID          string       `json:"id"`
	SurveyID    string       `json:"survey_id"`
	Type        QuestionType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	OrderIndex  int          `json:"order_index"`
	Options     []Option     `json:"options"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
	Value      string `json:"value,omitempty"`
	OrderIndex int    `json:"order_index"`
}

type Response struct {
	ID           string    `json:"id"`
	SurveyID     string    `json:"survey_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	RespondentID *string   `json:"respondent_id"`
	Answers      []Answer  `json:"answers"`
}

// Answer is a tagged union over its Question's type: exactly one of
// AnswerText (text), SelectedOptionID (multiple_choice) or ValueJSON
// (checkbox, a JSON array of option ids) carries the payload.
type Answer struct {
	ID               string          `json:"id"`
	ResponseID       string          `json:"response_id"`
	QuestionID       string          `json:"question_id"`
	AnswerText       *string         `json:"answer_text"`
	SelectedOptionID *string         `json:"selected_option_id"`
	ValueJSON        json.RawMessage `json:"value_json,omitempty"`
}

// Question returns the survey's question with the given id.
func (s Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Option returns the question's option with the given id.
func (q Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
