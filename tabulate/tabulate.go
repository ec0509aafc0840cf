// Package tabulate turns a survey and its stored responses into
// display-ready aggregates. Everything here is a pure function of its input;
// callers are responsible for refetching before tabulating.
package tabulate

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/surveyforge/surveyforge/model"
)

// NoAnswer is the display marker for a missing or empty answer.
const NoAnswer = "No answer"

type Summary struct {
	TotalResponses int               `json:"total_responses"`
	Questions      []QuestionSummary `json:"questions"`
}

type QuestionSummary struct {
	Question     model.Question `json:"question"`
	TotalAnswers int            `json:"total_answers"`
	Options      []OptionCount  `json:"options,omitempty"`
	Texts        []string       `json:"texts,omitempty"`
}

type OptionCount struct {
	Option     model.Option `json:"option"`
	Count      int          `json:"count"`
	Percentage int          `json:"percentage"`
}

type RespondentAnswer struct {
	Question model.Question `json:"question"`
	Text     string         `json:"text"`
}

// Summarize aggregates every response into per-question distributions.
// Questions come out in order_index order (stable on ties); choice questions
// get per-option counts and percentages, text questions a listing of resolved
// answers in response order. A choice question with zero configured options
// falls into the text listing too.
func Summarize(survey model.Survey, responses []model.Response) Summary {
	questions := orderedQuestions(survey.Questions)

	summary := Summary{
		TotalResponses: len(responses),
		Questions:      make([]QuestionSummary, 0, len(questions)),
	}
	for _, q := range questions {
		collected := collectAnswers(q.ID, responses)
		qs := QuestionSummary{Question: q, TotalAnswers: len(collected)}

		if q.Type.HasOptions() && len(q.Options) > 0 {
			qs.Options = countOptions(q, collected)
		} else {
			qs.Texts = make([]string, len(collected))
			for i := range collected {
				qs.Texts[i] = ResolveAnswerText(q, &collected[i])
			}
		}
		summary.Questions = append(summary.Questions, qs)
	}
	return summary
}

// ResolveAnswerText renders one answer for display. It is total: every input
// produces a string. The precedence order is significant and must not be
// reordered: answer_text wins over a selected option, which wins over
// value_json; unknown option ids degrade to the raw id, never an error.
func ResolveAnswerText(q model.Question, a *model.Answer) string {
	if a == nil {
		return NoAnswer
	}
	if a.AnswerText != nil && *a.AnswerText != "" {
		return *a.AnswerText
	}
	if a.SelectedOptionID != nil {
		if opt, ok := q.Option(*a.SelectedOptionID); ok {
			return opt.Label
		}
	}
	if len(a.ValueJSON) > 0 {
		var items []any
		if err := json.Unmarshal(a.ValueJSON, &items); err == nil {
			if len(items) == 0 {
				return NoAnswer
			}
			parts := make([]string, len(items))
			for i, item := range items {
				id, ok := item.(string)
				if !ok {
					raw, _ := json.Marshal(item)
					parts[i] = string(raw)
					continue
				}
				if opt, ok := q.Option(id); ok {
					parts[i] = opt.Label
				} else {
					parts[i] = id
				}
			}
			return strings.Join(parts, ", ")
		}
		return string(a.ValueJSON)
	}
	return NoAnswer
}

// RespondentView renders one response against every question of the survey,
// in order_index order, substituting the marker where nothing was answered.
func RespondentView(survey model.Survey, response model.Response) []RespondentAnswer {
	byQuestion := make(map[string]*model.Answer, len(response.Answers))
	for i := range response.Answers {
		a := &response.Answers[i]
		if _, ok := byQuestion[a.QuestionID]; !ok {
			byQuestion[a.QuestionID] = a
		}
	}

	questions := orderedQuestions(survey.Questions)
	view := make([]RespondentAnswer, 0, len(questions))
	for _, q := range questions {
		view = append(view, RespondentAnswer{
			Question: q,
			Text:     ResolveAnswerText(q, byQuestion[q.ID]),
		})
	}
	return view
}

// CompletionRate is a deliberately coarse metric: every stored response
// counts as complete. ok is false when there are no responses to rate.
func CompletionRate(totalResponses int) (rate int, ok bool) {
	if totalResponses > 0 {
		return 100, true
	}
	return 0, false
}

func collectAnswers(questionID string, responses []model.Response) []model.Answer {
	var collected []model.Answer
	for _, r := range responses {
		for _, a := range r.Answers {
			if a.QuestionID == questionID {
				collected = append(collected, a)
			}
		}
	}
	return collected
}

func countOptions(q model.Question, answers []model.Answer) []OptionCount {
	options := orderedOptions(q.Options)
	total := len(answers)

	counts := make([]OptionCount, len(options))
	for i, opt := range options {
		count := 0
		for _, a := range answers {
			if a.SelectedOptionID != nil && *a.SelectedOptionID == opt.ID {
				count++
			} else if checkedOption(a.ValueJSON, opt.ID) {
				count++
			}
		}
		counts[i] = OptionCount{
			Option:     opt,
			Count:      count,
			Percentage: percentage(count, total),
		}
	}
	return counts
}

func checkedOption(raw json.RawMessage, optionID string) bool {
	if len(raw) == 0 {
		return false
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return false
	}
	for _, id := range ids {
		if id == optionID {
			return true
		}
	}
	return false
}

// percentage rounds half-up and is 0 when there are no answers at all.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(count)*100/float64(total) + 0.5))
}

func orderedQuestions(questions []model.Question) []model.Question {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})
	return ordered
}

func orderedOptions(options []model.Option) []model.Option {
	ordered := make([]model.Option, len(options))
	copy(ordered, options)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})
	return ordered
}
