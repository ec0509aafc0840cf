package tabulate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/surveyforge/model"
)

func strptr(s string) *string { return &s }

func yesNoSurvey(qtype model.QuestionType) model.Survey {
	return model.Survey{
		ID: "s1",
		Questions: []model.Question{{
			ID:       "q1",
			SurveyID: "s1",
			Type:     qtype,
			Title:    "Did you enjoy the event?",
			Options: []model.Option{
				{ID: "yes", QuestionID: "q1", Label: "Yes", OrderIndex: 0},
				{ID: "no", QuestionID: "q1", Label: "No", OrderIndex: 1},
			},
		}},
	}
}

func choiceResponse(id, optionID string) model.Response {
	return model.Response{
		ID:       id,
		SurveyID: "s1",
		Answers: []model.Answer{
			{ID: id + "-a", ResponseID: id, QuestionID: "q1", SelectedOptionID: &optionID},
		},
	}
}

func TestSummarizeMultipleChoiceCounts(t *testing.T) {
	survey := yesNoSurvey(model.TypeMultipleChoice)
	responses := []model.Response{
		choiceResponse("r1", "yes"),
		choiceResponse("r2", "yes"),
		choiceResponse("r3", "no"),
	}

	summary := Summarize(survey, responses)
	require.Len(t, summary.Questions, 1)

	qs := summary.Questions[0]
	assert.Equal(t, 3, qs.TotalAnswers)
	require.Len(t, qs.Options, 2)

	assert.Equal(t, "Yes", qs.Options[0].Option.Label)
	assert.Equal(t, 2, qs.Options[0].Count)
	assert.Equal(t, 67, qs.Options[0].Percentage)

	assert.Equal(t, "No", qs.Options[1].Option.Label)
	assert.Equal(t, 1, qs.Options[1].Count)
	assert.Equal(t, 33, qs.Options[1].Percentage)
}

func TestSummarizeCheckboxEveryOptionSelected(t *testing.T) {
	survey := yesNoSurvey(model.TypeCheckbox)
	all := json.RawMessage(`["yes","no"]`)
	responses := []model.Response{
		{ID: "r1", SurveyID: "s1", Answers: []model.Answer{{ResponseID: "r1", QuestionID: "q1", ValueJSON: all}}},
		{ID: "r2", SurveyID: "s1", Answers: []model.Answer{{ResponseID: "r2", QuestionID: "q1", ValueJSON: all}}},
	}

	summary := Summarize(survey, responses)
	for _, oc := range summary.Questions[0].Options {
		assert.Equal(t, 2, oc.Count)
		assert.Equal(t, 100, oc.Percentage)
	}
}

func TestSummarizeNoAnswersYieldsZeroPercent(t *testing.T) {
	survey := yesNoSurvey(model.TypeMultipleChoice)

	summary := Summarize(survey, nil)
	require.Len(t, summary.Questions, 1)
	assert.Equal(t, 0, summary.Questions[0].TotalAnswers)
	for _, oc := range summary.Questions[0].Options {
		assert.Equal(t, 0, oc.Count)
		assert.Equal(t, 0, oc.Percentage)
	}
}

func TestSummarizeTextListingKeepsEmptyAnswers(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{ID: "q1", SurveyID: "s1", Type: model.TypeText, Title: "Any comments?"},
		},
	}
	responses := []model.Response{
		{ID: "r1", Answers: []model.Answer{{ResponseID: "r1", QuestionID: "q1", AnswerText: strptr("Loved it")}}},
		{ID: "r2", Answers: []model.Answer{{ResponseID: "r2", QuestionID: "q1", AnswerText: strptr("")}}},
		{ID: "r3", Answers: []model.Answer{{ResponseID: "r3", QuestionID: "q1", AnswerText: strptr("Meh")}}},
	}

	summary := Summarize(survey, responses)
	qs := summary.Questions[0]
	assert.Equal(t, 3, qs.TotalAnswers)
	assert.Equal(t, []string{"Loved it", NoAnswer, "Meh"}, qs.Texts)
}

// A choice question without configured options tabulates as free text.
func TestSummarizeChoiceWithoutOptionsFallsBackToListing(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{ID: "q1", SurveyID: "s1", Type: model.TypeMultipleChoice},
		},
	}
	responses := []model.Response{
		{ID: "r1", Answers: []model.Answer{{ResponseID: "r1", QuestionID: "q1", SelectedOptionID: strptr("gone")}}},
	}

	summary := Summarize(survey, responses)
	qs := summary.Questions[0]
	assert.Empty(t, qs.Options)
	assert.Equal(t, []string{NoAnswer}, qs.Texts)
}

func TestSummarizeQuestionOrdering(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{ID: "q3", Type: model.TypeText, OrderIndex: 2},
			{ID: "q1", Type: model.TypeText, OrderIndex: 0},
			{ID: "q2a", Type: model.TypeText, OrderIndex: 1},
			{ID: "q2b", Type: model.TypeText, OrderIndex: 1},
		},
	}

	summary := Summarize(survey, nil)
	ids := make([]string, len(summary.Questions))
	for i, qs := range summary.Questions {
		ids[i] = qs.Question.ID
	}
	// ties keep their input order
	assert.Equal(t, []string{"q1", "q2a", "q2b", "q3"}, ids)
}

func TestResolveAnswerText(t *testing.T) {
	q := model.Question{
		ID:   "q1",
		Type: model.TypeCheckbox,
		Options: []model.Option{
			{ID: "o1", Label: "Red"},
			{ID: "o2", Label: "Blue"},
		},
	}

	t.Run("nil answer", func(t *testing.T) {
		assert.Equal(t, NoAnswer, ResolveAnswerText(q, nil))
	})

	t.Run("answer_text wins over selected option", func(t *testing.T) {
		a := model.Answer{AnswerText: strptr("Other: green"), SelectedOptionID: strptr("o1")}
		assert.Equal(t, "Other: green", ResolveAnswerText(q, &a))
	})

	t.Run("empty answer_text does not win", func(t *testing.T) {
		a := model.Answer{AnswerText: strptr(""), SelectedOptionID: strptr("o1")}
		assert.Equal(t, "Red", ResolveAnswerText(q, &a))
	})

	t.Run("selected option resolves to label", func(t *testing.T) {
		a := model.Answer{SelectedOptionID: strptr("o2")}
		assert.Equal(t, "Blue", ResolveAnswerText(q, &a))
	})

	t.Run("value_json list resolves labels and keeps unknown ids raw", func(t *testing.T) {
		a := model.Answer{ValueJSON: json.RawMessage(`["o1","retired-option"]`)}
		assert.Equal(t, "Red, retired-option", ResolveAnswerText(q, &a))
	})

	t.Run("non-list value_json renders structurally", func(t *testing.T) {
		a := model.Answer{ValueJSON: json.RawMessage(`{"scale":7}`)}
		assert.Equal(t, `{"scale":7}`, ResolveAnswerText(q, &a))
	})

	t.Run("empty everything is the marker", func(t *testing.T) {
		assert.Equal(t, NoAnswer, ResolveAnswerText(q, &model.Answer{}))
	})
}

func TestRespondentView(t *testing.T) {
	survey := model.Survey{
		ID: "s1",
		Questions: []model.Question{
			{ID: "q2", Type: model.TypeText, Title: "Comments?", OrderIndex: 1},
			{
				ID: "q1", Type: model.TypeMultipleChoice, Title: "Happy?", OrderIndex: 0,
				Options: []model.Option{{ID: "o1", Label: "Yes"}},
			},
		},
	}
	response := model.Response{
		ID:          "r1",
		SurveyID:    "s1",
		SubmittedAt: time.Now(),
		Answers: []model.Answer{
			{ResponseID: "r1", QuestionID: "q1", SelectedOptionID: strptr("o1")},
		},
	}

	view := RespondentView(survey, response)
	require.Len(t, view, 2)
	assert.Equal(t, "q1", view[0].Question.ID)
	assert.Equal(t, "Yes", view[0].Text)
	assert.Equal(t, "q2", view[1].Question.ID)
	assert.Equal(t, NoAnswer, view[1].Text)
}

func TestCompletionRate(t *testing.T) {
	rate, ok := CompletionRate(5)
	assert.True(t, ok)
	assert.Equal(t, 100, rate)

	_, ok = CompletionRate(0)
	assert.False(t, ok)
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 67, percentage(2, 3))
	assert.Equal(t, 33, percentage(1, 3))
	assert.Equal(t, 50, percentage(1, 2))
	assert.Equal(t, 13, percentage(1, 8)) // 12.5 rounds up
	assert.Equal(t, 0, percentage(0, 3))
	assert.Equal(t, 100, percentage(3, 3))
}
