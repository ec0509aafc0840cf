package routes

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/surveyforge/surveyforge/app"
	"github.com/surveyforge/surveyforge/httpx"
	"github.com/surveyforge/surveyforge/log"
	"github.com/surveyforge/surveyforge/predict"
)

type predictPayload struct {
	QuestionText string `json:"question_text"`
}

// PredictAnswerType classifies free-form question text into a suggested
// answer-input type. No match is a normal outcome: answer_type comes back
// null, never an error.
func PredictAnswerType(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := predictPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var label *string
		if qtype, ok := predict.Evaluate(payload.QuestionText); ok {
			if l, ok := qtype.Label(); ok {
				label = &l
			}
		}

		render.JSON(w, r, map[string]any{
			"answer_type": label,
		})
	}
}
