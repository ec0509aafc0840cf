package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/surveyforge/surveyforge/app"
	"github.com/surveyforge/surveyforge/httpx"
	"github.com/surveyforge/surveyforge/log"
	"github.com/surveyforge/surveyforge/model"
)

// PublicGetSurvey resolves a share token to its survey for anonymous
// respondents. An unknown token is a 404, never an empty survey.
func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		survey, err := loadSurveyByToken(r.Context(), app.DB, token)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "resolve_token", token)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.resolve_token", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

type submitPayload struct {
	RespondentID *string        `json:"respondent_id"`
	Answers      []submitAnswer `json:"answers" validate:"dive"`
}

type submitAnswer struct {
	QuestionID       string          `json:"question_id" validate:"required"`
	AnswerText       *string         `json:"answer_text"`
	SelectedOptionID *string         `json:"selected_option_id"`
	ValueJSON        json.RawMessage `json:"value_json"`
}

// PublicSubmitSurvey stores one respondent's full submission. Answers are
// validated against their question's type before anything is written; a
// response is created exactly once and never mutated afterwards.
func PublicSubmitSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		survey, err := loadSurveyByToken(r.Context(), app.DB, token)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "resolve_token", token)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.resolve_token", err)
			return
		}

		payload := submitPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = app.Struct(payload); err != nil {
			httpx.LogValidationError(w, "submit.validate", err)
			return
		}

		answers := make([]model.Answer, 0, len(payload.Answers))
		for _, sa := range payload.Answers {
			question, ok := survey.Question(sa.QuestionID)
			if !ok {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit.validate_answer",
					"question %s does not belong to survey", sa.QuestionID)
				return
			}

			answer := model.Answer{
				QuestionID:       sa.QuestionID,
				AnswerText:       sa.AnswerText,
				SelectedOptionID: sa.SelectedOptionID,
				ValueJSON:        normalizeJSON(sa.ValueJSON),
			}
			if err = model.ValidateAnswer(question, answer); err != nil {
				httpx.LogValidationError(w, "submit.validate_answer", err)
				return
			}
			answers = append(answers, answer)
		}

		responseID, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "submit.id", err)
			return
		}

		response := model.Response{
			ID:           responseID.String(),
			SurveyID:     survey.ID,
			SubmittedAt:  time.Now().UTC(),
			RespondentID: payload.RespondentID,
			Answers:      []model.Answer{},
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO response (id, survey_id, submitted_at, respondent_id)
			VALUES (?, ?, ?, ?)`,
			response.ID,
			response.SurveyID,
			response.SubmittedAt,
			response.RespondentID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO answer (id, response_id, question_id, answer_text, selected_option_id, value_json)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.answers.prepare", err)
			return
		}
		defer stmt.Close()

		for _, a := range answers {
			answerID, err := uuid.NewV4()
			if err != nil {
				httpx.LogInternalError(w, "submit.answer_id", err)
				return
			}
			a.ID = answerID.String()
			a.ResponseID = response.ID

			var valueJSON any
			if len(a.ValueJSON) > 0 {
				valueJSON = string(a.ValueJSON)
			}
			_, err = stmt.ExecContext(r.Context(), a.ID, a.ResponseID, a.QuestionID, a.AnswerText, a.SelectedOptionID, valueJSON)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_response.answers.insert", err)
				return
			}

			response.Answers = append(response.Answers, a)
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, response)
	}
}

// normalizeJSON drops absent or JSON-null raw values so the model sees a
// clean "not set".
func normalizeJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
