package routes

import (
	"context"
	"database/sql"
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

type surveyCreatePayload struct {
	Title       string `json:"title" validate:"required,max=300"`
	Description string `json:"description" validate:"max=2000"`
}

type surveyUpdatePayload struct {
	Title       *string `json:"title" validate:"omitempty,max=300"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type questionPayload struct {
	Type        string          `json:"type" validate:"required"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	OrderIndex  *int            `json:"order_index"`
	Options     []optionPayload `json:"options" validate:"dive"`
}

type optionPayload struct {
	Label      string `json:"label" validate:"required"`
	Value      string `json:"value"`
	OrderIndex *int   `json:"order_index"`
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := surveyCreatePayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = app.Struct(payload); err != nil {
			httpx.LogValidationError(w, "create_survey.validate", err)
			return
		}

		id, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "create_survey.id", err)
			return
		}

		now := time.Now().UTC()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO survey (id, title, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			id.String(),
			payload.Title,
			payload.Description,
			now,
			now,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		survey, err := loadSurveyByID(r.Context(), app.DB, id.String())
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, survey)
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, title, description, share_token, created_at, updated_at
			FROM survey
			ORDER BY created_at, rowid`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []model.Survey{}
		for rows.Next() {
			s := model.Survey{}
			var token sql.NullString
			err = rows.Scan(&s.ID, &s.Title, &s.Description, &token, &s.CreatedAt, &s.UpdatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_surveys.scan", err)
				return
			}
			s.ShareToken = token.String
			surveys = append(surveys, s)
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyByID(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		survey, err := loadSurveyByID(r.Context(), app.DB, surveyID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_survey", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		payload := surveyUpdatePayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = app.Struct(payload); err != nil {
			httpx.LogValidationError(w, "update_survey.validate", err)
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE survey
			SET
				title = COALESCE(?, title),
				description = COALESCE(?, description),
				updated_at = ?
			WHERE id = ?`,
			payload.Title,
			payload.Description,
			time.Now().UTC(),
			surveyID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_survey.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_survey", surveyID)
			return
		}

		survey, err := loadSurveyByID(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		// questions, options, responses and answers go with it (FK cascade)
		res, err := app.ExecContext(r.Context(), `
			DELETE FROM survey WHERE id = ?`,
			surveyID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_survey", surveyID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		ok, err := surveyExists(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if !ok {
			httpx.LogNotFound(w, "add_question", surveyID)
			return
		}

		payload := questionPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = app.Struct(payload); err != nil {
			httpx.LogValidationError(w, "add_question.validate", err)
			return
		}

		question := payload.toModel(surveyID)
		if err = model.ValidateQuestion(question); err != nil {
			httpx.LogValidationError(w, "add_question.validate_type", err)
			return
		}

		if payload.OrderIndex == nil {
			// append at the end
			err = app.QueryRowContext(r.Context(), `
				SELECT COUNT(*) FROM question WHERE survey_id = ?`,
				surveyID,
			).Scan(&question.OrderIndex)
			if err != nil {
				httpx.LogInternalError(w, "db.count_questions", err)
				return
			}
		}

		questionID, err := insertQuestion(r.Context(), app.DB, question)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		created, err := loadQuestion(r.Context(), app.DB, questionID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "id")

		existing, err := loadQuestion(r.Context(), app.DB, questionID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "update_question", questionID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}

		payload := questionPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if err = app.Struct(payload); err != nil {
			httpx.LogValidationError(w, "update_question.validate", err)
			return
		}

		question := payload.toModel(existing.SurveyID)
		question.ID = questionID
		if payload.OrderIndex == nil {
			question.OrderIndex = existing.OrderIndex
		}
		if err = model.ValidateQuestion(question); err != nil {
			httpx.LogValidationError(w, "update_question.validate_type", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(r.Context(), `
			UPDATE question
			SET type = ?, title = ?, description = ?, required = ?, order_index = ?
			WHERE id = ?`,
			question.Type,
			question.Title,
			question.Description,
			question.Required,
			question.OrderIndex,
			questionID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_question", err)
			return
		}

		// options are replaced wholesale
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM question_option WHERE question_id = ?`,
			questionID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_question.delete_options", err)
			return
		}
		err = insertOptions(r.Context(), tx, questionID, question.Options)
		if err != nil {
			httpx.LogInternalError(w, "db.update_question.options", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.update_question.commit", err)
			return
		}

		updated, err := loadQuestion(r.Context(), app.DB, questionID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_question", err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func DeleteQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "id")

		// answers pointing at the question stay behind and tabulate as "no answer"
		res, err := app.ExecContext(r.Context(), `
			DELETE FROM question WHERE id = ?`,
			questionID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_question", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_question.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_question", questionID)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (p questionPayload) toModel(surveyID string) model.Question {
	q := model.Question{
		SurveyID:    surveyID,
		Type:        model.QuestionType(p.Type),
		Title:       p.Title,
		Description: p.Description,
		Required:    p.Required,
		Options:     make([]model.Option, len(p.Options)),
	}
	if p.OrderIndex != nil {
		q.OrderIndex = *p.OrderIndex
	}
	for i, o := range p.Options {
		q.Options[i] = model.Option{
			Label:      o.Label,
			Value:      o.Value,
			OrderIndex: i,
		}
		if o.OrderIndex != nil {
			q.Options[i].OrderIndex = *o.OrderIndex
		}
	}
	return q
}

func insertQuestion(ctx context.Context, db *sql.DB, q model.Question) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO question (id, survey_id, type, title, description, required, order_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		q.SurveyID,
		q.Type,
		q.Title,
		q.Description,
		q.Required,
		q.OrderIndex,
	)
	if err != nil {
		return "", err
	}

	err = insertOptions(ctx, tx, id.String(), q.Options)
	if err != nil {
		return "", err
	}

	return id.String(), tx.Commit()
}

func insertOptions(ctx context.Context, tx *sql.Tx, questionID string, options []model.Option) error {
	if len(options) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question_option (id, question_id, label, value, order_index)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range options {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}

		var value any
		if o.Value != "" {
			value = o.Value
		}
		_, err = stmt.ExecContext(ctx, id.String(), questionID, o.Label, value, o.OrderIndex)
		if err != nil {
			return err
		}
	}
	return nil
}
