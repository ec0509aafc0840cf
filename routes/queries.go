package routes

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/surveyforge/surveyforge/model"
)

func loadSurveyByID(ctx context.Context, db *sql.DB, id string) (model.Survey, error) {
	return loadSurvey(ctx, db, "id = ?", id)
}

func loadSurveyByToken(ctx context.Context, db *sql.DB, token string) (model.Survey, error) {
	return loadSurvey(ctx, db, "share_token = ?", token)
}

// loadSurvey fetches a survey with its questions and options, ordered for
// display. Returns sql.ErrNoRows when no survey matches.
func loadSurvey(ctx context.Context, db *sql.DB, where string, arg any) (model.Survey, error) {
	s := model.Survey{}
	var token sql.NullString
	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, share_token, created_at, updated_at
		FROM survey
		WHERE `+where,
		arg,
	).Scan(&s.ID, &s.Title, &s.Description, &token, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.ShareToken = token.String

	s.Questions, err = loadQuestions(ctx, db, s.ID)
	return s, err
}

// loadQuestions returns the survey's questions ordered by order_index, with
// insertion order breaking ties, each with its options in the same ordering.
func loadQuestions(ctx context.Context, db *sql.DB, surveyID string) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, survey_id, type, title, description, required, order_index
		FROM question
		WHERE survey_id = ?
		ORDER BY order_index, rowid`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	index := map[string]int{}
	for rows.Next() {
		q := model.Question{Options: []model.Option{}}
		err = rows.Scan(&q.ID, &q.SurveyID, &q.Type, &q.Title, &q.Description, &q.Required, &q.OrderIndex)
		if err != nil {
			return nil, err
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	opts, err := db.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.label, o.value, o.order_index
		FROM question_option o
		INNER JOIN question q ON (q.id = o.question_id)
		WHERE q.survey_id = ?
		ORDER BY o.order_index, o.rowid`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer opts.Close()

	for opts.Next() {
		o := model.Option{}
		var value sql.NullString
		err = opts.Scan(&o.ID, &o.QuestionID, &o.Label, &value, &o.OrderIndex)
		if err != nil {
			return nil, err
		}
		o.Value = value.String

		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, opts.Err()
}

// loadQuestion fetches a single question with its options.
func loadQuestion(ctx context.Context, db *sql.DB, id string) (model.Question, error) {
	q := model.Question{Options: []model.Option{}}
	err := db.QueryRowContext(ctx, `
		SELECT id, survey_id, type, title, description, required, order_index
		FROM question
		WHERE id = ?`,
		id,
	).Scan(&q.ID, &q.SurveyID, &q.Type, &q.Title, &q.Description, &q.Required, &q.OrderIndex)
	if err != nil {
		return q, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, question_id, label, value, order_index
		FROM question_option
		WHERE question_id = ?
		ORDER BY order_index, rowid`,
		id,
	)
	if err != nil {
		return q, err
	}
	defer rows.Close()

	for rows.Next() {
		o := model.Option{}
		var value sql.NullString
		err = rows.Scan(&o.ID, &o.QuestionID, &o.Label, &value, &o.OrderIndex)
		if err != nil {
			return q, err
		}
		o.Value = value.String
		q.Options = append(q.Options, o)
	}
	return q, rows.Err()
}

// loadResponses returns the survey's responses in submission order, each with
// its answers.
func loadResponses(ctx context.Context, db *sql.DB, surveyID string) ([]model.Response, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, survey_id, submitted_at, respondent_id
		FROM response
		WHERE survey_id = ?
		ORDER BY submitted_at, rowid`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.Response{}
	index := map[string]int{}
	for rows.Next() {
		resp := model.Response{Answers: []model.Answer{}}
		var respondent sql.NullString
		err = rows.Scan(&resp.ID, &resp.SurveyID, &resp.SubmittedAt, &respondent)
		if err != nil {
			return nil, err
		}
		if respondent.Valid {
			resp.RespondentID = &respondent.String
		}
		index[resp.ID] = len(responses)
		responses = append(responses, resp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	answers, err := db.QueryContext(ctx, `
		SELECT a.id, a.response_id, a.question_id, a.answer_text, a.selected_option_id, a.value_json
		FROM answer a
		INNER JOIN response r ON (r.id = a.response_id)
		WHERE r.survey_id = ?
		ORDER BY r.submitted_at, r.rowid, a.rowid`,
		surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer answers.Close()

	for answers.Next() {
		a := model.Answer{}
		var text, selected, value sql.NullString
		err = answers.Scan(&a.ID, &a.ResponseID, &a.QuestionID, &text, &selected, &value)
		if err != nil {
			return nil, err
		}
		if text.Valid {
			a.AnswerText = &text.String
		}
		if selected.Valid {
			a.SelectedOptionID = &selected.String
		}
		if value.Valid && value.String != "" {
			a.ValueJSON = json.RawMessage(value.String)
		}

		if i, ok := index[a.ResponseID]; ok {
			responses[i].Answers = append(responses[i].Answers, a)
		}
	}
	return responses, answers.Err()
}

func surveyExists(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM survey WHERE id = ?`, id).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func countResponses(ctx context.Context, db *sql.DB, surveyID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response WHERE survey_id = ?`, surveyID).Scan(&n)
	return n, err
}
