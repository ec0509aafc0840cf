package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/surveyforge/surveyforge/app"
	"github.com/surveyforge/surveyforge/httpx"
	"github.com/surveyforge/surveyforge/tabulate"
)

func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		ok, err := surveyExists(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if !ok {
			httpx.LogNotFound(w, "get_responses", surveyID)
			return
		}

		responses, err := loadResponses(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func CountSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		ok, err := surveyExists(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if !ok {
			httpx.LogNotFound(w, "count_responses", surveyID)
			return
		}

		count, err := countResponses(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.count_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"count": count,
		})
	}
}

type collector struct {
	CollectorName string    `json:"collector_name"`
	Status        string    `json:"status"`
	Responses     int       `json:"responses"`
	ShareURL      string    `json:"share_url"`
	DateModified  time.Time `json:"date_modified"`
}

// GetSurveyCollectors reports the survey's collection channels. Publishing a
// share link creates the single "Web Link" collector; there are no others.
func GetSurveyCollectors(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		survey, err := loadSurveyByID(r.Context(), app.DB, surveyID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_collectors", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		collectors := []collector{}
		if survey.ShareToken != "" {
			count, err := countResponses(r.Context(), app.DB, surveyID)
			if err != nil {
				httpx.LogInternalError(w, "db.count_responses", err)
				return
			}
			collectors = append(collectors, collector{
				CollectorName: "Web Link 1",
				Status:        "Open",
				Responses:     count,
				ShareURL:      shareURL(app.PublicURL, survey.ShareToken),
				DateModified:  survey.UpdatedAt,
			})
		}

		render.JSON(w, r, map[string]any{
			"collectors": collectors,
		})
	}
}

// GetSurveyResults tabulates every stored response into per-question
// distributions for the analysis screen.
func GetSurveyResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		survey, err := loadSurveyByID(r.Context(), app.DB, surveyID)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_results", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		responses, err := loadResponses(r.Context(), app.DB, surveyID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		summary := tabulate.Summarize(survey, responses)

		var completion *int
		if rate, ok := tabulate.CompletionRate(summary.TotalResponses); ok {
			completion = &rate
		}

		render.JSON(w, r, map[string]any{
			"total_responses": summary.TotalResponses,
			"completion_rate": completion,
			"questions":       summary.Questions,
		})
	}
}
