package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/surveyforge/surveyforge/app"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Route("/api", func(api chi.Router) {
		// CRUD survey
		api.Post("/surveys", CreateSurvey(app))
		api.Get("/surveys", ListSurveys(app))
		api.Get("/surveys/{id}", GetSurveyByID(app))
		api.Patch("/surveys/{id}", UpdateSurvey(app))
		api.Delete("/surveys/{id}", DeleteSurvey(app))

		// CRUD questions
		api.Post("/surveys/{id}/questions", AddQuestion(app))
		api.Put("/questions/{id}", UpdateQuestion(app))
		api.Delete("/questions/{id}", DeleteQuestion(app))

		// publishing
		api.Post("/surveys/{id}/share", EnsureShareToken(app))

		// analysis
		api.Get("/surveys/{id}/responses", GetSurveyResponses(app))
		api.Get("/surveys/{id}/responses/count", CountSurveyResponses(app))
		api.Get("/surveys/{id}/collectors", GetSurveyCollectors(app))
		api.Get("/surveys/{id}/results", GetSurveyResults(app))

		api.Post("/predict-answer-type", PredictAnswerType(app))
	})

	// anonymous respondent surface
	root.Get("/s/{token}", PublicGetSurvey(app))
	root.Post("/s/{token}/submit", PublicSubmitSurvey(app))

	return root
}
