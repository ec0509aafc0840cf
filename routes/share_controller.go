package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/surveyforge/surveyforge/app"
	"github.com/surveyforge/surveyforge/httpx"
)

// EnsureShareToken mints the survey's public share token on first call and
// returns the existing one afterwards. Republishing never rotates a token,
// so links already handed out keep working.
func EnsureShareToken(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyID := chi.URLParam(r, "id")

		var token sql.NullString
		err := app.QueryRowContext(r.Context(), `
			SELECT share_token FROM survey WHERE id = ?`,
			surveyID,
		).Scan(&token)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "ensure_share_token", surveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_share_token", err)
			return
		}

		if !token.Valid || token.String == "" {
			fresh, err := uuid.NewV4()
			if err != nil {
				httpx.LogInternalError(w, "ensure_share_token.generate", err)
				return
			}

			res, err := app.ExecContext(r.Context(), `
				UPDATE survey
				SET share_token = ?, updated_at = ?
				WHERE id = ? AND share_token IS NULL`,
				fresh.String(),
				time.Now().UTC(),
				surveyID,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.set_share_token", err)
				return
			}

			n, err := res.RowsAffected()
			if err != nil {
				httpx.LogInternalError(w, "db.set_share_token.verify", err)
				return
			}
			if n > 0 {
				token = sql.NullString{String: fresh.String(), Valid: true}
			} else {
				// someone else won the race, reuse their token
				err = app.QueryRowContext(r.Context(), `
					SELECT share_token FROM survey WHERE id = ?`,
					surveyID,
				).Scan(&token)
				if err != nil {
					httpx.LogInternalError(w, "db.get_share_token", err)
					return
				}
			}
		}

		render.JSON(w, r, map[string]any{
			"share_token": token.String,
			"share_url":   shareURL(app.PublicURL, token.String),
		})
	}
}

func shareURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/s/" + token
}
