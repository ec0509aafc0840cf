package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/surveyforge/model"
)

func classifierServer(t *testing.T, answerType any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predict-answer-type", r.URL.Path)

		var payload struct {
			QuestionText string `json:"question_text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		json.NewEncoder(w).Encode(map[string]any{"answer_type": answerType})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientPredict(t *testing.T) {
	t.Run("maps wire label to vocabulary", func(t *testing.T) {
		srv := classifierServer(t, model.LabelCheckbox)

		qtype, ok, err := NewClient(srv.URL).Predict(context.Background(), "Select all that apply")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, model.TypeCheckbox, qtype)
	})

	t.Run("null means no suggestion", func(t *testing.T) {
		srv := classifierServer(t, nil)

		_, ok, err := NewClient(srv.URL).Predict(context.Background(), "Tell us a story")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("labels outside the vocabulary are dropped", func(t *testing.T) {
		srv := classifierServer(t, "Star rating")

		_, ok, err := NewClient(srv.URL).Predict(context.Background(), "Rate us")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("server failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		_, _, err := NewClient(srv.URL).Predict(context.Background(), "anything")
		assert.Error(t, err)
	})

	t.Run("unreachable server is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, _, err := NewClient(srv.URL).Predict(context.Background(), "anything")
		assert.Error(t, err)
	})
}
