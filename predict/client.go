package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/surveyforge/surveyforge/model"
)

// Client calls the remote answer-type classifier endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type predictRequest struct {
	QuestionText string `json:"question_text"`
}

type predictResponse struct {
	AnswerType *string `json:"answer_type"`
}

// Predict returns the remotely suggested type, or ok=false when the
// classifier has no suggestion. Transport and non-2xx failures come back as
// errors so the caller can fall back to the local rules.
func (c *Client) Predict(ctx context.Context, text string) (model.QuestionType, bool, error) {
	body, err := json.Marshal(predictRequest{QuestionText: strings.TrimSpace(text)})
	if err != nil {
		return "", false, errors.Wrap(err, "predict.encode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict-answer-type", bytes.NewReader(body))
	if err != nil {
		return "", false, errors.Wrap(err, "predict.request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, errors.Wrap(err, "predict.send")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, errors.Errorf("predict.send: status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, errors.Wrap(err, "predict.decode")
	}
	if out.AnswerType == nil {
		return "", false, nil
	}

	qtype, ok := model.TypeForLabel(*out.AnswerType)
	if !ok {
		// Labels outside the vocabulary are dropped, not applied.
		return "", false, nil
	}
	return qtype, true, nil
}
