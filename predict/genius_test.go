package predict

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveyforge/surveyforge/model"
)

type classifierFunc func(ctx context.Context, text string) (model.QuestionType, bool, error)

func (f classifierFunc) Predict(ctx context.Context, text string) (model.QuestionType, bool, error) {
	return f(ctx, text)
}

type applied struct {
	mu    sync.Mutex
	types []model.QuestionType
}

func (a *applied) apply(qtype model.QuestionType) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, qtype)
}

func (a *applied) snapshot() []model.QuestionType {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.QuestionType(nil), a.types...)
}

func TestGeniusDebouncesToLastText(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	classifier := classifierFunc(func(_ context.Context, text string) (model.QuestionType, bool, error) {
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
		return model.TypeText, true, nil
	})

	out := &applied{}
	g := NewGenius(classifier, out.apply)
	g.delay = 20 * time.Millisecond

	g.TextChanged("What is your na")
	time.Sleep(5 * time.Millisecond)
	g.TextChanged("What is your name")

	require.Eventually(t, func() bool {
		return len(out.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// the superseded text was never sent at all
	assert.Equal(t, []string{"What is your name"}, seen)
	assert.Equal(t, []model.QuestionType{model.TypeText}, out.snapshot())
}

func TestGeniusDiscardsStaleReply(t *testing.T) {
	release := make(chan struct{})

	classifier := classifierFunc(func(_ context.Context, text string) (model.QuestionType, bool, error) {
		if text == "first" {
			<-release
			return model.TypeText, true, nil
		}
		return model.TypeCheckbox, true, nil
	})

	out := &applied{}
	g := NewGenius(classifier, out.apply)
	g.delay = 10 * time.Millisecond

	g.TextChanged("first")
	time.Sleep(30 * time.Millisecond) // timer fired, reply for "first" in flight
	g.TextChanged("second")

	require.Eventually(t, func() bool {
		return len(out.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	close(release) // late reply for "first" now lands, and must be dropped
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, []model.QuestionType{model.TypeCheckbox}, out.snapshot())
}

func TestGeniusFallsBackToRulesOnRemoteFailure(t *testing.T) {
	classifier := classifierFunc(func(_ context.Context, _ string) (model.QuestionType, bool, error) {
		return "", false, errors.New("connection refused")
	})

	out := &applied{}
	g := NewGenius(classifier, out.apply)
	g.delay = 10 * time.Millisecond

	g.TextChanged("Please select all that apply")

	require.Eventually(t, func() bool {
		return len(out.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []model.QuestionType{model.TypeCheckbox}, out.snapshot())
}

func TestGeniusIgnoresNoSuggestion(t *testing.T) {
	classifier := classifierFunc(func(_ context.Context, _ string) (model.QuestionType, bool, error) {
		return "", false, nil
	})

	out := &applied{}
	g := NewGenius(classifier, out.apply)
	g.delay = 10 * time.Millisecond

	g.TextChanged("Tell us a story")
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, out.snapshot())
}

func TestGeniusStopCancelsPendingWork(t *testing.T) {
	var called bool
	var mu sync.Mutex

	classifier := classifierFunc(func(_ context.Context, _ string) (model.QuestionType, bool, error) {
		mu.Lock()
		called = true
		mu.Unlock()
		return model.TypeText, true, nil
	})

	out := &applied{}
	g := NewGenius(classifier, out.apply)
	g.delay = 20 * time.Millisecond

	g.TextChanged("Enter your name")
	g.Stop()
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
	assert.Empty(t, out.snapshot())
}
