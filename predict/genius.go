package predict

import (
	"context"
	"sync"
	"time"

	"github.com/surveyforge/surveyforge/model"
)

// DebounceDelay is how long typing must pause before the classifier is asked.
const DebounceDelay = 400 * time.Millisecond

// Classifier is the remote half of the predictor. *Client implements it.
type Classifier interface {
	Predict(ctx context.Context, text string) (model.QuestionType, bool, error)
}

// Genius drives debounced answer-type prediction for one question editor.
//
// Each text change cancels the pending timer and arms a fresh one; only the
// text present when the timer fires is classified. A reply carries the
// sequence number and exact text of its request and is dropped when either no
// longer matches the latest state, so a prediction computed from superseded
// text is never applied. Remote failures fall back to the local rule
// evaluator with the same staleness check, and are never surfaced.
type Genius struct {
	classifier Classifier
	apply      func(model.QuestionType)
	delay      time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	text    string
	stopped bool
}

// NewGenius wires a classifier to an apply callback. The callback only ever
// sees interactive vocabulary types.
func NewGenius(classifier Classifier, apply func(model.QuestionType)) *Genius {
	return &Genius{
		classifier: classifier,
		apply:      apply,
		delay:      DebounceDelay,
	}
}

// TextChanged records the question text as the author types, cancelling any
// pending classification for older text.
func (g *Genius) TextChanged(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}

	g.text = text
	g.seq++
	seq := g.seq

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.delay, func() { g.fire(seq) })
}

// Stop cancels the pending timer; replies still in flight are discarded.
// Call when the editing session ends.
func (g *Genius) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Genius) fire(seq uint64) {
	g.mu.Lock()
	if g.stopped || seq != g.seq {
		g.mu.Unlock()
		return
	}
	text := g.text
	g.mu.Unlock()

	qtype, ok, err := g.classifier.Predict(context.Background(), text)
	if err != nil {
		qtype, ok = Evaluate(text)
	}
	if !ok || !qtype.Interactive() {
		// Unmatched text is a normal outcome: no change.
		return
	}

	g.mu.Lock()
	stale := g.stopped || seq != g.seq || text != g.text
	g.mu.Unlock()
	if stale {
		return
	}

	g.apply(qtype)
}
