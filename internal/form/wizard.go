package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/xavierca1/presale-funnel/internal/entity"
)

const DefaultSwipeThreshold = 50.0

var (
	ErrSubmissionFailed   = errors.New("Something went wrong. Please try again.")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrAlreadySubmitted   = errors.New("funnel already submitted")
)

// Submitter sends a fully validated record and returns the assigned lead id.
type Submitter interface {
	Submit(ctx context.Context, values map[string]string, tc entity.TrackingContext) (string, error)
}

type Step struct {
	Name   string
	Fields []string
}

// SubmitError is returned when the final submission fails. Its message is the generic
// user-facing one; the cause stays reachable through errors.Is/As for logging.
type SubmitError struct {
	Cause error
}

func (e *SubmitError) Error() string { return ErrSubmissionFailed.Error() }

func (e *SubmitError) Unwrap() []error { return []error{ErrSubmissionFailed, e.Cause} }

type WizardOption func(*Wizard)

func WithSwipeThreshold(px float64) WizardOption {
	return func(w *Wizard) { w.threshold = px }
}

// Wizard is the multi-step form controller. Index moves over 0..N-1; Next on the last
// step submits instead of moving, and a successful submission is terminal.
type Wizard struct {
	mu        sync.Mutex
	schema    Schema
	steps     []Step
	submitter Submitter
	tracking  entity.TrackingContext
	threshold float64

	index     int
	values    Record
	inFlight  bool
	submitted bool
	leadID    string
	failure   string
}

// NewWizard builds a controller. tc is captured once here, when the funnel becomes visible.
func NewWizard(schema Schema, steps []Step, tc entity.TrackingContext, submitter Submitter, opts ...WizardOption) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, errors.New("wizard needs at least one step")
	}
	if submitter == nil {
		return nil, errors.New("wizard needs a submitter")
	}
	for _, st := range steps {
		for _, name := range st.Fields {
			if _, ok := schema.Field(name); !ok {
				return nil, fmt.Errorf("step %q owns unknown field %q", st.Name, name)
			}
		}
	}

	w := &Wizard{
		schema:    schema,
		steps:     steps,
		submitter: submitter,
		tracking:  tc,
		threshold: DefaultSwipeThreshold,
		values:    Record{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Wizard) Set(field, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted {
		return
	}
	w.values[field] = value
}

func (w *Wizard) Values() Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(Record, len(w.values))
	for k, v := range w.values {
		out[k] = v
	}
	return out
}

func (w *Wizard) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[w.index]
}

func (w *Wizard) Len() int { return len(w.steps) }

// Busy reports whether a submission is in flight; the advance action should be disabled.
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

func (w *Wizard) LeadID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.leadID
}

// Failure is the user-facing message of the last failed submission, empty otherwise.
func (w *Wizard) Failure() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

// Next validates the current step. When it validates, the index advances, or on the last
// step the whole record is submitted. An invalid step leaves the index untouched and
// returns the validator's result with a nil error.
func (w *Wizard) Next(ctx context.Context) (Result, error) {
	w.mu.Lock()
	if w.submitted {
		w.mu.Unlock()
		return Result{}, ErrAlreadySubmitted
	}
	if w.inFlight {
		w.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}

	step := w.steps[w.index]
	res := Validate(w.schema.Slice(step.Fields...), w.values)
	if !res.Valid {
		w.mu.Unlock()
		return res, nil
	}

	if w.index < len(w.steps)-1 {
		w.index++
		w.mu.Unlock()
		return res, nil
	}

	full := Validate(w.schema, w.values)
	if !full.Valid {
		w.mu.Unlock()
		return full, nil
	}
	w.inFlight = true
	w.failure = ""
	w.mu.Unlock()

	leadID, err := w.submitter.Submit(ctx, full.Values, w.tracking)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		w.failure = ErrSubmissionFailed.Error()
		return full, &SubmitError{Cause: err}
	}
	w.submitted = true
	w.leadID = leadID
	return full, nil
}

// Back moves one step back. It never validates and does nothing at the first step,
// while a submission is in flight, or after submission.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitted || w.inFlight || w.index == 0 {
		return
	}
	w.index--
}

// Swipe maps a horizontal gesture to Next (leftward, dx < 0) or Back (rightward).
// Gestures shorter than the threshold are ignored. A leftward swipe goes through
// exactly the same gate as Next.
func (w *Wizard) Swipe(ctx context.Context, dx float64) (Result, error) {
	if math.Abs(dx) < w.threshold {
		return Result{Valid: true}, nil
	}
	if dx < 0 {
		return w.Next(ctx)
	}
	w.Back()
	return Result{Valid: true}, nil
}
