// Package console holds the state and the submit logic of the analytics
// console forms, independent of how the page is served.
package console

import (
	"sync"
	"sync/atomic"
)

// phase is the lifecycle of a single form submission.
type phase int

const (
	phaseIdle phase = iota
	phaseSubmitting
	phaseSuccess
	phaseError
)

func (p phase) String() string {
	switch p {
	case phaseSubmitting:
		return "submitting"
	case phaseSuccess:
		return "success"
	case phaseError:
		return "error"
	default:
		return "idle"
	}
}

// Form tracks one form's request-in-flight flag. The flag is claimed with a
// compare-and-swap, so two concurrent submissions can never both proceed.
type Form struct {
	inFlight atomic.Bool

	mu   sync.Mutex
	last phase
}

// Begin claims the form for one submission. It returns false if a submission
// is already in flight.
func (f *Form) Begin() bool {
	return f.inFlight.CompareAndSwap(false, true)
}

// End records the outcome and releases the form.
func (f *Form) End(ok bool) {
	outcome := phaseError
	if ok {
		outcome = phaseSuccess
	}
	f.mu.Lock()
	f.last = outcome
	f.mu.Unlock()
	f.inFlight.Store(false)
}

// Submitting reports whether a request is in flight. Renderers use it to
// show the submit control disabled with its loading label.
func (f *Form) Submitting() bool {
	return f.inFlight.Load()
}

// phase is phaseSubmitting while a request is in flight, phaseIdle otherwise.
func (f *Form) phase() phase {
	if f.inFlight.Load() {
		return phaseSubmitting
	}
	return phaseIdle
}

// lastOutcome returns phaseSuccess or phaseError for the most recent finished
// submission, phaseIdle if there has been none.
func (f *Form) lastOutcome() phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}
