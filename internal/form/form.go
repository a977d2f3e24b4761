// Package form tracks credential form submissions so that a form instance
// never has more than one request in flight.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrInFlight = errors.New("submission already in progress")

type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SubmitFunc performs the single network attempt of a submission.
type SubmitFunc func(ctx context.Context) error

// Form is one form instance. Succeeded and Failed accept a new submission.
type Form struct {
	mu    sync.Mutex
	state State
	err   error
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// lastErr is the error of the last failed submission.
func (f *Form) lastErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Submit runs fn unless a submission is already in flight, in which case it
// returns ErrInFlight without calling fn. A panicking fn leaves the form
// Failed before the panic propagates.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) (err error) {
	if err := f.begin(); err != nil {
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			f.finish(fmt.Errorf("submission panicked: %v", rec))
			panic(rec)
		}
		f.finish(err)
	}()

	return fn(ctx)
}

func (f *Form) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == Submitting {
		return ErrInFlight
	}
	f.state = Submitting
	f.err = nil
	return nil
}

func (f *Form) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = Failed
		f.err = err
		return
	}
	f.state = Succeeded
}
