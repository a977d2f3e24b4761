package form

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry keys form instances by the id rendered into each form. An
// instance only lives while one of its submissions is in flight.
type Registry struct {
	mu    sync.Mutex
	forms map[string]*Form
}

func NewRegistry() *Registry {
	return &Registry{
		forms: make(map[string]*Form),
	}
}

// NewID returns an id for a freshly rendered form.
func NewID() string {
	return uuid.NewString()
}

// Submit runs fn for the form instance id. An empty id gets a one-off
// instance, so it is never deduplicated.
func (r *Registry) Submit(ctx context.Context, id string, fn SubmitFunc) error {
	if id == "" {
		return (&Form{}).Submit(ctx, fn)
	}

	f := r.acquire(id)
	defer r.release(id, f)

	return f.Submit(ctx, fn)
}

// InFlight reports whether id has a submission in progress.
func (r *Registry) InFlight(id string) bool {
	r.mu.Lock()
	f, ok := r.forms[id]
	r.mu.Unlock()

	return ok && f.State() == Submitting
}

func (r *Registry) acquire(id string) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.forms[id]
	if !ok {
		f = &Form{}
		r.forms[id] = f
	}
	return f
}

func (r *Registry) release(id string, f *Form) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.State() != Submitting && r.forms[id] == f {
		delete(r.forms, id)
	}
}
