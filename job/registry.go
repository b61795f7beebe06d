package job

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webboty/llm-aided-ocr/errors"
)

// Registry is the process-wide store of job records.
//
// All methods are safe for concurrent use. Update applies its mutator while
// holding the registry lock, so read-modify-write sequences on a record are
// atomic and two mutations on the same id can never interleave. Methods
// return copies; the registry's own records are never shared with callers.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create allocates a fresh pending record and returns a copy of it
func (r *Registry) Create(message string) Job {
	now := time.Now()
	j := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Progress:  0.0,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return j.clone()
}

// Get returns a copy of the record, or ErrNotFound
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, errors.NewNotFoundError("job %s not found", id)
	}
	return j.clone(), nil
}

// Update applies a field-level mutation atomically and returns the updated
// copy. Fails with ErrNotFound for unknown ids and ErrJobTerminal when the
// record already reached completed or failed; terminal records are immutable.
func (r *Registry) Update(id string, mutate func(*Job)) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, errors.NewNotFoundError("job %s not found", id)
	}
	if j.Status.Terminal() {
		return Job{}, errors.Wrapf(errors.ErrJobTerminal, "job %s is %s", id, j.Status)
	}

	mutate(j)
	j.UpdatedAt = time.Now()
	return j.clone(), nil
}

// List returns copies of all records. Order is unspecified.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, j.clone())
	}
	return out
}

// Delete removes the record; returns false if absent
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return false
	}
	delete(r.jobs, id)
	return true
}

// Len returns the number of records currently held
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
