// Package jobs runs named background jobs one at a time, in submission
// order, and keeps their status in memory for the API to report.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusStarted  Status = "started"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

// Job is one unit of background work and its observable state.
type Job struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     Status     `json:"status"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Fn is the body of a job. The returned value is recorded as the job's
// result.
type Fn func(ctx context.Context) (any, error)

type task struct {
	id string
	fn Fn
}

// Executor runs enqueued jobs sequentially on a single worker goroutine, so
// concurrent triggers (admin endpoint, scheduler) serialize instead of
// racing.
type Executor struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	queue  chan task
	closed bool
	done   chan struct{}
	log    *zap.Logger
}

// New builds an Executor with the given queue capacity.
func New(capacity int) *Executor {
	if capacity <= 0 {
		capacity = 64
	}
	return &Executor{
		jobs:  make(map[string]*Job),
		queue: make(chan task, capacity),
		done:  make(chan struct{}),
		log:   zap.L().With(zap.String("component", "jobs")),
	}
}

// Start launches the worker goroutine.
func (e *Executor) Start(ctx context.Context) {
	go e.worker(ctx)
}

// Stop closes the queue and waits for the worker to drain, or for ctx to
// expire. Safe to call more than once; later Enqueue calls are rejected.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "jobs: stop")
	}
}

// Enqueue adds a job to the queue and returns a snapshot of it. Fails once
// the executor has been stopped or when the queue is full.
func (e *Executor) Enqueue(name string, fn Fn) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		Name:       name,
		Status:     StatusQueued,
		EnqueuedAt: time.Now().UTC(),
	}

	// The send must happen under the same lock that guards closed, so Stop
	// cannot close the queue between the check and the send.
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, eris.Errorf("jobs: executor stopped, rejecting %q", name)
	}

	select {
	case e.queue <- task{id: job.ID, fn: fn}:
	default:
		return nil, eris.Errorf("jobs: queue full, rejecting %q", name)
	}
	e.jobs[job.ID] = job

	snap := *job
	return &snap, nil
}

// Get returns a snapshot of the job with the given ID, or nil.
func (e *Executor) Get(id string) *Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	job, ok := e.jobs[id]
	if !ok {
		return nil
	}
	snap := *job
	return &snap
}

// List returns up to limit jobs, most recently enqueued first.
func (e *Executor) List(limit int) []*Job {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Job, 0, len(e.jobs))
	for _, job := range e.jobs {
		snap := *job
		out = append(out, &snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EnqueuedAt.After(out[j].EnqueuedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (e *Executor) worker(ctx context.Context) {
	defer close(e.done)
	for t := range e.queue {
		e.runOne(ctx, t)
	}
}

func (e *Executor) runOne(ctx context.Context, t task) {
	now := time.Now().UTC()
	e.update(t.id, func(j *Job) {
		j.Status = StatusStarted
		j.StartedAt = &now
	})

	result, err := e.call(ctx, t.fn)

	finished := time.Now().UTC()
	e.update(t.id, func(j *Job) {
		j.FinishedAt = &finished
		if err != nil {
			j.Status = StatusFailed
			j.Error = err.Error()
		} else {
			j.Status = StatusFinished
			j.Result = result
		}
	})

	if err != nil {
		e.log.Error("job failed", zap.String("job_id", t.id), zap.Error(err))
	}
}

// call invokes fn, converting a panic into an error so a bad job cannot take
// down the worker.
func (e *Executor) call(ctx context.Context, fn Fn) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.New(fmt.Sprintf("jobs: panic: %v", r))
		}
	}()
	return fn(ctx)
}

func (e *Executor) update(id string, apply func(*Job)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if job, ok := e.jobs[id]; ok {
		apply(job)
	}
}
