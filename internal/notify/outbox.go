// Package notify carries side-channel notifications off the request
// path: a small in-process outbox for fire-and-forget peer calls and a
// webhook relay for external listeners.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const jobTimeout = 10 * time.Second

// Job is one outbound task. The name only shows up in logs.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outbox executes jobs on a single worker goroutine. Enqueue never
// blocks the caller: when the buffer is full the job is dropped and
// logged. Failed jobs get exactly one retry. Notifications here are
// best effort, the state change that triggered them is already
// committed.
type Outbox struct {
	jobs chan Job
	wg   sync.WaitGroup
}

// NewOutbox returns an outbox with the given buffer size.
func NewOutbox(buffer int) *Outbox {
	return &Outbox{jobs: make(chan Job, buffer)}
}

// Start launches the worker. It drains until ctx is cancelled.
func (o *Outbox) Start(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-o.jobs:
				o.execute(ctx, job)
			}
		}
	}()
}

// Enqueue hands a job to the worker without blocking.
func (o *Outbox) Enqueue(job Job) {
	select {
	case o.jobs <- job:
	default:
		logrus.WithField("job", job.Name).Warn("outbox full, dropping notification")
	}
}

// Wait blocks until the worker has stopped.
func (o *Outbox) Wait() {
	o.wg.Wait()
}

func (o *Outbox) execute(ctx context.Context, job Job) {
	if err := o.attempt(ctx, job); err == nil {
		return
	}
	if err := o.attempt(ctx, job); err != nil {
		logrus.WithFields(logrus.Fields{
			"job":   job.Name,
			"error": err,
		}).Error("notification failed after retry")
	}
}

func (o *Outbox) attempt(ctx context.Context, job Job) error {
	jctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	return job.Run(jctx)
}
