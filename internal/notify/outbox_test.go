package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestOutboxExecutesJobs(t *testing.T) {
	o := NewOutbox(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	done := make(chan struct{})
	o.Enqueue(Job{Name: "ping", Run: func(context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestOutboxRetriesOnce(t *testing.T) {
	o := NewOutbox(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	var attempts atomic.Int32
	done := make(chan struct{})
	o.Enqueue(Job{Name: "flaky", Run: func(context.Context) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("retry never happened")
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}
}

func TestOutboxGivesUpAfterRetry(t *testing.T) {
	o := NewOutbox(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)

	var attempts atomic.Int32
	o.Enqueue(Job{Name: "broken", Run: func(context.Context) error {
		attempts.Add(1)
		return errors.New("permanent")
	}})

	// drain through a second job so we know the first one finished
	done := make(chan struct{})
	o.Enqueue(Job{Name: "after", Run: func(context.Context) error {
		close(done)
		return nil
	}})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stalled")
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("attempts = %d, want exactly 2", got)
	}
}

func TestOutboxDropsWhenFull(t *testing.T) {
	o := NewOutbox(1)
	// no worker running: the buffer fills and the overflow is dropped

	o.Enqueue(Job{Name: "first", Run: func(context.Context) error { return nil }})
	o.Enqueue(Job{Name: "second", Run: func(context.Context) error { return nil }})

	if got := len(o.jobs); got != 1 {
		t.Fatalf("queued jobs = %d, want 1 with the overflow dropped", got)
	}
}
