package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fusionfit/storefront/pkg/queue"
)

type countingJob struct {
	Tag string `json:"tag"`
}

var (
	processed int32
	lastTag   atomic.Value
	done      = make(chan struct{}, 16)
)

func (j *countingJob) Handle() error {
	atomic.AddInt32(&processed, 1)
	lastTag.Store(j.Tag)
	done <- struct{}{}
	return nil
}

type failingJob struct{}

func (j *failingJob) Handle() error {
	done <- struct{}{}
	return errors.New("smtp unreachable")
}

type strayJob struct{}

func (j *strayJob) Handle() error {
	atomic.AddInt32(&processed, 1)
	return nil
}

func wait(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for job")
	}
}

func TestDispatchAndProcess(t *testing.T) {
	queue.SetDriver(queue.NewMemoryDriver())
	queue.Register("*queue_test.countingJob", func() queue.Job { return &countingJob{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.StartWorkers(ctx, 2)

	atomic.StoreInt32(&processed, 0)
	if err := queue.Dispatch(&countingJob{Tag: "verification"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	wait(t, 3*time.Second)

	if got := atomic.LoadInt32(&processed); got != 1 {
		t.Fatalf("processed = %d, want 1", got)
	}
	// the payload round-trips through the envelope
	if tag, _ := lastTag.Load().(string); tag != "verification" {
		t.Fatalf("tag = %q, want %q", tag, "verification")
	}
}

func TestUnregisteredJobTypeIsDropped(t *testing.T) {
	queue.SetDriver(queue.NewMemoryDriver())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.StartWorkers(ctx, 1)

	atomic.StoreInt32(&processed, 0)
	if err := queue.Dispatch(&strayJob{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := atomic.LoadInt32(&processed); got != 0 {
		t.Fatalf("processed = %d, want 0", got)
	}
}

func TestFailedJobExhaustsRetries(t *testing.T) {
	queue.SetDriver(queue.NewMemoryDriver())
	queue.Register("*queue_test.failingJob", func() queue.Job { return &failingJob{} })
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.StartWorkers(ctx, 1)

	before := len(queue.FailedJobs())
	if err := queue.Dispatch(&failingJob{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	wait(t, 3*time.Second)

	deadline := time.Now().Add(5 * time.Second)
	for len(queue.FailedJobs()) == before {
		if time.Now().After(deadline) {
			t.Fatal("job never recorded as failed")
		}
		time.Sleep(50 * time.Millisecond)
	}

	failed := queue.FailedJobs()
	last := failed[len(failed)-1]
	if last.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", last.Attempts)
	}
	if last.Err == nil || last.Err.Error() != "smtp unreachable" {
		t.Fatalf("err = %v, want smtp unreachable", last.Err)
	}
}
