package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool(Config{}, testLogger())

	if p.workers != 2 {
		t.Errorf("workers = %d, want 2", p.workers)
	}
	if cap(p.queue) != 64 {
		t.Errorf("queue size = %d, want 64", cap(p.queue))
	}
	if p.taskTimeout != 15*time.Second {
		t.Errorf("taskTimeout = %v, want 15s", p.taskTimeout)
	}
}

func TestPool_RunsTasks(t *testing.T) {
	p := NewPool(Config{Workers: 3, QueueSize: 10}, testLogger())
	p.Start()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := p.Go(Task{Name: "count", Run: func(ctx context.Context) error {
			defer wg.Done()
			count.Add(1)
			return nil
		}})
		if err != nil {
			t.Fatalf("Go failed: %v", err)
		}
	}
	wg.Wait()

	if got := count.Load(); got != 10 {
		t.Errorf("count = %d, want 10", got)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestPool_FailedTaskDoesNotStopWorker(t *testing.T) {
	p := NewPool(Config{Workers: 1, QueueSize: 4}, testLogger())
	p.Start()
	defer p.Stop(time.Second)

	done := make(chan struct{})
	p.Go(Task{Name: "fail", Run: func(ctx context.Context) error {
		return errors.New("backend unavailable")
	}})
	p.Go(Task{Name: "panic", Run: func(ctx context.Context) error {
		panic("boom")
	}})
	p.Go(Task{Name: "ok", Run: func(ctx context.Context) error {
		close(done)
		return nil
	}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive failing tasks")
	}
}

func TestPool_QueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	p := NewPool(Config{Workers: 1, QueueSize: 1}, testLogger())

	noop := Task{Name: "noop", Run: func(ctx context.Context) error { return nil }}
	if err := p.Go(noop); err != nil {
		t.Fatalf("first Go failed: %v", err)
	}
	if err := p.Go(noop); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second Go err = %v, want ErrQueueFull", err)
	}
}

func TestPool_StopDrainsQueue(t *testing.T) {
	p := NewPool(Config{Workers: 1, QueueSize: 8}, testLogger())

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		p.Go(Task{Name: "queued", Run: func(ctx context.Context) error {
			count.Add(1)
			return nil
		}})
	}

	p.Start()
	if err := p.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := count.Load(); got != 5 {
		t.Errorf("count = %d, want 5", got)
	}
}

func TestPool_GoAfterStop(t *testing.T) {
	p := NewPool(Config{}, testLogger())
	p.Start()
	p.Stop(time.Second)

	err := p.Go(Task{Name: "late", Run: func(ctx context.Context) error { return nil }})
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("err = %v, want ErrPoolStopped", err)
	}
	if err := p.Stop(time.Second); err != nil {
		t.Errorf("second Stop err = %v", err)
	}
}

func TestPool_StopTimeout(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: time.Minute}, testLogger())
	p.Start()

	started := make(chan struct{})
	p.Go(Task{Name: "slow", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	<-started

	if err := p.Stop(50 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("err = %v, want ErrShutdownTimeout", err)
	}
}

func TestPool_TaskTimeout(t *testing.T) {
	p := NewPool(Config{Workers: 1, TaskTimeout: 20 * time.Millisecond}, testLogger())
	p.Start()
	defer p.Stop(time.Second)

	errCh := make(chan error, 1)
	p.Go(Task{Name: "hang", Run: func(ctx context.Context) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	}})

	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v, want DeadlineExceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task context was not bounded")
	}
}
