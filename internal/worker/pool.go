package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// ErrPoolStopped is returned when a task is submitted after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// ErrQueueFull is returned when the task queue has no free slot.
var ErrQueueFull = errors.New("worker queue full")

// Task is a unit of best-effort work. Failures are logged, never retried.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs fire-and-forget tasks on a fixed set of workers.
type Pool struct {
	workers     int
	taskTimeout time.Duration
	logger      *slog.Logger

	queue chan Task

	mu      sync.RWMutex
	stopped bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// NewPool creates a new worker pool.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 15 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:     cfg.Workers,
		taskTimeout: cfg.TaskTimeout,
		logger:      logger,
		queue:       make(chan Task, cfg.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers, "queue_size", cap(p.queue))

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Go enqueues a task without blocking. A full queue drops the task.
func (p *Pool) Go(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- task:
		return nil
	default:
		p.logger.Warn("dropping task, queue full", "task", task.Name)
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued tasks to finish. Tasks still
// running when the timeout elapses have their context canceled.
func (p *Pool) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.logger.Info("stopping worker pool", "pending", len(p.queue))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		p.cancel()
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	for task := range p.queue {
		p.run(logger, task)
	}

	logger.Debug("worker stopping")
}

func (p *Pool) run(logger *slog.Logger, task Task) {
	logger = logger.With("task", task.Name)

	ctx, cancel := context.WithTimeout(p.ctx, p.taskTimeout)
	defer cancel()

	start := time.Now()
	err := safeRun(ctx, task)
	if err != nil {
		logger.Warn("task failed", "error", err, "duration", time.Since(start))
		return
	}
	logger.Debug("task completed", "duration", time.Since(start))
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}
