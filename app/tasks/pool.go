package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrPoolStopped = errors.New("worker pool is stopped")

// Job is CPU-bound work run on a pool worker. It must return promptly once
// ctx is done.
type Job func(ctx context.Context) error

type job struct {
	ctx  context.Context
	run  Job
	done chan error
}

// Pool runs jobs on a fixed number of workers so CPU-heavy text analysis
// does not compete with every in-flight download at once.
type Pool struct {
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	queue       chan job
	startOnce   sync.Once
}

func NewPool(workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		queue:       make(chan job, workerCount*4),
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		slog.Debug("Worker pool started", "workers", p.workerCount)
	})
}

func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Do runs fn on a worker and waits for it. It returns ctx.Err() as soon as
// ctx is done, whether fn is still queued or running; a queued job whose
// context has expired is dropped by the worker without being run.
func (p *Pool) Do(ctx context.Context, fn Job) error {
	j := job{ctx: ctx, run: fn, done: make(chan error, 1)}

	select {
	case p.queue <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolStopped
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case j := <-p.queue:
			p.execute(id, j)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) execute(workerID int, j job) {
	if err := j.ctx.Err(); err != nil {
		slog.Debug("Skipping expired job", "worker_id", workerID, "error", err)
		j.done <- err
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Worker job panicked", "worker_id", workerID, "panic", r)
			j.done <- &PanicError{Value: r}
		}
	}()

	j.done <- j.run(j.ctx)
}

// PanicError reports a job that panicked instead of returning.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}
