package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rahatc/paywords/internal/utils"
)

// HandlerFunc processes one job. A returned error is logged; it does not
// cause redelivery.
type HandlerFunc func(ctx context.Context, args Args) error

// Worker runs a pool of goroutines polling the job store and dispatching to
// registered handlers.
type Worker struct {
	store    *Store
	logger   *utils.Logger
	interval time.Duration
	count    int

	mu       sync.Mutex
	handlers map[string]HandlerFunc

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(store *Store, count int, logger *utils.Logger) *Worker {
	if count < 1 {
		count = 1
	}

	return &Worker{
		store:    store,
		logger:   logger.With("component", "worker"),
		interval: 500 * time.Millisecond,
		count:    count,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a handler to a job name. Must be called before Start.
func (w *Worker) Register(jobName string, handler HandlerFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobName] = handler
}

// Start launches the worker pool. Workers run until Stop is called or the
// parent context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for i := 0; i < w.count; i++ {
		w.wg.Add(1)
		go w.run(ctx)
	}

	w.logger.Info("Job workers started", "count", w.count)
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain the queue before sleeping again.
			for w.runOne(ctx) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

func (w *Worker) runOne(ctx context.Context) bool {
	job, err := w.store.Claim(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("Failed to claim job", "error", err)
		}
		return false
	}
	if job == nil {
		return false
	}

	w.mu.Lock()
	handler, ok := w.handlers[job.Name]
	w.mu.Unlock()

	if !ok {
		w.logger.Error("No handler registered for job", "job", job.Name, "id", job.ID)
	} else if err := handler(ctx, job.Args); err != nil {
		w.logger.Error("Job handler failed", "job", job.Name, "id", job.ID, "error", err)
	}

	if err := w.store.MarkDone(ctx, job.ID); err != nil {
		w.logger.Error("Failed to finish job", "job", job.Name, "id", job.ID, "error", err)
	}

	return true
}
