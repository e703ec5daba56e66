// Package workerpool provides a bounded worker pool for fanning a batch of
// independent tasks out over a fixed number of goroutines.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Task represents a unit of work to be processed
type Task struct {
	ID      string
	Payload any
}

// Result represents the outcome of task processing. Results are returned in
// task order.
type Result struct {
	TaskID string
	Data   any
	Error  error
}

// WorkerFunc is the function signature for task processing
type WorkerFunc func(ctx context.Context, task Task) (any, error)

// Config holds worker pool configuration
type Config struct {
	// Workers is the number of concurrent workers
	Workers int
	// QueueSize is the size of the task queue
	QueueSize int
}

// DefaultConfig returns defaults sized for local batch files
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 256,
	}
}

// ErrWorkerPanic wraps a panic recovered from a WorkerFunc.
var ErrWorkerPanic = errors.New("worker panicked")

// Pool runs batches of tasks through a WorkerFunc. A Pool may run several
// batches, sequentially or concurrently.
type Pool struct {
	config     Config
	workerFunc WorkerFunc
	logger     *zap.Logger

	// Metrics
	tasksSubmitted int64
	tasksCompleted int64
	tasksFailed    int64
	activeWorkers  int64
}

// New creates a new worker pool
func New(cfg Config, fn WorkerFunc, logger *zap.Logger) (*Pool, error) {
	if fn == nil {
		return nil, fmt.Errorf("worker function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	return &Pool{
		config:     cfg,
		workerFunc: fn,
		logger:     logger,
	}, nil
}

type job struct {
	index int
	task  Task
}

// Run processes tasks and returns one Result per task, in input order. Task
// failures are reported in their Result, not as the returned error. When ctx
// is cancelled, tasks not yet started get ctx.Err() as their error and Run
// returns ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) ([]Result, error) {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	workers := min(p.config.Workers, len(tasks))
	queue := make(chan job, min(p.config.QueueSize, len(tasks)))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.worker(ctx, i, queue, results, &wg)
	}

	p.logger.Debug("batch started",
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", workers))

	fed := 0
feed:
	for i, task := range tasks {
		select {
		case <-ctx.Done():
			break feed
		case queue <- job{index: i, task: task}:
			atomic.AddInt64(&p.tasksSubmitted, 1)
			fed++
		}
	}
	close(queue)
	wg.Wait()

	for i := fed; i < len(tasks); i++ {
		results[i] = Result{TaskID: tasks[i].ID, Error: ctx.Err()}
	}

	if err := ctx.Err(); err != nil {
		p.logger.Warn("batch cancelled",
			zap.Int("tasks", len(tasks)),
			zap.Int("started", fed),
			zap.Error(err))
		return results, err
	}
	return results, nil
}

// worker is the main worker goroutine. Each job writes only its own slot.
func (p *Pool) worker(ctx context.Context, id int, queue <-chan job, results []Result, wg *sync.WaitGroup) {
	defer wg.Done()

	atomic.AddInt64(&p.activeWorkers, 1)
	defer atomic.AddInt64(&p.activeWorkers, -1)

	for j := range queue {
		results[j.index] = p.processTask(ctx, id, j.task)
	}
}

// processTask runs a single task, converting a panic into an error
func (p *Pool) processTask(ctx context.Context, workerID int, task Task) (result Result) {
	result.TaskID = task.ID

	defer func() {
		if r := recover(); r != nil {
			result.Data = nil
			result.Error = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
		if result.Error != nil {
			atomic.AddInt64(&p.tasksFailed, 1)
			p.logger.Debug("task failed",
				zap.String("task_id", task.ID),
				zap.Int("worker_id", workerID),
				zap.Error(result.Error))
			return
		}
		atomic.AddInt64(&p.tasksCompleted, 1)
	}()

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}
	result.Data, result.Error = p.workerFunc(ctx, task)
	return result
}

// Stats holds cumulative pool statistics
type Stats struct {
	TasksSubmitted int64
	TasksCompleted int64
	TasksFailed    int64
	ActiveWorkers  int64
	Workers        int
}

// Stats returns current pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		TasksSubmitted: atomic.LoadInt64(&p.tasksSubmitted),
		TasksCompleted: atomic.LoadInt64(&p.tasksCompleted),
		TasksFailed:    atomic.LoadInt64(&p.tasksFailed),
		ActiveWorkers:  atomic.LoadInt64(&p.activeWorkers),
		Workers:        p.config.Workers,
	}
}
