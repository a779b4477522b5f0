package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

type WorkerPool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool // thread-safe value
	closeMu   sync.RWMutex
	log       logrus.FieldLogger
}

func NewWorkerPool(size int, log logrus.FieldLogger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		taskQueue: make(chan Task, 1000), // Buffer for 1000 pending tasks
		log:       log,
	}

	// Start the workers
	for range size {
		wp.wg.Add(1) // add to WaitGroup
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done() // signal when worker finished
	for task := range wp.taskQueue {
		if err := task(context.Background()); err != nil {
			wp.log.WithError(err).Warn("worker task failed")
		}
	}
}

// Submit queues t. Tasks are dropped when the pool is shutting down or the
// queue is full; the return value reports whether t was queued.
func (wp *WorkerPool) Submit(t Task) bool {
	wp.closeMu.RLock()
	defer wp.closeMu.RUnlock()

	if wp.isClosing.Load() {
		wp.log.Warn("task submitted during shutdown, dropping")
		return false
	}
	select {
	case wp.taskQueue <- t: // send task to worker pool
		return true
	default:
		wp.log.Warn("task queue full, dropping task")
		return false
	}
}

// Shutdown closes the queue and waits for workers to finish
func (wp *WorkerPool) Shutdown() {
	wp.closeMu.Lock()
	if wp.isClosing.Swap(true) {
		wp.closeMu.Unlock()
		return
	}
	close(wp.taskQueue) // Stop accepting new tasks
	wp.closeMu.Unlock()

	wp.wg.Wait() // Wait for all active workers to finish tasks
}
