package workers

import (
	"sync"

	"propscout/internal/logging"
)

// Dispatcher manages crawl task distribution to workers
type Dispatcher struct {
	taskQueue chan CrawlTask
	workers   []*Worker
	quit      chan struct{}
	logger    logging.Logger
	mu        sync.RWMutex
	running   bool
}

// NewDispatcher creates a new task dispatcher
func NewDispatcher(taskQueue chan CrawlTask, workers []*Worker) *Dispatcher {
	return &Dispatcher{
		taskQueue: taskQueue,
		workers:   workers,
		quit:      make(chan struct{}),
		logger:    logging.GetGlobalLogger().WithField("component", "dispatcher"),
	}
}

// Start starts the dispatcher
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	go d.dispatch()

	d.running = true
	d.logger.Info("Task dispatcher started", map[string]interface{}{"workers": len(d.workers)})
}

// Stop stops the dispatcher
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	d.quit <- struct{}{}
	d.running = false
	d.logger.Info("Task dispatcher stopped")
}

// dispatch hands queued tasks to workers round-robin, skipping busy workers.
func (d *Dispatcher) dispatch() {
	workerIndex := 0

	for {
		select {
		case task := <-d.taskQueue:
		assignLoop:
			for {
				worker := d.workers[workerIndex]
				workerIndex = (workerIndex + 1) % len(d.workers)
				select {
				case worker.TaskChan <- task:
					break assignLoop
				default:
					continue
				}
			}

		case <-d.quit:
			return
		}
	}
}

// IsRunning returns true if dispatcher is running
func (d *Dispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}
