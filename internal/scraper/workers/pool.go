package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"propscout/internal/config"
	"propscout/internal/logging"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// CrawlTask wraps a crawl request queued for the worker pool.
type CrawlTask struct {
	Request    models.CrawlRequest
	EnqueuedAt time.Time
}

// Worker represents a single worker goroutine
type Worker struct {
	ID       int
	TaskChan chan CrawlTask
	QuitChan chan struct{}
	Pool     *WorkerPool
	logger   logging.Logger
}

// WorkerPool manages multiple worker goroutines and the crawl task queue.
// Crawl jobs are fire-and-forget: outcomes flow through the job store, not
// back to the dispatcher.
type WorkerPool struct {
	config      *config.Config
	workers     []*Worker
	taskQueue   chan CrawlTask
	dispatcher  *Dispatcher
	rateLimiter *RateLimiter
	crawler     *Crawler
	logger      logging.Logger
	mu          sync.RWMutex
	running     bool
	stats       *PoolStats
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	mu                    sync.RWMutex
	TasksQueued           int64
	TasksProcessed        int64
	TasksSuccessful       int64
	TasksFailed           int64
	TotalProcessingTime   time.Duration
	AverageProcessingTime time.Duration
}

// PoolStatsData is a lock-free snapshot of PoolStats for JSON responses.
type PoolStatsData struct {
	TasksQueued           int64  `json:"tasks_queued"`
	TasksProcessed        int64  `json:"tasks_processed"`
	TasksSuccessful       int64  `json:"tasks_successful"`
	TasksFailed           int64  `json:"tasks_failed"`
	AverageProcessingTime string `json:"average_processing_time"`
}

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(cfg *config.Config, crawler *Crawler) *WorkerPool {
	logger := logging.GetGlobalLogger()

	pool := &WorkerPool{
		config:      cfg,
		taskQueue:   make(chan CrawlTask, cfg.Workers.QueueSize),
		rateLimiter: NewRateLimiter(cfg),
		crawler:     crawler,
		logger:      logger,
		stats:       &PoolStats{},
	}
	crawler.limiter = pool.rateLimiter

	pool.workers = make([]*Worker, cfg.Workers.PoolSize)
	for i := 0; i < cfg.Workers.PoolSize; i++ {
		pool.workers[i] = &Worker{
			ID:       i + 1,
			TaskChan: make(chan CrawlTask),
			QuitChan: make(chan struct{}),
			Pool:     pool,
			logger:   logger.WithField("worker_id", i+1),
		}
	}

	pool.dispatcher = NewDispatcher(pool.taskQueue, pool.workers)

	logger.Info("Worker pool initialized", map[string]interface{}{
		"pool_size":  cfg.Workers.PoolSize,
		"queue_size": cfg.Workers.QueueSize,
	})
	return pool
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	wp.dispatcher.Start()
	for _, worker := range wp.workers {
		go worker.Start()
	}

	wp.running = true
	wp.logger.Info("Worker pool started", map[string]interface{}{"workers": len(wp.workers)})
	return nil
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return nil
	}

	wp.dispatcher.Stop()
	for _, worker := range wp.workers {
		worker.Stop()
	}
	close(wp.taskQueue)

	wp.running = false
	wp.logger.Info("Worker pool stopped")
	return nil
}

// Dispatch enqueues one crawl request. It never blocks on a full queue, the
// caller gets a dispatch error instead and can apply its own backoff.
func (wp *WorkerPool) Dispatch(req models.CrawlRequest) error {
	if !wp.IsRunning() {
		return utils.NewDispatchError("worker pool is not running")
	}

	task := CrawlTask{Request: req, EnqueuedAt: time.Now()}

	select {
	case wp.taskQueue <- task:
		wp.stats.mu.Lock()
		wp.stats.TasksQueued++
		wp.stats.mu.Unlock()

		wp.logger.Info("Crawl task queued", map[string]interface{}{
			"job_id": req.JobID,
			"domain": req.Domain,
			"page":   req.PageNum,
		})
		return nil
	default:
		return utils.NewDispatchError("crawl queue is full")
	}
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// GetStats returns a snapshot of the pool statistics.
func (wp *WorkerPool) GetStats() PoolStatsData {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	avg := time.Duration(0)
	if wp.stats.TasksProcessed > 0 {
		avg = wp.stats.TotalProcessingTime / time.Duration(wp.stats.TasksProcessed)
	}
	return PoolStatsData{
		TasksQueued:           wp.stats.TasksQueued,
		TasksProcessed:        wp.stats.TasksProcessed,
		TasksSuccessful:       wp.stats.TasksSuccessful,
		TasksFailed:           wp.stats.TasksFailed,
		AverageProcessingTime: avg.String(),
	}
}

// Start starts the worker goroutine
func (w *Worker) Start() {
	w.logger.Debug("Worker started")

	for {
		select {
		case task := <-w.TaskChan:
			w.processTask(task)
		case <-w.QuitChan:
			w.logger.Debug("Worker stopping")
			return
		}
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.QuitChan <- struct{}{}
}

// processTask runs one crawl to completion under the pool-wide timeout.
func (w *Worker) processTask(task CrawlTask) {
	startTime := time.Now()

	w.logger.Debug("Processing crawl task", map[string]interface{}{
		"job_id": task.Request.JobID,
		"domain": task.Request.Domain,
		"page":   task.Request.PageNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), w.Pool.config.Workers.Timeout)
	defer cancel()

	err := w.Pool.crawler.Run(ctx, task.Request)

	processingTime := time.Since(startTime)
	w.Pool.stats.mu.Lock()
	w.Pool.stats.TasksProcessed++
	w.Pool.stats.TotalProcessingTime += processingTime
	if err != nil {
		w.Pool.stats.TasksFailed++
	} else {
		w.Pool.stats.TasksSuccessful++
	}
	w.Pool.stats.mu.Unlock()

	w.logger.Info("Crawl task finished", map[string]interface{}{
		"job_id":          task.Request.JobID,
		"worker_id":       w.ID,
		"processing_time": processingTime.String(),
		"success":         err == nil,
	})
}
