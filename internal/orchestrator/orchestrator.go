// Package orchestrator schedules crawl jobs per partner domain. A domain has
// at most one active automation at a time: a history loop paging backwards
// through the archive, a watcher loop re-checking page one, or a one-shot
// run. Loops reschedule themselves with per-cycle recomputed delays and
// survive individual cycle failures with a backoff.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"propscout/internal/config"
	"propscout/internal/logging"
	"propscout/internal/metrics"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

// ErrLoopActive is returned when a domain already has a running automation.
var ErrLoopActive = errors.New("an automation is already active for this domain")

// statusPollInterval is how often a cycle checks its job for completion.
// Variable so tests can tighten it.
var statusPollInterval = 2 * time.Second

// ConfigSource is the slice of the config store the orchestrator needs.
type ConfigSource interface {
	GetConfig(ctx context.Context, domain string) (*models.ScraperConfig, error)
	UpdateLastScrapedID(ctx context.Context, domain string, page int) error
}

// JobControl is the slice of the job store the orchestrator needs.
type JobControl interface {
	CreateJob(ctx context.Context, job *models.ScrapeJob) error
	GetJob(ctx context.Context, jobID string) (*models.ScrapeJob, error)
	SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error
	RequestStop(ctx context.Context, jobID string) error
}

// Dispatcher hands crawl requests to the worker pool.
type Dispatcher interface {
	Dispatch(req models.CrawlRequest) error
}

// LoopStatus describes one active automation for API responses.
type LoopStatus struct {
	Domain       string    `json:"domain"`
	Mode         models.JobMode `json:"mode"`
	CurrentJobID string    `json:"current_job_id,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

type loopController struct {
	domain    string
	mode      models.JobMode
	oneShot   bool
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	mu           sync.Mutex
	currentJobID string
}

func (lc *loopController) setJob(jobID string) {
	lc.mu.Lock()
	lc.currentJobID = jobID
	lc.mu.Unlock()
}

func (lc *loopController) job() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.currentJobID
}

// Orchestrator owns every automation loop. All mutations of the loop table
// go through its mutex, which is what guarantees a domain never runs two
// automations at once.
type Orchestrator struct {
	config     *config.Config
	configs    ConfigSource
	jobs       JobControl
	dispatcher Dispatcher
	logger     logging.Logger

	mu    sync.Mutex
	loops map[string]*loopController
}

// New creates an orchestrator.
func New(cfg *config.Config, configs ConfigSource, jobs JobControl, dispatcher Dispatcher) *Orchestrator {
	return &Orchestrator{
		config:     cfg,
		configs:    configs,
		jobs:       jobs,
		dispatcher: dispatcher,
		logger:     logging.GetGlobalLogger().WithField("component", "orchestrator"),
		loops:      make(map[string]*loopController),
	}
}

// StartHistory starts the history loop for a domain. The loop crawls the
// page at the stored cursor, advances the cursor after each completed cycle
// and sleeps the configured auto interval between cycles.
func (o *Orchestrator) StartHistory(ctx context.Context, domain string) error {
	return o.startLoop(ctx, domain, models.ModeHistory)
}

// StartWatcher starts the watcher loop for a domain. The loop re-crawls the
// first page on the watcher interval and never touches the cursor.
func (o *Orchestrator) StartWatcher(ctx context.Context, domain string) error {
	return o.startLoop(ctx, domain, models.ModeWatcher)
}

func (o *Orchestrator) startLoop(ctx context.Context, domain string, mode models.JobMode) error {
	cfg, err := o.loadValidConfig(ctx, domain)
	if err != nil {
		return err
	}

	o.mu.Lock()
	for {
		current, active := o.loops[domain]
		if !active {
			break
		}
		if current.oneShot || current.mode == mode {
			o.mu.Unlock()
			return ErrLoopActive
		}

		// Enabling one automation mode disables the other. The opposite
		// loop is torn down before the slot is reclaimed.
		o.mu.Unlock()
		o.logger.Info("Switching automation mode", map[string]interface{}{
			"domain": domain,
			"from":   string(current.mode),
			"to":     string(mode),
		})
		o.stopController(ctx, current)
		o.mu.Lock()
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	lc := &loopController{
		domain:    domain,
		mode:      mode,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	o.loops[domain] = lc
	o.mu.Unlock()

	metrics.ActiveLoops.Inc()
	o.logger.Info("Automation loop started", map[string]interface{}{
		"domain": domain,
		"mode":   string(mode),
	})

	go o.runLoop(loopCtx, lc, cfg.AutoInterval, cfg.WatcherIntervalHours)
	return nil
}

func (o *Orchestrator) runLoop(ctx context.Context, lc *loopController, autoIntervalMin, watcherHours int) {
	defer func() {
		o.mu.Lock()
		delete(o.loops, lc.domain)
		o.mu.Unlock()
		metrics.ActiveLoops.Dec()
		close(lc.done)
		o.logger.Info("Automation loop ended", map[string]interface{}{
			"domain": lc.domain,
			"mode":   string(lc.mode),
		})
	}()

	for {
		status, err := o.runCycle(ctx, lc)
		if ctx.Err() != nil {
			return
		}
		if status == models.StatusStopped {
			// A stopped job means an operator intervened, the loop must
			// not reschedule itself.
			return
		}

		delay := o.nextDelay(lc.mode, status, err, autoIntervalMin, watcherHours)
		o.logger.Debug("Cycle finished, sleeping", map[string]interface{}{
			"domain": lc.domain,
			"status": string(status),
			"delay":  delay.String(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// nextDelay recomputes the sleep before the next cycle. Cycle errors (config
// reload, dispatch) back off for a fixed window instead of hammering a broken
// setup. The watcher otherwise keeps its interval regardless of how the job
// ended; only the history loop backs off on a failed crawl.
func (o *Orchestrator) nextDelay(mode models.JobMode, status models.JobStatus, err error, autoIntervalMin, watcherHours int) time.Duration {
	if err != nil {
		return o.config.Orchestrator.ErrorBackoff
	}
	if mode == models.ModeWatcher {
		return time.Duration(watcherHours) * time.Hour
	}
	if status == models.StatusError || status == models.StatusFailed {
		return o.config.Orchestrator.ErrorBackoff
	}
	return time.Duration(autoIntervalMin) * time.Minute
}

// runCycle executes one automation cycle: reload config, create the job,
// dispatch and wait for a terminal status. History cycles that complete
// advance the page cursor by one.
func (o *Orchestrator) runCycle(ctx context.Context, lc *loopController) (models.JobStatus, error) {
	cfg, err := o.loadValidConfig(ctx, lc.domain)
	if err != nil {
		o.logger.Error("Cycle skipped, config invalid", map[string]interface{}{
			"domain": lc.domain,
			"error":  err.Error(),
		})
		return models.StatusFailed, err
	}

	page := 1
	if lc.mode == models.ModeHistory {
		page = cfg.LastScrapedID
	}

	jobID, err := o.launchJob(ctx, cfg, lc.mode, page)
	if err != nil {
		return models.StatusError, err
	}
	lc.setJob(jobID)
	defer lc.setJob("")

	status, err := o.awaitTerminal(ctx, jobID)
	if err != nil {
		return status, err
	}

	metrics.JobsTotal.WithLabelValues(string(lc.mode), string(status)).Inc()

	if status == models.StatusCompleted && lc.mode == models.ModeHistory {
		if err := o.configs.UpdateLastScrapedID(ctx, lc.domain, page+1); err != nil {
			o.logger.Error("Failed to advance page cursor", map[string]interface{}{
				"domain": lc.domain,
				"page":   page,
				"error":  err.Error(),
			})
		}
	}
	return status, nil
}

// launchJob registers a job and hands the crawl request to the pool. A
// dispatch failure moves the job to error state so nothing dangles in
// running state.
func (o *Orchestrator) launchJob(ctx context.Context, cfg *models.ScraperConfig, mode models.JobMode, page int) (string, error) {
	job := &models.ScrapeJob{
		ID:     uuid.New().String(),
		Domain: cfg.Domain,
		Mode:   mode,
		Page:   page,
	}
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	req := models.CrawlRequest{
		JobID:            job.ID,
		Domain:           cfg.Domain,
		CategoryURL:      cfg.CategoryURL,
		LinkSelector:     cfg.LinkSelector,
		ExtractSelectors: cfg.Selectors,
		PageNum:          page,
		DelayMin:         cfg.DelayMin,
		DelayMax:         cfg.DelayMax,
		Mode:             mode,
	}
	if err := o.dispatcher.Dispatch(req); err != nil {
		_ = o.jobs.SetStatus(ctx, job.ID, models.StatusError, err.Error())
		return "", err
	}
	return job.ID, nil
}

// statusWatcher is implemented by job stores that can push status
// transitions. Stores without it fall back to pure polling.
type statusWatcher interface {
	WatchStatus(ctx context.Context, jobID string) (<-chan models.JobStatus, func())
}

// awaitTerminal waits for the job to reach a terminal status. Transitions
// arrive over the store's status subscription when available, with a slow
// poll as safety net for missed publishes. The wait is bounded by the pool
// timeout plus a grace period, after which the job is forced to failed so
// the loop can move on.
func (o *Orchestrator) awaitTerminal(ctx context.Context, jobID string) (models.JobStatus, error) {
	var updates <-chan models.JobStatus
	if watcher, ok := o.jobs.(statusWatcher); ok {
		ch, stop := watcher.WatchStatus(ctx, jobID)
		defer stop()
		updates = ch
	}

	deadline := time.After(o.config.Workers.Timeout + time.Minute)
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.StatusStopped, ctx.Err()
		case <-deadline:
			err := fmt.Errorf("job %s did not finish within the pool timeout", jobID)
			_ = o.jobs.SetStatus(context.WithoutCancel(ctx), jobID, models.StatusFailed, err.Error())
			return models.StatusFailed, err
		case status, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if status.Terminal() {
				return status, nil
			}
		case <-ticker.C:
			job, err := o.jobs.GetJob(ctx, jobID)
			if err != nil {
				return models.StatusFailed, err
			}
			if job.Status.Terminal() {
				return job.Status, nil
			}
		}
	}
}

// RunOnce executes a single cycle for a domain without starting a loop. The
// domain slot is held for the duration so a loop cannot start concurrently.
func (o *Orchestrator) RunOnce(ctx context.Context, domain string, mode models.JobMode) (string, error) {
	cfg, err := o.loadValidConfig(ctx, domain)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	if _, active := o.loops[domain]; active {
		o.mu.Unlock()
		return "", ErrLoopActive
	}
	lc := &loopController{
		domain:    domain,
		mode:      mode,
		oneShot:   true,
		cancel:    func() {},
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	o.loops[domain] = lc
	o.mu.Unlock()

	release := func() {
		o.mu.Lock()
		delete(o.loops, domain)
		o.mu.Unlock()
		close(lc.done)
	}

	page := 1
	if mode == models.ModeHistory {
		page = cfg.LastScrapedID
	}

	jobID, err := o.launchJob(ctx, cfg, mode, page)
	if err != nil {
		release()
		return "", err
	}
	lc.setJob(jobID)

	// The slot stays held until the job finishes so a loop cannot start
	// while the one-shot crawl is still running.
	go func() {
		defer release()
		status, err := o.awaitTerminal(context.Background(), jobID)
		if err == nil {
			metrics.JobsTotal.WithLabelValues(string(mode), string(status)).Inc()
			if status == models.StatusCompleted && mode == models.ModeHistory {
				cursorCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := o.configs.UpdateLastScrapedID(cursorCtx, domain, page+1); err != nil {
					o.logger.Error("Failed to advance page cursor", map[string]interface{}{
						"domain": domain,
						"error":  err.Error(),
					})
				}
			}
		}
	}()
	return jobID, nil
}

// StopAutomation cancels the active loop for a domain and requests a stop
// of its in-flight job, then waits for the loop goroutine to exit.
func (o *Orchestrator) StopAutomation(ctx context.Context, domain string) error {
	o.mu.Lock()
	lc, active := o.loops[domain]
	o.mu.Unlock()
	if !active {
		return fmt.Errorf("no active automation for domain %s", domain)
	}

	o.stopController(ctx, lc)
	return nil
}

// stopController cancels a loop, raises the stop flag on its in-flight job
// and waits for the loop goroutine to exit.
func (o *Orchestrator) stopController(ctx context.Context, lc *loopController) {
	lc.cancel()
	if jobID := lc.job(); jobID != "" {
		if err := o.jobs.RequestStop(ctx, jobID); err != nil {
			o.logger.Warn("Failed to request job stop", map[string]interface{}{
				"job_id": jobID,
				"error":  err.Error(),
			})
		}
	}

	select {
	case <-lc.done:
	case <-time.After(30 * time.Second):
		o.logger.Warn("Timed out waiting for loop to exit", map[string]interface{}{"domain": lc.domain})
	}
}

// StopJob raises the cooperative stop flag for one job.
func (o *Orchestrator) StopJob(ctx context.Context, jobID string) error {
	return o.jobs.RequestStop(ctx, jobID)
}

// ActiveLoops lists the running automations.
func (o *Orchestrator) ActiveLoops() []LoopStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	loops := make([]LoopStatus, 0, len(o.loops))
	for _, lc := range o.loops {
		loops = append(loops, LoopStatus{
			Domain:       lc.domain,
			Mode:         lc.mode,
			CurrentJobID: lc.job(),
			StartedAt:    lc.startedAt,
		})
	}
	return loops
}

// Shutdown cancels every loop and waits for them to exit.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.mu.Lock()
	controllers := make([]*loopController, 0, len(o.loops))
	for _, lc := range o.loops {
		controllers = append(controllers, lc)
	}
	o.mu.Unlock()

	for _, lc := range controllers {
		lc.cancel()
	}
	for _, lc := range controllers {
		select {
		case <-lc.done:
		case <-ctx.Done():
			return
		}
	}
}

// loadValidConfig loads a scraper config and refuses inactive or
// incompletely configured domains.
func (o *Orchestrator) loadValidConfig(ctx context.Context, domain string) (*models.ScraperConfig, error) {
	cfg, err := o.configs.GetConfig(ctx, domain)
	if err != nil {
		return nil, err
	}
	if !cfg.IsActive {
		return nil, utils.NewConfigurationError("scraper config is inactive")
	}
	if cfg.CategoryURL == "" {
		return nil, utils.NewConfigurationError("scraper config has no category url")
	}
	if cfg.LinkSelector == "" {
		return nil, utils.NewConfigurationError("scraper config has no link selector")
	}
	return cfg, nil
}
