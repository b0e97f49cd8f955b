package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"propscout/internal/config"
	"propscout/pkg/models"
	"propscout/pkg/utils"
)

type fakeConfigs struct {
	mu            sync.Mutex
	cfg           *models.ScraperConfig
	cursorUpdates []int
}

func (f *fakeConfigs) GetConfig(ctx context.Context, domain string) (*models.ScraperConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cfg == nil || f.cfg.Domain != domain {
		return nil, errors.New("scraper config not found")
	}
	cfg := *f.cfg
	return &cfg, nil
}

func (f *fakeConfigs) UpdateLastScrapedID(ctx context.Context, domain string, page int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursorUpdates = append(f.cursorUpdates, page)
	f.cfg.LastScrapedID = page
	return nil
}

func (f *fakeConfigs) updates() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.cursorUpdates...)
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.ScrapeJob
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: make(map[string]*models.ScrapeJob)}
}

func (f *fakeJobs) CreateJob(ctx context.Context, job *models.ScrapeJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.Status = models.StatusRunning
	stored := *job
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeJobs) GetJob(ctx context.Context, jobID string) (*models.ScrapeJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, errors.New("job not found")
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[jobID]; ok {
		job.Status = status
		job.Error = errMsg
	}
	return nil
}

func (f *fakeJobs) RequestStop(ctx context.Context, jobID string) error {
	return nil
}

// fakeDispatcher optionally finishes the job with a fixed status as soon as
// it is dispatched.
type fakeDispatcher struct {
	mu         sync.Mutex
	jobs       *fakeJobs
	requests   []models.CrawlRequest
	err        error
	autoStatus models.JobStatus
}

func (f *fakeDispatcher) Dispatch(req models.CrawlRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if f.autoStatus != "" {
		_ = f.jobs.SetStatus(context.Background(), req.JobID, f.autoStatus, "")
	}
	return nil
}

func (f *fakeDispatcher) dispatched() []models.CrawlRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CrawlRequest(nil), f.requests...)
}

func testSetup(t *testing.T, dispatcher *fakeDispatcher) (*Orchestrator, *fakeConfigs, *fakeJobs) {
	t.Helper()

	old := statusPollInterval
	statusPollInterval = 10 * time.Millisecond
	t.Cleanup(func() { statusPollInterval = old })

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	configs := &fakeConfigs{cfg: &models.ScraperConfig{
		Domain:        "example.com",
		CategoryURL:   "https://example.com/anunturi",
		LinkSelector:  "a.listing",
		LastScrapedID: 5,
		AutoInterval:  60,
		IsActive:      true,
	}}
	jobs := newFakeJobs()
	dispatcher.jobs = jobs

	return New(cfg, configs, jobs, dispatcher), configs, jobs
}

func waitForSlotRelease(t *testing.T, orch *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(orch.ActiveLoops()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("domain slot was never released")
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	dispatcher := &fakeDispatcher{autoStatus: models.StatusCompleted}
	orch, configs, _ := testSetup(t, dispatcher)

	configs.cfg.IsActive = false
	if err := orch.StartHistory(context.Background(), "example.com"); err == nil {
		t.Error("StartHistory accepted an inactive config")
	}

	configs.cfg.IsActive = true
	configs.cfg.LinkSelector = ""
	err := orch.StartWatcher(context.Background(), "example.com")
	if err == nil {
		t.Fatal("StartWatcher accepted a config without link selector")
	}
	if utils.ErrorKind(err) != utils.KindConfiguration {
		t.Errorf("error kind = %q, want %q", utils.ErrorKind(err), utils.KindConfiguration)
	}

	if err := orch.StartHistory(context.Background(), "unknown.com"); err == nil {
		t.Error("StartHistory accepted an unknown domain")
	}
}

func TestRunOnceMutualExclusion(t *testing.T) {
	// No autoStatus: the job stays running and the slot stays held
	dispatcher := &fakeDispatcher{}
	orch, _, jobs := testSetup(t, dispatcher)

	jobID, err := orch.RunOnce(context.Background(), "example.com", models.ModeHistory)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if _, err := orch.RunOnce(context.Background(), "example.com", models.ModeWatcher); !errors.Is(err, ErrLoopActive) {
		t.Errorf("second RunOnce error = %v, want ErrLoopActive", err)
	}
	if err := orch.StartHistory(context.Background(), "example.com"); !errors.Is(err, ErrLoopActive) {
		t.Errorf("StartHistory during RunOnce error = %v, want ErrLoopActive", err)
	}
	if err := orch.StartWatcher(context.Background(), "example.com"); !errors.Is(err, ErrLoopActive) {
		t.Errorf("StartWatcher during RunOnce error = %v, want ErrLoopActive", err)
	}

	// Finishing the job frees the domain for the next automation
	_ = jobs.SetStatus(context.Background(), jobID, models.StatusCompleted, "")
	waitForSlotRelease(t, orch)
}

func TestRunOnceHistoryAdvancesCursorOnCompletion(t *testing.T) {
	dispatcher := &fakeDispatcher{autoStatus: models.StatusCompleted}
	orch, configs, _ := testSetup(t, dispatcher)

	if _, err := orch.RunOnce(context.Background(), "example.com", models.ModeHistory); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	waitForSlotRelease(t, orch)

	updates := configs.updates()
	if len(updates) != 1 || updates[0] != 6 {
		t.Errorf("cursor updates = %v, want [6] (page 5 + 1)", updates)
	}

	reqs := dispatcher.dispatched()
	if len(reqs) != 1 || reqs[0].PageNum != 5 {
		t.Errorf("dispatched = %+v, want one request for page 5", reqs)
	}
}

func TestRunOnceHistoryKeepsCursorOnError(t *testing.T) {
	dispatcher := &fakeDispatcher{autoStatus: models.StatusError}
	orch, configs, _ := testSetup(t, dispatcher)

	if _, err := orch.RunOnce(context.Background(), "example.com", models.ModeHistory); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	waitForSlotRelease(t, orch)

	if updates := configs.updates(); len(updates) != 0 {
		t.Errorf("cursor updates = %v, want none after a failed cycle", updates)
	}
}

func TestRunOnceWatcherNeverTouchesCursor(t *testing.T) {
	dispatcher := &fakeDispatcher{autoStatus: models.StatusCompleted}
	orch, configs, _ := testSetup(t, dispatcher)

	if _, err := orch.RunOnce(context.Background(), "example.com", models.ModeWatcher); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	waitForSlotRelease(t, orch)

	if updates := configs.updates(); len(updates) != 0 {
		t.Errorf("cursor updates = %v, watcher mode must not move the cursor", updates)
	}
	reqs := dispatcher.dispatched()
	if len(reqs) != 1 || reqs[0].PageNum != 1 {
		t.Errorf("dispatched = %+v, watcher must crawl page 1", reqs)
	}
}

func TestRunOnceDispatchFailureMarksJobError(t *testing.T) {
	dispatcher := &fakeDispatcher{err: utils.NewDispatchError("queue full")}
	orch, _, jobs := testSetup(t, dispatcher)

	_, err := orch.RunOnce(context.Background(), "example.com", models.ModeHistory)
	if err == nil {
		t.Fatal("RunOnce succeeded despite dispatch failure")
	}

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	if len(jobs.jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs.jobs))
	}
	for _, job := range jobs.jobs {
		if job.Status != models.StatusError {
			t.Errorf("job status = %q, want error so nothing dangles in running state", job.Status)
		}
	}

	// The failed dispatch must release the slot immediately
	if len(orch.ActiveLoops()) != 0 {
		t.Error("domain slot still held after dispatch failure")
	}
}

func TestStartSwitchesAutomationMode(t *testing.T) {
	dispatcher := &fakeDispatcher{autoStatus: models.StatusCompleted}
	orch, _, _ := testSetup(t, dispatcher)

	if err := orch.StartHistory(context.Background(), "example.com"); err != nil {
		t.Fatalf("StartHistory: %v", err)
	}

	// Enabling the watcher must disable the history loop, not refuse
	if err := orch.StartWatcher(context.Background(), "example.com"); err != nil {
		t.Fatalf("StartWatcher during history loop: %v", err)
	}
	loops := orch.ActiveLoops()
	if len(loops) != 1 || loops[0].Mode != models.ModeWatcher {
		t.Fatalf("active loops = %+v, want a single watcher loop", loops)
	}

	// Same mode twice is still refused
	if err := orch.StartWatcher(context.Background(), "example.com"); !errors.Is(err, ErrLoopActive) {
		t.Errorf("second StartWatcher error = %v, want ErrLoopActive", err)
	}

	// And the switch works in the other direction too
	if err := orch.StartHistory(context.Background(), "example.com"); err != nil {
		t.Fatalf("StartHistory during watcher loop: %v", err)
	}
	loops = orch.ActiveLoops()
	if len(loops) != 1 || loops[0].Mode != models.ModeHistory {
		t.Fatalf("active loops = %+v, want a single history loop", loops)
	}

	if err := orch.StopAutomation(context.Background(), "example.com"); err != nil {
		t.Fatalf("StopAutomation: %v", err)
	}
	waitForSlotRelease(t, orch)
}

func TestNextDelayWatcherKeepsIntervalOnJobError(t *testing.T) {
	orch, _, _ := testSetup(t, &fakeDispatcher{})

	got := orch.nextDelay(models.ModeWatcher, models.StatusError, nil, 60, 6)
	if got != 6*time.Hour {
		t.Errorf("watcher delay after error status = %v, want 6h", got)
	}
	got = orch.nextDelay(models.ModeWatcher, models.StatusFailed, nil, 60, 6)
	if got != 6*time.Hour {
		t.Errorf("watcher delay after failed status = %v, want 6h", got)
	}

	// Dispatch errors still back off in both modes
	backoff := orch.config.Orchestrator.ErrorBackoff
	got = orch.nextDelay(models.ModeWatcher, "", errors.New("dispatch refused"), 60, 6)
	if got != backoff {
		t.Errorf("watcher delay after dispatch error = %v, want %v", got, backoff)
	}
	got = orch.nextDelay(models.ModeHistory, models.StatusError, nil, 60, 6)
	if got != backoff {
		t.Errorf("history delay after error status = %v, want %v", got, backoff)
	}
}

// fakeWatchJobs pushes every status transition over a channel, like the
// Redis store's pub/sub subscription.
type fakeWatchJobs struct {
	*fakeJobs
	ch chan models.JobStatus
}

func (f *fakeWatchJobs) WatchStatus(ctx context.Context, jobID string) (<-chan models.JobStatus, func()) {
	return f.ch, func() {}
}

func (f *fakeWatchJobs) SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error {
	if err := f.fakeJobs.SetStatus(ctx, jobID, status, errMsg); err != nil {
		return err
	}
	f.ch <- status
	return nil
}

func TestAwaitTerminalUsesStatusSubscription(t *testing.T) {
	orch, _, _ := testSetup(t, &fakeDispatcher{})

	// Make polling useless so only the subscription can observe the
	// transition (testSetup's cleanup restores the interval)
	statusPollInterval = time.Hour

	jobs := &fakeWatchJobs{fakeJobs: newFakeJobs(), ch: make(chan models.JobStatus, 8)}
	orch.jobs = jobs

	job := &models.ScrapeJob{ID: "job-1", Domain: "example.com", Mode: models.ModeHistory}
	if err := jobs.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = jobs.SetStatus(context.Background(), "job-1", models.StatusCompleted, "")
	}()

	start := time.Now()
	status, err := orch.awaitTerminal(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("awaitTerminal: %v", err)
	}
	if status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", status)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("terminal status was not observed through the subscription")
	}
}
