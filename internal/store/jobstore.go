package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"propscout/internal/config"
	"propscout/internal/logging"
	"propscout/pkg/models"
)

// ErrJobNotFound is returned when a job id is unknown.
var ErrJobNotFound = errors.New("job not found")

// maxLogLines caps the per-job log list. Live subscribers still receive
// every line, the cap only bounds the replay buffer.
const maxLogLines = 2000

// JobStore keeps job state and log lines in Redis and fans live updates out
// over pub/sub. One channel per job for logs, one for status transitions.
type JobStore struct {
	client *redis.Client
	logger logging.Logger
}

// NewJobStore creates a Redis-backed job store.
func NewJobStore(cfg *config.Config) *JobStore {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &JobStore{
		client: redis.NewClient(opts),
		logger: logging.GetGlobalLogger().WithField("component", "job_store"),
	}
}

func jobKey(jobID string) string      { return "job:" + jobID }
func jobLogsKey(jobID string) string  { return "job:" + jobID + ":logs" }
func jobStopKey(jobID string) string  { return "job:" + jobID + ":stop" }
func logsChannel(jobID string) string { return "job:" + jobID + ":logs:live" }

// statusChannel carries every status transition for a job.
func statusChannel(jobID string) string { return "job:" + jobID + ":status" }

// Ping tests the Redis connection.
func (s *JobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *JobStore) Close() error {
	return s.client.Close()
}

// CreateJob registers a new job in running state.
func (s *JobStore) CreateJob(ctx context.Context, job *models.ScrapeJob) error {
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now()
	}
	job.Status = models.StatusRunning

	if err := s.saveJob(ctx, job); err != nil {
		return err
	}
	if err := s.client.ZAdd(ctx, "jobs:index", redis.Z{
		Score:  float64(job.StartedAt.Unix()),
		Member: job.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index job: %w", err)
	}
	return nil
}

// GetJob loads one job by id.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (*models.ScrapeJob, error) {
	raw, err := s.client.Get(ctx, jobKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	var job models.ScrapeJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// ListJobs returns the most recent jobs, newest first.
func (s *JobStore) ListJobs(ctx context.Context, limit int) ([]*models.ScrapeJob, error) {
	if limit <= 0 {
		limit = 50
	}
	ids, err := s.client.ZRevRange(ctx, "jobs:index", 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*models.ScrapeJob, 0, len(ids))
	for _, id := range ids {
		job, err := s.GetJob(ctx, id)
		if errors.Is(err, ErrJobNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// SetStatus moves a job to a new status and publishes the transition.
// Terminal statuses stamp FinishedAt once; later transitions out of a
// terminal state are refused.
func (s *JobStore) SetStatus(ctx context.Context, jobID string, status models.JobStatus, errMsg string) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return nil
	}

	job.Status = status
	job.Error = errMsg
	if status.Terminal() {
		now := time.Now()
		job.FinishedAt = &now
	}

	if err := s.saveJob(ctx, job); err != nil {
		return err
	}
	if err := s.client.Publish(ctx, statusChannel(jobID), string(status)).Err(); err != nil {
		s.logger.Warn("Failed to publish status transition", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
	return nil
}

// RequestStop raises the cooperative stop flag for a job. The crawl worker
// checks the flag between listings and finishes the current one first.
func (s *JobStore) RequestStop(ctx context.Context, jobID string) error {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return err
	}
	return s.client.Set(ctx, jobStopKey(jobID), "1", 24*time.Hour).Err()
}

// StopRequested reports whether a stop was requested for the job. Lookup
// errors count as no stop so a Redis blip does not kill a healthy crawl.
func (s *JobStore) StopRequested(ctx context.Context, jobID string) bool {
	n, err := s.client.Exists(ctx, jobStopKey(jobID)).Result()
	return err == nil && n > 0
}

// AppendLog appends one log line, trims the replay buffer and publishes the
// line to live subscribers.
func (s *JobStore) AppendLog(ctx context.Context, jobID string, severity models.LogSeverity, message string) {
	entry := models.LogMessage{
		JobID:     jobID,
		Timestamp: time.Now(),
		Severity:  severity,
		Message:   message,
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, jobLogsKey(jobID), raw)
	pipe.LTrim(ctx, jobLogsKey(jobID), -maxLogLines, -1)
	pipe.Publish(ctx, logsChannel(jobID), raw)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("Failed to append job log", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
}

// GetLogs returns the buffered log lines for a job in arrival order.
func (s *JobStore) GetLogs(ctx context.Context, jobID string) ([]models.LogMessage, error) {
	raw, err := s.client.LRange(ctx, jobLogsKey(jobID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	logs := make([]models.LogMessage, 0, len(raw))
	for _, line := range raw {
		var entry models.LogMessage
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

// SubscribeLogs opens a live log subscription for one job. The caller owns
// the returned PubSub and must Close it.
func (s *JobStore) SubscribeLogs(ctx context.Context, jobID string) *redis.PubSub {
	return s.client.Subscribe(ctx, logsChannel(jobID))
}

// SubscribeStatus opens a live status-transition subscription for one job.
func (s *JobStore) SubscribeStatus(ctx context.Context, jobID string) *redis.PubSub {
	return s.client.Subscribe(ctx, statusChannel(jobID))
}

// WatchStatus delivers status transitions for one job as typed values. The
// channel closes when the subscription ends; stop releases it.
func (s *JobStore) WatchStatus(ctx context.Context, jobID string) (<-chan models.JobStatus, func()) {
	pubsub := s.SubscribeStatus(ctx, jobID)
	ch := make(chan models.JobStatus, 8)

	go func() {
		defer close(ch)
		for msg := range pubsub.Channel() {
			select {
			case ch <- models.JobStatus(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, func() { _ = pubsub.Close() }
}

// SweepExpired removes jobs older than maxAge together with their log
// buffers and stop flags. Running jobs are never swept.
func (s *JobStore) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	ids, err := s.client.ZRangeByScore(ctx, "jobs:index", &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", cutoff),
	}).Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		job, err := s.GetJob(ctx, id)
		if err == nil && !job.Status.Terminal() {
			continue
		}
		pipe := s.client.Pipeline()
		pipe.Del(ctx, jobKey(id), jobLogsKey(id), jobStopKey(id))
		pipe.ZRem(ctx, "jobs:index", id)
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *JobStore) saveJob(ctx context.Context, job *models.ScrapeJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	return s.client.Set(ctx, jobKey(job.ID), raw, 0).Err()
}
