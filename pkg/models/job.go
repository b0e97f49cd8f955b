package models

import "time"

// JobMode selects which automation loop created a job.
type JobMode string

const (
	ModeHistory JobMode = "history"
	ModeWatcher JobMode = "watcher"
)

// JobStatus is the lifecycle state of a scrape job.
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusError     JobStatus = "error"
	StatusFailed    JobStatus = "failed"
	StatusStopped   JobStatus = "stopped"
)

// Terminal reports whether the status ends a job.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// ScrapeJob is one run of the crawl worker against a partner's listing index.
type ScrapeJob struct {
	ID         string     `json:"id"`
	Domain     string     `json:"domain"`
	Mode       JobMode    `json:"mode"`
	Status     JobStatus  `json:"status"`
	Page       int        `json:"page"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// LogSeverity is the severity of a job log line.
type LogSeverity string

const (
	LogInfo    LogSeverity = "info"
	LogSuccess LogSeverity = "success"
	LogWarn    LogSeverity = "warn"
	LogError   LogSeverity = "error"
)

// LogMessage is one append-only log line for a job, ordered by arrival.
type LogMessage struct {
	JobID     string      `json:"job_id"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  LogSeverity `json:"severity"`
	Message   string      `json:"message"`
}

// CrawlRequest is the dispatch-boundary payload handed to the crawl worker.
// The worker pages the index at PageNum, visits every listing link with the
// configured delay window and writes log lines plus the final job status to
// the job store.
type CrawlRequest struct {
	JobID            string            `json:"job_id"`
	Domain           string            `json:"domain"`
	CategoryURL      string            `json:"category_url"`
	LinkSelector     string            `json:"link_selector"`
	ExtractSelectors map[string]string `json:"extract_selectors"`
	PageNum          int               `json:"page_num"`
	DelayMin         int               `json:"delay_min"`
	DelayMax         int               `json:"delay_max"`
	Mode             JobMode           `json:"mode"`
}
