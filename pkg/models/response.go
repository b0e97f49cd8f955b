package models

import "time"

// ExtractResponse represents the response from an extract request
type ExtractResponse struct {
	Success        bool             `json:"success"`
	Property       *ScrapedProperty `json:"property,omitempty"`
	Error          string           `json:"error,omitempty"`
	ProcessingTime time.Duration    `json:"processing_time"`
	RequestID      string           `json:"request_id"`
}

// AnalyzeResponse represents the response from an analyze request
type AnalyzeResponse struct {
	Success    bool                 `json:"success"`
	URL        string               `json:"url"`
	Candidates []AttributeCandidate `json:"candidates"`
	RequestID  string               `json:"request_id"`
}

// JobResponse wraps a job record for API consumers
type JobResponse struct {
	Job  *ScrapeJob   `json:"job"`
	Logs []LogMessage `json:"logs,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
