package models

// ExtractRequest represents the request payload for a one-off extraction
type ExtractRequest struct {
	URL       string            `json:"url" validate:"required"`
	Selectors map[string]string `json:"selectors,omitempty"`
	Cookies   string            `json:"cookies,omitempty"`
	RawHTML   string            `json:"raw_html,omitempty"`
}

// AnalyzeRequest represents the request payload for attribute discovery
type AnalyzeRequest struct {
	URL string `json:"url" validate:"required,url"`
}
