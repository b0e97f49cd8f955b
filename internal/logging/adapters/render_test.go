package adapters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"propscout/internal/logging/types"
)

func sampleEntry() *types.LogEntry {
	return &types.LogEntry{
		Level:     types.WarnLevel,
		Message:   "slow upstream",
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Fields:    map[string]interface{}{"domain": "example.com"},
	}
}

func TestRenderJSONFlattensFields(t *testing.T) {
	line, err := renderEntry(sampleEntry(), "json")
	if err != nil {
		t.Fatalf("renderEntry: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if payload["level"] != "warn" {
		t.Errorf("level = %v, want warn", payload["level"])
	}
	if payload["message"] != "slow upstream" {
		t.Errorf("message = %v", payload["message"])
	}
	if payload["domain"] != "example.com" {
		t.Errorf("field not flattened into the top-level object: %v", payload)
	}
}

func TestRenderTextFormat(t *testing.T) {
	line, err := renderEntry(sampleEntry(), "text")
	if err != nil {
		t.Fatalf("renderEntry: %v", err)
	}
	if !strings.Contains(line, "[WARN] slow upstream") {
		t.Errorf("line = %q, want level tag and message", line)
	}
	if !strings.Contains(line, "domain=example.com") {
		t.Errorf("line = %q, want appended field", line)
	}
}

func TestRenderEntryUnknownFormatFallsBackToJSON(t *testing.T) {
	line, err := renderEntry(sampleEntry(), "xml")
	if err != nil {
		t.Fatalf("renderEntry: %v", err)
	}
	if !json.Valid([]byte(line)) {
		t.Errorf("fallback output is not JSON: %q", line)
	}
}
