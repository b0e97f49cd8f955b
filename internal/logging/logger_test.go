package logging

import (
	"sync"
	"testing"

	"propscout/internal/logging/types"
)

// memoryAdapter captures entries for assertions.
type memoryAdapter struct {
	mu      sync.Mutex
	entries []types.LogEntry
}

func (m *memoryAdapter) Write(entry *types.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryAdapter) Close() error { return nil }
func (m *memoryAdapter) Name() string { return "memory" }

func (m *memoryAdapter) captured() []types.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.LogEntry(nil), m.entries...)
}

func TestMultiLoggerLevelFiltering(t *testing.T) {
	sink := &memoryAdapter{}
	logger := NewMultiLogger()
	if err := logger.AddAdapter(sink); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}
	logger.SetLevel(WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("kept too")

	entries := sink.captured()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Level != WarnLevel || entries[1].Level != ErrorLevel {
		t.Errorf("levels = %v, %v; want warn, error", entries[0].Level, entries[1].Level)
	}
}

func TestWithFieldStampsEveryEntry(t *testing.T) {
	sink := &memoryAdapter{}
	logger := NewMultiLogger()
	if err := logger.AddAdapter(sink); err != nil {
		t.Fatalf("AddAdapter: %v", err)
	}

	child := logger.WithField("component", "crawler")
	child.Info("first")
	child.Info("second", map[string]interface{}{"page": 3})

	entries := sink.captured()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Fields["component"] != "crawler" {
			t.Errorf("entry %q missing component field: %v", entry.Message, entry.Fields)
		}
	}
	if entries[1].Fields["page"] != 3 {
		t.Errorf("per-call field lost: %v", entries[1].Fields)
	}

	// The parent logger must not inherit the child's field
	logger.Info("parent")
	parent := sink.captured()[2]
	if _, ok := parent.Fields["component"]; ok {
		t.Error("child field leaked into the parent logger")
	}
}

func TestAddAdapterRejectsDuplicateName(t *testing.T) {
	logger := NewMultiLogger()
	if err := logger.AddAdapter(&memoryAdapter{}); err != nil {
		t.Fatalf("first AddAdapter: %v", err)
	}
	if err := logger.AddAdapter(&memoryAdapter{}); err == nil {
		t.Error("duplicate adapter name was accepted")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"Warn", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"fatal", FatalLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}
	for _, tc := range cases {
		if got := ParseLogLevel(tc.in); got != tc.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
