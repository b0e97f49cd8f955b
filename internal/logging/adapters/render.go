package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"propscout/internal/logging/types"
)

const textTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// renderEntry renders one entry in the requested format, "json" or "text".
// Unknown formats fall back to json.
func renderEntry(entry *types.LogEntry, format string) (string, error) {
	if format == "text" {
		return renderText(entry), nil
	}
	return renderJSON(entry)
}

// renderJSON flattens the entry fields into the top-level object next to
// level, message and time.
func renderJSON(entry *types.LogEntry) (string, error) {
	payload := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		payload[k] = v
	}
	payload["level"] = entry.Level.String()
	payload["message"] = entry.Message
	payload["time"] = entry.Timestamp.Format(textTimeLayout)

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode log entry: %w", err)
	}
	return string(data), nil
}

func renderText(entry *types.LogEntry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(textTimeLayout))
	b.WriteString(" [")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")
	b.WriteString(entry.Message)
	for k, v := range entry.Fields {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	return b.String()
}
