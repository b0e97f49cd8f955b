package logging

import (
	"fmt"

	"propscout/internal/logging/adapters"
	"propscout/internal/logging/types"
)

// buildAdapter constructs one adapter from its config block.
func buildAdapter(cfg types.AdapterConfig) (types.LogAdapter, error) {
	switch cfg.Type {
	case "stdout":
		return adapters.NewStdoutAdapter(cfg.Name, optString(cfg.Options, "format", "json")), nil
	case "file":
		return adapters.NewFileAdapter(cfg.Name, adapters.FileConfig{
			FilePath:   optString(cfg.Options, "file_path", ""),
			Format:     optString(cfg.Options, "format", "json"),
			MaxSizeMB:  optInt(cfg.Options, "max_size", 100),
			MaxAgeDays: optInt(cfg.Options, "max_age", 0),
			MaxBackups: optInt(cfg.Options, "max_backups", 10),
			Compress:   optBool(cfg.Options, "compress", false),
		})
	default:
		return nil, fmt.Errorf("unknown logging adapter type %q", cfg.Type)
	}
}

func optString(options map[string]interface{}, key, fallback string) string {
	if s, ok := options[key].(string); ok {
		return s
	}
	return fallback
}

// optInt also accepts float64 because YAML-decoded option maps may carry
// numbers either way.
func optInt(options map[string]interface{}, key string, fallback int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func optBool(options map[string]interface{}, key string, fallback bool) bool {
	if b, ok := options[key].(bool); ok {
		return b
	}
	return fallback
}
