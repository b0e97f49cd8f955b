package adapters

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"propscout/internal/logging/types"
)

// FileAdapter writes entries to a size-rotated log file.
type FileAdapter struct {
	name   string
	format string
	writer *lumberjack.Logger
	mu     sync.Mutex
}

// FileConfig parameterizes the rotating file adapter.
type FileConfig struct {
	FilePath   string `yaml:"file_path"`
	Format     string `yaml:"format"`      // json or text
	MaxSizeMB  int    `yaml:"max_size"`    // megabytes before rotation
	MaxAgeDays int    `yaml:"max_age"`     // days to retain rotated files
	MaxBackups int    `yaml:"max_backups"` // rotated files to keep
	Compress   bool   `yaml:"compress"`
}

// NewFileAdapter creates a rotating file adapter.
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required for file adapter")
	}

	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = 100
	}
	if config.MaxBackups <= 0 {
		config.MaxBackups = 10
	}

	return &FileAdapter{
		name:   name,
		format: strings.ToLower(config.Format),
		writer: &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSizeMB,
			MaxAge:     config.MaxAgeDays,
			MaxBackups: config.MaxBackups,
			Compress:   config.Compress,
		},
	}, nil
}

func (a *FileAdapter) Write(entry *types.LogEntry) error {
	line, err := renderEntry(entry, a.format)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.writer.Write([]byte(line + "\n"))
	return err
}

// Close closes the underlying file.
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writer.Close()
}

func (a *FileAdapter) Name() string { return a.name }
