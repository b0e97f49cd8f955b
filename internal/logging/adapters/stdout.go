package adapters

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"propscout/internal/logging/types"
)

// StdoutAdapter writes entries to standard output, one line each.
type StdoutAdapter struct {
	name   string
	format string
	out    io.Writer
	mu     sync.Mutex
}

// NewStdoutAdapter creates a stdout adapter with the given line format.
func NewStdoutAdapter(name, format string) *StdoutAdapter {
	return &StdoutAdapter{
		name:   name,
		format: strings.ToLower(format),
		out:    os.Stdout,
	}
}

func (a *StdoutAdapter) Write(entry *types.LogEntry) error {
	line, err := renderEntry(entry, a.format)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = fmt.Fprintln(a.out, line)
	return err
}

func (a *StdoutAdapter) Close() error { return nil }

func (a *StdoutAdapter) Name() string { return a.name }
