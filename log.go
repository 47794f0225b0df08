package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/dgnsrekt/trafficcall/internal/config"
)

// setupLog sends logs to TRAFFICCALL_LOG_FILE when it is set and to stderr
// otherwise. The returned func closes the log file.
func setupLog(rt config.Runtime) (func() error, error) {
	log.SetPrefix("trafficcall")
	if rt.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if rt.LogFile == "" {
		log.SetOutput(os.Stderr)
		// Interactive terminals get short lines, everything else gets timestamps
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			log.SetReportTimestamp(true)
			log.SetTimeFormat(time.RFC3339)
		}
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(rt.LogFile), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(rt.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.RFC3339)
	return f.Close, nil
}
