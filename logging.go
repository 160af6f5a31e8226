package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "snake.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes the standard logger to logs/snake.log when debug is set and
// discards it otherwise, so log output never corrupts the terminal frontend.
// The caller closes the returned file.
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if err := rotateLog(logPath, time.Now()); err != nil {
		// Keep appending to the oversized file
		fmt.Fprintln(os.Stderr, err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f
}

// rotateLog moves logPath aside once it exceeds maxLogSize. A missing log is not an error.
func rotateLog(logPath string, now time.Time) error {
	info, err := os.Stat(logPath)
	if err != nil || info.Size() <= maxLogSize {
		return nil
	}
	rotated := filepath.Join(filepath.Dir(logPath), fmt.Sprintf("snake-%s.log", now.Format("20060102-150405")))
	if err := os.Rename(logPath, rotated); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}
