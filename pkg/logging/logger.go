// Package logging provides per-component log files stored in the
// application's config directory.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ComponentLogger writes the log stream of one component instance to
// its own file (and mirrors it to stdout for development).
type ComponentLogger struct {
	component string
	instance  string
	logFile   *os.File
	logger    *log.Logger
	mu        sync.Mutex
}

var (
	loggers   = make(map[string]*ComponentLogger)
	loggersMu sync.RWMutex
)

// GetLogger returns the logger for a component instance, creating the
// log file on first use.
func GetLogger(component, instance string) (*ComponentLogger, error) {
	key := fmt.Sprintf("%s-%s", component, instance)

	loggersMu.RLock()
	if logger, exists := loggers[key]; exists {
		loggersMu.RUnlock()
		return logger, nil
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if logger, exists := loggers[key]; exists {
		return logger, nil
	}

	logDir, err := logDirectory()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := filepath.Join(logDir, key+".log")
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	multiWriter := io.MultiWriter(logFile, os.Stdout)
	cl := &ComponentLogger{
		component: component,
		instance:  instance,
		logFile:   logFile,
		logger:    log.New(multiWriter, fmt.Sprintf("[%s] ", key), log.LstdFlags|log.Lmicroseconds),
	}

	loggers[key] = cl
	return cl, nil
}

// Logf writes a formatted log line.
func (cl *ComponentLogger) Logf(format string, args ...interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.logger != nil {
		cl.logger.Printf(format, args...)
	}
}

// Close closes the log file and removes the logger from the registry.
func (cl *ComponentLogger) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.logFile == nil {
		return nil
	}
	err := cl.logFile.Close()
	cl.logFile = nil
	cl.logger = nil

	key := fmt.Sprintf("%s-%s", cl.component, cl.instance)
	loggersMu.Lock()
	delete(loggers, key)
	loggersMu.Unlock()
	return err
}

// CloseAll closes every open logger. Called on application shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for key, logger := range loggers {
		logger.mu.Lock()
		if logger.logFile != nil {
			if err := logger.logFile.Close(); err != nil {
				log.Printf("Error closing logger %s: %v", key, err)
			}
			logger.logFile = nil
			logger.logger = nil
		}
		logger.mu.Unlock()
	}
	loggers = make(map[string]*ComponentLogger)
}

// CleanupOldLogs removes log files older than the given number of days.
// days <= 0 disables the sweep.
func CleanupOldLogs(days int) error {
	if days <= 0 {
		return nil
	}

	logDir, err := logDirectory()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(logDir, entry.Name())); err == nil {
				removed++
			}
		}
	}

	if removed > 0 {
		log.Printf("Cleaned up %d old log file(s) older than %d days", removed, days)
	}
	return nil
}

func logDirectory() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "Prontu", "logs"), nil
}
