// Package logging provides categorized file-based debug logging.
// Logs are written to one file per category under a configurable
// directory; when no directory is configured every logger is a silent
// no-op, so library code can log unconditionally.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category is a log category, one file per category.
type Category string

// Log categories of the explanation pipeline.
const (
	CategoryBoot        Category = "boot"        // Startup and command dispatch
	CategoryTransform   Category = "transform"   // Program rewrites
	CategoryGround      Category = "ground"      // Grounding
	CategorySolve       Category = "solve"       // Oracle calls
	CategoryMUC         Category = "muc"         // Core computation
	CategoryConstraints Category = "constraints" // Unsat constraint search
	CategoryTUI         Category = "tui"         // Terminal UI
)

// Logger writes to a single category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.Mutex
	loggers = make(map[Category]*Logger)
	logsDir string
)

// Initialize enables file logging under dir. Passing an empty dir
// leaves logging disabled.
func Initialize(dir string) error {
	mu.Lock()
	defer mu.Unlock()
	if dir == "" {
		logsDir = ""
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logsDir = dir
	return nil
}

// Enabled reports whether file logging is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logsDir != ""
}

// Get returns (or creates) the logger for a category. When logging is
// disabled the returned logger discards everything.
func Get(category Category) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if logsDir == "" {
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Timer measures an operation's duration for a category.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}
