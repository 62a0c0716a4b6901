package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"coco/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the diagnostic logger described by cfg. Records go to the
// rotated log file and, when cfg.Console is set, to console. The returned
// closer releases the log file.
//
// A file that cannot be opened is reported as an error alongside a logger
// that still writes to the console, so callers may warn and carry on.
func New(cfg config.LoggingCfg, console io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.Console && console != nil {
		writers = append(writers, formatWriter(cfg.Format, console, false))
	}

	var closer io.Closer = nopCloser{}
	var fileErr error
	if cfg.File != "" {
		f, err := openLogFile(cfg.File, cfg.RotationDays)
		if err != nil {
			fileErr = err
		} else {
			writers = append(writers, formatWriter(cfg.Format, f, true))
			closer = f
		}
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, fileErr
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, fileErr
}

func formatWriter(format string, out io.Writer, noColor bool) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

func openLogFile(path string, rotationDays int) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory %s: %w", filepath.Dir(path), err)
	}

	if rotationDays <= 0 {
		rotationDays = 30 // default
	}
	if err := rotateLogsIfNeeded(path, rotationDays, time.Now()); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// rotateLogsIfNeeded renames the log file once the period it was started in
// is older than rotationDays. The start of the period is kept in a stamp file
// next to the log, since appending refreshes the log's own mtime on every run.
// Rotated files are kept for one more period.
func rotateLogsIfNeeded(logPath string, rotationDays int, now time.Time) error {
	stamp := stampPath(logPath)

	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, its period starts now
		return writeStamp(stamp, now)
	}

	started, ok := readStamp(stamp)
	if !ok {
		// No stamp from an earlier run: the last write is the best known bound
		started = info.ModTime()
		if err := writeStamp(stamp, started); err != nil {
			return err
		}
	}

	cutoffTime := now.AddDate(0, 0, -rotationDays)
	if !started.Before(cutoffTime) {
		return nil
	}

	rotatedPath := logPath + "." + started.Format("20060102-150405")
	if err := os.Rename(logPath, rotatedPath); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	if err := writeStamp(stamp, now); err != nil {
		return err
	}

	return cleanupOldLogs(logPath, cutoffTime.AddDate(0, 0, -rotationDays))
}

// stampPath is hidden so it never matches the rotated file prefix
func stampPath(logPath string) string {
	return filepath.Join(filepath.Dir(logPath), "."+filepath.Base(logPath)+".started")
}

func readStamp(path string) (time.Time, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func writeStamp(path string, t time.Time) error {
	if err := os.WriteFile(path, []byte(t.Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write log rotation stamp: %w", err)
	}
	return nil
}

// cleanupOldLogs removes rotated siblings of logPath last written before cutoff.
func cleanupOldLogs(logPath string, cutoff time.Time) error {
	logDir := filepath.Dir(logPath)
	prefix := filepath.Base(logPath) + "."

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			fullPath := filepath.Join(logDir, entry.Name())
			if err := os.Remove(fullPath); err != nil {
				return fmt.Errorf("remove old log file %s: %w", fullPath, err)
			}
		}
	}
	return nil
}
