// Package runner executes a parsed coco command against the filesystem.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"coco/internal/command"
	"coco/internal/database"
	"coco/internal/fsops"
	"coco/internal/metrics"
	"coco/internal/safety"
	"coco/internal/scan"
)

var ErrUnsupported = errors.New("command not yet supported")

// UnsupportedError is returned for commands coco recognises but cannot run yet
type UnsupportedError struct {
	Command string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("the %q command is not yet supported", e.Command)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Session is the parsed command together with the directory it runs in
type Session struct {
	Command command.Command
	WorkDir string
}

// Reporter receives the user-facing outcome of each target
type Reporter interface {
	Success(message string)
	Entry(path string)
}

// HistoryRecorder stores delete outcomes
type HistoryRecorder interface {
	RecordDeletion(r database.Record) error
}

// Validator vets a delete target before anything is removed
type Validator interface {
	ValidateDeleteTarget(path string) error
}

// Runner executes one Session
type Runner struct {
	session     Session
	deleter     fsops.Deleter
	validator   Validator
	lister      *scan.Lister
	history     HistoryRecorder
	reporter    Reporter
	logger      zerolog.Logger
	commandLine string
}

// Option configures a Runner
type Option func(*Runner)

// WithDeleter replaces the OS deleter, tests pass a FakeDeleter
func WithDeleter(d fsops.Deleter) Option {
	return func(r *Runner) { r.deleter = d }
}

func WithValidator(v Validator) Option {
	return func(r *Runner) { r.validator = v }
}

// WithHistory records every delete target to h
func WithHistory(h HistoryRecorder) Option {
	return func(r *Runner) { r.history = h }
}

func WithReporter(rep Reporter) Option {
	return func(r *Runner) { r.reporter = rep }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithCommandLine sets the invocation stored with history records
func WithCommandLine(line string) Option {
	return func(r *Runner) { r.commandLine = line }
}

// New creates a Runner for session. Without options it deletes through the
// OS, guards only the built-in protected paths and reports nothing.
func New(session Session, opts ...Option) *Runner {
	r := &Runner{
		session:   session,
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator(nil, nil),
		reporter:  nopReporter{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lister = scan.NewLister(r.logger)
	if r.commandLine == "" && session.Command != nil {
		r.commandLine = session.Command.Name()
	}
	return r
}

// Run executes the session's command. Targets are processed in order and
// the first failing target stops the run. ctx is checked between targets.
func (r *Runner) Run(ctx context.Context) error {
	if r.session.Command == nil {
		return fmt.Errorf("%w: no command", command.ErrUnrecognizedCommand)
	}

	name := r.session.Command.Name()
	start := time.Now()

	var err error
	switch c := r.session.Command.(type) {
	case command.Delete:
		err = r.runDelete(ctx, c)
	case command.List:
		err = r.runList(ctx, c)
	default:
		err = &UnsupportedError{Command: name}
	}

	metrics.RecordRun(name, time.Since(start), err != nil)
	if err != nil {
		r.logger.Error().Err(err).Str("command", name).Msg("command failed")
	}
	return err
}

// resolve anchors a relative target at the session's working directory
func (r *Runner) resolve(target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(r.session.WorkDir, target)
}

func objectType(path string) string {
	info, err := os.Lstat(path)
	switch {
	case err != nil:
		return "missing"
	case info.Mode()&os.ModeSymlink != 0:
		return "symlink"
	case info.IsDir():
		return "directory"
	default:
		return "file"
	}
}

type nopReporter struct{}

func (nopReporter) Success(string) {}
func (nopReporter) Entry(string)   {}
