package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"coco/internal/command"
	"coco/internal/config"
	"coco/internal/database"
	"coco/internal/logging"
	"coco/internal/metrics"
	"coco/internal/runner"
	"coco/internal/safety"
	"coco/internal/terminal"
)

// App holds the dependencies of one coco invocation.
type App struct {
	Config  *config.Config
	Printer *terminal.Printer
	Logger  zerolog.Logger

	history   *database.HistoryDB
	logCloser io.Closer
}

// NewApp loads configuration from configPath (or the default location),
// applies overrides and sets up output and logging. Only a configuration
// error fails; an unusable log file is reported as a warning.
func NewApp(configPath string, overrides config.Overrides, stdout, stderr io.Writer) (*App, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(overrides); err != nil {
		return nil, err
	}

	printer := terminal.NewPrinter(stdout, stderr, cfg.Color)

	logger, closer, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		printer.Warn(fmt.Sprintf("Diagnostic log disabled: %v", err))
	}

	return &App{
		Config:    cfg,
		Printer:   printer,
		Logger:    logger,
		logCloser: closer,
	}, nil
}

// Run executes session through a Runner configured from the App.
func (a *App) Run(ctx context.Context, session runner.Session, commandLine string) error {
	opts := []runner.Option{
		runner.WithReporter(a.Printer),
		runner.WithLogger(a.Logger),
		runner.WithValidator(safety.NewValidator(a.Config.Safety.AllowedRoots, a.Config.Safety.ProtectedPaths)),
		runner.WithCommandLine(commandLine),
	}
	if _, ok := session.Command.(command.Delete); ok {
		if h := a.openHistory(); h != nil {
			opts = append(opts, runner.WithHistory(h))
		}
	}

	a.Logger.Debug().
		Str("command", session.Command.Name()).
		Str("work_dir", session.WorkDir).
		Msg("running command")

	err := runner.New(session, opts...).Run(ctx)
	a.writeMetrics()
	return err
}

// openHistory opens the deletion history on first use. A database that
// cannot be opened disables history for this run with a warning.
func (a *App) openHistory() *database.HistoryDB {
	if a.history != nil {
		return a.history
	}
	if !a.Config.History.Enabled || a.Config.History.DatabasePath == "" {
		return nil
	}

	h, err := database.NewHistoryDB(a.Config.History.DatabasePath)
	if err != nil {
		a.Logger.Error().Err(err).Str("path", a.Config.History.DatabasePath).Msg("history unavailable")
		a.Printer.Warn(fmt.Sprintf("Deletion history disabled: %v", err))
		return nil
	}
	a.history = h
	return h
}

func (a *App) writeMetrics() {
	path := a.Config.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		a.Logger.Warn().Err(err).Str("path", path).Msg("failed to write metrics")
	}
}

// Close releases the history database and the log file.
func (a *App) Close() error {
	var firstErr error
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			firstErr = err
		}
		a.history = nil
	}
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.logCloser = nil
	}
	return firstErr
}
