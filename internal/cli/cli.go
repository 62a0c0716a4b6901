// Package cli wires the coco command line: cobra commands, configuration,
// logging, history and metrics around the command runner.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coco/internal/command"
	"coco/internal/config"
	"coco/internal/runner"
	"coco/internal/terminal"
)

// shell carries the state of one invocation through the cobra tree
type shell struct {
	program string
	stdout  io.Writer
	stderr  io.Writer
	viper   *viper.Viper
	app     *App
}

// Execute runs coco with argv, argv[0] being the invocation token, and
// returns the process exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		err := command.ErrEnvironmentUnavailable
		terminal.NewPrinter(stdout, stderr, terminal.ColorAuto).Error(err.Error())
		return ExitCode(err)
	}

	s := &shell{
		program: argv[0],
		stdout:  stdout,
		stderr:  stderr,
		viper:   viper.New(),
	}
	defer s.close()

	root := s.newRootCmd()
	root.SetArgs(argv[1:])
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		s.printer().Error(err.Error())
	}
	return ExitCode(err)
}

// loadApp builds the App on first use so help output never touches the
// config file, the log file or the history database.
func (s *shell) loadApp() (*App, error) {
	if s.app != nil {
		return s.app, nil
	}

	overrides := config.Overrides{
		Color:    s.viper.GetString("color"),
		LogLevel: s.viper.GetString("log_level"),
	}
	app, err := NewApp(s.viper.GetString("config"), overrides, s.stdout, s.stderr)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// dispatch parses the subcommand tokens and runs the result. args starts
// with the subcommand name.
func (s *shell) dispatch(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("%w: %w", command.ErrEnvironmentUnavailable, err)
	}

	parsed, err := command.Parse(append([]string{s.program}, args...), workDir)
	if err != nil {
		return err
	}
	if _, ok := parsed.Command.(command.Help); ok {
		return cmd.Root().Help()
	}

	app, err := s.loadApp()
	if err != nil {
		return err
	}
	for _, w := range parsed.Warnings {
		app.Printer.Warn(w)
	}

	session := runner.Session{Command: parsed.Command, WorkDir: workDir}
	return app.Run(cmd.Context(), session, strings.Join(args, " "))
}

// printer returns the App printer, or a default one when the App could not be built
func (s *shell) printer() *terminal.Printer {
	if s.app != nil {
		return s.app.Printer
	}
	return terminal.NewPrinter(s.stdout, s.stderr, s.viper.GetString("color"))
}

func (s *shell) close() {
	if s.app != nil {
		s.app.Close()
	}
}
