package cli

import (
	"errors"

	"coco/internal/command"
	"coco/internal/config"
	"coco/internal/exitcodes"
	"coco/internal/runner"
	"coco/internal/safety"
)

// ExitCode maps an error returned by Execute's command tree to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, config.ErrInvalid):
		return exitcodes.InvalidConfig
	case errors.Is(err, safety.ErrProtectedPath),
		errors.Is(err, safety.ErrOutsideAllowed),
		errors.Is(err, safety.ErrSymlinkEscape),
		errors.Is(err, safety.ErrInvalidPath):
		return exitcodes.SafetyViolation
	case errors.Is(err, runner.ErrUnsupported):
		return exitcodes.Unsupported
	case errors.Is(err, command.ErrUnrecognizedCommand),
		errors.Is(err, command.ErrTargetMissing),
		errors.Is(err, command.ErrInvalidOption):
		return exitcodes.UsageError
	default:
		return exitcodes.RuntimeError
	}
}
