package command

import (
	"errors"
	"fmt"
	"io/fs"
)

// notFoundError is a sentinel that also matches fs.ErrNotExist
type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == fs.ErrNotExist }

var (
	ErrTargetMissing          error = &notFoundError{msg: "delete target not specified"}
	ErrEnvironmentUnavailable       = errors.New("the path to the running binary could not be determined")
	ErrUnrecognizedCommand          = errors.New("unrecognized command")
	ErrInvalidOption                = errors.New("invalid option")
)

// UnrecognizedCommandError names a subcommand coco does not know
type UnrecognizedCommandError struct {
	Name string
}

func (e *UnrecognizedCommandError) Error() string {
	return fmt.Sprintf("cannot recognise the command %q", e.Name)
}

func (e *UnrecognizedCommandError) Is(target error) bool {
	return target == ErrUnrecognizedCommand
}
