package fsops

import (
	"errors"
	"io/fs"
)

// notFoundError is a sentinel that also matches fs.ErrNotExist
type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Is(target error) bool { return target == fs.ErrNotExist }

var (
	ErrPathNotFound  error = &notFoundError{msg: "path not found"}
	ErrNotADirectory       = errors.New("not a directory")
)
