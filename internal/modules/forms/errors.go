package forms

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles         = errors.New("no files provided")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidFileType = errors.New("file type is not allowed")
)

// ValidationError names the offending file alongside the violated
// constraint. One ValidationError fails the whole batch: no rows are created
// for any file in the request.
type ValidationError struct {
	FileName string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
